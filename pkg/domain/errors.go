package domain

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindUnsupportedFormat Kind = "unsupported_format"
	KindArchiveTooLarge   Kind = "archive_too_large"
	KindDecode            Kind = "decode"
	KindEncode            Kind = "encode"
	KindConfig            Kind = "config"
	KindDelivery          Kind = "delivery"
)

var ErrInvalidTarget = errors.New("target size must be greater than zero")

type Error struct {
	Kind  Kind
	Op    string
	Name  string
	Cause error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s:%s]", e.Kind, e.Op)
	if e.Name != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Name)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func UnsupportedFormatError(cause error) error {
	return &Error{Kind: KindUnsupportedFormat, Op: "extract", Cause: cause}
}

func ArchiveTooLargeError(cause error) error {
	return &Error{Kind: KindArchiveTooLarge, Op: "extract", Cause: cause}
}

func DecodeError(name string, cause error) error {
	return &Error{Kind: KindDecode, Op: "decode", Name: name, Cause: cause}
}

func EncodeError(name string, cause error) error {
	return &Error{Kind: KindEncode, Op: "encode", Name: name, Cause: cause}
}

func ConfigError(op string, cause error) error {
	return &Error{Kind: KindConfig, Op: op, Cause: cause}
}

func DeliveryError(op string, cause error) error {
	return &Error{Kind: KindDelivery, Op: op, Cause: cause}
}

// IsKind checks whether the first domain error in the chain matches the provided kind.
func IsKind(err error, kind Kind) bool {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind == kind
	}
	return false
}
