package domain

import "io"

const MESSAGE_SCHEMA_VERSION string = "0.0.1"

// ImageSource is one raw image handed to a batch. The name is kept as given and only sanitized when
// a filename is emitted.
type ImageSource interface {
	Name() string
	Size() (int64, error)
	Open() (io.ReadCloser, error)
}

// CompressionResult is created once per successfully processed source and never mutated.
type CompressionResult struct {
	Name           string
	Data           []byte
	OriginalSizeKB float64
	FinalSizeKB    float64
	Quality        int
	TargetMet      bool
}

// ReductionPercent is 0 when the original size is unknown or zero.
func (res CompressionResult) ReductionPercent() float64 {
	if res.OriginalSizeKB <= 0 {
		return 0
	}
	return (res.OriginalSizeKB - res.FinalSizeKB) / res.OriginalSizeKB * 100
}

type BatchOutcome struct {
	Results []CompressionResult
	Failed  int
}

type ProgressReporter interface {
	Processing(index int, total int, name string)
	Failed(index int, name string, err error)
	Done(outcome BatchOutcome)
}

type NoopProgress struct{}

func (NoopProgress) Processing(int, int, string) {}
func (NoopProgress) Failed(int, string, error)   {}
func (NoopProgress) Done(BatchOutcome)           {}

type UploadResult struct {
	Bucket      string
	Region      string
	Path        string
	URL         string
	SizeInBytes int
}

type Message struct {
	SchemaVersion string `json:"schema_version"`
	Bucket        Bucket `json:"bucket"`
	Object        Object `json:"object"`
}

type Object struct {
	Path        string `json:"path"`
	FullURL     string `json:"full_url"`
	SizeInBytes int    `json:"size_in_bytes"`
}

type Bucket struct {
	Name   string `json:"name"`
	Region string `json:"region"`
}

// WorkUnit is one bundle on its way to an object storage.
type WorkUnit struct {
	Filename string
	Prefix   string
	Data     []byte
}

type FilePathProvider interface {
	Filename() *string
	Prefix() *string
}

type DeliveryReceipt struct {
	Upload   UploadResult
	Notified bool
}
