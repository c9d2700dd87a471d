package filepather

import (
	"fmt"

	"github.com/google/uuid"
)

type DateTimeProvider interface {
	Date() string
	Hour() string
}

// FilePather names delivered objects as <date>/<hour>/<uuid>/<filename>. Each prefix gets a new
// UUID, so two deliveries never share a key.
type FilePather struct {
	dtProvider DateTimeProvider
	filename   string
}

func New(dtProvider DateTimeProvider, filename string) *FilePather {
	return &FilePather{
		dtProvider: dtProvider,
		filename:   filename,
	}
}

func (fp *FilePather) Filename() *string {
	filename := fp.filename
	return &filename
}

func (fp *FilePather) Prefix() *string {
	prefix := fmt.Sprintf("%s/%s/%s/", fp.dtProvider.Date(), fp.dtProvider.Hour(), uuid.New().String())
	return &prefix
}
