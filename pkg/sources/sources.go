package sources

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/jademcosta/sucuri/pkg/domain"
)

// DirectUpload is an image whose bytes are already in memory.
type DirectUpload struct {
	name string
	data []byte
}

func NewDirectUpload(name string, data []byte) *DirectUpload {
	return &DirectUpload{name: name, data: data}
}

func (upload *DirectUpload) Name() string {
	return upload.name
}

func (upload *DirectUpload) Size() (int64, error) {
	return int64(len(upload.data)), nil
}

func (upload *DirectUpload) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(upload.data)), nil
}

// FileSource is an image on disk. Size and content are read lazily, so an archive member is only
// valid while its working area exists.
type FileSource struct {
	name string
	path string
}

func NewArchiveMember(name string, path string) *FileSource {
	return &FileSource{name: name, path: path}
}

// NewLocalFile names the image after the last element of its path.
func NewLocalFile(path string) *FileSource {
	return &FileSource{name: filepath.Base(path), path: path}
}

func (member *FileSource) Name() string {
	return member.name
}

func (member *FileSource) Size() (int64, error) {
	info, err := os.Stat(member.path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (member *FileSource) Open() (io.ReadCloser, error) {
	return os.Open(member.path)
}

var (
	_ domain.ImageSource = (*DirectUpload)(nil)
	_ domain.ImageSource = (*FileSource)(nil)
)
