package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jademcosta/sucuri/pkg/compressor"
	"github.com/jademcosta/sucuri/pkg/config"
	"github.com/jademcosta/sucuri/pkg/domain"
	"github.com/jademcosta/sucuri/pkg/logger"
	"github.com/jademcosta/sucuri/pkg/sources"
	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"
)

const workAreaPattern = "sucuri-extract-*"

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".webp": {},
}

type Extractor struct {
	l                *zap.SugaredLogger
	workdir          string
	maxExtractedSize int64
	maxEntries       int
}

func New(l *zap.SugaredLogger, conf config.ExtractionConfig) (*Extractor, error) {
	maxSize, err := conf.MaxExtractedSizeInBytes()
	if err != nil {
		return nil, domain.ConfigError("extractor", err)
	}

	return &Extractor{
		l:                l.With(logger.COMPONENT_KEY, "extractor"),
		workdir:          conf.Workdir,
		maxExtractedSize: maxSize,
		maxEntries:       conf.MaxEntries,
	}, nil
}

// Extract unpacks archive into a fresh working area and calls process with the image members found
// in it. The working area is removed before Extract returns, whatever the outcome, so members must
// not be used after process returns.
func (ext *Extractor) Extract(archive []byte, process func(members []domain.ImageSource) error) error {
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return domain.UnsupportedFormatError(err)
	}
	reader.RegisterDecompressor(zip.Deflate, compressor.ZipDecompressor)

	if ext.maxEntries > 0 && len(reader.File) > ext.maxEntries {
		return domain.ArchiveTooLargeError(
			fmt.Errorf("archive has %d entries, limit is %d", len(reader.File), ext.maxEntries))
	}

	workArea, err := os.MkdirTemp(ext.workdir, workAreaPattern)
	if err != nil {
		return fmt.Errorf("creating working area: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workArea); err != nil {
			ext.l.Errorw("failed to remove working area", "path", workArea, "error", err)
		}
	}()

	var written int64
	for _, file := range reader.File {
		n, err := ext.unpack(workArea, file, ext.maxExtractedSize-written)
		if err != nil {
			return err
		}
		written += n
	}

	members, err := collect(workArea)
	if err != nil {
		return fmt.Errorf("listing extracted files: %w", err)
	}

	ext.l.Debugw("archive extracted", "entries", len(reader.File), "images", len(members),
		"size_in_bytes", written)
	return process(members)
}

func (ext *Extractor) unpack(root string, file *zip.File, budget int64) (int64, error) {
	if !filepath.IsLocal(file.Name) {
		ext.l.Warnw("skipping archive entry outside of the working area", "entry", file.Name)
		return 0, nil
	}
	target := filepath.Join(root, file.Name)

	mode := file.Mode()
	if mode.IsDir() {
		return 0, os.MkdirAll(target, 0o700)
	}

	if !mode.IsRegular() {
		ext.l.Warnw("skipping archive entry that is not a regular file", "entry", file.Name,
			"mode", mode.String())
		return 0, nil
	}

	err := os.MkdirAll(filepath.Dir(target), 0o700)
	if err != nil {
		return 0, fmt.Errorf("creating directory for %s: %w", file.Name, err)
	}

	content, err := file.Open()
	if err != nil {
		return 0, domain.UnsupportedFormatError(fmt.Errorf("opening entry %s: %w", file.Name, err))
	}
	defer content.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", file.Name, err)
	}
	defer out.Close()

	n, err := io.Copy(out, io.LimitReader(content, budget+1))
	if err != nil {
		if errors.Is(err, zip.ErrChecksum) || errors.Is(err, zip.ErrFormat) || errors.Is(err, io.ErrUnexpectedEOF) {
			return n, domain.UnsupportedFormatError(fmt.Errorf("reading entry %s: %w", file.Name, err))
		}
		return n, fmt.Errorf("writing %s: %w", file.Name, err)
	}

	if n > budget {
		return n, domain.ArchiveTooLargeError(fmt.Errorf("extracted content exceeds the limit"))
	}
	return n, nil
}

// collect walks root in lexical order and keeps regular files with an image extension.
func collect(root string) ([]domain.ImageSource, error) {
	members := make([]domain.ImageSource, 0)

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !entry.Type().IsRegular() {
			return nil
		}

		if !IsImageFile(entry.Name()) {
			return nil
		}

		members = append(members, sources.NewArchiveMember(entry.Name(), path))
		return nil
	})

	return members, err
}

// IsImageFile matches png, jpg, jpeg and webp extensions, ignoring case.
func IsImageFile(name string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}
