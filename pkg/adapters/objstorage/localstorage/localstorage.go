package localstorage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jademcosta/sucuri/pkg/domain"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

const TYPE string = "localstorage"

type Config struct {
	Path string `yaml:"path"`
}

// LocalStorage writes bundles under a directory. Meant for development and single host setups.
type LocalStorage struct {
	path string
	log  *zap.SugaredLogger
}

func New(l *zap.SugaredLogger, c *Config) (*LocalStorage, error) {
	path, err := validateAndFormatPath(c.Path)
	if err != nil {
		return nil, fmt.Errorf("error creating localstorage: %w", err)
	}

	return &LocalStorage{path: path, log: l}, nil
}

func ParseConfig(confData []byte) (*Config, error) {
	conf := &Config{}

	err := yaml.Unmarshal(confData, conf)
	if err != nil {
		return conf, fmt.Errorf("error parsing localstorage config: %w", err)
	}

	return conf, nil
}

func (storage *LocalStorage) Upload(_ context.Context, workU *domain.WorkUnit) (*domain.UploadResult, error) {
	directoryPath := filepath.Join(storage.path, workU.Prefix)

	err := os.MkdirAll(directoryPath, 0o755)
	if err != nil {
		return nil, fmt.Errorf("error creating directory: %w", err)
	}

	fullFilePath := filepath.Join(directoryPath, workU.Filename)

	err = os.WriteFile(fullFilePath, workU.Data, 0o644)
	if err != nil {
		return nil, fmt.Errorf("error writing data into file: %w", err)
	}

	storage.log.Debugw("bundle written", "path", fullFilePath, "size_in_bytes", len(workU.Data))
	return &domain.UploadResult{
		Bucket:      TYPE,
		Path:        fullFilePath,
		URL:         fullFilePath,
		SizeInBytes: len(workU.Data),
	}, nil
}

func (storage *LocalStorage) Type() string {
	return TYPE
}

func (storage *LocalStorage) Name() string {
	return storage.path
}

func validateAndFormatPath(path string) (string, error) {
	pathInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("the directory for the path doesn't exist: %w", err)
		}
		return "", fmt.Errorf("error on the provided path: %w", err)
	}

	if !pathInfo.IsDir() {
		return "", fmt.Errorf("provided path is not a directory")
	}

	formattedPath := strings.TrimSuffix(path, "/")
	return formattedPath, nil
}
