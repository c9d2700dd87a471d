package objstorage

import (
	"context"
	"fmt"

	"github.com/jademcosta/sucuri/pkg/adapters/objstorage/localstorage"
	"github.com/jademcosta/sucuri/pkg/adapters/objstorage/s3"
	"github.com/jademcosta/sucuri/pkg/config"
	"github.com/jademcosta/sucuri/pkg/domain"
	"github.com/jademcosta/sucuri/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

type ObjStorage interface {
	Upload(ctx context.Context, workU *domain.WorkUnit) (*domain.UploadResult, error)
}

type ObjStorageWithMetadata interface {
	ObjStorage
	Type() string
	Name() string
}

func New(
	l *zap.SugaredLogger, metricRegistry *prometheus.Registry, conf config.ObjectStorageConfig,
) (ObjStorageWithMetadata, error) {

	var objStorage ObjStorageWithMetadata
	specificConf, err := yaml.Marshal(conf.Config)
	if err != nil {
		return nil, fmt.Errorf("error parsing object storage config: %w", err)
	}

	l = l.With(logger.OBJ_STORAGE_TYPE_KEY, conf.Type)

	switch conf.Type {
	case s3.TYPE:
		s3Conf, err := s3.ParseConfig(specificConf)
		if err != nil {
			return nil, fmt.Errorf("error parsing s3-specific config: %w", err)
		}

		objStorage, err = s3.New(l, s3Conf)
		if err != nil {
			return nil, fmt.Errorf("error creating S3 object storage: %w", err)
		}
	case localstorage.TYPE:
		localStorageConf, err := localstorage.ParseConfig(specificConf)
		if err != nil {
			return nil, fmt.Errorf("error parsing localstorage-specific config: %w", err)
		}

		objStorage, err = localstorage.New(l, localStorageConf)
		if err != nil {
			return nil, fmt.Errorf("error creating localstorage object storage: %w", err)
		}
	default:
		return nil, fmt.Errorf("invalid object storage type %s", conf.Type)
	}

	return NewStorageWithMetrics(objStorage, metricRegistry), nil
}
