package logger

import (
	"github.com/jademcosta/sucuri/pkg/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	COMPONENT_KEY        = "component"
	OBJ_STORAGE_TYPE_KEY = "object_storage_type"
	EXT_QUEUE_TYPE_KEY   = "ext_queue_type"
	ITEM_NAME_KEY        = "item"
)

func New(config *config.Config) *zap.SugaredLogger {

	logLevel, _ := zapcore.ParseLevel(config.Log.Level)
	zapconfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(logLevel),
		Development:      false,
		Encoding:         config.Log.Format,
		EncoderConfig:    encoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := zapconfig.Build()
	if err != nil {
		panic("Error initializing logger: " + err.Error())
	}

	return logger.Sugar()
}

// NewDummy returns a logger that discards everything. Meant for tests.
func NewDummy() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}
