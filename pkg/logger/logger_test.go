package logger_test

import (
	"testing"

	"github.com/jademcosta/sucuri/pkg/config"
	"github.com/jademcosta/sucuri/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRespectsConfiguredLevel(t *testing.T) {
	conf, err := config.New([]byte("log:\n  level: warn\n  format: console\n"))
	require.NoError(t, err, "config should be valid")

	l := logger.New(conf)
	require.NotNil(t, l, "logger should be created")

	assert.False(t, l.Desugar().Core().Enabled(-1), "debug should be disabled on warn level")
	assert.False(t, l.Desugar().Core().Enabled(0), "info should be disabled on warn level")
	assert.True(t, l.Desugar().Core().Enabled(1), "warn should be enabled on warn level")
}

func TestDummyDiscardsEverything(t *testing.T) {
	l := logger.NewDummy()
	assert.NotPanics(t, func() { l.Errorw("some message", "key", "value") }, "dummy logger should accept logs")
	assert.False(t, l.Desugar().Core().Enabled(2), "dummy logger should not be enabled for any level")
}
