package config_test

import (
	"testing"

	"github.com/jademcosta/sucuri/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestToBytes(t *testing.T) {
	testCases := []struct {
		size        string
		sizeInBytes int64
		shouldError bool
	}{
		{size: "0", sizeInBytes: 0},
		{size: "", sizeInBytes: 0},
		{size: "1", sizeInBytes: 1},
		{size: "99", sizeInBytes: 99},
		{size: "187349873947", sizeInBytes: 187349873947},

		{size: "1kb", sizeInBytes: 1024},
		{size: "1KB", sizeInBytes: 1024},
		{size: "45kb", sizeInBytes: 45 * 1024},
		{size: "1024KB", sizeInBytes: 1048576},

		{size: "1mb", sizeInBytes: 1048576},
		{size: "50MB", sizeInBytes: 50 * 1048576},

		{size: "1gb", sizeInBytes: 1073741824},
		{size: "20GB", sizeInBytes: 20 * 1073741824},

		{size: "1tb", sizeInBytes: 1099511627776},
		{size: "2TB", sizeInBytes: 2 * 1099511627776},

		{size: "1pb", sizeInBytes: 1125899906842624},
		{size: "3PB", sizeInBytes: 3 * 1125899906842624},

		{size: "a", shouldError: true},
		{size: "1a", shouldError: true},
		{size: "128736kbkb", shouldError: true},
		{size: "128736kbb", shouldError: true},
		{size: "one", shouldError: true},
		{size: "128.736", shouldError: true},
		{size: "-1", shouldError: true},
		{size: "kb", shouldError: true},
		{size: "1Kb", shouldError: true},
	}

	for _, tc := range testCases {
		result, err := config.ToBytes(tc.size)
		if tc.shouldError {
			assert.Errorf(t, err, "should return error when size is %q", tc.size)
			continue
		}

		assert.NoErrorf(t, err, "should not return error when size is %q", tc.size)
		assert.Equalf(t, tc.sizeInBytes, result, "size %q should be converted to %d bytes", tc.size, tc.sizeInBytes)
	}
}
