package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/jademcosta/sucuri/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 12, 12))
	for x := 0; x < 12; x++ {
		for y := 0; y < 12; y++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 20), G: uint8(y * 20), B: 10, A: 255})
		}
	}

	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img), "png fixture should encode")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600), "png fixture should be written")
}

func TestSummaryLine(t *testing.T) {
	line := summaryLine(domain.Summary{
		Files: 3, Failed: 1, OriginalKB: 300, CompressedKB: 75, SavedPercent: 75,
	})

	assert.Equal(t, "3 files compressed, 1 failed: 300.00 KB -> 75.00 KB (75.0% saved)", line,
		"summary line should show counts, sizes and savings")
}

func TestCompressCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "photo.png")
	output := filepath.Join(dir, "bundle.zip")
	writePNG(t, input)

	out := &bytes.Buffer{}
	cmd := newRootCmd(out)
	cmd.SetArgs([]string{"compress", "--target-kb", "20", "--output", output, input})

	require.NoError(t, cmd.Execute(), "compress should succeed")
	assert.Contains(t, out.String(), "1 files compressed, 0 failed", "summary should be printed")
	assert.Contains(t, out.String(), "bundle written to "+output, "output path should be printed")

	_, err := os.Stat(output)
	assert.NoError(t, err, "bundle should be written")
}

func TestCompressCommandRejectsInvalidTarget(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "photo.png")
	writePNG(t, input)

	cmd := newRootCmd(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"compress", "--target-kb", "5", "--output", filepath.Join(dir, "b.zip"), input})

	assert.Error(t, cmd.Execute(), "target outside the allowed interval should fail")
}

func TestServeRequiresConfig(t *testing.T) {
	cmd := newRootCmd(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"serve"})

	assert.Error(t, cmd.Execute(), "serve without a config file should fail")
}

func TestLoadConfig(t *testing.T) {
	conf, err := loadConfig("")
	require.NoError(t, err, "empty path should fall back to defaults")
	assert.Equal(t, version, conf.Version, "version should be set")

	path := filepath.Join(t.TempDir(), "conf.yaml")
	require.NoError(t, os.WriteFile(path, []byte("compression:\n  default_target_kb: 60\n"), 0o600),
		"config fixture should be written")

	conf, err = loadConfig(path)
	require.NoError(t, err, "valid config should load")
	assert.Equal(t, 60, conf.Compression.DefaultTargetKB, "file values should be used")

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "missing file should fail")
}
