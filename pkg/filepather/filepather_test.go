package filepather_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/jademcosta/sucuri/pkg/filepather"
	"github.com/stretchr/testify/assert"
)

type mockDateTimeProvider struct {
	date string
	hour string
}

func (mock *mockDateTimeProvider) Date() string {
	return mock.date
}

func (mock *mockDateTimeProvider) Hour() string {
	return mock.hour
}

func TestFilenameIsFixed(t *testing.T) {
	sut := filepather.New(&mockDateTimeProvider{}, "compressed_images.zip")

	for i := 0; i < 3; i++ {
		assert.Equal(t, "compressed_images.zip", *sut.Filename(), "filename should always be the configured one")
	}
}

func TestPrefixContainsDateAndHour(t *testing.T) {
	sut := filepather.New(&mockDateTimeProvider{date: "2022-02-20", hour: "23"}, "any")

	prefix := *sut.Prefix()

	// Last chunck format is f1f9ef42-324b-40c2-bb1e-eddadfeef330
	assert.Regexp(t,
		regexp.MustCompile("^2022-02-20/23/[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}/$"),
		prefix, "prefix should contain datetime information and a UUID")
}

func TestPrefixIsUniquePerCall(t *testing.T) {
	sut := filepather.New(&mockDateTimeProvider{date: "2022-02-20", hour: "23"}, "any")

	seen := make(map[string]struct{})
	for i := 0; i < 10; i++ {
		prefix := *sut.Prefix()
		chunks := strings.Split(prefix, "/")
		lastChunk := chunks[len(chunks)-2] // -2 because it ends with "/"

		_, repeated := seen[lastChunk]
		assert.False(t, repeated, "should not generate the same UUID twice")
		seen[lastChunk] = struct{}{}
	}
}
