package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateVideo(t *testing.T) {
	t.Run("rejects non-video types", func(t *testing.T) {
		assert.ErrorIs(t, ValidateVideo("image/png", 1024), ErrInvalidFileType)
		assert.ErrorIs(t, ValidateVideo("", 1024), ErrInvalidFileType)
	})

	t.Run("rejects files over 100MiB", func(t *testing.T) {
		assert.ErrorIs(t, ValidateVideo("video/mp4", 105_000_000), ErrFileTooLarge)
	})

	t.Run("accepts the exact ceiling", func(t *testing.T) {
		assert.NoError(t, ValidateVideo("video/mp4", 104_857_600))
	})

	t.Run("accepts a small video", func(t *testing.T) {
		assert.NoError(t, ValidateVideo("Video/WebM", 1<<20))
	})

	t.Run("type is checked before size", func(t *testing.T) {
		assert.ErrorIs(t, ValidateVideo("image/png", 105_000_000), ErrInvalidFileType)
	})
}

func TestGuessContentType(t *testing.T) {
	assert.Equal(t, "video/mp4", GuessContentType("clip.MP4"))
	assert.Equal(t, "video/quicktime", GuessContentType("holiday.mov"))
	assert.Equal(t, "application/octet-stream", GuessContentType("notes"))
	assert.Equal(t, "application/octet-stream", GuessContentType("photo.png"))
}
