package objectclient

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalClient(t *testing.T) {
	ctx := context.Background()
	c, err := NewLocalClient(t.TempDir())
	require.NoError(t, err)

	url, err := c.UploadFile(ctx, "videos", "ctx-1/clip.mp4", strings.NewReader("frames"), "video/mp4")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "file://"))

	got, err := c.GetFile(ctx, "videos", "ctx-1/clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, "frames", string(got))

	require.NoError(t, c.DeleteFile(ctx, "videos", "ctx-1/clip.mp4"))
	_, err = c.GetFile(ctx, "videos", "ctx-1/clip.mp4")
	assert.Error(t, err)

	t.Run("deleting twice is fine", func(t *testing.T) {
		assert.NoError(t, c.DeleteFile(ctx, "videos", "ctx-1/clip.mp4"))
	})

	t.Run("keys cannot escape the root", func(t *testing.T) {
		_, err := c.UploadFile(ctx, "videos", "../../etc/passwd", strings.NewReader("x"), "video/mp4")
		assert.Error(t, err)
	})
}
