package objectclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/markdave123-py/Vivid/internal/core"
)

// LocalClient stages videos on local disk under Root/<bucket>/<key>.
type LocalClient struct {
	Root string
}

func NewLocalClient(root string) (*LocalClient, error) {
	if root == "" {
		return nil, fmt.Errorf("upload dir is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalClient{Root: root}, nil
}

func (c *LocalClient) UploadFile(_ context.Context, bucket, key string, data io.Reader, _ string) (string, error) {
	p, err := c.path(bucket, key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("failed to create dir: %w", err)
	}

	dst, err := os.Create(p)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, data); err != nil {
		_ = os.Remove(p)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return "file://" + filepath.ToSlash(p), nil
}

func (c *LocalClient) GetFile(_ context.Context, bucket, key string) ([]byte, error) {
	p, err := c.path(bucket, key)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read staged file: %w", err)
	}
	return b, nil
}

func (c *LocalClient) DeleteFile(_ context.Context, bucket, key string) error {
	p, err := c.path(bucket, key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete staged file: %w", err)
	}
	return nil
}

// path keeps keys inside Root; keys are generated by us but never trusted blindly.
func (c *LocalClient) path(bucket, key string) (string, error) {
	p := filepath.Join(c.Root, bucket, filepath.FromSlash(key))
	root := filepath.Clean(c.Root) + string(os.PathSeparator)
	if !strings.HasPrefix(p, root) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return p, nil
}

var _ core.ObjectClient = (*LocalClient)(nil)
