// Package media persists uploaded product images under the public static
// directory.
package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/joao-fontenele/storefront/internal/apperr"
)

const (
	// PublicPrefix is the URL path uploaded images are served under.
	PublicPrefix = "/images/"

	PlaceholderURL = "https://via.placeholder.com/150"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

type ImageStore struct {
	dir string
}

// NewImageStore stores files in <publicDir>/images.
func NewImageStore(publicDir string) *ImageStore {
	return &ImageStore{dir: filepath.Join(publicDir, "images")}
}

func (s *ImageStore) Dir() string {
	return s.dir
}

// Save writes src under a random name and returns its public relative path.
func (s *ImageStore) Save(ctx context.Context, filename string, src io.Reader) (string, error) {
	base := sanitize(filename)
	if !allowedExtensions[strings.ToLower(filepath.Ext(base))] {
		return "", apperr.Validation("Image must be a .jpg, .jpeg, .png, .gif or .webp file.")
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}

	name := uuid.NewString() + "_" + base
	dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}

	if _, err := io.Copy(dst, contextReader{ctx: ctx, r: src}); err != nil {
		_ = dst.Close()
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("close image: %w", err)
	}

	return path.Join(PublicPrefix, name), nil
}

// Remove deletes a previously saved image. Placeholders and unknown paths are
// ignored.
func (s *ImageStore) Remove(publicPath string) error {
	if !strings.HasPrefix(publicPath, PublicPrefix) {
		return nil
	}
	name := sanitize(strings.TrimPrefix(publicPath, PublicPrefix))
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func sanitize(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "." || base == "_" || base == "" {
		return "image"
	}
	return base
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
