// Package exports stores generated reports on the local filesystem or in an
// S3-compatible bucket.
package exports

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/codr1/Clubhouse/internal/config"
)

var ErrInvalidKey = errors.New("invalid export key")

// Sink stores an export under key and returns where it can be found.
type Sink interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// NewSink builds the sink selected by cfg.Sink.
func NewSink(ctx context.Context, cfg config.ExportConfig) (Sink, error) {
	switch cfg.Sink {
	case "", "file":
		return NewFileSink(cfg.Directory)
	case "s3":
		return NewS3Sink(ctx, S3Config{
			Bucket:          cfg.Bucket,
			Region:          cfg.Region,
			Endpoint:        cfg.Endpoint,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
		})
	default:
		return nil, fmt.Errorf("unsupported exports sink: %s", cfg.Sink)
	}
}

// ComplianceKey returns the object key for a club's compliance export on day.
func ComplianceKey(clubName, clubID string, day time.Time) string {
	name := slug.Make(clubName)
	if name == "" {
		name = slug.Make(clubID)
	}
	if name == "" {
		name = "club"
	}
	return fmt.Sprintf("compliance/%s/%s.csv", name, day.Format("2006-01-02"))
}

func cleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	cleaned := filepath.ToSlash(filepath.Clean(key))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return cleaned, nil
}

type FileSink struct {
	dir string
}

func NewFileSink(dir string) (*FileSink, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("export directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	return &FileSink{dir: dir}, nil
}

// Put writes body to a temporary file and renames it into place.
func (s *FileSink) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target := filepath.Join(s.dir, filepath.FromSlash(cleaned))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create export path: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".export-*")
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write export %s: %w", cleaned, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close export %s: %w", cleaned, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("store export %s: %w", cleaned, err)
	}
	return target, nil
}
