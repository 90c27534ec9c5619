// Package content implements ContentSource adapters that resolve custodial
// file locations to bytes.
package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/zerowrap"

	"github.com/bnema/ferry/internal/boundaries/out"
	"github.com/bnema/ferry/pkg/validation"
)

var _ out.ContentSource = (*Filesystem)(nil)

// ErrContentNotFound is returned when a location resolves to nothing.
var ErrContentNotFound = errors.New("content not found")

// Filesystem serves locations from a local directory tree. Relative
// locations are resolved against the root; absolute ones must stay inside it.
type Filesystem struct {
	rootDir string
	log     zerowrap.Logger
}

// NewFilesystem creates a filesystem content source rooted at rootDir.
func NewFilesystem(rootDir string, log zerowrap.Logger) (*Filesystem, error) {
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve content root %s: %w", rootDir, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat content root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content root %s is not a directory", abs)
	}

	log.Info().
		Str(zerowrap.FieldLayer, "adapter").
		Str(zerowrap.FieldAdapter, "content").
		Str("root_dir", abs).
		Msg("filesystem content source initialized")

	return &Filesystem{rootDir: abs, log: log}, nil
}

// Open opens location for reading and returns its size.
func (s *Filesystem) Open(ctx context.Context, location string) (io.ReadCloser, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	fullPath, err := s.resolve(location)
	if err != nil {
		return nil, 0, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, fmt.Errorf("%w: %s", ErrContentNotFound, location)
		}
		return nil, 0, fmt.Errorf("failed to open content: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, 0, fmt.Errorf("failed to stat content: %w", err)
	}
	if info.IsDir() {
		file.Close()
		return nil, 0, fmt.Errorf("content location %s is a directory", location)
	}

	s.log.Debug().
		Str(zerowrap.FieldLayer, "adapter").
		Str(zerowrap.FieldAdapter, "content").
		Str(zerowrap.FieldPath, fullPath).
		Int64(zerowrap.FieldSize, info.Size()).
		Msg("content opened")

	return file, info.Size(), nil
}

func (s *Filesystem) resolve(location string) (string, error) {
	p := strings.TrimPrefix(location, "file://")

	if filepath.IsAbs(p) {
		clean := filepath.Clean(p)
		if err := validation.ValidatePathWithinRoot(s.rootDir, clean); err != nil {
			return "", fmt.Errorf("content location %s: %w", location, err)
		}
		return clean, nil
	}

	rel, err := validation.ValidatePath(p)
	if err != nil {
		return "", fmt.Errorf("content location %s: %w", location, err)
	}

	fullPath := filepath.Join(s.rootDir, rel)
	if err := validation.ValidatePathWithinRoot(s.rootDir, fullPath); err != nil {
		return "", fmt.Errorf("content location %s: %w", location, err)
	}
	return fullPath, nil
}
