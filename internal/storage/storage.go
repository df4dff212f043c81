// Package storage reads statement files and saves exported files.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Source supplies the raw bytes of one statement file.
type Source interface {
	Name() string
	Read(ctx context.Context) ([]byte, error)
}

// Sink receives an exported file.
type Sink interface {
	Save(ctx context.Context, data []byte, filename, mimeType string) error
}

// FileSource reads a statement from disk.
type FileSource struct {
	Path string
}

// Name returns the path.
func (s FileSource) Name() string { return s.Path }

// Read returns the whole file.
func (s FileSource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("reading statement: %w", err)
	}
	return data, nil
}

// ReaderSource reads a statement from an arbitrary reader, e.g. stdin.
type ReaderSource struct {
	Label  string
	Reader io.Reader
}

// Name returns the label, or "-" when unset.
func (s ReaderSource) Name() string {
	if s.Label == "" {
		return "-"
	}
	return s.Label
}

// Read drains the reader.
func (s ReaderSource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(s.Reader)
	if err != nil {
		return nil, fmt.Errorf("reading statement from %s: %w", s.Name(), err)
	}
	return data, nil
}

// DirSink writes exported files into a directory, creating it if needed.
type DirSink struct {
	Dir string
}

// Path returns where a file called filename would be written.
func (s DirSink) Path(filename string) string {
	return filepath.Join(s.Dir, filepath.Base(filename))
}

// Save writes data to <Dir>/<filename>, replacing any existing file.
func (s DirSink) Save(ctx context.Context, data []byte, filename, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := os.WriteFile(s.Path(filename), data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filename, err)
	}
	return nil
}

// WriterSink copies exported files to a writer, e.g. stdout. The filename and
// MIME type are ignored.
type WriterSink struct {
	W io.Writer
}

// Save writes data to W.
func (s WriterSink) Save(ctx context.Context, data []byte, _, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.W.Write(data); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}
