package input

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/pgzip"
)

// GzFileInput reads one LF-terminated line per Chunk, decompressing path on
// the fly. A single line may not exceed maxLineBytes; exceeding it fails
// the whole input rather than silently truncating.
type GzFileInput struct {
	path string

	file   *os.File
	gzip   *pgzip.Reader
	reader *bufio.Reader
}

// NewGzFileInput returns an Input decompressing and reading lines from the
// gzip file at path.
func NewGzFileInput(path string) *GzFileInput {
	return &GzFileInput{path: path}
}

func (f *GzFileInput) ensureOpen() error {
	if f.reader != nil {
		return nil
	}

	file, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("can't open %s: %w", f.path, err)
	}

	gz, err := pgzip.NewReader(file)
	if err != nil {
		_ = file.Close()

		return fmt.Errorf("can't decompress %s: %w", f.path, err)
	}

	f.file = file
	f.gzip = gz
	f.reader = bufio.NewReader(gz)

	return nil
}

func (f *GzFileInput) Chunk(_ context.Context) ([]byte, error) {
	if err := f.ensureOpen(); err != nil {
		return nil, err
	}

	return readCappedLine(f.reader, f.path)
}

// readCappedLine reads one LF-terminated line, failing if it exceeds
// maxLineBytes before a line ending (or EOF) is found.
func readCappedLine(r *bufio.Reader, path string) ([]byte, error) {
	line, err := r.ReadBytes('\n')
	if len(line) > maxLineBytes {
		return nil, fmt.Errorf("%s: line exceeds %d byte limit", path, maxLineBytes)
	}

	if len(line) > 0 {
		if err == nil || errors.Is(err, io.EOF) {
			return line, nil
		}
	}

	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}

	if err != nil {
		return nil, fmt.Errorf("can't read %s: %w", path, err)
	}

	return line, nil
}

func (f *GzFileInput) Reset(_ context.Context) error {
	f.closeHandles()

	return f.ensureOpen()
}

func (f *GzFileInput) closeHandles() {
	if f.gzip != nil {
		_ = f.gzip.Close()
		f.gzip = nil
	}

	if f.file != nil {
		_ = f.file.Close()
		f.file = nil
	}

	f.reader = nil
}

func (f *GzFileInput) Len(_ context.Context) (int64, bool, error) {
	info, err := os.Stat(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, false, nil
		}

		return 0, false, fmt.Errorf("can't stat %s: %w", f.path, err)
	}

	return info.Size(), true, nil
}

// Close releases the underlying file and gzip reader, if open.
func (f *GzFileInput) Close() error {
	f.closeHandles()

	return nil
}
