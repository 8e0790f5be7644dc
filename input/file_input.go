package input

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// FileInput reads one LF-terminated line per Chunk from an uncompressed
// local file. The underlying handle is opened lazily, on the first Chunk
// call; Len only stats the path.
type FileInput struct {
	path string

	file   *os.File
	reader *bufio.Reader
}

// NewFileInput returns an Input reading lines from path.
func NewFileInput(path string) *FileInput {
	return &FileInput{path: path}
}

func (f *FileInput) ensureOpen() error {
	if f.file != nil {
		return nil
	}

	file, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("can't open %s: %w", f.path, err)
	}

	f.file = file
	f.reader = bufio.NewReader(file)

	return nil
}

func (f *FileInput) Chunk(_ context.Context) ([]byte, error) {
	if err := f.ensureOpen(); err != nil {
		return nil, err
	}

	line, err := f.reader.ReadBytes('\n')
	if len(line) > 0 {
		if err == nil || errors.Is(err, io.EOF) {
			return line, nil
		}
	}

	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}

	if err != nil {
		return nil, fmt.Errorf("can't read %s: %w", f.path, err)
	}

	return line, nil
}

func (f *FileInput) Reset(_ context.Context) error {
	if f.file != nil {
		_ = f.file.Close()
		f.file = nil
		f.reader = nil
	}

	return f.ensureOpen()
}

func (f *FileInput) Len(_ context.Context) (int64, bool, error) {
	info, err := os.Stat(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, false, nil
		}

		return 0, false, fmt.Errorf("can't stat %s: %w", f.path, err)
	}

	return info.Size(), true, nil
}

// Close releases the underlying file handle, if open.
func (f *FileInput) Close() error {
	if f.file == nil {
		return nil
	}

	err := f.file.Close()
	f.file = nil
	f.reader = nil

	return err
}
