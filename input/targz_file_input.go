package input

import (
	"archive/tar"
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/pgzip"
)

// TarGzFileInput reads one LF-terminated line per Chunk from a single named
// entry inside a gzip'd tar archive. The same maxLineBytes cap as
// GzFileInput applies.
type TarGzFileInput struct {
	path  string
	entry string

	file   *os.File
	gzip   *pgzip.Reader
	tar    *tar.Reader
	reader *bufio.Reader
}

// NewTarGzFileInput returns an Input reading lines from the archive member
// named entry inside the gzip'd tar file at path.
func NewTarGzFileInput(path, entry string) *TarGzFileInput {
	return &TarGzFileInput{path: path, entry: entry}
}

func (f *TarGzFileInput) ensureOpen() error {
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

	tr := tar.NewReader(gz)

	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			_ = gz.Close()
			_ = file.Close()

			return fmt.Errorf("%s: no entry named %q", f.path, f.entry)
		}

		if err != nil {
			_ = gz.Close()
			_ = file.Close()

			return fmt.Errorf("can't read tar entries of %s: %w", f.path, err)
		}

		if header.Name == f.entry {
			break
		}
	}

	f.file = file
	f.gzip = gz
	f.tar = tr
	f.reader = bufio.NewReader(tr)

	return nil
}

func (f *TarGzFileInput) Chunk(_ context.Context) ([]byte, error) {
	if err := f.ensureOpen(); err != nil {
		return nil, err
	}

	return readCappedLine(f.reader, fmt.Sprintf("%s!%s", f.path, f.entry))
}

func (f *TarGzFileInput) Reset(_ context.Context) error {
	f.closeHandles()

	return f.ensureOpen()
}

func (f *TarGzFileInput) closeHandles() {
	if f.gzip != nil {
		_ = f.gzip.Close()
		f.gzip = nil
	}

	if f.file != nil {
		_ = f.file.Close()
		f.file = nil
	}

	f.tar = nil
	f.reader = nil
}

func (f *TarGzFileInput) Len(_ context.Context) (int64, bool, error) {
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
func (f *TarGzFileInput) Close() error {
	f.closeHandles()

	return nil
}
