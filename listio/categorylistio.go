package listio

import (
	"context"
	"os"
	"path/filepath"

	"github.com/listharvest/listharvest/input"
)

// CategoryListIO is structurally analogous to FilterListIO but keyed by tag
// name; it additionally owns the FilterListIO readers of every list
// contributing to the category, for Categorize to merge.
type CategoryListIO struct {
	Tag string

	Contributors []*FilterListIO

	Reader input.Input
	Writer *os.File
}

// NewCategoryListIO returns a CategoryListIO for tag, with no contributors,
// reader, or writer attached yet.
func NewCategoryListIO(tag string) *CategoryListIO {
	return &CategoryListIO{Tag: tag}
}

// AttachExistingInputFile looks for `<dir>/<tag>`; if present and
// non-empty it attaches an uncompressed file reader. A missing or
// zero-length file is not an error: Reader is simply left nil.
func (c *CategoryListIO) AttachExistingInputFile(dir string) error {
	path := filepath.Join(dir, c.Tag)

	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return nil
	}

	c.Reader = input.NewFileInput(path)

	return nil
}

// AttachExistingFileWriter opens `<dir>/<tag>` read-only, solely so
// WriterLen/IsCached can compare its on-disk size without truncating it.
func (c *CategoryListIO) AttachExistingFileWriter(dir string) error {
	file, err := os.Open(filepath.Join(dir, c.Tag))
	if err != nil {
		return err
	}

	c.Writer = file

	return nil
}

// AttachNewFileWriter creates dir if needed and truncates `<dir>/<tag>` for
// writing.
func (c *CategoryListIO) AttachNewFileWriter(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	file, err := os.Create(filepath.Join(dir, c.Tag))
	if err != nil {
		return err
	}

	c.Writer = file

	return nil
}

// ReaderLen delegates to Reader.Len, returning (0, false, nil) if no reader
// is attached.
func (c *CategoryListIO) ReaderLen(ctx context.Context) (int64, bool, error) {
	if c.Reader == nil {
		return 0, false, nil
	}

	return c.Reader.Len(ctx)
}

// WriterLen stats the attached writer's file, returning (0, false, nil) if
// no writer is attached.
func (c *CategoryListIO) WriterLen() (int64, bool, error) {
	if c.Writer == nil {
		return 0, false, nil
	}

	info, err := c.Writer.Stat()
	if err != nil {
		return 0, false, err
	}

	return info.Size(), true, nil
}

// IsCached reports whether Reader and Writer both report a length and those
// lengths match. Any error, or either length being unavailable, yields
// false.
func (c *CategoryListIO) IsCached(ctx context.Context) bool {
	readerLen, readerOK, err := c.ReaderLen(ctx)
	if err != nil || !readerOK {
		return false
	}

	writerLen, writerOK, err := c.WriterLen()
	if err != nil || !writerOK {
		return false
	}

	return readerLen == writerLen
}

// Close releases the Reader and Writer handles, if attached.
func (c *CategoryListIO) Close() error {
	var err error

	if closer, ok := c.Reader.(interface{ Close() error }); ok {
		err = closer.Close()
	}

	if c.Writer != nil {
		if cerr := c.Writer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}

	return err
}
