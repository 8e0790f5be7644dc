// Package listio pairs a FilterList or tag with the reader and writer
// handles a pipeline stage needs to process it, plus the cache-check logic
// shared by every stage: two artifacts are considered equivalent when their
// lengths match.
package listio

import (
	"context"
	"os"
	"path/filepath"

	"github.com/listharvest/listharvest/config"
	"github.com/listharvest/listharvest/input"
	"github.com/listharvest/listharvest/lists"
)

// FilterListIO owns the (at most one) reader and (at most one) writer a
// stage uses to process a single FilterList. A value is moved into the
// worker goroutine's closure when processing starts and dropped when it
// ends; there is no locking because no other goroutine touches it.
type FilterListIO struct {
	List config.FilterList

	Reader input.Input
	Writer *os.File
}

// NewFilterListIO returns a FilterListIO for list, with no reader or writer
// attached yet.
func NewFilterListIO(list config.FilterList) *FilterListIO {
	return &FilterListIO{List: list}
}

// AttachSourceReader sets Reader to the Input matching the list's Source
// type: an HTTP body for BytesSourceTypeHttp, a local file for
// BytesSourceTypeFile, or the inline text itself for BytesSourceTypeText.
func (f *FilterListIO) AttachSourceReader(downloader lists.FileDownloader) {
	switch f.List.Source.Type {
	case config.BytesSourceTypeFile:
		f.Reader = input.NewFileInput(f.List.Source.From)
	case config.BytesSourceTypeText:
		f.Reader = input.NewTextInput(f.List.Source.From)
	case config.BytesSourceTypeHttp:
		fallthrough
	default:
		f.Reader = input.NewURLInput(f.List.Source.From, downloader)
	}
}

// AttachExistingInputFile looks for `<dir>/<id>`; if present and non-empty
// it attaches a reader honoring compression. A missing or zero-length file
// is not an error: Reader is simply left nil.
func (f *FilterListIO) AttachExistingInputFile(dir string, compression config.Compression) error {
	path := filepath.Join(dir, f.List.ID)

	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return nil
	}

	switch compression.Type {
	case config.CompressionTypeGz:
		f.Reader = input.NewGzFileInput(path)
	case config.CompressionTypeTargz:
		f.Reader = input.NewTarGzFileInput(path, compression.TarGzEntry)
	case config.CompressionTypeNone:
		fallthrough
	default:
		f.Reader = input.NewFileInput(path)
	}

	return nil
}

// AttachExistingFileWriter opens `<dir>/<id>` read-only, solely so
// WriterLen/IsCached can compare its on-disk size without truncating it.
func (f *FilterListIO) AttachExistingFileWriter(dir string) error {
	file, err := os.Open(filepath.Join(dir, f.List.ID))
	if err != nil {
		return err
	}

	f.Writer = file

	return nil
}

// AttachNewFileWriter creates dir if needed and truncates `<dir>/<id>` for
// writing.
func (f *FilterListIO) AttachNewFileWriter(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	file, err := os.Create(filepath.Join(dir, f.List.ID))
	if err != nil {
		return err
	}

	f.Writer = file

	return nil
}

// ReaderLen delegates to Reader.Len, returning (0, false, nil) if no reader
// is attached.
func (f *FilterListIO) ReaderLen(ctx context.Context) (int64, bool, error) {
	if f.Reader == nil {
		return 0, false, nil
	}

	return f.Reader.Len(ctx)
}

// WriterLen stats the attached writer's file, returning (0, false, nil) if
// no writer is attached.
func (f *FilterListIO) WriterLen() (int64, bool, error) {
	if f.Writer == nil {
		return 0, false, nil
	}

	info, err := f.Writer.Stat()
	if err != nil {
		return 0, false, err
	}

	return info.Size(), true, nil
}

// IsCached reports whether Reader and Writer both report a length and those
// lengths match. Any error, or either length being unavailable, yields
// false: not-cached is the safe default.
func (f *FilterListIO) IsCached(ctx context.Context) bool {
	readerLen, readerOK, err := f.ReaderLen(ctx)
	if err != nil || !readerOK {
		return false
	}

	writerLen, writerOK, err := f.WriterLen()
	if err != nil || !writerOK {
		return false
	}

	return readerLen == writerLen
}

// Close releases the Reader and Writer handles, if attached.
func (f *FilterListIO) Close() error {
	var err error

	if closer, ok := f.Reader.(interface{ Close() error }); ok {
		err = closer.Close()
	}

	if f.Writer != nil {
		if cerr := f.Writer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}

	return err
}
