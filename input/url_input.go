package input

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/listharvest/listharvest/lists"
)

// URLInput wraps a lists.FileDownloader to expose a remote HTTP body as a
// chunked Input; the GET itself is deferred until the first Chunk call.
type URLInput struct {
	url        string
	downloader lists.FileDownloader

	body   io.ReadCloser
	reader *bufio.Reader
}

// NewURLInput returns an Input streaming the body fetched from url via
// downloader.
func NewURLInput(url string, downloader lists.FileDownloader) *URLInput {
	return &URLInput{url: url, downloader: downloader}
}

func (u *URLInput) ensureOpen(ctx context.Context) error {
	if u.reader != nil {
		return nil
	}

	body, err := u.downloader.DownloadFile(ctx, u.url)
	if err != nil {
		return err
	}

	u.body = body
	u.reader = bufio.NewReaderSize(body, 64*1024)

	return nil
}

// Chunk returns up to 64KiB of the response body per call; callers that
// need line-oriented semantics should route URLInput bytes through a file
// on disk first, as the Download stage does.
func (u *URLInput) Chunk(ctx context.Context) ([]byte, error) {
	if err := u.ensureOpen(ctx); err != nil {
		return nil, err
	}

	buf := make([]byte, 64*1024)

	n, err := u.reader.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}

	return nil, err
}

func (u *URLInput) Reset(ctx context.Context) error {
	if u.body != nil {
		_ = u.body.Close()
		u.body = nil
		u.reader = nil
	}

	return u.ensureOpen(ctx)
}

// Len issues a HEAD request and returns the response's Content-Length, if
// present.
func (u *URLInput) Len(ctx context.Context) (int64, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u.url, nil)
	if err != nil {
		return 0, false, fmt.Errorf("can't build HEAD request for %s: %w", u.url, err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, false, fmt.Errorf("HEAD request to %s failed: %w", u.url, err)
	}
	defer resp.Body.Close()

	if resp.ContentLength < 0 {
		return 0, false, nil
	}

	return resp.ContentLength, true, nil
}

// Close releases the underlying response body, if open.
func (u *URLInput) Close() error {
	if u.body == nil {
		return nil
	}

	err := u.body.Close()
	u.body = nil
	u.reader = nil

	return err
}
