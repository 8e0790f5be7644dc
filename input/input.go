// Package input provides a uniform chunked-reading abstraction over the
// handful of shapes a FilterList's source bytes can take: a remote HTTP
// body, a plain local file, a gzip'd file, or a single entry inside a
// gzip'd tar archive.
package input

import "context"

// Input is a resettable, chunked byte source. For file-backed variants a
// chunk is one LF-terminated line; for URLInput a chunk is an
// implementation-defined slice of the HTTP response body.
type Input interface {
	// Chunk returns the next chunk, or io.EOF once the source is exhausted.
	Chunk(ctx context.Context) ([]byte, error)

	// Reset restarts the input from the beginning: re-issuing the GET for
	// URLInput, re-opening the file for the file-backed variants.
	Reset(ctx context.Context) error

	// Len returns the total byte length of the source, when cheaply
	// obtainable (HEAD content-length for URLInput, file size for the
	// file-backed variants), and whether it could be determined at all.
	Len(ctx context.Context) (int64, bool, error)
}

// maxLineBytes is the hard cap on a single line read from a compressed
// source; exceeding it is a failure rather than a silent truncation.
const maxLineBytes = 1024
