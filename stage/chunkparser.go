package stage

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/listharvest/listharvest/input"
	"github.com/listharvest/listharvest/lists/parsers"
)

// errInvalidUTF8 marks a chunk that failed decoding, as distinct from a
// parsers.NonResumableError: the caller tolerates it (warn and move on)
// rather than aborting the task.
var errInvalidUTF8 = errors.New("chunk is not valid UTF-8")

// chunkSeriesParser adapts an input.Input's Chunk cursor to
// parsers.SeriesParser, so stages can lean on parsers.AllowErrors rather
// than hand-rolling decode-failure tolerance at each call site. Any error
// Chunk returns, including io.EOF, is non-resumable: the Input's own
// read failures aren't something a stage can skip past.
type chunkSeriesParser struct {
	in  input.Input
	pos int
}

func newChunkSeriesParser(in input.Input) parsers.SeriesParser[[]byte] {
	return &chunkSeriesParser{in: in}
}

func (p *chunkSeriesParser) Position() string {
	return fmt.Sprintf("chunk %d", p.pos)
}

func (p *chunkSeriesParser) Next(ctx context.Context) ([]byte, error) {
	p.pos++

	chunk, err := p.in.Chunk(ctx)
	if err != nil {
		return nil, parsers.NewNonResumableError(err)
	}

	return chunk, nil
}

// validateUTF8 rejects chunks that aren't valid UTF-8 with a resumable
// error, so parsers.AllowErrors can warn and keep going instead of
// failing the whole list.
func validateUTF8(chunk []byte) ([]byte, error) {
	if !utf8.Valid(chunk) {
		return nil, errInvalidUTF8
	}

	return chunk, nil
}

// tolerantChunks returns a parser over in's chunks that skips (with a
// warning via onWarn) any chunk failing UTF-8 validation instead of
// terminating the list.
func tolerantChunks(in input.Input, onWarn func(error)) parsers.SeriesParser[[]byte] {
	filtered := parsers.AllowErrors(parsers.TryAdapt(newChunkSeriesParser(in), validateUTF8), parsers.NoErrorLimit)
	filtered.OnErr(onWarn)

	return filtered
}
