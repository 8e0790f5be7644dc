package stage

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"golang.org/x/exp/slices"

	"github.com/listharvest/listharvest/config"
	"github.com/listharvest/listharvest/engine"
	"github.com/listharvest/listharvest/evt"
	"github.com/listharvest/listharvest/listio"
	"github.com/listharvest/listharvest/lists/parsers"
	"github.com/listharvest/listharvest/log"
)

var categorizeLog = log.PrefixedLog("categorize")

// Categorize merges every FilterList's extracted tokens into one
// deduplicated, sorted file per tag at `<cache_dir>/categorize/<tag>`.
//
// Dedup goes through a map since the merge runs once per tag over data
// that already fits in memory (extracted tokens, not raw list bytes); the
// resulting slice is ordered with golang.org/x/exp/slices.
type Categorize struct {
	ctrl   *controller
	cached map[string]struct{}
}

func newCategorize(ctrl *controller, cached map[string]struct{}) *Categorize {
	return &Categorize{ctrl: ctrl, cached: cached}
}

// Run merges every tag's contributing extracts and returns the Output
// stage.
func (c *Categorize) Run(ctx context.Context) (*Output, error) {
	extractDir := c.ctrl.extractDir()
	categorizeDir := c.ctrl.categorizeDir()

	cachedTags := make(map[string]struct{})

	var enqueued []*listio.CategoryListIO

	for _, tag := range c.ctrl.cfg.Tags() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		contributors := c.ctrl.cfg.ListsForTag(tag)

		if c.tagUnchanged(contributors, categorizeDir, tag) {
			categorizeLog.WithField("tag", tag).Debug("category is up to date, skipping")
			cachedTags[tag] = struct{}{}

			continue
		}

		cio := listio.NewCategoryListIO(tag)

		for _, list := range contributors {
			fio := listio.NewFilterListIO(list)
			if err := fio.AttachExistingInputFile(extractDir, config.Compression{}); err != nil {
				return nil, fmt.Errorf("can't open extract for list %s: %w", list.ID, err)
			}

			cio.Contributors = append(cio.Contributors, fio)
		}

		if err := cio.AttachNewFileWriter(categorizeDir); err != nil {
			return nil, fmt.Errorf("can't prepare category %s: %w", tag, err)
		}

		enqueued = append(enqueued, cio)
	}

	err := engine.Run(ctx, enqueued, c.ctrl.cfg.ProcessingConcurrency, categorizeOne)

	for _, cio := range enqueued {
		for _, fio := range cio.Contributors {
			_ = fio.Close()
		}

		_ = cio.Close()
	}

	// Per-tag failures are isolated; only cancellation stops the pipeline.
	if err != nil && ctx.Err() != nil {
		return nil, err
	}

	return newOutput(c.ctrl, cachedTags)
}

// tagUnchanged reports whether every list contributing to tag was left
// unchanged by Extract, the previous run's cached config assigned the
// same number of lists to this tag, and `categorize/<tag>` already
// exists.
func (c *Categorize) tagUnchanged(contributors []config.FilterList, categorizeDir, tag string) bool {
	if !pathExists(filepath.Join(categorizeDir, tag)) {
		return false
	}

	if cached := c.ctrl.cfg.CachedConfig; cached == nil || len(cached.ListsForTag(tag)) != len(contributors) {
		return false
	}

	for _, list := range contributors {
		if _, ok := c.cached[list.ID]; !ok {
			return false
		}
	}

	return true
}

// categorizeOne reads every contributor's extracted tokens, dedupes and
// sorts them, and writes one token per line to cio's writer.
func categorizeOne(ctx context.Context, cio *listio.CategoryListIO) error {
	seen := make(map[string]struct{})

	for _, fio := range cio.Contributors {
		if err := readTokens(ctx, fio, seen); err != nil {
			return fmt.Errorf("can't read extract contributor %s for tag %s: %w", fio.List.ID, cio.Tag, err)
		}
	}

	tokens := make([]string, 0, len(seen))
	for token := range seen {
		tokens = append(tokens, token)
	}

	slices.Sort(tokens)

	for _, token := range tokens {
		if _, err := fmt.Fprintln(cio.Writer, token); err != nil {
			return fmt.Errorf("can't write category %s: %w", cio.Tag, err)
		}
	}

	evt.Bus().Publish(evt.CategoryUpdated, cio.Tag, len(tokens))

	return nil
}

// readTokens reads every line fio's reader yields into seen, trimming
// surrounding whitespace and skipping blank lines. Lines that fail UTF-8
// validation are warned about and skipped rather than failing the whole
// category.
func readTokens(ctx context.Context, fio *listio.FilterListIO, seen map[string]struct{}) error {
	if fio.Reader == nil {
		return nil
	}

	parser := tolerantChunks(fio.Reader, func(err error) {
		categorizeLog.WithField("list", fio.List.ID).Warnf("skipping line: %v", err)
	})

	return parsers.ForEach(ctx, parser, func(line []byte) error {
		token := bytes.TrimSpace(line)
		if len(token) == 0 {
			return nil
		}

		seen[string(token)] = struct{}{}

		return nil
	})
}

// trimLF strips a single trailing LF (or CRLF) so per-line regexes see the
// line the way its author wrote it.
func trimLF(line []byte) []byte {
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
	}

	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}

	return line
}
