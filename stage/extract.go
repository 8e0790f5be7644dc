package stage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/listharvest/listharvest/engine"
	"github.com/listharvest/listharvest/evt"
	"github.com/listharvest/listharvest/listio"
	"github.com/listharvest/listharvest/lists/parsers"
	"github.com/listharvest/listharvest/log"
)

var extractLog = log.PrefixedLog("extract")

// Extract reads each FilterList's downloaded bytes and writes one captured
// token per line to `<cache_dir>/extract/<id>`.
type Extract struct {
	ctrl   *controller
	cached map[string]struct{}
}

func newExtract(ctrl *controller, cached map[string]struct{}) *Extract {
	return &Extract{ctrl: ctrl, cached: cached}
}

// Run extracts every list not already cached and returns the Categorize
// stage, carrying forward the (possibly shrunk) cached-list set.
func (e *Extract) Run(ctx context.Context) (*Categorize, error) {
	downloadDir := e.ctrl.downloadDir()
	extractDir := e.ctrl.extractDir()

	type job struct {
		fio *listio.FilterListIO
		re  *regexp.Regexp
	}

	var enqueued []job

	for _, list := range e.ctrl.cfg.Lists {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		_, wasCached := e.cached[list.ID]

		if wasCached {
			if pathExists(filepath.Join(downloadDir, list.ID)) && pathExists(filepath.Join(extractDir, list.ID)) {
				extractLog.WithField("list", list.ID).Debug("extract is up to date, skipping")

				continue
			}

			delete(e.cached, list.ID)
		}

		re, err := regexp.Compile(list.Regex)
		if err != nil {
			extractLog.Errorf("List %s - %v", list.ID, err)

			continue
		}

		fio := listio.NewFilterListIO(list)
		if err := fio.AttachExistingInputFile(downloadDir, list.Compression); err != nil {
			return nil, fmt.Errorf("can't open download for list %s: %w", list.ID, err)
		}

		if err := fio.AttachNewFileWriter(extractDir); err != nil {
			return nil, fmt.Errorf("can't prepare extract for list %s: %w", list.ID, err)
		}

		enqueued = append(enqueued, job{fio: fio, re: re})
	}

	err := engine.Run(ctx, enqueued, e.ctrl.cfg.ProcessingConcurrency, func(ctx context.Context, j job) error {
		return extractOne(ctx, j.fio, j.re)
	})

	for _, j := range enqueued {
		_ = j.fio.Close()
	}

	// Per-list failures are isolated; only cancellation stops the pipeline.
	if err != nil && ctx.Err() != nil {
		return nil, err
	}

	return newCategorize(e.ctrl, e.cached), nil
}

// extractOne runs list's compiled regex against each line of fio's reader,
// appending capture group 1 (plus a trailing LF) to fio's writer whenever
// it matches. Chunks that fail UTF-8 validation are warned about and
// skipped rather than failing the list.
func extractOne(ctx context.Context, fio *listio.FilterListIO, re *regexp.Regexp) error {
	if fio.Reader == nil {
		evt.Bus().Publish(evt.ListExtracted, fio.List.ID, 0)

		return nil
	}

	parser := tolerantChunks(fio.Reader, func(err error) {
		extractLog.WithField("list", fio.List.ID).Warnf("skipping chunk: %v", err)
	})

	tokens := 0

	err := parsers.ForEach(ctx, parser, func(chunk []byte) error {
		token, ok := regexCapture(re, chunk)
		if !ok {
			return nil
		}

		if _, err := fio.Writer.Write(token); err != nil {
			return fmt.Errorf("can't write extract for list %s: %w", fio.List.ID, err)
		}

		tokens++

		return nil
	})
	if err != nil {
		return fmt.Errorf("can't extract list %s: %w", fio.List.ID, err)
	}

	evt.Bus().Publish(evt.ListExtracted, fio.List.ID, tokens)

	return nil
}

// regexCapture runs re against an already UTF-8-validated chunk, with the
// line ending stripped so `$` anchors where a per-line regex expects it,
// and returns capture group 1 with a trailing LF appended. It reports
// false when the regex doesn't match.
func regexCapture(re *regexp.Regexp, chunk []byte) ([]byte, bool) {
	m := re.FindSubmatch(trimLF(chunk))
	if len(m) < 2 {
		return nil, false
	}

	token := make([]byte, 0, len(m[1])+1)
	token = append(token, m[1]...)
	token = append(token, '\n')

	return token, true
}

func pathExists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}
