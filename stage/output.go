package stage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/listharvest/listharvest/engine"
	"github.com/listharvest/listharvest/evt"
	"github.com/listharvest/listharvest/listio"
	"github.com/listharvest/listharvest/log"
	"github.com/listharvest/listharvest/output"
)

var outputLog = log.PrefixedLog("output")

// Output is the pipeline's terminal stage: it renders each tag's merged
// category list into the configured output.Format at
// `<output_dir>/<tag>`.
type Output struct {
	ctrl    *controller
	cached  map[string]struct{}
	adapter output.Adapter
}

func newOutput(ctrl *controller, cached map[string]struct{}) (*Output, error) {
	adapter, err := output.New(ctrl.cfg.OutputFormat)
	if err != nil {
		return nil, fmt.Errorf("can't build output adapter: %w", err)
	}

	return &Output{ctrl: ctrl, cached: cached, adapter: adapter}, nil
}

// Run renders every tag not already cached. There is no further stage:
// Run returns once every task has completed or failed.
func (o *Output) Run(ctx context.Context) error {
	outputDir := o.ctrl.outputDir()

	var enqueued []*listio.CategoryListIO

	for _, tag := range o.ctrl.cfg.Tags() {
		if err := ctx.Err(); err != nil {
			return err
		}

		cio := listio.NewCategoryListIO(tag)

		_, tagCached := o.cached[tag]
		if tagCached && pathExists(filepath.Join(outputDir, tag)) {
			outputLog.WithField("tag", tag).Debug("output is up to date, skipping")
			_ = cio.Close()

			continue
		}

		if err := cio.AttachNewFileWriter(outputDir); err != nil {
			return fmt.Errorf("can't prepare output for tag %s: %w", tag, err)
		}

		enqueued = append(enqueued, cio)
	}

	err := engine.Run(ctx, enqueued, o.ctrl.cfg.ProcessingConcurrency, func(ctx context.Context, cio *listio.CategoryListIO) error {
		return o.renderOne(ctx, cio)
	})

	for _, cio := range enqueued {
		_ = cio.Close()
	}

	// Per-tag failures are isolated; only cancellation is reported upward.
	if err != nil && ctx.Err() != nil {
		return err
	}

	return nil
}

// renderOne streams cio's merged category list through the configured
// output.Adapter. The Adapter contract takes a plain io.Reader (it scans
// lines itself), so Output opens the categorize artifact directly rather
// than going through the chunked input.Input abstraction the other stages
// use. A tag with no categorize artifact (nothing was ever merged for it)
// still produces a (possibly empty) output file, matching the Lua
// adapter's documented empty-table behavior.
func (o *Output) renderOne(ctx context.Context, cio *listio.CategoryListIO) error {
	var reader = io.Reader(strings.NewReader(""))

	path := filepath.Join(o.ctrl.categorizeDir(), cio.Tag)
	if f, err := os.Open(path); err == nil {
		defer f.Close()

		reader = f
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("can't open category %s: %w", cio.Tag, err)
	}

	if err := o.adapter.Render(ctx, reader, cio.Writer); err != nil {
		return fmt.Errorf("can't render output for tag %s: %w", cio.Tag, err)
	}

	evt.Bus().Publish(evt.OutputWritten, cio.Tag, o.ctrl.cfg.OutputFormat.String())

	return nil
}
