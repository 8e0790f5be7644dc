package stage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/listharvest/listharvest/config"
	"github.com/listharvest/listharvest/engine"
	"github.com/listharvest/listharvest/evt"
	"github.com/listharvest/listharvest/listio"
	"github.com/listharvest/listharvest/log"
)

var downloadLog = log.PrefixedLog("download")

// Download is the pipeline's entry stage: it fetches each configured
// FilterList's raw bytes into `<cache_dir>/download/<id>`, skipping any
// list whose remote length still matches what's already on disk.
type Download struct {
	ctrl   *controller
	cached map[string]struct{}
}

// NewDownload builds the Download stage for cfg, with an empty cached-list
// set (nothing is known cached until this stage runs).
func NewDownload(cfg *config.Config) *Download {
	return &Download{
		ctrl:   newController(cfg),
		cached: make(map[string]struct{}),
	}
}

// Run fetches every list not already cached and returns the Extract stage,
// carrying forward the set of list ids this run determined were unchanged.
func (d *Download) Run(ctx context.Context) (*Extract, error) {
	dir := d.ctrl.downloadDir()

	var enqueued []*listio.FilterListIO

	for _, list := range d.ctrl.cfg.Lists {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fio := listio.NewFilterListIO(list)
		fio.AttachSourceReader(d.ctrl.downloader)

		if err := fio.AttachExistingFileWriter(dir); err == nil && fio.IsCached(ctx) {
			d.cached[list.ID] = struct{}{}
			downloadLog.WithField("list", list.ID).Debug("download is up to date, skipping")
			_ = fio.Close()

			continue
		}

		_ = fio.Close()

		fio = listio.NewFilterListIO(list)
		fio.AttachSourceReader(d.ctrl.downloader)

		if err := fio.AttachNewFileWriter(dir); err != nil {
			return nil, fmt.Errorf("can't prepare download for list %s: %w", list.ID, err)
		}

		enqueued = append(enqueued, fio)
	}

	err := engine.Run(ctx, enqueued, d.ctrl.cfg.ProcessingConcurrency, downloadOne)

	for _, fio := range enqueued {
		_ = fio.Close()
	}

	// Per-list failures are isolated: the engine has already logged them and
	// the other lists' artifacts are intact. Only cancellation stops the
	// pipeline here.
	if err != nil && ctx.Err() != nil {
		return nil, err
	}

	return newExtract(d.ctrl, d.cached), nil
}

// downloadOne copies fio's reader to its writer unchanged until
// end-of-stream.
func downloadOne(ctx context.Context, fio *listio.FilterListIO) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		chunk, err := fio.Reader.Chunk(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				evt.Bus().Publish(evt.ListDownloaded, fio.List.ID)

				return nil
			}

			return fmt.Errorf("can't download list %s: %w", fio.List.ID, err)
		}

		if _, err := fio.Writer.Write(chunk); err != nil {
			return fmt.Errorf("can't write download for list %s: %w", fio.List.ID, err)
		}
	}
}
