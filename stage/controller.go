// Package stage implements the four sequential pipeline stages — Download,
// Extract, Categorize, Output — as distinct Go types linked by Run methods,
// each returning the next stage's type so the compiler enforces run order.
package stage

import (
	"path/filepath"

	"github.com/listharvest/listharvest/config"
	"github.com/listharvest/listharvest/lists"
)

const (
	downloadDirName   = "download"
	extractDirName    = "extract"
	categorizeDirName = "categorize"
)

// controller carries the configuration and collaborators shared by every
// stage.
type controller struct {
	cfg        *config.Config
	downloader lists.FileDownloader
}

func newController(cfg *config.Config) *controller {
	return &controller{
		cfg:        cfg,
		downloader: lists.NewDownloader(cfg.Downloader, nil),
	}
}

func (c *controller) downloadDir() string {
	return filepath.Join(c.cfg.CacheDir, downloadDirName)
}

func (c *controller) extractDir() string {
	return filepath.Join(c.cfg.CacheDir, extractDirName)
}

func (c *controller) categorizeDir() string {
	return filepath.Join(c.cfg.CacheDir, categorizeDirName)
}

func (c *controller) outputDir() string {
	return c.cfg.OutputDir
}
