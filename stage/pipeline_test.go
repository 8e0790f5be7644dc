package stage_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	"github.com/listharvest/listharvest/config"
	"github.com/listharvest/listharvest/output"
	"github.com/listharvest/listharvest/stage"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// textServer serves body for every request and is closed on spec cleanup.
func textServer(body string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	DeferCleanup(srv.Close)

	return srv
}

func readFile(path string) string {
	data, err := os.ReadFile(path)
	Expect(err).Should(Succeed())

	return string(data)
}

func buildConfig(tmpDir string, lists []config.FilterList, format output.Format) *config.Config {
	cfg, err := config.WithDefaults[config.Config]()
	Expect(err).Should(Succeed())

	cfg.Lists = lists
	cfg.CacheDir = filepath.Join(tmpDir, "cache")
	cfg.OutputDir = filepath.Join(tmpDir, "output")
	cfg.OutputFormat = format
	cfg.ProcessingConcurrency = 2

	return &cfg
}

// runPipeline drives all four stages to completion, asserting that each
// stage's Run succeeds.
func runPipeline(ctx context.Context, cfg *config.Config) {
	extractStage, err := stage.NewDownload(cfg).Run(ctx)
	Expect(err).Should(Succeed())

	categorizeStage, err := extractStage.Run(ctx)
	Expect(err).Should(Succeed())

	outputStage, err := categorizeStage.Run(ctx)
	Expect(err).Should(Succeed())

	Expect(outputStage.Run(ctx)).Should(Succeed())
}

var _ = Describe("Pipeline", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "listharvest-stage")
		Expect(err).Should(Succeed())
		DeferCleanup(func() { os.RemoveAll(tmpDir) })
	})

	It("extracts, categorizes, and renders a single plain list", func() {
		srv := textServer("0.0.0.0 a.example\n0.0.0.0 b.example\n# comment\n")

		cfg := buildConfig(tmpDir, []config.FilterList{{
			ID:     "ads",
			Source: config.BytesSource{Type: config.BytesSourceTypeHttp, From: srv.URL},
			Tags:   []string{"advertising"},
			Regex:  `^0\.0\.0\.0 (.*)$`,
		}}, output.FormatHostsfile)

		runPipeline(context.Background(), cfg)

		Expect(readFile(filepath.Join(cfg.CacheDir, "extract", "ads"))).Should(Equal("a.example\nb.example\n"))
		Expect(readFile(filepath.Join(cfg.CacheDir, "categorize", "advertising"))).Should(Equal("a.example\nb.example\n"))
		Expect(readFile(filepath.Join(cfg.OutputDir, "advertising"))).
			Should(Equal("0.0.0.0 a.example\n0.0.0.0 b.example\n"))
	})

	It("merges two overlapping lists into one deduplicated, sorted category", func() {
		srv1 := textServer("x\ny\n")
		srv2 := textServer("y\nz\n")

		cfg := buildConfig(tmpDir, []config.FilterList{
			{ID: "l1", Source: config.BytesSource{Type: config.BytesSourceTypeHttp, From: srv1.URL}, Tags: []string{"mal"}, Regex: `(.*)`},
			{ID: "l2", Source: config.BytesSource{Type: config.BytesSourceTypeHttp, From: srv2.URL}, Tags: []string{"mal"}, Regex: `(.*)`},
		}, output.FormatHostsfile)

		runPipeline(context.Background(), cfg)

		Expect(readFile(filepath.Join(cfg.CacheDir, "categorize", "mal"))).Should(Equal("x\ny\nz\n"))
	})

	It("assigns three lists across two overlapping tags", func() {
		srv1 := textServer("one\ntwo\n")
		srv2 := textServer("three\nfour\n")
		srv3 := textServer("five\nsix\n")

		cfg := buildConfig(tmpDir, []config.FilterList{
			{ID: "l1", Source: config.BytesSource{Type: config.BytesSourceTypeHttp, From: srv1.URL}, Tags: []string{"ad"}, Regex: `(.*)`},
			{ID: "l2", Source: config.BytesSource{Type: config.BytesSourceTypeHttp, From: srv2.URL}, Tags: []string{"mal"}, Regex: `(.*)`},
			{ID: "l3", Source: config.BytesSource{Type: config.BytesSourceTypeHttp, From: srv3.URL}, Tags: []string{"ad", "mal"}, Regex: `(.*)`},
		}, output.FormatHostsfile)

		runPipeline(context.Background(), cfg)

		Expect(readFile(filepath.Join(cfg.CacheDir, "categorize", "ad"))).Should(Equal("five\none\nsix\ntwo\n"))
		Expect(readFile(filepath.Join(cfg.CacheDir, "categorize", "mal"))).Should(Equal("five\nfour\nsix\nthree\n"))
	})

	It("renders the Lua output adapter with a well-formed table", func() {
		srv := textServer("a.example\nb.example\n")

		cfg := buildConfig(tmpDir, []config.FilterList{{
			ID:     "ads",
			Source: config.BytesSource{Type: config.BytesSourceTypeHttp, From: srv.URL},
			Tags:   []string{"advertising"},
			Regex:  `(.*)`,
		}}, output.FormatLua)

		runPipeline(context.Background(), cfg)

		Expect(readFile(filepath.Join(cfg.OutputDir, "advertising"))).
			Should(Equal("return {\n  \"a.example\",\n  \"b.example\",\n}"))
	})

	It("writes nothing on a second run against an intact cache", func() {
		srv := textServer("0.0.0.0 a.example\n")

		cfg := buildConfig(tmpDir, []config.FilterList{{
			ID:     "ads",
			Source: config.BytesSource{Type: config.BytesSourceTypeHttp, From: srv.URL},
			Tags:   []string{"advertising"},
			Regex:  `^0\.0\.0\.0 (.*)$`,
		}}, output.FormatHostsfile)

		runPipeline(context.Background(), cfg)

		outputPath := filepath.Join(cfg.OutputDir, "advertising")
		before, err := os.Stat(outputPath)
		Expect(err).Should(Succeed())

		cached := *cfg
		cfg.CachedConfig = &cached

		runPipeline(context.Background(), cfg)

		after, err := os.Stat(outputPath)
		Expect(err).Should(Succeed())
		Expect(after.ModTime()).Should(Equal(before.ModTime()))
	})

	It("re-categorizes and re-renders after a categorize artifact is deleted", func() {
		srv := textServer("0.0.0.0 a.example\n")

		cfg := buildConfig(tmpDir, []config.FilterList{{
			ID:     "ads",
			Source: config.BytesSource{Type: config.BytesSourceTypeHttp, From: srv.URL},
			Tags:   []string{"advertising"},
			Regex:  `^0\.0\.0\.0 (.*)$`,
		}}, output.FormatHostsfile)

		runPipeline(context.Background(), cfg)

		cached := *cfg
		cfg.CachedConfig = &cached

		Expect(os.Remove(filepath.Join(cfg.CacheDir, "categorize", "advertising"))).Should(Succeed())

		runPipeline(context.Background(), cfg)

		Expect(readFile(filepath.Join(cfg.CacheDir, "categorize", "advertising"))).Should(Equal("a.example\n"))
		Expect(readFile(filepath.Join(cfg.OutputDir, "advertising"))).Should(Equal("0.0.0.0 a.example\n"))
	})

	It("re-extracts a list after its extract artifact is deleted", func() {
		srv := textServer("0.0.0.0 a.example\n")

		cfg := buildConfig(tmpDir, []config.FilterList{{
			ID:     "ads",
			Source: config.BytesSource{Type: config.BytesSourceTypeHttp, From: srv.URL},
			Tags:   []string{"advertising"},
			Regex:  `^0\.0\.0\.0 (.*)$`,
		}}, output.FormatHostsfile)

		runPipeline(context.Background(), cfg)

		cached := *cfg
		cfg.CachedConfig = &cached

		Expect(os.Remove(filepath.Join(cfg.CacheDir, "extract", "ads"))).Should(Succeed())

		runPipeline(context.Background(), cfg)

		Expect(readFile(filepath.Join(cfg.CacheDir, "extract", "ads"))).Should(Equal("a.example\n"))
	})

	It("stops cleanly without writing output once the context is cancelled", func() {
		blocked := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			<-blocked
		}))
		DeferCleanup(srv.Close)
		DeferCleanup(func() { close(blocked) })

		cfg := buildConfig(tmpDir, []config.FilterList{{
			ID:     "slow",
			Source: config.BytesSource{Type: config.BytesSourceTypeHttp, From: srv.URL},
			Tags:   []string{"advertising"},
			Regex:  `(.*)`,
		}}, output.FormatHostsfile)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := stage.NewDownload(cfg).Run(ctx)
		Expect(err).Should(HaveOccurred())

		Expect(filepath.Join(cfg.OutputDir, "advertising")).ShouldNot(BeAnExistingFile())
	})

	It("isolates a failing list and completes the pipeline for the others", func() {
		good := textServer("a.example\n")
		bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		DeferCleanup(bad.Close)

		cfg := buildConfig(tmpDir, []config.FilterList{
			{ID: "good", Source: config.BytesSource{Type: config.BytesSourceTypeHttp, From: good.URL}, Tags: []string{"ok"}, Regex: `(.*)`},
			{ID: "bad", Source: config.BytesSource{Type: config.BytesSourceTypeHttp, From: bad.URL}, Tags: []string{"broken"}, Regex: `(.*)`},
		}, output.FormatHostsfile)
		cfg.Downloader.Attempts = 1

		runPipeline(context.Background(), cfg)

		Expect(readFile(filepath.Join(cfg.OutputDir, "ok"))).Should(Equal("0.0.0.0 a.example\n"))
	})
})
