package input_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/listharvest/listharvest/config"
	"github.com/listharvest/listharvest/input"
	"github.com/listharvest/listharvest/lists"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("URLInput", func() {
	var downloader lists.FileDownloader

	BeforeEach(func() {
		cfg, err := config.WithDefaults[config.Downloader]()
		Expect(err).Should(Succeed())
		cfg.Timeout = config.Duration(2 * time.Second)
		downloader = lists.NewDownloader(cfg, nil)
	})

	It("streams the response body", func() {
		server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			_, _ = rw.Write([]byte("a.example\nb.example\n"))
		}))
		DeferCleanup(server.Close)

		in := input.NewURLInput(server.URL, downloader)
		DeferCleanup(in.Close)

		chunk, err := in.Chunk(context.Background())
		Expect(err).Should(Succeed())
		Expect(string(chunk)).Should(Equal("a.example\nb.example\n"))

		_, err = in.Chunk(context.Background())
		Expect(err).Should(MatchError(io.EOF))
	})

	It("reports the Content-Length via HEAD", func() {
		server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			rw.Header().Set("Content-Length", "20")
			if req.Method == http.MethodHead {
				return
			}
			_, _ = rw.Write([]byte("a.example\nb.example\n"))
		}))
		DeferCleanup(server.Close)

		in := input.NewURLInput(server.URL, downloader)
		DeferCleanup(in.Close)

		size, ok, err := in.Len(context.Background())
		Expect(err).Should(Succeed())
		Expect(ok).Should(BeTrue())
		Expect(size).Should(Equal(int64(20)))
	})
})
