package util

import "runtime"

// Version and BuildTime are injected at build time via -ldflags
// (e.g. -X github.com/listharvest/listharvest/util.Version=1.2.3); they
// default to "undefined" for a plain `go build`.
//
//nolint:gochecknoglobals
var (
	Version   = "undefined"
	BuildTime = "undefined"
)

// Architecture reports the runtime's GOOS/GOARCH pair, for `version`
// command output.
var Architecture = runtime.GOOS + "/" + runtime.GOARCH //nolint:gochecknoglobals
