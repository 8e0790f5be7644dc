// Package output renders a merged category list into one of the supported
// on-disk formats.
package output

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Format names a supported rendering of a category list.
// ENUM(
// Hostsfile
// Lua
// )
type Format uint8

// Adapter transforms lines read from a category list reader into the bytes
// of a finished output file, honoring cancellation between lines.
type Adapter interface {
	// Render consumes r line by line until EOF, writing the formatted
	// result to w. It checks ctx between lines and returns ctx.Err() if
	// cancelled, leaving whatever has already been written to w in place.
	Render(ctx context.Context, r io.Reader, w io.Writer) error
}

// New returns the Adapter for the given Format.
func New(format Format) (Adapter, error) {
	switch format {
	case FormatHostsfile:
		return Hostsfile{}, nil
	case FormatLua:
		return Lua{}, nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
}

// Hostsfile renders each line as `0.0.0.0 X\n`, skipping blank lines.
type Hostsfile struct{}

func (Hostsfile) Render(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if _, err := fmt.Fprintf(w, "0.0.0.0 %s\n", line); err != nil {
			return fmt.Errorf("can't write hostsfile line: %w", err)
		}
	}

	return scanner.Err()
}

// Lua renders the category list as a Lua table literal:
//
//	return {
//	  "a.example",
//	  "b.example",
//	}
//
// Header emission is tracked by a flag: the `return {\n` prefix is written
// with the first surviving line, or at clean end-of-stream when no line was
// seen, so a render cancelled before any chunk leaves the writer untouched
// while an empty category list still produces a syntactically valid (empty)
// Lua table.
type Lua struct{}

func (Lua) Render(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	headerWritten := false

	writeHeader := func() error {
		if _, err := io.WriteString(w, "return {\n"); err != nil {
			return fmt.Errorf("can't write lua header: %w", err)
		}

		headerWritten = true

		return nil
	}

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if !headerWritten {
			if err := writeHeader(); err != nil {
				return err
			}
		}

		if _, err := fmt.Fprintf(w, "  %q,\n", line); err != nil {
			return fmt.Errorf("can't write lua line: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}

	if !headerWritten {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := writeHeader(); err != nil {
			return err
		}
	}

	if _, err := io.WriteString(w, "}"); err != nil {
		return fmt.Errorf("can't write lua footer: %w", err)
	}

	return nil
}
