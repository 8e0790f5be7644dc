// Code generated by go-enum. Hand-maintained here since code generation
// does not run as part of this build.
package output

import (
	"fmt"
	"strings"
)

const (
	// FormatHostsfile is a Format of type Hostsfile.
	FormatHostsfile Format = iota
	// FormatLua is a Format of type Lua.
	FormatLua
)

var formatNames = map[Format]string{
	FormatHostsfile: "Hostsfile",
	FormatLua:       "Lua",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}

	return fmt.Sprintf("Format(%d)", f)
}

// UnmarshalText implements `encoding.TextUnmarshaler`, which both
// encoding/json and github.com/creasty/defaults use to populate this field
// from a plain string (including a `default:"..."` struct tag value).
func (f *Format) UnmarshalText(data []byte) error {
	name := string(data)

	for format, formatName := range formatNames {
		if strings.EqualFold(formatName, name) {
			*f = format

			return nil
		}
	}

	return fmt.Errorf("unknown output format: %s", name)
}

func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}
