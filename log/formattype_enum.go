// Code generated by go-enum. Hand-maintained here since code generation
// does not run as part of this build.
package log

import (
	"fmt"
	"strings"
)

const (
	// FormatTypeText is a FormatType of type text.
	// logging as text
	FormatTypeText FormatType = iota
	// FormatTypeJson is a FormatType of type json.
	// JSON format
	FormatTypeJson
)

var formatTypeNames = map[FormatType]string{
	FormatTypeText: "text",
	FormatTypeJson: "json",
}

func (f FormatType) String() string {
	if name, ok := formatTypeNames[f]; ok {
		return name
	}

	return fmt.Sprintf("FormatType(%d)", f)
}

// UnmarshalText implements `encoding.TextUnmarshaler`, which both
// encoding/json and github.com/creasty/defaults use to populate this field
// from a plain string (including a `default:"..."` struct tag value).
func (f *FormatType) UnmarshalText(data []byte) error {
	name := strings.ToLower(string(data))

	for format, formatName := range formatTypeNames {
		if formatName == name {
			*f = format

			return nil
		}
	}

	return fmt.Errorf("unknown log format: %s", name)
}

func (f FormatType) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}
