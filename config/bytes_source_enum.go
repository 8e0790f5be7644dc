// Code generated by go-enum. Hand-maintained here since code generation
// does not run as part of this build.
package config

import (
	"fmt"
)

const (
	// BytesSourceTypeText is a BytesSourceType of type text.
	// Inline block.
	BytesSourceTypeText BytesSourceType = iota + 1
	// BytesSourceTypeHttp is a BytesSourceType of type http.
	// HTTP(S).
	BytesSourceTypeHttp
	// BytesSourceTypeFile is a BytesSourceType of type file.
	// Local file.
	BytesSourceTypeFile
)

var bytesSourceTypeNames = map[BytesSourceType]string{
	BytesSourceTypeText: "text",
	BytesSourceTypeHttp: "http",
	BytesSourceTypeFile: "file",
}

func (s BytesSourceType) String() string {
	if name, ok := bytesSourceTypeNames[s]; ok {
		return name
	}

	return fmt.Sprintf("BytesSourceType(%d)", s)
}

func (s BytesSourceType) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
