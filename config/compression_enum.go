// Code generated by go-enum. Hand-maintained here since code generation
// does not run as part of this build.
package config

import (
	"fmt"
)

const (
	// CompressionTypeNone is a CompressionType of type none.
	// uncompressed
	CompressionTypeNone CompressionType = iota
	// CompressionTypeGz is a CompressionType of type gz.
	// gzip
	CompressionTypeGz
	// CompressionTypeTargz is a CompressionType of type targz.
	// gzip'd tar archive, a single entry of which is selected
	CompressionTypeTargz
)

var compressionTypeNames = map[CompressionType]string{
	CompressionTypeNone:  "none",
	CompressionTypeGz:    "gz",
	CompressionTypeTargz: "targz",
}

func (c CompressionType) String() string {
	if name, ok := compressionTypeNames[c]; ok {
		return name
	}

	return fmt.Sprintf("CompressionType(%d)", c)
}
