// Code generated by go-enum. Hand-maintained here since code generation
// does not run as part of this build.
package log

import (
	"fmt"
	"strings"
)

const (
	// LevelInfo is a Level of type info.
	LevelInfo Level = iota
	// LevelTrace is a Level of type trace.
	LevelTrace
	// LevelDebug is a Level of type debug.
	LevelDebug
	// LevelWarn is a Level of type warn.
	LevelWarn
	// LevelError is a Level of type error.
	LevelError
	// LevelFatal is a Level of type fatal.
	LevelFatal
)

var levelNames = map[Level]string{
	LevelInfo:  "info",
	LevelTrace: "trace",
	LevelDebug: "debug",
	LevelWarn:  "warn",
	LevelError: "error",
	LevelFatal: "fatal",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}

	return fmt.Sprintf("Level(%d)", l)
}

// UnmarshalText implements `encoding.TextUnmarshaler`, which both
// encoding/json and github.com/creasty/defaults use to populate this field
// from a plain string (including a `default:"..."` struct tag value).
func (l *Level) UnmarshalText(data []byte) error {
	name := strings.ToLower(string(data))

	for level, levelName := range levelNames {
		if levelName == name {
			*l = level

			return nil
		}
	}

	return fmt.Errorf("unknown log level: %s", name)
}

func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}
