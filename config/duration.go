package config

import (
	"strconv"
	"time"

	"github.com/hako/durafmt"
	"github.com/listharvest/listharvest/log"
)

// Duration wraps time.Duration with text (un)marshalling and human-readable
// formatting, the way every *Config struct in this module expresses
// timeouts, cooldowns and refresh periods.
type Duration time.Duration

// ToDuration casts back to a stdlib time.Duration.
func (d Duration) ToDuration() time.Duration {
	return time.Duration(d)
}

// IsAboveZero reports whether the duration is set to a positive value.
func (d Duration) IsAboveZero() bool {
	return d > 0
}

// SecondsU32 returns the duration in whole seconds.
func (d Duration) SecondsU32() uint32 {
	return uint32(d.ToDuration().Seconds())
}

func (d Duration) String() string {
	return durafmt.Parse(d.ToDuration()).String()
}

// MarshalText implements `encoding.TextMarshaler`, emitting the
// unit-suffixed form (e.g. "4h0m0s") that UnmarshalText parses back.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.ToDuration().String()), nil
}

// UnmarshalText implements `encoding.TextUnmarshaler`.
func (d *Duration) UnmarshalText(data []byte) error {
	input := string(data)

	if minutes, err := strconv.Atoi(input); err == nil {
		// number without unit: use minutes to ensure back compatibility
		*d = Duration(time.Duration(minutes) * time.Minute)

		log.Log().Warnf("Setting a duration without a unit is deprecated. Please use '%s min' instead.", input)

		return nil
	}

	duration, err := time.ParseDuration(input)
	if err != nil {
		return err
	}

	*d = Duration(duration)

	return nil
}
