// Package timestamp provides the microsecond timestamps carried by envelopes.
//
// A TimeStamp is the number of microseconds since the Unix epoch (UTC). Envelopes
// are stamped once when they leave a producer and once when they reach a consumer;
// microseconds keep the difference between the two meaningful on a single host.
//
// Zero Value Semantics:
//   - A TimeStamp of 0 means "not stamped"
//   - Functions handle zero values gracefully, returning zero results
//
// Reading the wall clock is delegated to a Clock so that tests and replay tools
// can supply their own notion of "now":
//
//	clock := timestamp.SystemClock()
//	env.StampSent(clock.Now())
//
//	// Deterministic tests
//	clock := timestamp.FixedClock(timestamp.FromTime(t0))
package timestamp

import (
	"fmt"
	"strconv"
	"sync/atomic"
	"time"
)

// TimeStamp is a point in time in microseconds since the Unix epoch.
type TimeStamp int64

// Clock supplies the current time.
type Clock interface {
	Now() TimeStamp
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() TimeStamp

// Now calls f.
func (f ClockFunc) Now() TimeStamp {
	return f()
}

type systemClock struct{}

func (systemClock) Now() TimeStamp {
	return Now()
}

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock {
	return systemClock{}
}

// FixedClock returns a Clock that always reports ts.
func FixedClock(ts TimeStamp) Clock {
	return ClockFunc(func() TimeStamp { return ts })
}

// SteppingClock returns a Clock that starts at start and advances by step on every call.
// Safe for concurrent use.
func SteppingClock(start TimeStamp, step time.Duration) Clock {
	var calls atomic.Int64
	return ClockFunc(func() TimeStamp {
		n := calls.Add(1) - 1
		return start + TimeStamp(n*step.Microseconds())
	})
}

// Now returns the current time as a TimeStamp.
func Now() TimeStamp {
	return TimeStamp(time.Now().UnixMicro())
}

// FromTime converts a time.Time to a TimeStamp. The zero time maps to 0.
func FromTime(t time.Time) TimeStamp {
	if t.IsZero() {
		return 0
	}
	return TimeStamp(t.UnixMicro())
}

// FromUnixMs converts Unix milliseconds to a TimeStamp.
func FromUnixMs(ms int64) TimeStamp {
	return TimeStamp(ms * 1000)
}

// Time converts ts to time.Time. Returns the zero time if ts is 0.
func (ts TimeStamp) Time() time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.UnixMicro(int64(ts))
}

// UnixMs returns ts truncated to milliseconds.
func (ts TimeStamp) UnixMs() int64 {
	return int64(ts) / 1000
}

// Seconds returns the whole seconds part of ts.
func (ts TimeStamp) Seconds() int64 {
	return int64(ts) / 1_000_000
}

// Microseconds returns the sub-second part of ts in microseconds.
func (ts TimeStamp) Microseconds() int64 {
	return int64(ts) % 1_000_000
}

// IsZero reports whether ts is unset.
func (ts TimeStamp) IsZero() bool {
	return ts == 0
}

// String formats ts as RFC3339 with microseconds, or "" when unset.
func (ts TimeStamp) String() string {
	if ts == 0 {
		return ""
	}
	return ts.Time().UTC().Format("2006-01-02T15:04:05.000000Z07:00")
}

// Add adds a duration to ts. Returns 0 if ts is 0.
func (ts TimeStamp) Add(d time.Duration) TimeStamp {
	if ts == 0 {
		return 0
	}
	return ts + TimeStamp(d.Microseconds())
}

// Sub returns the duration ts-other. Returns 0 if either is unset.
func (ts TimeStamp) Sub(other TimeStamp) time.Duration {
	if ts == 0 || other == 0 {
		return 0
	}
	return time.Duration(ts-other) * time.Microsecond
}

// Since returns the duration elapsed since ts. Returns 0 if ts is 0.
func Since(ts TimeStamp) time.Duration {
	if ts == 0 {
		return 0
	}
	return time.Since(ts.Time())
}

// Parse converts various timestamp formats to a TimeStamp.
// Supports:
//   - TimeStamp and time.Time
//   - int64/int (microseconds if > 1e15, milliseconds if > 1e12, otherwise seconds)
//   - float64 (same magnitude rules)
//   - string (RFC3339/RFC3339Nano or a numeric string)
//
// Returns 0 for nil, invalid input or parsing errors.
func Parse(input any) TimeStamp {
	switch v := input.(type) {
	case nil:
		return 0
	case TimeStamp:
		return v
	case time.Time:
		return FromTime(v)
	case int64:
		return fromMagnitude(float64(v), v)
	case int:
		return fromMagnitude(float64(v), int64(v))
	case float64:
		return fromMagnitude(v, int64(v))
	case string:
		if v == "" {
			return 0
		}
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return FromTime(t)
		}
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return Parse(n)
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return Parse(f)
		}
		return 0
	default:
		return 0
	}
}

func fromMagnitude(f float64, i int64) TimeStamp {
	switch {
	case i == 0 && f == 0:
		return 0
	case f > 1e15:
		return TimeStamp(i)
	case f > 1e12:
		return TimeStamp(f * 1e3)
	default:
		return TimeStamp(f * 1e6)
	}
}

// Validate checks that ts is non-negative and not unreasonably far in the future.
func Validate(ts TimeStamp) error {
	if ts < 0 {
		return fmt.Errorf("timestamp cannot be negative: %d", ts)
	}
	// Year 3000
	if ts > 32503680000000000 {
		return fmt.Errorf("timestamp too far in future: %d", ts)
	}
	return nil
}
