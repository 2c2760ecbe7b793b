// Package telemetry reads the drum pad telemetry stream on a host, either
// from the board's serial port or from a simulated kit.
package telemetry

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MaxMilliVolts is the largest value the firmware can report.
const MaxMilliVolts = 3300

// Frame is one parsed telemetry line.
type Frame struct {
	Timestamp time.Time // Host receive time
	Names     []string  // Pad names; nil for the single-channel format
	Values    []uint32  // Millivolts per pad, in line order
}

// ParseLine parses a telemetry line in either wire format:
//
//	1234            single channel
//	A:1234,B:56     named channels
//
// Surrounding whitespace, including the CRLF terminator, is ignored.
func ParseLine(line string, at time.Time) (Frame, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Frame{}, fmt.Errorf("empty line")
	}

	if !strings.Contains(line, ":") {
		v, err := parseValue(line)
		if err != nil {
			return Frame{}, err
		}
		return Frame{Timestamp: at, Values: []uint32{v}}, nil
	}

	parts := strings.Split(line, ",")
	f := Frame{
		Timestamp: at,
		Names:     make([]string, 0, len(parts)),
		Values:    make([]uint32, 0, len(parts)),
	}
	for _, part := range parts {
		name, value, ok := strings.Cut(part, ":")
		if !ok || name == "" {
			return Frame{}, fmt.Errorf("invalid field %q: expected name:value", part)
		}
		v, err := parseValue(value)
		if err != nil {
			return Frame{}, fmt.Errorf("invalid field %q: %w", part, err)
		}
		f.Names = append(f.Names, name)
		f.Values = append(f.Values, v)
	}
	return f, nil
}

// Value returns the reading for the named pad. Single-channel frames answer
// to any name.
func (f Frame) Value(name string) (uint32, bool) {
	if f.Names == nil {
		if len(f.Values) == 1 {
			return f.Values[0], true
		}
		return 0, false
	}
	for i, n := range f.Names {
		if n == name {
			return f.Values[i], true
		}
	}
	return 0, false
}

func parseValue(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value: %w", err)
	}
	if v > MaxMilliVolts {
		return 0, fmt.Errorf("value out of range: %d (max %d)", v, MaxMilliVolts)
	}
	return uint32(v), nil
}
