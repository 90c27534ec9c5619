// Package duration parses the human-friendly durations used in ferry
// configuration (attempt timeouts, redelivery delays, transport timeouts).
package duration

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// Day and Week extend the units understood by time.ParseDuration.
const (
	Day  = 24 * time.Hour
	Week = 7 * Day
)

var unitMultipliers = map[string]time.Duration{
	"d": Day,
	"w": Week,
}

// longUnitPattern matches components like "2w" or "3d".
var longUnitPattern = regexp.MustCompile(`(\d+)([wd])`)

// Parse accepts:
//   - standard Go durations ("90s", "5m", "1h30m")
//   - day and week suffixes, alone or compound ("1d", "2w3d", "1d12h")
//   - a bare integer, read as seconds ("30")
//
// Examples:
//
//	Parse("5m")     // attempt timeout
//	Parse("250ms")  // initial redelivery delay
//	Parse("1d12h")  // 36 hours
//	Parse("45")     // 45 seconds
func Parse(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration string")
	}

	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("invalid duration %q: negative value not allowed", s)
		}
		return time.Duration(secs) * time.Second, nil
	}

	var total time.Duration
	for _, match := range longUnitPattern.FindAllStringSubmatch(s, -1) {
		value, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration value %q in %q", match[1], s)
		}
		total += time.Duration(value) * unitMultipliers[match[2]]
	}

	rest := strings.TrimSpace(longUnitPattern.ReplaceAllString(s, ""))
	if rest != "" {
		d, err := time.ParseDuration(rest)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w (supported units: ms, s, m, h, d, w)", s, err)
		}
		total += d
	}

	if total < 0 {
		return 0, fmt.Errorf("invalid duration %q: negative value not allowed", s)
	}
	return total, nil
}

// ParseOr returns def when s is empty.
func ParseOr(s string, def time.Duration) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	return Parse(s)
}

// DecodeHook converts configuration strings and integers into time.Duration
// values during viper/mapstructure decoding.
func DecodeHook() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))

	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != durationType {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return Parse(v)
		case int:
			return time.Duration(v) * time.Second, nil
		case int64:
			return time.Duration(v) * time.Second, nil
		case float64:
			return time.Duration(v * float64(time.Second)), nil
		default:
			return data, nil
		}
	}
}
