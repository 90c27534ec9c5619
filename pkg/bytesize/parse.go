// Package bytesize parses and formats human-friendly byte sizes such as the
// max_package_size repository option.
package bytesize

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

const (
	KiB int64 = 1 << 10
	MiB int64 = 1 << 20
	GiB int64 = 1 << 30
	TiB int64 = 1 << 40
)

// suffixes are tried in order, so longer suffixes come first.
var suffixes = []struct {
	unit       string
	multiplier int64
}{
	{"TIB", TiB}, {"GIB", GiB}, {"MIB", MiB}, {"KIB", KiB},
	{"TB", TiB}, {"GB", GiB}, {"MB", MiB}, {"KB", KiB},
	{"T", TiB}, {"G", GiB}, {"M", MiB}, {"K", KiB},
	{"B", 1},
}

// Parse parses sizes like "512MB", "1.5GiB", "100k" or "4096".
// Units are binary (1KB = 1024 bytes) and case-insensitive; a bare number
// is a byte count.
func Parse(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	multiplier := int64(1)
	valueStr := s
	for _, sfx := range suffixes {
		if strings.HasSuffix(s, sfx.unit) {
			multiplier = sfx.multiplier
			valueStr = strings.TrimSpace(strings.TrimSuffix(s, sfx.unit))
			break
		}
	}

	if valueStr == "" {
		return 0, fmt.Errorf("invalid size %q: missing numeric value", s)
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q in %q: %w", valueStr, s, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("invalid size %q: negative value not allowed", s)
	}

	result := value * float64(multiplier)
	if result > math.MaxInt64 {
		return 0, fmt.Errorf("size %q exceeds maximum allowed value", s)
	}
	return int64(result), nil
}

// Format renders n with the largest binary unit that keeps one decimal.
func Format(n int64) string {
	switch {
	case n >= TiB:
		return fmt.Sprintf("%.1fTiB", float64(n)/float64(TiB))
	case n >= GiB:
		return fmt.Sprintf("%.1fGiB", float64(n)/float64(GiB))
	case n >= MiB:
		return fmt.Sprintf("%.1fMiB", float64(n)/float64(MiB))
	case n >= KiB:
		return fmt.Sprintf("%.1fKiB", float64(n)/float64(KiB))
	default:
		return fmt.Sprintf("%dB", n)
	}
}

// Size is a byte count decoded from a human-friendly configuration value.
type Size int64

// DecodeHook converts configuration strings into Size values during
// viper/mapstructure decoding.
func DecodeHook() mapstructure.DecodeHookFuncType {
	sizeType := reflect.TypeOf(Size(0))

	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != sizeType {
			return data, nil
		}
		if s, ok := data.(string); ok {
			n, err := Parse(s)
			return Size(n), err
		}
		return data, nil
	}
}
