package utils

import (
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ParseDuration safely parses duration string like "5m", falling back to def.
func ParseDuration(d string, def time.Duration) time.Duration {
	if d == "" {
		return def
	}
	duration, err := time.ParseDuration(d)
	if err != nil {
		return def
	}
	return duration
}

// ParseValue infers a scalar from a raw cell: int, then float, then bool,
// otherwise the trimmed string. Empty cells become nil.
func ParseValue(s string) interface{} {
	// Trim whitespace first
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	// try int
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	// try float
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	switch s {
	case "true", "TRUE", "True":
		return true
	case "false", "FALSE", "False":
		return false
	}
	return s
}

// ToFloat converts supported scalar types to float64. Strings are parsed
// after trimming; nil, empty, non-numeric and non-finite values report false.
func ToFloat(v interface{}) (float64, bool) {
	var f float64
	switch val := v.(type) {
	case nil:
		return 0, false
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case float64:
		f = val
	case float32:
		f = float64(val)
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case []byte:
		return ToFloat(string(val))
	case bool:
		return 0, false
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() >= reflect.Int && rv.Kind() <= reflect.Float64 {
			f = rv.Convert(reflect.TypeOf(float64(0))).Float()
		} else {
			return 0, false
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Numeric converts v to float64, treating anything unusable as 0.
func Numeric(v interface{}) float64 {
	f, _ := ToFloat(v)
	return f
}

// FormatValue renders a scalar the way it was written in the source:
// integers in base 10 and floats in their shortest form, so 2020.0 and
// 2020 both render as "2020". Nil has no string form.
func FormatValue(v interface{}) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case []byte:
		return string(val), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		rv := reflect.ValueOf(v)
		switch {
		case rv.Kind() >= reflect.Int && rv.Kind() <= reflect.Int64:
			return strconv.FormatInt(rv.Int(), 10), true
		case rv.Kind() >= reflect.Uint && rv.Kind() <= reflect.Uint64:
			return strconv.FormatUint(rv.Uint(), 10), true
		}
		return "", false
	}
}

var printer = message.NewPrinter(language.English)

// FormatNumber renders n with thousands separators and at most two decimals.
func FormatNumber(n float64) string {
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return printer.Sprintf("%d", int64(n))
	}
	return printer.Sprintf("%.2f", n)
}
