package dataset

import (
	"encoding/json"
	"strings"

	"go-accident-dashboard/internal/model"
	"go-accident-dashboard/pkg/utils"
)

// cleanHeader trims whitespace, a leading byte order mark and every quote
// character from a header cell.
func cleanHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.TrimSpace(h)
	h = strings.ReplaceAll(h, `"`, "")
	return strings.TrimSpace(h)
}

// cleanHeaders cleans every header cell. Empty names and repeated names map
// to "" so their cells are ignored; repeats are returned separately.
func cleanHeaders(raw []string) (headers []string, duplicates []string) {
	seen := make(map[string]bool, len(raw))
	headers = make([]string, len(raw))
	for i, h := range raw {
		name := cleanHeader(h)
		if name == "" {
			continue
		}
		if seen[name] {
			duplicates = append(duplicates, name)
			continue
		}
		seen[name] = true
		headers[i] = name
	}
	return headers, duplicates
}

// columnsOf returns the usable header names in order.
func columnsOf(headers []string) []string {
	cols := make([]string, 0, len(headers))
	for _, h := range headers {
		if h != "" {
			cols = append(cols, h)
		}
	}
	return cols
}

// typeRecord builds a row from one CSV record. Missing trailing cells leave
// the field absent; extra cells are ignored.
func typeRecord(headers []string, record []string) model.Row {
	row := make(model.Row, len(headers))
	for i, h := range headers {
		if h == "" || i >= len(record) {
			continue
		}
		row[h] = utils.ParseValue(record[i])
	}
	return row
}

// normalizeJSONValue maps decoded JSON scalars onto the row value types.
// Whole numbers become int, other numbers float64; nested values are dropped.
func normalizeJSONValue(v interface{}) interface{} {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return int(i)
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case string:
		if strings.TrimSpace(val) == "" {
			return nil
		}
		return val
	case bool, nil:
		return val
	default:
		return nil
	}
}

// normalizeJSONRecord converts a decoded object into a row.
func normalizeJSONRecord(obj map[string]interface{}) model.Row {
	row := make(model.Row, len(obj))
	for k, v := range obj {
		name := cleanHeader(k)
		if name == "" {
			continue
		}
		row[name] = normalizeJSONValue(v)
	}
	return row
}
