package jsonutil

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexibleInt64 reads an integer from a json.RawMessage, accepting numbers and
// numeric strings. Backends differ in how they render profile priorities.
// Returns false for null, empty or non-numeric input.
func FlexibleInt64(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}

	var numVal json.Number
	if err := json.Unmarshal(raw, &numVal); err == nil {
		return numberToInt64(numVal)
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		return numberToInt64(json.Number(strings.TrimSpace(strVal)))
	}

	return 0, false
}

func numberToInt64(n json.Number) (int64, bool) {
	if i, err := n.Int64(); err == nil {
		return i, true
	}
	if f, err := n.Float64(); err == nil && f == float64(int64(f)) {
		return int64(f), true
	}
	return 0, false
}

// ScalarString renders a decoded JSON scalar (string, number, bool) as a
// string. Returns false for null, objects and arrays.
func ScalarString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case json.Number:
		return val.String(), true
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val)), true
		}
		return strconv.FormatFloat(val, 'g', -1, 64), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	default:
		return "", false
	}
}
