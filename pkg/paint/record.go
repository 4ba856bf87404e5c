package paint

import "math"

// Record is a decoded JSON object describing one paint (or one stop or
// shadow within it). Accessors return the zero value for absent or
// mistyped fields.
type Record map[string]any

// String returns the string field key.
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Float returns the numeric field key.
func (r Record) Float(key string) float64 {
	return toFloat(r[key])
}

// Int returns the numeric field key truncated to an int64.
func (r Record) Int(key string) int64 {
	return toInt(r[key])
}

// Bool returns the boolean field key.
func (r Record) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

// Has reports whether key is present, including when its value is null.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Array returns the array field key.
func (r Record) Array(key string) []any {
	a, _ := r[key].([]any)
	return a
}

// Object returns the object field key.
func (r Record) Object(key string) Record {
	return asRecord(r[key])
}

// Records returns the object elements of the array field key.
// Non-object elements become empty records so positions are preserved.
func (r Record) Records(key string) []Record {
	arr := r.Array(key)
	if len(arr) == 0 {
		return nil
	}
	out := make([]Record, len(arr))
	for i, v := range arr {
		out[i] = asRecord(v)
	}
	return out
}

// Strings returns the string elements of the array field key.
// Non-string elements are skipped.
func (r Record) Strings(key string) []string {
	arr := r.Array(key)
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// ToRecord returns v as a Record. Anything that is not a JSON object
// becomes an empty Record.
func ToRecord(v any) Record {
	return asRecord(v)
}

func asRecord(v any) Record {
	switch m := v.(type) {
	case Record:
		return m
	case map[string]any:
		return Record(m)
	}
	return Record{}
}

func toInt(v any) int64 {
	f := toFloat(v)
	if math.IsNaN(f) || f >= math.MaxInt64 || f <= math.MinInt64 {
		return 0
	}
	return int64(f)
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	}
	return 0
}
