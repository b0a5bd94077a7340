package bookstore

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Amount is a non-integer quantity (prices, totals) that also accepts a
// numeric string on input, e.g. "15.50".
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	s, ok := numericText(b)
	f, err := strconv.ParseFloat(s, 64)
	if !ok || err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return typeError(b, *a)
	}
	*a = Amount(f)
	return nil
}

// Count is an integer quantity (stock, quantity, rating) that also accepts
// a numeric string on input. Integral floats such as 3.0 are accepted.
type Count int

func (c *Count) UnmarshalJSON(b []byte) error {
	s, ok := numericText(b)
	f, err := strconv.ParseFloat(s, 64)
	if !ok || err != nil || math.Trunc(f) != f || math.Abs(f) > math.MaxInt32 {
		return typeError(b, *c)
	}
	*c = Count(f)
	return nil
}

func numericText(b []byte) (string, bool) {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return "", false
		}
		return strings.TrimSpace(s), true
	}
	return string(b), true
}

// typeError lets encoding/json attach the offending field path.
func typeError(b []byte, v any) error {
	return &json.UnmarshalTypeError{Value: string(b), Type: reflect.TypeOf(v)}
}
