package itinerary

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexFloat decodes a provider number that may arrive as a JSON number, a numeric
// string or null. Anything else leaves it unset instead of failing the payload.
type FlexFloat struct {
	Value float64
	Valid bool
}

func Float(v float64) FlexFloat {
	return FlexFloat{Value: v, Valid: true}
}

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	*f = FlexFloat{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = Float(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*f = Float(n)
		}
	}
	return nil
}

func (f FlexFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Or returns the value when set, otherwise def.
func (f FlexFloat) Or(def float64) float64 {
	if f.Valid {
		return f.Value
	}
	return def
}

// FlexString decodes identifiers that providers send either as strings or numbers.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	*s = ""
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = FlexString(strings.TrimSpace(str))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*s = FlexString(n.String())
	}
	return nil
}

func (s FlexString) String() string {
	return string(s)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
