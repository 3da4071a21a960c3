package entity

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FlexFloat accepts JSON numbers, numeric strings and null. Anything that
// does not parse as a finite number decodes to 0.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			*f = 0
			return nil
		}
		s = strings.TrimSpace(str)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		*f = 0
		return nil
	}
	*f = FlexFloat(v)
	return nil
}

func (f FlexFloat) Float64() float64 {
	return float64(f)
}

// FloatPtr converts an optional FlexFloat into *float64.
func FloatPtr(f *FlexFloat) *float64 {
	if f == nil {
		return nil
	}
	v := float64(*f)
	return &v
}

// RackNumbers is the rack number list of a shipment. On the wire it is a
// plain string when there is a single rack and an array when a merged import
// produced several.
type RackNumbers []string

func (r *RackNumbers) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*r = nil
		return nil
	}
	if b[0] == '[' {
		var list []string
		if err := json.Unmarshal(b, &list); err != nil {
			return fmt.Errorf("rackNo: %w", err)
		}
		*r = NewRackNumbers(list...)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("rackNo must be a string or an array of strings")
	}
	*r = NewRackNumbers(s)
	return nil
}

func (r RackNumbers) MarshalJSON() ([]byte, error) {
	switch len(r) {
	case 0:
		return []byte(`""`), nil
	case 1:
		return json.Marshal(r[0])
	default:
		return json.Marshal([]string(r))
	}
}

func (r RackNumbers) Value() (driver.Value, error) {
	if len(r) == 0 {
		return nil, nil
	}
	return json.Marshal([]string(r))
}

// Scan reads the JSON list form and falls back to a legacy plain string.
func (r *RackNumbers) Scan(value interface{}) error {
	raw, err := scanBytes(value)
	if err != nil {
		return fmt.Errorf("failed to scan RackNumbers: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		*r = nil
		return nil
	}
	if raw[0] == '[' {
		var list []string
		if err := json.Unmarshal(raw, &list); err != nil {
			return err
		}
		*r = list
		return nil
	}
	*r = NewRackNumbers(string(raw))
	return nil
}

// NewRackNumbers trims the given values and drops empty ones.
func NewRackNumbers(values ...string) RackNumbers {
	var out RackNumbers
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// String joins the list the way printed documents show it.
func (r RackNumbers) String() string {
	return strings.Join(r, ", ")
}

func scanBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported type %T", value)
	}
}
