package model

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Datum is one node of the raw dataset as it arrives from the data source.
type Datum struct {
	ID       string   `json:"id,omitempty"`
	Name     string   `json:"name"`
	Size     Weight   `json:"size,omitempty"`
	Slug     string   `json:"slug,omitempty"`
	Children []*Datum `json:"children,omitempty"`
}

// Weight is a leaf size. It accepts JSON numbers and numeric strings; any
// other value (null, bool, garbage text) decodes as zero.
type Weight float64

// UnmarshalJSON implements json.Unmarshaler.
func (w *Weight) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*w = 0
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	*w = Weight(f)
	return nil
}

// HasSize reports whether the datum carries a usable (positive) size.
func (d *Datum) HasSize() bool {
	return d != nil && d.Size > 0
}

// ParseDatum decodes a dataset document.
func ParseDatum(data []byte) (*Datum, error) {
	var root Datum
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	return &root, nil
}
