package domain

import (
	"encoding/json"
	"strings"
)

// ProductID is the 10-character identifier of a catalog item
type ProductID string

// ProductDetail is a single named attribute from the lookup API's productDetails list
type ProductDetail struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

// Text returns the value as display text. String values are unquoted, anything else is
// returned as its JSON encoding.
func (d ProductDetail) Text() string {
	if len(d.Value) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(d.Value, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(d.Value))
}

// ProductRecord is a product document returned by the lookup API. Raw is the body exactly
// as received; Details is the optional productDetails list decoded from it.
type ProductRecord struct {
	ID      ProductID       `json:"id"`
	Raw     json.RawMessage `json:"-"`
	Details []ProductDetail `json:"productDetails,omitempty"`
}

// ComparisonRow is one attribute present in both compared products
type ComparisonRow struct {
	DetailName string `json:"detailName"`
	Product1   string `json:"product1"`
	Product2   string `json:"product2"`
}
