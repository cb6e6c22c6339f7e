package axesso

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/comparewise/backend/internal/domain"
)

var errInvalidJSON = errors.New("response body is not valid JSON")

// detailsEnvelope picks the only field the comparator relies on. Entries are
// decoded one at a time so that a malformed entry does not hide the others.
type detailsEnvelope struct {
	ProductDetails []json.RawMessage `json:"productDetails"`
}

// IsEmptyDocument reports whether body decodes to null, false, zero, an empty
// string, an empty list or an empty object. The lookup API answers with such
// bodies when it has nothing for a product.
func IsEmptyDocument(body []byte) bool {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case float64:
		return t == 0
	case string:
		return t == ""
	case []interface{}:
		return len(t) == 0
	case map[string]interface{}:
		return len(t) == 0
	}
	return false
}

// MapToProductRecord keeps body verbatim and decodes its productDetails list.
// The body must be valid JSON. A productDetails field of an unexpected shape is
// treated as an empty list, and entries that are not {name, value} objects are
// skipped.
func MapToProductRecord(id domain.ProductID, body []byte) (*domain.ProductRecord, error) {
	if !json.Valid(body) {
		return nil, errInvalidJSON
	}

	record := &domain.ProductRecord{
		ID:  id,
		Raw: json.RawMessage(append([]byte(nil), body...)),
	}

	var env detailsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		log.Printf("[Axesso] Ignoring productDetails for %s: %v", id, err)
		return record, nil
	}

	for i, raw := range env.ProductDetails {
		var detail domain.ProductDetail
		if err := json.Unmarshal(raw, &detail); err != nil {
			log.Printf("[Axesso] Skipping productDetails[%d] for %s: %v", i, id, err)
			continue
		}
		record.Details = append(record.Details, detail)
	}
	return record, nil
}
