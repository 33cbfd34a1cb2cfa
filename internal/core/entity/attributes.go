package entity

import (
	"database/sql/driver"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// metaJSON decodes numbers as json.Number so that integer metadata written by
// editors round-trips through JSONB without turning into float64.
var metaJSON = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// Attributes is a free-form JSON object stored as JSONB (record meta).
// Implements sql.Scanner and driver.Valuer.
type Attributes map[string]any

// Scan implements sql.Scanner for reading from PostgreSQL JSONB.
func (a *Attributes) Scan(src any) error {
	if src == nil {
		*a = nil
		return nil
	}

	var source []byte
	switch v := src.(type) {
	case []byte:
		source = v
	case string:
		source = []byte(v)
	case map[string]any:
		*a = Attributes(v)
		return nil
	default:
		return fmt.Errorf("unsupported type for Attributes: %T", src)
	}

	if len(source) == 0 {
		*a = nil
		return nil
	}

	var result map[string]any
	if err := metaJSON.Unmarshal(source, &result); err != nil {
		return fmt.Errorf("failed to decode Attributes: %w", err)
	}

	*a = result
	return nil
}

// Value implements driver.Valuer for writing to PostgreSQL JSONB.
func (a Attributes) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return metaJSON.Marshal(a)
}

// ValidJSON reports whether raw is a syntactically valid JSON document.
func ValidJSON(raw []byte) bool {
	return metaJSON.Valid(raw)
}

// GetString returns string value or empty string if not found/wrong type.
func (a Attributes) GetString(key string) string {
	if v, ok := a[key].(string); ok {
		return v
	}
	return ""
}

// Has checks if key exists (including nil values).
func (a Attributes) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// Merge returns a copy of a with every key of patch applied on top.
// A nil value in patch removes the key.
func (a Attributes) Merge(patch Attributes) Attributes {
	result := make(Attributes, len(a)+len(patch))
	for k, v := range a {
		result[k] = v
	}
	for k, v := range patch {
		if v == nil {
			delete(result, k)
			continue
		}
		result[k] = v
	}
	return result
}
