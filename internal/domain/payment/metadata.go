package payment

import (
	"encoding/json"
	"fmt"

	"github.com/cassiomorais/pawapay/internal/domain/errors"
)

// MetadataItem is one metadata entry: string keys mapped to scalar values.
type MetadataItem map[string]any

// Metadata is the ordered list of metadata entries attached to a request.
type Metadata []MetadataItem

// MetadataProfile selects how metadata items are shaped on the wire.
type MetadataProfile int

const (
	// MetadataFlat sends every item as is.
	MetadataFlat MetadataProfile = iota
	// MetadataUnwrapData expects every item to wrap its fields under a "data"
	// key and sends only that inner object.
	MetadataUnwrapData
)

const metadataDataKey = "data"

// ParseMetadata validates untyped decoded input, typically the result of
// json.Unmarshal into any, and converts it to Metadata.
func ParseMetadata(raw any) (Metadata, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case Metadata:
		return v, v.Validate(MetadataFlat)
	case map[string]any:
		// a single object is read as a one-item list
		out := Metadata{MetadataItem(v)}
		return out, out.Validate(MetadataFlat)
	case []map[string]any:
		out := make(Metadata, len(v))
		for i, item := range v {
			out[i] = MetadataItem(item)
		}
		return out, out.Validate(MetadataFlat)
	case []any:
		out := make(Metadata, 0, len(v))
		for i, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, errors.NewValidationError(metadataField(i), "must be an object with string keys")
			}
			out = append(out, MetadataItem(obj))
		}
		return out, out.Validate(MetadataFlat)
	}
	return nil, errors.NewValidationError("metadata", "must be a list of objects")
}

// Validate checks every item against the rules of profile.
func (m Metadata) Validate(profile MetadataProfile) error {
	for i, item := range m {
		if item == nil {
			return errors.NewValidationError(metadataField(i), "must be an object with string keys")
		}
		if profile == MetadataUnwrapData {
			if _, err := item.unwrap(i); err != nil {
				return err
			}
			continue
		}
		if err := validateScalars(metadataField(i), item); err != nil {
			return err
		}
	}
	return nil
}

// Wire returns the metadata shaped for profile, ready to be placed in a payload.
func (m Metadata) Wire(profile MetadataProfile) ([]map[string]any, error) {
	if err := m.Validate(profile); err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(m))
	for i, item := range m {
		if profile == MetadataUnwrapData {
			inner, _ := item.unwrap(i)
			out = append(out, inner)
			continue
		}
		out = append(out, map[string]any(item))
	}
	return out, nil
}

// UnmarshalJSON rejects anything that is not a list of scalar-valued objects.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseMetadata(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (item MetadataItem) unwrap(index int) (map[string]any, error) {
	field := metadataField(index) + "." + metadataDataKey
	value, ok := item[metadataDataKey]
	if !ok {
		return nil, errors.NewValidationError(field, "is required")
	}
	var inner map[string]any
	switch v := value.(type) {
	case map[string]any:
		inner = v
	case MetadataItem:
		inner = map[string]any(v)
	default:
		return nil, errors.NewValidationError(field, "must be an object with string keys")
	}
	if err := validateScalars(field, inner); err != nil {
		return nil, err
	}
	return inner, nil
}

func validateScalars(field string, obj map[string]any) error {
	for key, value := range obj {
		if key == "" {
			return errors.NewValidationError(field, "keys must be non-empty strings")
		}
		if !isScalar(value) {
			return errors.NewValidationError(field+"."+key, "must be a string, number or boolean")
		}
	}
	return nil
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, bool, json.Number,
		float32, float64,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

func metadataField(index int) string {
	return fmt.Sprintf("metadata[%d]", index)
}
