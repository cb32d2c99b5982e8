package store

import (
	"encoding/json"
	"fmt"
	"strings"
)

// IDField is the JSON attribute holding a record's identifier.
const IDField = "Id"

// Patch is a set of top-level attributes to merge over a record, keyed by
// their JSON names.
type Patch map[string]json.RawMessage

// NewPatch builds a Patch from plain values. It is mostly useful in tests and
// internal callers that do not start from a JSON document.
func NewPatch(values map[string]any) (Patch, error) {
	p := make(Patch, len(values))
	for k, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode patch field %q: %w", k, err)
		}
		p[k] = raw
	}
	return p, nil
}

// Merge shallow-merges patch over rec. Top-level attributes named in the patch
// replace the record's values wholesale; nested objects are not merged
// recursively. Any identifier key is discarded so the result always keeps
// rec's identifier.
func Merge[T Record[T]](rec T, patch Patch) (T, error) {
	var zero T

	raw, err := json.Marshal(rec)
	if err != nil {
		return zero, fmt.Errorf("encode record: %w", err)
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return zero, fmt.Errorf("decode record: %w", err)
	}

	for k, v := range patch {
		// encoding/json matches keys case-insensitively, so "id" would
		// still land on the identifier field.
		if strings.EqualFold(k, IDField) {
			continue
		}
		fields[k] = v
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return zero, fmt.Errorf("encode merged record: %w", err)
	}
	var out T
	if err := json.Unmarshal(merged, &out); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	return out.WithID(rec.RecordID()), nil
}
