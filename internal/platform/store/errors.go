package store

import (
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrNotFound is returned when an identifier does not match any record
	// in the collection.
	ErrNotFound = errors.New("not found")

	// ErrInvalidPatch is returned when a patch cannot be applied to a record,
	// e.g. a value of the wrong JSON type for its attribute.
	ErrInvalidPatch = errors.New("invalid patch")
)

// ParseID converts caller-supplied input into a record identifier. Input that
// is not an integer can never match a record, so it is reported as
// ErrNotFound rather than as a parse failure.
func ParseID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, ErrNotFound
	}
	return id, nil
}
