package shared

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrNotFound indicates a referenced id or natural key is absent.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates a missing or malformed required field.
	ErrValidation = errors.New("validation failed")
	// ErrSequenceConflict indicates a document-number allocation kept losing
	// the counter row to concurrent confirmations after retrying.
	ErrSequenceConflict = errors.New("sequence allocation conflict")
)

// PriceNotFoundError reports a missing price row for a ship-to/material pair.
// A price of zero is a valid business value; this error is the only way to
// signal "no price" and it is always fatal to the order operation.
type PriceNotFoundError struct {
	ShipTo   string
	Material string
}

func (e *PriceNotFoundError) Error() string {
	return fmt.Sprintf("no price found for material %s and client %s", e.Material, e.ShipTo)
}

// PartialNotFoundError reports that a subset of a requested id set is
// missing. The operation it aborts must not have applied to any member.
type PartialNotFoundError struct {
	Entity  string
	Missing []int64
}

func (e *PartialNotFoundError) Error() string {
	ids := make([]string, len(e.Missing))
	for i, id := range e.Missing {
		ids[i] = strconv.FormatInt(id, 10)
	}
	return fmt.Sprintf("some %s were not found, missing ids: %s", e.Entity, strings.Join(ids, ", "))
}

func (e *PartialNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
