package voxelpipe

import (
	"fmt"

	"github.com/hupe1980/voxelpipe/geometry"
	"github.com/hupe1980/voxelpipe/model"
)

// ErrEntityNotOffered indicates a request for an entity the provider does
// not offer.
type ErrEntityNotOffered struct {
	Entity model.EntityID
}

func (e *ErrEntityNotOffered) Error() string {
	return fmt.Sprintf("entity %q is not offered by this provider", e.Entity)
}

// ErrOutsideExtent indicates a request for a ROI that is not fully inside
// the extent the provider declared for the entity.
type ErrOutsideExtent struct {
	Entity    model.EntityID
	Requested geometry.ROI
	Extent    geometry.ROI
}

func (e *ErrOutsideExtent) Error() string {
	return fmt.Sprintf("entity %q: requested ROI %s outside provided extent %s",
		e.Entity, e.Requested, e.Extent)
}

// ErrDimensionMismatch indicates entities of different dimensionality
// participating in one computation.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Entity   model.EntityID
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("entity %q: dimension mismatch: expected %d, got %d",
		e.Entity, e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// NewDimensionMismatch returns an ErrDimensionMismatch for the given
// entity.
func NewDimensionMismatch(entity model.EntityID, expected, actual int) *ErrDimensionMismatch {
	return &ErrDimensionMismatch{Entity: entity, Expected: expected, Actual: actual}
}
