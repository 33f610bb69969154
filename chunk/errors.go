package chunk

import (
	"errors"
	"fmt"

	"github.com/hupe1980/voxelpipe/model"
)

// ErrEmptyTemplate is returned when a chunk template contains no entities.
var ErrEmptyTemplate = errors.New("chunk: template must contain at least one entity")

// ErrEntityNotRequested indicates a templated entity that is absent from
// the outer request.
type ErrEntityNotRequested struct {
	Entity model.EntityID
}

func (e *ErrEntityNotRequested) Error() string {
	return fmt.Sprintf("chunk: templated entity %q is absent from the request", e.Entity)
}

// ErrZeroTemplateShape indicates a template ROI with a zero-size axis,
// which would make the odometer walk loop indefinitely.
type ErrZeroTemplateShape struct {
	Entity model.EntityID
	Axis   int
}

func (e *ErrZeroTemplateShape) Error() string {
	return fmt.Sprintf("chunk: template for entity %q has zero shape along axis %d", e.Entity, e.Axis)
}

// ErrCoverage indicates an outer request that could not be covered within
// the bounded number of odometer steps.
type ErrCoverage struct {
	Request model.Request
	Steps   int64
}

func (e *ErrCoverage) Error() string {
	return fmt.Sprintf("chunk: request %s not covered within %d odometer steps", e.Request, e.Steps)
}

// ErrMissingOutput indicates that after all sub-batches were merged, a
// requested entity was never provided by upstream.
type ErrMissingOutput struct {
	Entity model.EntityID
}

func (e *ErrMissingOutput) Error() string {
	return fmt.Sprintf("chunk: no sub-batch provided data for requested entity %q", e.Entity)
}
