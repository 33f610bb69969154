package filter

import (
	"fmt"

	"github.com/hupe1980/voxelpipe/model"
)

// missingUpstreamError reports an upstream batch that lacks an entity a
// stage depends on.
type missingUpstreamError struct {
	entity model.EntityID
}

func (e *missingUpstreamError) Error() string {
	return fmt.Sprintf("upstream batch is missing entity %q", e.entity)
}
