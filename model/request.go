package model

import (
	"sort"
	"strings"

	"github.com/hupe1980/voxelpipe/geometry"
)

// Request maps entity identifiers to the ROI desired for each. One
// request is owned per pending operation and is deep-copied whenever it is
// decomposed, since downstream stages may mutate the ROIs they receive
// (for example to demand a larger upstream extent).
type Request map[EntityID]geometry.ROI

// Clone returns a deep copy of the request.
func (r Request) Clone() Request {
	out := make(Request, len(r))
	for id, roi := range r {
		out[id] = roi.Clone()
	}
	return out
}

// Entities returns the requested entity identifiers in sorted order, for
// deterministic iteration and logging.
func (r Request) Entities() []EntityID {
	ids := make([]EntityID, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// String returns a compact "entity: roi" listing in sorted entity order.
func (r Request) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, id := range r.Entities() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(string(id))
		sb.WriteString(": ")
		sb.WriteString(r[id].String())
	}
	sb.WriteString("}")
	return sb.String()
}
