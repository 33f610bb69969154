// Package chunk implements the chunked request-scheduling and assembly
// engine: it decomposes an oversized request into an ordered schedule of
// smaller, shape-compatible sub-requests, dispatches them to a bounded
// pool of concurrent workers, and merges the partial results into one
// output batch by ROI intersection.
//
// The schedule is derived from a chunk template: one canonical ROI per
// entity, all mutually centered. The template with the tightest extent
// dictates the finest safe stride, because all entities are re-centered
// together as the schedule advances. A final shrink-to-fit step lands the
// last chunk of every axis exactly on the coverage boundary instead of
// overshooting, which is also the only place where adjacent chunks
// overlap.
package chunk
