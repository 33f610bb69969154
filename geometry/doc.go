// Package geometry provides N-dimensional integer coordinates and
// axis-aligned regions of interest (ROIs).
//
// All operations are pure value operations: they never mutate their
// receivers and always return fresh values. Coordinates participating in
// one computation must share the same dimensionality; packages consuming
// geometry validate this at their boundaries.
package geometry
