// Package testutil provides testing utilities for voxelpipe.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, thread-safe RNG and generators for volumes and
// point sets with known content.
//
// # Deterministic Data Generation
//
//	rng := testutil.NewRNG(seed)
//	vol := rng.UniformVolume(roi, 0)      // random intensities
//	pts := rng.RandomPoints(roi, 20)      // random locations in roi
//
// # Ground-Truth Volumes
//
//	vol := testutil.GradientVolume(roi)   // element value encodes position
package testutil
