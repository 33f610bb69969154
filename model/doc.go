// Package model defines the data types flowing through a voxelpipe
// pipeline.
//
// # Identity Types
//
//   - EntityID: Opaque tag naming one data stream (a volume, a point set)
//   - EntityInfo: Per-entity capability record (extent, resolution,
//     interpolation policy, channels) supplied by upstream providers
//
// # Data Types
//
//   - Request: Mapping from entity to desired ROI
//   - Array: Dense row-major float32 N-D array
//   - Volume: Realized array data tagged with ROI and capability
//   - Points: Realized sparse locations tagged with ROI
//   - Batch: The realized counterpart of a Request
package model
