// Package voxelpipe assembles large, multi-dimensional, multi-channel
// training batches (image volumes plus point annotations) from upstream
// sources that can only serve bounded-size requests efficiently.
//
// A pipeline is a chain of providers. Each provider declares the entities
// it offers via Extents and realizes arbitrary sub-regions of them via
// Serve. The core stage is chunk.Chunker: it decomposes an oversized
// request into a schedule of smaller, shape-compatible sub-requests,
// dispatches them to a bounded pool of concurrent workers, and merges the
// partial results into one coherent output batch per entity.
//
// # Quick Start
//
//	ctx := context.Background()
//
//	src := source.NewMemorySource()
//	src.AddVolume("raw", rawVolume)
//
//	chunker, _ := chunk.NewChunker(src, chunk.Template{
//	    "raw": geometry.NewROI(geometry.Zeros(3), geometry.NewCoordinate(32, 64, 64)),
//	}, chunk.WithNumWorkers(8), chunk.WithCacheSize(16))
//
//	batch, _ := chunker.Serve(ctx, model.Request{
//	    "raw": geometry.NewROI(geometry.Zeros(3), geometry.NewCoordinate(96, 256, 256)),
//	})
//
// Providers compose freely: a chunker is itself a provider, so it can sit
// between a source and further downstream stages like the filters in the
// filter package.
package voxelpipe
