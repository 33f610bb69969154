// Package filter provides pipeline stages that wrap an upstream
// Provider and derive or rewrite entities on the way through.
//
// Filters compose: each one is itself a Provider, so a chunker, a
// profiler and any number of derivation stages can be stacked in
// front of a source.
//
//	src := source.NewMemorySource()
//	rast := filter.NewRasterizePoints(src, "synapses", "synapse-map",
//	    filter.WithRadius(2))
//	prov := filter.NewProfile(rast, "train-pipeline")
package filter
