// Package source provides upstream providers: pipeline stages that own
// data and realize requested sub-regions of it.
//
// MemorySource serves volumes and point sets held in memory and is the
// canonical test collaborator. BrickSource serves volumes stored as
// fixed-size compressed bricks in a blob store.
package source
