// Package merge implements the three-way bookmark tree merger of §4.D:
// it walks LOCAL, MIRROR and REMOTE BookmarkTrees in parallel and
// produces a single MergedTree, labelling each node with the value-
// and structure-state decision that produced it. Grounded on
// internal/tree/merge.go's merge3way recursive walk (sameKeyOrBothNil,
// the base/local/remote three-way comparison, the directory-recursion
// shape), adapted from a path-keyed filesystem tree to a GUID-keyed
// bookmark tree: where muscle recurses into a single shared directory
// node per path, this package must first resolve, for every GUID, a
// single merged parent assignment (since a node may have moved to a
// different parent on either side), then merge child ordering once per
// surviving folder.
package merge
