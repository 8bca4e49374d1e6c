// Package applier implements component F: it orchestrates the tree
// builder, the three-way merger and the result builder against
// concrete internal/storage-backed row tables and an external
// uploader, behind a "green light" gate polled at each major stage
// (§4.F, §5). It drives a pass's I/O through internal/storage and
// internal/itemsource; internal/merge and internal/result stay pure.
//
// Grounded on the teacher's cmd/musclefs daemon loop (tree build →
// mutate → Tree.Flush → storage commit, gated by a lock and an
// optional gops diagnostics agent) generalized from a single mutable
// Tree to the three-sided LOCAL/MIRROR/BUFFER model this spec
// describes.
package applier
