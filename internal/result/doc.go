// Package result implements the result builder of §4.E: it flattens a
// internal/merge.MergedTree into the four operation sets an applier
// feeds to its uploader and row stores — UpstreamCompletionOp,
// BufferCompletionOp, LocalOverrideCompletionOp, plus the POSTResult
// shape the uploader returns. Grounded on the teacher's (nicolagi/muscle)
// revision/commit separation (internal/tree's `Tree.Flush` building a
// `storage.Pointer` Revision to hand to the storage layer): one pure,
// non-suspending function turns decided merge state into a plan; a
// separate, later stage (internal/applier) is responsible for actually
// talking to collaborators.
package result
