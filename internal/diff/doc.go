// Package diff renders a unified diff between two value records, used
// to log the human-readable shape of a merge conflict when both the
// local and remote side changed a bookmark's content and differ (see
// internal/merge). It builds on the line-diff algorithm from
// github.com/andreyvit/diff, the same foundation the teacher repo
// (nicolagi/muscle) uses for inter-revision filesystem diffs.
package diff
