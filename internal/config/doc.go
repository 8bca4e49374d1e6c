// Package config carries the applier's tunables as a functional-options
// value (§9 AMBIENT STACK "Configuration"): batch size for getBatch,
// a prefetch time budget, the favicon cache directory, and which
// storage backend (memory, disk, s3) backs each of LOCAL, MIRROR and
// BUFFER. There is no on-disk file format and no CLI: the merger is a
// library (§6), so C is always constructed programmatically by the
// embedding application via New and the With* options, following the
// same closure-over-a-mutable-receiver shape as the teacher's
// tree.TreeOption.
package config
