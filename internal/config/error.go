package config

import "github.com/pkg/errors"

// ErrInvalid is returned by New when an option sets an inconsistent or
// out-of-range value (e.g. a zero batch size, or an s3 backend with no
// bucket named).
var ErrInvalid = errors.New("config: invalid option")
