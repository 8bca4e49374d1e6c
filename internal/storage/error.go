package storage

import "fmt"

// errorf prefixes an error with the package and method that produced
// it, used by the propagation log where a bare os error would be
// ambiguous about which file operation failed.
func errorf(typeMethod, format string, a ...interface{}) error {
	return fmt.Errorf("github.com/nicolagi/bookmarksync/internal/storage."+typeMethod+": "+format, a...)
}
