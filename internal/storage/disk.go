package storage

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/pkg/errors"
)

// DiskStore persists each key as a file under dir, sharded two levels
// deep by the key's first two characters so a single directory never
// holds an unbounded number of entries. Suitable as the fast half of a
// Paired store, or standalone for a local-only MIRROR.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

func (s *DiskStore) Get(k Key) (Value, error) {
	b, err := ioutil.ReadFile(s.pathFor(k))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%q: %w", k, ErrNotFound)
	}
	return b, err
}

func (s *DiskStore) Put(k Key, v Value) error {
	p := s.pathFor(k)
	pnew := p + ".new"
	err := os.WriteFile(pnew, v, 0666)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		if err = os.MkdirAll(filepath.Dir(pnew), 0777); err != nil {
			return err
		}
		err = os.WriteFile(pnew, v, 0666)
	}
	if err != nil {
		return err
	}
	return syscall.Rename(pnew, p)
}

func (s *DiskStore) Delete(k Key) error {
	err := os.Remove(s.pathFor(k))
	if err != nil {
		perr, ok := err.(*os.PathError)
		if ok {
			serr, ok := perr.Err.(syscall.Errno)
			if ok && serr == syscall.ENOENT {
				return errors.Wrapf(ErrNotFound, "could not delete %v", k)
			}
		}
	}
	return err
}

func (s *DiskStore) ForEach(cb func(Key) error) error {
	var kk []Key
	err := filepath.Walk(s.dir, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}
		// pathFor joins dir, the two-character shard prefix, then the
		// key itself, so the key is everything after that first path
		// component. Recovering it via filepath.Base would truncate a
		// key that itself contains a "/", such as a structure row's
		// "parent/child" key.
		rel, err := filepath.Rel(s.dir, p)
		if err != nil {
			return err
		}
		_, key, ok := strings.Cut(filepath.ToSlash(rel), "/")
		if !ok {
			return nil
		}
		kk = append(kk, Key(key))
		return nil
	})
	if err != nil {
		return err
	}
	for _, k := range kk {
		if err := cb(k); err != nil {
			return err
		}
	}
	return nil
}

func (s *DiskStore) Contains(k Key) (bool, error) {
	_, err := os.Stat(s.pathFor(k))
	if os.IsNotExist(err) {
		return false, nil
	}
	return true, err
}

func (s *DiskStore) pathFor(key Key) string {
	k := string(key)
	return filepath.Join(s.dir, k[:2], k)
}
