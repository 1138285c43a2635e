package perms

import (
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// Permission bits for "others" on the entry's own mode. The filesystem is
// the single source of truth; nothing is cached, so a flip is visible to
// the very next request.
const (
	OthersRead  fs.FileMode = 0o004
	OthersWrite fs.FileMode = 0o002
)

// Store reads and writes the public-readable / public-writable flags of
// filesystem entries through their permission bits. Writes to the same
// path are serialized to avoid losing one of two concurrent mode updates.
type Store struct {
	locks sync.Map // path -> *sync.Mutex
}

func NewStore() *Store {
	return &Store{}
}

// IsPubliclyReadable reports whether the entry's others-read bit is set.
// A stat failure reads as not readable.
func (s *Store) IsPubliclyReadable(path string) bool {
	return s.hasBit(path, OthersRead)
}

// IsPubliclyWritable reports whether the entry's others-write bit is set.
func (s *Store) IsPubliclyWritable(path string) bool {
	return s.hasBit(path, OthersWrite)
}

// SetPubliclyReadable sets or clears the others-read bit, leaving every
// other mode bit untouched.
func (s *Store) SetPubliclyReadable(path string, public bool) error {
	return s.setBit(path, OthersRead, public)
}

// SetPubliclyWritable sets or clears the others-write bit.
func (s *Store) SetPubliclyWritable(path string, writable bool) error {
	return s.setBit(path, OthersWrite, writable)
}

func (s *Store) hasBit(path string, bit fs.FileMode) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().Perm()&bit != 0
}

func (s *Store) setBit(path string, bit fs.FileMode, on bool) error {
	mu := s.pathLock(path)
	mu.Lock()
	defer mu.Unlock()

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %q: %w", path, err)
	}

	mode := info.Mode().Perm()
	if on {
		mode |= bit
	} else {
		mode &^= bit
	}

	if err := os.Chmod(path, mode); err != nil {
		return fmt.Errorf("chmod %q: %w", path, err)
	}
	return nil
}

func (s *Store) pathLock(path string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(path, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
