// this code is from https://github.com/ryogrid/SamehadaDB (VirtualDiskManagerImpl)
// there is license and copyright notice in licenses/SamehadaDB dir

package rawstore

import (
	"io"
	"sync"

	"github.com/dsnet/golib/memfile"
)

// MemStore is a Store backed entirely by memory via memfile.File. It gives
// unit tests and benchmarks heap-file semantics (growth, page-aligned
// offsets, short-read detection) without touching the filesystem.
type MemStore struct {
	mu sync.Mutex
	f  *memfile.File
}

// NewMemStore returns an empty in-memory Store.
func NewMemStore() *MemStore {
	return &MemStore{f: memfile.New(nil)}
}

func (s *MemStore) ReadAt(p []byte, off int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.ReadAt(p, off)
}

func (s *MemStore) WriteAt(p []byte, off int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.WriteAt(p, off)
}

func (s *MemStore) Size() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Seek(0, io.SeekEnd)
}

func (s *MemStore) Grow(n int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	end, err := s.f.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	_, err = s.f.WriteAt(make([]byte, n), end)
	return err
}

func (s *MemStore) Close() error { return nil }
