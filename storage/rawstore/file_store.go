// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package rawstore

import "os"

// FileStore is a Store backed by a real file on disk.
type FileStore struct {
	f *os.File
}

// OpenFile opens (creating if necessary) the file at path as a Store.
func OpenFile(path string) (*FileStore, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		return nil, err
	}
	return &FileStore{f: f}, nil
}

func (s *FileStore) ReadAt(p []byte, off int64) (int, error)  { return s.f.ReadAt(p, off) }
func (s *FileStore) WriteAt(p []byte, off int64) (int, error) { return s.f.WriteAt(p, off) }
func (s *FileStore) Close() error                             { return s.f.Close() }

func (s *FileStore) Size() (int64, error) {
	info, err := s.f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (s *FileStore) Grow(n int64) error {
	size, err := s.Size()
	if err != nil {
		return err
	}
	_, err = s.f.WriteAt(make([]byte, n), size)
	return err
}
