package historical

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"unsafe"

	"golang.org/x/exp/mmap"
)

var ErrEof = errors.New("EOF")

// Source reads fixed-width binary records out of a memory-mapped file. The
// record width is the in-memory size of T; the file must be an exact multiple
// of it, which Open verifies once so reads never have to.
type Source[T any] struct {
	path       string
	recordSize int

	reader  *mmap.ReaderAt
	entries int64

	bufferPool *sync.Pool
}

func NewSource[T any](path string) *Source[T] {
	recordSize := int(unsafe.Sizeof(*new(T)))
	return &Source[T]{
		path:       path,
		recordSize: recordSize,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buffer := make([]byte, recordSize)
				return &buffer
			},
		},
	}
}

func (s *Source[T]) Open() error {
	if s.recordSize == 0 {
		return fmt.Errorf("record size of %q is zero", s.path)
	}

	reader, err := mmap.Open(s.path)
	if err != nil {
		return fmt.Errorf("unable to open data source %q: %w", s.path, err)
	}
	if reader.Len()%s.recordSize != 0 {
		_ = reader.Close()
		return fmt.Errorf("data source %q: size %d is not a multiple of the %d byte record",
			s.path, reader.Len(), s.recordSize)
	}

	s.reader = reader
	s.entries = int64(reader.Len() / s.recordSize)
	return nil
}

func (s *Source[T]) Close() {
	if s.reader != nil {
		_ = s.reader.Close()
	}
}

// EntryCount is the number of records the mapped file holds.
func (s *Source[T]) EntryCount() int64 {
	return s.entries
}

func (s *Source[T]) Read(index int64, data *T) error {
	if index < 0 || index >= s.entries {
		return ErrEof
	}

	buffer := s.bufferPool.Get().(*[]byte)
	defer s.bufferPool.Put(buffer)

	n, err := s.reader.ReadAt(*buffer, index*int64(s.recordSize))
	if err != nil && err != io.EOF {
		return fmt.Errorf("unable to read record %d: %w", index, err)
	}
	if n < s.recordSize {
		return ErrEof
	}

	*data = *(*T)(unsafe.Pointer(&(*buffer)[0])) // #nosec G103
	return nil
}
