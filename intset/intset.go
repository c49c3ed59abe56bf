// Package intset implements a sorted, deduplicated array of integers
// whose element width is promoted automatically as larger values are
// added.
package intset

import (
	"encoding/binary"
	"math/rand/v2"
	"sort"

	"github.com/pkg/errors"
)

// Encoding is the width in which elements are currently stored.
type Encoding uint8

const (
	Enc16 Encoding = 2
	Enc32 Encoding = 4
	Enc64 Encoding = 8
)

// ErrOutOfRange is returned by Get when pos is outside [0, Len()).
var ErrOutOfRange = errors.New("intset: position out of range")

// Set is an intset handle.
type Set struct {
	enc      Encoding
	contents []byte
}

// New creates an empty set with the smallest encoding.
func New() *Set {
	return &Set{enc: Enc16}
}

func encodingFor(v int64) Encoding {
	switch {
	case v >= -32768 && v <= 32767:
		return Enc16
	case v >= -2147483648 && v <= 2147483647:
		return Enc32
	default:
		return Enc64
	}
}

// Len returns the number of elements.
func (s *Set) Len() int {
	if s.enc == 0 {
		return 0
	}
	return len(s.contents) / int(s.enc)
}

// BlobLen returns the total byte size of the element array.
func (s *Set) BlobLen() int {
	return len(s.contents)
}

// Encoding returns the set's current encoding.
func (s *Set) Encoding() Encoding {
	return s.enc
}

func (s *Set) valueAt(i int) int64 {
	off := i * int(s.enc)
	switch s.enc {
	case Enc16:
		return int64(int16(binary.LittleEndian.Uint16(s.contents[off:])))
	case Enc32:
		return int64(int32(binary.LittleEndian.Uint32(s.contents[off:])))
	default:
		return int64(binary.LittleEndian.Uint64(s.contents[off:]))
	}
}

func appendValue(buf []byte, enc Encoding, v int64) []byte {
	switch enc {
	case Enc16:
		var tmp [2]byte
		binary.LittleEndian.PutUint16(tmp[:], uint16(int16(v)))
		return append(buf, tmp[:]...)
	case Enc32:
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], uint32(int32(v)))
		return append(buf, tmp[:]...)
	default:
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], uint64(v))
		return append(buf, tmp[:]...)
	}
}

// search returns the index of v if present, and whether it was found.
// If not found, the index is where v would be inserted to keep order.
func (s *Set) search(v int64) (int, bool) {
	n := s.Len()
	idx := sort.Search(n, func(i int) bool {
		return s.valueAt(i) >= v
	})
	if idx < n && s.valueAt(idx) == v {
		return idx, true
	}
	return idx, false
}

// upgradeAndAdd widens every element to newEnc, then inserts v, which
// by construction is the new minimum or maximum.
func (s *Set) upgradeAndAdd(newEnc Encoding, v int64) {
	n := s.Len()
	buf := make([]byte, 0, (n+1)*int(newEnc))
	prepend := v < 0
	if prepend {
		buf = appendValue(buf, newEnc, v)
	}
	for i := 0; i < n; i++ {
		buf = appendValue(buf, newEnc, s.valueAt(i))
	}
	if !prepend {
		buf = appendValue(buf, newEnc, v)
	}
	s.enc = newEnc
	s.contents = buf
}

// Add inserts v in sorted order, upgrading the encoding first if v
// doesn't fit the current one. Returns whether an insertion occurred
// (false if v was already present).
func (s *Set) Add(v int64) bool {
	needed := encodingFor(v)
	if needed > s.enc {
		s.upgradeAndAdd(needed, v)
		return true
	}

	idx, found := s.search(v)
	if found {
		return false
	}

	off := idx * int(s.enc)
	tail := appendValue(nil, s.enc, v)
	s.contents = append(s.contents, tail...)
	copy(s.contents[off+int(s.enc):], s.contents[off:len(s.contents)-int(s.enc)])
	copy(s.contents[off:], tail)
	return true
}

// Remove splices v out if present, preserving order and encoding (no
// downgrade). Returns whether it was present.
func (s *Set) Remove(v int64) bool {
	if encodingFor(v) > s.enc {
		return false
	}
	idx, found := s.search(v)
	if !found {
		return false
	}
	off := idx * int(s.enc)
	copy(s.contents[off:], s.contents[off+int(s.enc):])
	s.contents = s.contents[:len(s.contents)-int(s.enc)]
	return true
}

// Find reports whether v is present.
func (s *Set) Find(v int64) bool {
	if encodingFor(v) > s.enc {
		return false
	}
	_, found := s.search(v)
	return found
}

// Random returns a uniformly random element. Undefined on an empty
// set.
func (s *Set) Random() int64 {
	return s.valueAt(rand.IntN(s.Len()))
}

// Get performs positional access with bounds checking.
func (s *Set) Get(pos int) (int64, error) {
	if pos < 0 || pos >= s.Len() {
		return 0, ErrOutOfRange
	}
	return s.valueAt(pos), nil
}
