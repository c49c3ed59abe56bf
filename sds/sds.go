// Package sds implements a length-prefixed, binary-safe, amortizing
// growable byte buffer — the dynamic string primitive that database
// string objects are built from.
//
// Unlike the original C implementation, which hides the (len, free)
// header at a negative offset before a raw pointer so the handle can
// double as a C string, S is a plain owning struct around a byte slice,
// with Len and Avail accessors. The amortized-growth policy is
// preserved, and one byte of capacity past the content is reserved for
// a trailing sentinel; see the S type for which operations zero it.
package sds

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
)

// growSlabThreshold is the point past which GrowRoom switches from
// doubling to adding a fixed slab.
const growSlabThreshold = 1 << 20 // 1 MiB

// ErrNegativeLength is returned by IncrLen when the requested delta
// would push the buffer's length below zero.
var ErrNegativeLength = errors.New("sds: incr_len would produce negative length")

// ErrNegativeFree is returned by IncrLen when the requested delta
// would consume more than the available free space.
var ErrNegativeFree = errors.New("sds: incr_len would produce negative free space")

// S is a dynamic string handle. buf[:len(buf)] holds the user's bytes;
// one byte of capacity past them is always reserved for a sentinel, and
// cap(buf) - len(buf) - 1 is the free space. New, Dup, Cpy,
// RemoveFreeSpace and a reallocating GrowRoom leave a zero in the
// sentinel byte; Cat, Clear, Range, Trim and IncrLen do not rewrite it,
// so after them it may hold a stale byte.
type S struct {
	buf []byte
}

// New creates a handle with exactly the given contents.
func New(b []byte) *S {
	s := &S{buf: make([]byte, len(b), len(b)+1)}
	copy(s.buf, b)
	return s
}

// Empty creates a zero-length handle.
func Empty() *S {
	return New(nil)
}

// Dup deep-copies s.
func Dup(s *S) *S {
	return New(s.Bytes())
}

// Free releases s. It is a no-op on nil.
func Free(s *S) {
	if s == nil {
		return
	}
	s.buf = nil
}

// Bytes returns the used portion of the buffer. The caller must not
// retain it across a mutating call.
func (s *S) Bytes() []byte {
	return s.buf
}

// String returns the used portion as a string.
func (s *S) String() string {
	return string(s.buf)
}

// Len returns the number of user bytes currently stored.
func (s *S) Len() int {
	return len(s.buf)
}

// Avail returns the number of unused, already-allocated bytes.
func (s *S) Avail() int {
	return cap(s.buf) - len(s.buf) - 1
}

// GrowRoom ensures at least add additional writable bytes follow the
// current content, reallocating and growing the amortized total if
// necessary. If the current free space already covers add, it is a
// no-op.
func (s *S) GrowRoom(add int) {
	if s.Avail() >= add {
		return
	}
	newLen := s.Len() + add
	var newCap int
	if newLen < growSlabThreshold {
		newCap = newLen * 2
	} else {
		newCap = newLen + growSlabThreshold
	}
	buf := make([]byte, s.Len(), newCap+1)
	copy(buf, s.buf)
	s.buf = buf
}

// IncrLen moves the boundary between used and free space by delta
// (which may be negative) without reallocating. The caller must
// already have written any newly-used bytes in place (e.g. after
// writing into the slice returned by a future capacity-exposing API).
func (s *S) IncrLen(delta int) error {
	newLen := s.Len() + delta
	if newLen < 0 {
		return ErrNegativeLength
	}
	if delta > 0 && delta > s.Avail() {
		return ErrNegativeFree
	}
	s.buf = s.buf[:newLen]
	return nil
}

// Cat appends t to s, growing as needed.
func (s *S) Cat(t []byte) {
	s.GrowRoom(len(t))
	s.buf = append(s.buf, t...)
}

// CatCStr appends a NUL-terminated byte slice's contents up to (not
// including) the first zero byte.
func (s *S) CatCStr(t []byte) {
	if i := bytes.IndexByte(t, 0); i >= 0 {
		t = t[:i]
	}
	s.Cat(t)
}

// CatSds appends another handle's contents.
func (s *S) CatSds(t *S) {
	s.Cat(t.Bytes())
}

// Cpy overwrites s from position 0 with t, growing if needed. The
// sentinel zero past the new length is preserved even when t is
// shorter than s's previous content, by clearing the vacated tail
// rather than just reslicing over it.
func (s *S) Cpy(t []byte) {
	if cap(s.buf) < len(t)+1 {
		s.buf = make([]byte, len(t), len(t)*2+1)
		copy(s.buf, t)
		return
	}

	oldLen := len(s.buf)
	full := s.buf[:cap(s.buf)]
	copy(full, t)
	if oldLen > len(t) {
		clear(full[len(t) : oldLen+1])
	} else {
		full[len(t)] = 0
	}
	s.buf = full[:len(t)]
}

// CatPrintf formats with fmt.Sprintf and appends the result.
func (s *S) CatPrintf(format string, args ...interface{}) {
	s.Cat([]byte(fmt.Sprintf(format, args...)))
}

// Trim removes from both ends of s any byte present in cset.
func (s *S) Trim(cset string) {
	t := bytes.Trim(s.buf, cset)
	copy(s.buf, t)
	s.buf = s.buf[:len(t)]
}

// Range retains the inclusive sub-range [start, end] using slice
// semantics: negative indices count from the end, bounds are clamped,
// and start > end yields an empty result.
func (s *S) Range(start, end int) {
	l := s.Len()
	if l == 0 {
		return
	}
	if start < 0 {
		start = l + start
		if start < 0 {
			start = 0
		}
	}
	if end < 0 {
		end = l + end
		if end < 0 {
			end = 0
		}
	}
	if start >= l || start > end {
		s.buf = s.buf[:0]
		return
	}
	if end >= l {
		end = l - 1
	}
	newLen := end - start + 1
	copy(s.buf, s.buf[start:start+newLen])
	s.buf = s.buf[:newLen]
}

// Clear resets s to zero length without reallocating (lazy free).
func (s *S) Clear() {
	s.buf = s.buf[:0]
}

// RemoveFreeSpace shrinks the backing array to fit exactly the
// current content plus the sentinel.
func (s *S) RemoveFreeSpace() {
	buf := make([]byte, s.Len(), s.Len()+1)
	copy(buf, s.buf)
	s.buf = buf
}

// Cmp compares a and b lexicographically byte-wise, using length as a
// tiebreaker when one is a prefix of the other.
func Cmp(a, b *S) int {
	return bytes.Compare(a.Bytes(), b.Bytes())
}

// SplitLen splits s on every occurrence of sep, which may itself
// contain embedded zeros.
func SplitLen(s []byte, sep []byte) [][]byte {
	if len(sep) == 0 {
		return [][]byte{s}
	}
	return bytes.Split(s, sep)
}

// Join concatenates parts with sep between them.
func Join(parts [][]byte, sep []byte) []byte {
	return bytes.Join(parts, sep)
}

// MapChars returns a copy of src with every byte present in from
// replaced by the byte at the same position in to. from and to must
// be the same length.
func MapChars(src []byte, from, to []byte) []byte {
	var table [256]byte
	for i := range table {
		table[i] = byte(i)
	}
	for i, f := range from {
		table[f] = to[i]
	}
	out := make([]byte, len(src))
	for i, b := range src {
		out[i] = table[b]
	}
	return out
}
