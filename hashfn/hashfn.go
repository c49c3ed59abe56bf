// Package hashfn provides the two built-in hash functions the dict
// package's vtables may use, plus the process-wide seed they share.
package hashfn

import (
	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
	"go.uber.org/atomic"
)

var seed = atomic.NewUint32(5381)

// SetSeed sets the process-wide hash seed. Identical seeds across
// runs produce identical hashes for Sum and SumCaseInsensitive.
func SetSeed(s uint32) {
	seed.Store(s)
}

// Seed returns the current process-wide hash seed.
func Seed() uint32 {
	return seed.Load()
}

// Sum is the default MurmurHash2-family mixer, seeded by the
// process-wide seed.
func Sum(key []byte) uint32 {
	return murmur3.Sum32WithSeed(key, seed.Load())
}

// SumCaseInsensitive lowercases ASCII bytes of key before mixing, so
// that keys differing only in ASCII case hash identically. It uses a
// distinct mixer family (xxhash) rather than re-deriving Sum's output,
// so the two built-ins are independent in practice as well as intent.
func SumCaseInsensitive(key []byte) uint32 {
	buf := make([]byte, len(key))
	for i, b := range key {
		if b >= 'A' && b <= 'Z' {
			b += 'a' - 'A'
		}
		buf[i] = b
	}
	d := xxhash.New()
	var seedBuf [4]byte
	s := seed.Load()
	seedBuf[0] = byte(s)
	seedBuf[1] = byte(s >> 8)
	seedBuf[2] = byte(s >> 16)
	seedBuf[3] = byte(s >> 24)
	_, _ = d.Write(seedBuf[:])
	_, _ = d.Write(buf)
	return uint32(d.Sum64())
}
