package dict

import (
	"hash/maphash"
	"unsafe"
)

// Iterator walks every entry across both sub-tables. An unsafe
// iterator (the default) permits no mutation or lookup while it is
// open; on Release its fingerprint is rechecked and a mismatch panics
// — that is a programmer-contract violation, not a runtime error a
// caller can recover from. A safe iterator (GetSafeIterator) may
// interleave mutation, at the cost of suppressing automatic rehashing
// for as long as any safe iterator is open.
type Iterator struct {
	d     *Dict
	table int
	index int64
	safe  bool

	entry, nextEntry *Entry

	fingerprint uint64
	started     bool
	released    bool
}

// GetIterator returns an unsafe iterator over d.
func (d *Dict) GetIterator() *Iterator {
	return &Iterator{d: d, index: -1}
}

// GetSafeIterator returns a safe iterator over d.
func (d *Dict) GetSafeIterator() *Iterator {
	it := d.GetIterator()
	it.safe = true
	return it
}

// Next advances the iterator and returns the next entry, or nil when
// exhausted. The look-ahead pointer to the following entry is
// captured before returning, so the caller may delete the entry it
// was just given through a safe iterator without invalidating the
// walk.
func (it *Iterator) Next() *Entry {
	if it.released {
		panic("dict: Next called on a released iterator")
	}

	for {
		if it.entry == nil {
			t := &it.d.ht[it.table]
			if it.index == -1 && it.table == 0 {
				it.started = true
				if it.safe {
					it.d.iterators.Inc()
					if it.d.Metrics != nil {
						it.d.Metrics.IteratorOpened(true)
					}
				} else {
					it.fingerprint = fingerprint(it.d)
				}
			}
			it.index++
			if uint64(it.index) >= t.size {
				if it.d.IsRehashing() && it.table == 0 {
					it.table++
					it.index = 0
					t = &it.d.ht[1]
				} else {
					return nil
				}
			}
			if t.size == 0 {
				return nil
			}
			it.entry = t.buckets[it.index]
		} else {
			it.entry = it.nextEntry
		}

		if it.entry != nil {
			it.nextEntry = it.entry.next
			return it.entry
		}
	}
}

// Release closes the iterator. For a safe iterator this decrements
// the dictionary's live-iterator count, re-enabling automatic
// rehashing once the count reaches zero. For an unsafe iterator this
// asserts the structural fingerprint has not changed since Next was
// first called; a mismatch means the caller mutated or looked up
// through the dictionary mid-iteration, which is forbidden.
func (it *Iterator) Release() {
	if it.released {
		return
	}
	it.released = true

	if !it.started {
		return
	}
	if it.safe {
		it.d.iterators.Dec()
		if it.d.Metrics != nil {
			it.d.Metrics.IteratorClosed(true)
		}
		return
	}
	if fingerprint(it.d) != it.fingerprint {
		panic("dict: unsafe iterator fingerprint mismatch — dictionary was mutated during iteration")
	}
}

var fingerprintSeed = maphash.MakeSeed()

// fingerprint hashes the six structural fields the unsafe-iterator
// contract protects: each sub-table's backing array identity, size,
// and used count.
func fingerprint(d *Dict) uint64 {
	var h maphash.Hash
	h.SetSeed(fingerprintSeed)

	write := func(t *table) {
		var addr uintptr
		if len(t.buckets) > 0 {
			addr = uintptr(unsafe.Pointer(&t.buckets[0]))
		}
		var buf [24]byte
		putUint64(buf[0:8], uint64(addr))
		putUint64(buf[8:16], t.size)
		putUint64(buf[16:24], t.used)
		_, _ = h.Write(buf[:])
	}

	write(&d.ht[0])
	write(&d.ht[1])

	return h.Sum64()
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}
