package dict

import "math/bits"

// ScanFunc is invoked once per entry encountered during a Scan call.
type ScanFunc func(privdata interface{}, e *Entry)

// Scan walks the table(s) reachable from cursor, invoking fn for
// every entry found there, and returns the next cursor to resume
// from. A returned cursor of 0 signals completion. Every key present
// for the entire scan is visited at least once; a key may be visited
// more than once if the table grows or shrinks mid-scan. The cursor
// is reverse-binary-incremented against the mask of the larger
// sub-table, which keeps the traversal resilient to resizing between
// calls.
func (d *Dict) Scan(cursor uint64, fn ScanFunc, privdata interface{}) uint64 {
	if d.Len() == 0 {
		return 0
	}

	visit := func(t *table, idx uint64) {
		for e := t.buckets[idx]; e != nil; e = e.next {
			fn(privdata, e)
		}
	}

	var small, large *table
	if !d.IsRehashing() {
		small = &d.ht[0]
		large = &d.ht[0]
	} else {
		small, large = &d.ht[0], &d.ht[1]
		if small.size > large.size {
			small, large = large, small
		}
	}

	m0, m1 := small.mask, large.mask

	visit(small, cursor&m0)

	if small != large {
		for {
			visit(large, cursor&m1)
			cursor = (((cursor | m0) + 1) & ^m0) | (cursor & m0)
			if cursor&(m0^m1) == 0 {
				break
			}
		}
	}

	cursor |= ^m0
	cursor = bits.Reverse64(cursor)
	cursor++
	cursor = bits.Reverse64(cursor)

	return cursor
}
