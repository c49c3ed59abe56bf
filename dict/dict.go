// Package dict implements a chained hash map with two internal
// sub-tables and incremental rehashing: inserts, lookups, and deletes
// never pay for a full-table resize in one call. It is the structural
// core that database object types (strings, sets, hashes) are
// expected to be layered on top of; this package owns none of that
// layering.
//
// A Dict is not safe for concurrent use: it takes no locks, so only one
// goroutine at a time may call any of its methods.
package dict

import (
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	rkvlog "github.com/rkvcore/rkv/internal/log"
)

// initialSize is the size of a sub-table the first time it is
// allocated.
const initialSize = 4

// forceResizeRatio is the load factor past which Add will expand the
// table even when automatic resizing is globally disabled.
const forceResizeRatio = 5

// ErrAlreadyRehashing is returned by Expand when the dictionary is
// already mid-rehash.
var ErrAlreadyRehashing = errors.New("dict: already rehashing")

// ErrSizeTooSmall is returned by Expand when n is smaller than the
// number of entries already present.
var ErrSizeTooSmall = errors.New("dict: requested size smaller than current used count")

// ErrResizeForbidden is returned by Resize when automatic resizing is
// globally disabled, or the dictionary is mid-rehash.
var ErrResizeForbidden = errors.New("dict: resize forbidden while rehashing or auto-resize disabled")

// ErrIteratorsActive describes the state in which rehashing cannot
// run because a safe iterator holds the dictionary open. No operation
// in this package returns it: Rehash and the automatic per-operation
// step do nothing in that state instead.
var ErrIteratorsActive = errors.New("dict: cannot rehash while an iterator is active")

var globalResizeEnabled = atomic.NewBool(true)

// EnableResize allows Add to grow a table automatically once its load
// factor reaches 1. This is a process-wide toggle, mirroring the
// original library's global so that external mechanisms (e.g.
// fork-based snapshotting) can suspend growth to avoid copy-on-write
// disturbance.
func EnableResize() { globalResizeEnabled.Store(true) }

// DisableResize suspends automatic growth; growth past a 5x load
// factor still proceeds, matching the original's escape hatch.
func DisableResize() { globalResizeEnabled.Store(false) }

// ResizeEnabled reports the current value of the global toggle.
func ResizeEnabled() bool { return globalResizeEnabled.Load() }

// Type is the vtable of behavior a Dict needs from its caller: how to
// hash and compare keys, and how to duplicate/destroy keys and
// values. HashFunction is required; the other fields are optional:
// nil duplicators mean "store as given", nil destructors mean
// "nothing to release", and a nil KeyCompare falls back to interface
// equality.
type Type struct {
	HashFunction  func(key interface{}) uint32
	KeyDup        func(privdata, key interface{}) interface{}
	ValDup        func(privdata, val interface{}) interface{}
	KeyCompare    func(privdata, a, b interface{}) bool
	KeyDestructor func(privdata, key interface{})
	ValDestructor func(privdata, val interface{})
}

func (t *Type) hash(key interface{}) uint32 {
	return t.HashFunction(key)
}

func (t *Type) keysEqual(privdata, a, b interface{}) bool {
	if t.KeyCompare != nil {
		return t.KeyCompare(privdata, a, b)
	}
	return a == b
}

func (t *Type) dupKey(privdata, key interface{}) interface{} {
	if t.KeyDup != nil {
		return t.KeyDup(privdata, key)
	}
	return key
}

// MetricsRecorder receives optional structural events. A nil
// Recorder on a Dict means "don't bother" — the core never pays for
// instrumentation it isn't given.
type MetricsRecorder interface {
	RehashStepped(d *Dict)
	RehashFinished(d *Dict)
	TableExpanded(d *Dict, oldSize, newSize uint64)
	IteratorOpened(safe bool)
	IteratorClosed(safe bool)
}

type table struct {
	buckets []*Entry
	size    uint64
	mask    uint64
	used    uint64
}

func (t *table) alloc(size uint64) {
	t.buckets = make([]*Entry, size)
	t.size = size
	t.mask = size - 1
	t.used = 0
}

func (t *table) reset() {
	t.buckets = nil
	t.size = 0
	t.mask = 0
	t.used = 0
}

// Dict is a hash table with incremental rehashing.
type Dict struct {
	typ      *Type
	PrivData interface{}

	ht        [2]table
	rehashIdx int64

	iterators atomic.Int32

	// Metrics, when non-nil, is notified of structural events. Safe
	// to leave nil for embedded use.
	Metrics MetricsRecorder

	// Logger, when non-nil, receives a rate-limited debug line on
	// every rehash step. Left nil by Create; callers that expect a
	// dictionary to churn heavily under rehash should attach one via
	// rkvlog.NewRateLimitedLogger to avoid flooding output.
	Logger *rkvlog.RateLimitedLogger
}

// Create returns a fresh dictionary with both sub-tables empty.
func Create(typ *Type, privdata interface{}) *Dict {
	return &Dict{
		typ:       typ,
		PrivData:  privdata,
		rehashIdx: -1,
	}
}

// IsRehashing reports whether a rehash is in progress.
func (d *Dict) IsRehashing() bool {
	return d.rehashIdx != -1
}

// Len returns the number of live entries.
func (d *Dict) Len() uint64 {
	return d.ht[0].used + d.ht[1].used
}

// Slots returns the total number of buckets across both sub-tables.
func (d *Dict) Slots() uint64 {
	return d.ht[0].size + d.ht[1].size
}

// Iterators returns the number of currently live safe iterators.
func (d *Dict) Iterators() int32 {
	return d.iterators.Load()
}

func nextPower(size uint64) uint64 {
	i := uint64(initialSize)
	for i < size {
		i *= 2
	}
	return i
}

// Expand allocates a second table sized to the next power of two >=
// max(n, initialSize, current used count), and begins rehashing into
// it — unless the first table is still empty, in which case the new
// table simply replaces it with no rehash needed.
func (d *Dict) Expand(n uint64) error {
	if d.IsRehashing() {
		return ErrAlreadyRehashing
	}
	if d.ht[0].used > n {
		return ErrSizeTooSmall
	}

	realSize := nextPower(n)

	var nt table
	nt.alloc(realSize)

	if d.ht[0].buckets == nil {
		d.ht[0] = nt
		return nil
	}

	oldSize := d.ht[0].size
	d.ht[1] = nt
	d.rehashIdx = 0
	if d.Metrics != nil {
		d.Metrics.TableExpanded(d, oldSize, realSize)
	}
	return nil
}

// Resize shrinks or grows to the smallest power of two >= used count
// and >= initialSize. Forbidden while global auto-resize is disabled
// or while already rehashing.
func (d *Dict) Resize() error {
	if !ResizeEnabled() || d.IsRehashing() {
		return ErrResizeForbidden
	}
	minimal := d.ht[0].used
	if minimal < initialSize {
		minimal = initialSize
	}
	return d.Expand(minimal)
}

func (d *Dict) expandIfNeeded() error {
	if d.IsRehashing() {
		return nil
	}
	if d.ht[0].size == 0 {
		return d.Expand(initialSize)
	}
	if d.ht[0].used >= d.ht[0].size &&
		(ResizeEnabled() || d.ht[0].used/d.ht[0].size > forceResizeRatio) {
		return d.Expand(d.ht[0].used * 2)
	}
	return nil
}

// keyIndex returns the bucket index a new entry for key should land
// in, and the sub-table it belongs to (1 if rehashing, else 0). If key
// is already present, existing is its entry and idx/tableIdx are
// meaningless.
func (d *Dict) keyIndex(key interface{}) (tableIdx int, idx uint64, existing *Entry, err error) {
	if err = d.expandIfNeeded(); err != nil {
		return 0, 0, nil, err
	}

	h := d.typ.hash(key)
	for t := 0; t <= 1; t++ {
		if d.ht[t].size == 0 {
			continue
		}
		bIdx := uint64(h) & d.ht[t].mask
		for e := d.ht[t].buckets[bIdx]; e != nil; e = e.next {
			if d.typ.keysEqual(d.PrivData, key, e.key) {
				return 0, 0, e, nil
			}
		}
		if !d.IsRehashing() {
			break
		}
	}

	insertTable := 0
	if d.IsRehashing() {
		insertTable = 1
	}
	return insertTable, uint64(h) & d.ht[insertTable].mask, nil, nil
}

// AddRaw reserves an entry for key without setting a value, returning
// nil if key is already present.
func (d *Dict) AddRaw(key interface{}) *Entry {
	if d.IsRehashing() {
		d.rehashStep()
	}

	tableIdx, idx, existing, err := d.keyIndex(key)
	if err != nil || existing != nil {
		return nil
	}

	t := &d.ht[tableIdx]
	e := &Entry{key: d.typ.dupKey(d.PrivData, key), next: t.buckets[idx]}
	t.buckets[idx] = e
	t.used++
	return e
}

// Add inserts (key, val), failing if key is already present.
func (d *Dict) Add(key, val interface{}) error {
	e := d.AddRaw(key)
	if e == nil {
		return errors.New("dict: key already present")
	}
	d.SetVal(e, val)
	return nil
}

// Replace inserts if key is absent, otherwise overwrites the existing
// value (destructing the old one first). Returns true if a new entry
// was inserted, false if an existing one was overwritten.
func (d *Dict) Replace(key, val interface{}) bool {
	if err := d.Add(key, val); err == nil {
		return true
	}
	e := d.Find(key)
	d.freeValue(e.val)
	d.SetVal(e, val)
	return false
}

// ReplaceRaw returns the existing entry for key, or AddRaw(key) if
// absent.
func (d *Dict) ReplaceRaw(key interface{}) *Entry {
	if e := d.Find(key); e != nil {
		return e
	}
	return d.AddRaw(key)
}

func (d *Dict) genericDelete(key interface{}, free bool) bool {
	if d.ht[0].size == 0 {
		return false
	}
	if d.IsRehashing() {
		d.rehashStep()
	}

	h := d.typ.hash(key)
	for t := 0; t <= 1; t++ {
		if d.ht[t].size == 0 {
			continue
		}
		idx := uint64(h) & d.ht[t].mask
		var prev *Entry
		for e := d.ht[t].buckets[idx]; e != nil; e = e.next {
			if d.typ.keysEqual(d.PrivData, key, e.key) {
				if prev != nil {
					prev.next = e.next
				} else {
					d.ht[t].buckets[idx] = e.next
				}
				if free {
					d.freeKey(e.key)
					d.freeValue(e.val)
				}
				d.ht[t].used--
				return true
			}
			prev = e
		}
		if !d.IsRehashing() {
			break
		}
	}
	return false
}

// Delete unlinks key and destructs its key and value.
func (d *Dict) Delete(key interface{}) bool {
	return d.genericDelete(key, true)
}

// DeleteNoFree unlinks key without invoking destructors.
func (d *Dict) DeleteNoFree(key interface{}) bool {
	return d.genericDelete(key, false)
}

// Find returns the entry for key, or nil.
func (d *Dict) Find(key interface{}) *Entry {
	if d.ht[0].size == 0 {
		return nil
	}
	if d.IsRehashing() {
		d.rehashStep()
	}

	h := d.typ.hash(key)
	for t := 0; t <= 1; t++ {
		if d.ht[t].size == 0 {
			continue
		}
		idx := uint64(h) & d.ht[t].mask
		for e := d.ht[t].buckets[idx]; e != nil; e = e.next {
			if d.typ.keysEqual(d.PrivData, key, e.key) {
				return e
			}
		}
		if !d.IsRehashing() {
			return nil
		}
	}
	return nil
}

// FetchValue is a convenience wrapper returning the value for key, or
// nil, false if absent.
func (d *Dict) FetchValue(key interface{}) (interface{}, bool) {
	e := d.Find(key)
	if e == nil {
		return nil, false
	}
	return e.Val(), true
}

func (d *Dict) freeKey(key interface{}) {
	if d.typ.KeyDestructor != nil {
		d.typ.KeyDestructor(d.PrivData, key)
	}
}

func (d *Dict) freeValue(v entryValue) {
	if v.kind == kindPtr && d.typ.ValDestructor != nil {
		d.typ.ValDestructor(d.PrivData, v.ptr)
	}
}

// SetVal applies the value duplicator (if any) and stores val as the
// pointer variant of e's tagged union.
func (d *Dict) SetVal(e *Entry, val interface{}) {
	if d.typ.ValDup != nil {
		e.val = entryValue{kind: kindPtr, ptr: d.typ.ValDup(d.PrivData, val)}
	} else {
		e.val = entryValue{kind: kindPtr, ptr: val}
	}
}

// Release destructs all entries and frees both sub-tables.
func (d *Dict) Release() {
	d.clear(&d.ht[0], nil)
	d.clear(&d.ht[1], nil)
	d.rehashIdx = -1
	d.iterators.Store(0)
}

// EmptyAll destructs all entries, leaving the dictionary at its
// initial (empty) state. If cb is non-nil it is called periodically
// during the bucket sweep, useful for progress heartbeats on large
// tables.
func (d *Dict) EmptyAll(cb func()) {
	d.clear(&d.ht[0], cb)
	d.clear(&d.ht[1], cb)
	d.rehashIdx = -1
	d.iterators.Store(0)
}

func (d *Dict) clear(t *table, cb func()) {
	for i := uint64(0); i < t.size && t.used > 0; i++ {
		if cb != nil && i&65535 == 0 {
			cb()
		}
		e := t.buckets[i]
		if e == nil {
			continue
		}
		for e != nil {
			next := e.next
			d.freeKey(e.key)
			d.freeValue(e.val)
			t.used--
			e = next
		}
		t.buckets[i] = nil
	}
	t.reset()
}
