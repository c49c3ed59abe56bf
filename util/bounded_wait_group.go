package util

import "sync"

// BoundedWaitGroup behaves like sync.WaitGroup except it caps the
// number of outstanding Add calls, so a fan-out loop can throttle
// itself to a fixed number of concurrent goroutines without a
// separate semaphore.
type BoundedWaitGroup struct {
	wg sync.WaitGroup
	ch chan struct{}
}

// NewBoundedWaitGroup creates a BoundedWaitGroup with the given
// concurrency. A zero capacity would block every Add forever, so it
// panics instead.
func NewBoundedWaitGroup(capacity uint) BoundedWaitGroup {
	if capacity == 0 {
		panic("util: BoundedWaitGroup capacity must be greater than zero")
	}
	return BoundedWaitGroup{ch: make(chan struct{}, capacity)}
}

// Add adds delta, blocking until capacity is available if delta is
// positive.
func (bwg *BoundedWaitGroup) Add(delta int) {
	for i := 0; i > delta; i-- {
		<-bwg.ch
	}
	for i := 0; i < delta; i++ {
		bwg.ch <- struct{}{}
	}
	bwg.wg.Add(delta)
}

// Done decrements the group by one, freeing a slot of capacity.
func (bwg *BoundedWaitGroup) Done() {
	bwg.Add(-1)
}

// Wait blocks until the group count returns to zero.
func (bwg *BoundedWaitGroup) Wait() {
	bwg.wg.Wait()
}
