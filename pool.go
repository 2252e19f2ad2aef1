package ioredir

import "sync/atomic"

// Pool is a bounded, non-blocking pool of Conn records, standing in for
// the reference implementation's fixed-size-block allocator
// (mem_init/mem_new/mem_delete). Exhaustion is reported to the caller
// rather than blocking or growing unboundedly.
type Pool struct {
	free    chan *Conn
	idGen   uint64
	nextCap int
}

// NewPool pre-allocates capacity Conn records.
func NewPool(capacity int) *Pool {
	p := &Pool{free: make(chan *Conn, capacity), nextCap: capacity}
	for i := 0; i < capacity; i++ {
		p.free <- &Conn{}
	}
	return p
}

// Allocate returns a fresh Conn record, or ok=false if the pool is
// exhausted. It never blocks.
func (p *Pool) Allocate() (c *Conn, ok bool) {
	select {
	case c = <-p.free:
		c.id = atomic.AddUint64(&p.idGen, 1)
		return c, true
	default:
		return nil, false
	}
}

// Free resets and returns a Conn record to the pool. Freeing a record
// not obtained from this pool, or freeing one twice, is a caller bug.
func (p *Pool) Free(c *Conn) {
	c.reset()
	select {
	case p.free <- c:
	default:
		// Pool capacity exceeded: can only happen on a double-free,
		// which would otherwise corrupt the channel. Drop silently
		// rather than block or panic.
	}
}

// Cap reports the pool's total capacity.
func (p *Pool) Cap() int { return p.nextCap }
