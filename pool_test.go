package ioredir

import "testing"

func TestPoolAllocateUpToCapacity(t *testing.T) {
	p := NewPool(3)
	var got []*Conn
	for i := 0; i < 3; i++ {
		c, ok := p.Allocate()
		if !ok {
			t.Fatalf("Allocate() #%d failed within capacity", i)
		}
		got = append(got, c)
	}
	if _, ok := p.Allocate(); ok {
		t.Fatalf("Allocate() succeeded past capacity")
	}
	_ = got
}

func TestPoolFreeMakesRecordReusable(t *testing.T) {
	p := NewPool(1)
	c, ok := p.Allocate()
	if !ok {
		t.Fatalf("Allocate() failed")
	}
	p.Free(c)

	c2, ok := p.Allocate()
	if !ok {
		t.Fatalf("Allocate() after Free failed")
	}
	if c2 != c {
		t.Fatalf("Free did not return the same record to the pool")
	}
}

func TestPoolAllocateAssignsDistinctIDs(t *testing.T) {
	p := NewPool(2)
	c1, _ := p.Allocate()
	c2, _ := p.Allocate()
	if c1.ID() == c2.ID() {
		t.Fatalf("Allocate gave two live records the same ID")
	}
}
