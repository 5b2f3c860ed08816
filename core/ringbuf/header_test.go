// Copyright 2025 momentics@gmail.com
// Licensed under the Apache License, Version 2.0.

// header_test.go — Control block layout, counters and transaction slots.
package ringbuf

import (
	"sync"
	"testing"
	"unsafe"
)

func TestHeader_SizeMatchesLayout(t *testing.T) {
	if sz := unsafe.Sizeof(Header{}); sz != HeaderSize {
		t.Fatalf("Header size %d, want %d", sz, HeaderSize)
	}
}

func TestHeader_CountersAndMask(t *testing.T) {
	rb := newRing(t, 16)
	h := rb.Header()

	if h.Capacity() != 16 || h.Mask() != 15 {
		t.Fatalf("capacity/mask: %d/%d", h.Capacity(), h.Mask())
	}
	h.AdvanceHead(10)
	h.AdvanceTail(4)
	if h.Head() != 10 || h.Tail() != 4 {
		t.Fatalf("head/tail: %d/%d", h.Head(), h.Tail())
	}
	if h.Used() != 6 || h.Available() != 10 {
		t.Fatalf("used/avail: %d/%d", h.Used(), h.Available())
	}
}

func TestHeader_WriteSlotIsExclusive(t *testing.T) {
	rb := newRing(t, 16)
	h := rb.Header()

	if !h.BeginWriteTx() {
		t.Fatal("first acquire failed")
	}
	if h.BeginWriteTx() {
		t.Fatal("second acquire succeeded while held")
	}
	// The read slot is independent of the write slot.
	if !h.BeginReadTx() {
		t.Fatal("read slot blocked by write slot")
	}
	h.EndReadTx()
	h.EndWriteTx()
	if !h.BeginWriteTx() {
		t.Fatal("acquire after release failed")
	}
	h.EndWriteTx()
}

// Hammer the write slot from many goroutines; the single-slot CAS must
// admit exactly one holder at a time.
func TestHeader_SlotUnderContention(t *testing.T) {
	rb := newRing(t, 16)
	h := rb.Header()

	const goroutines = 8
	const rounds = 2000
	var wg sync.WaitGroup
	var inside, entered int64
	var mu sync.Mutex

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				if !h.BeginWriteTx() {
					continue
				}
				mu.Lock()
				inside++
				if inside != 1 {
					t.Errorf("slot admitted %d holders", inside)
				}
				entered++
				inside--
				mu.Unlock()
				h.EndWriteTx()
			}
		}()
	}
	wg.Wait()
	if entered == 0 {
		t.Fatal("no goroutine ever acquired the slot")
	}
}
