// File: core/ringbuf/ringbuf.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// RingBuffer owns (or views) one header + data pool region and hands out
// non-owning Producer/Consumer views. The region is either heap-backed (New)
// or caller-provided (Init/Attach), e.g. a mapped shared-memory segment.

package ringbuf

import (
	"fmt"
	"unsafe"
)

// RingState is a snapshot of ring counters for debugging and metrics probes.
type RingState struct {
	Capacity    uint64 // data pool size in bytes
	Head        uint64 // monotonic write counter
	Tail        uint64 // monotonic read counter
	Used        uint64 // unread bytes (Head - Tail)
	WriteLocked bool   // write transaction slot held
	ReadLocked  bool   // read transaction slot held
}

// RingBuffer is a fixed-capacity circular byte channel: a shared Header
// control block followed by a power-of-two data pool.
type RingBuffer struct {
	hdr  *Header
	data []byte
	mem  []byte // whole region, kept alive for the heap-backed case
}

// roundUpPowerOfTwo returns the next power of two >= n, with a minimum of 8.
func roundUpPowerOfTwo(n int) uint64 {
	if n < 8 {
		return 8
	}
	x := uint64(n)
	if x&(x-1) == 0 {
		return x
	}
	x--
	x |= x >> 1
	x |= x >> 2
	x |= x >> 4
	x |= x >> 8
	x |= x >> 16
	x |= x >> 32
	x++
	return x
}

// TotalSize returns the byte size of a ring region for the given
// power-of-two data pool capacity (header + pool).
func TotalSize(capacity uint64) int {
	return HeaderSize + int(capacity)
}

// New allocates a heap-backed ring with at least minCap bytes of data pool.
// The actual capacity is the next power of two >= minCap and at least 8.
func New(minCap int) (*RingBuffer, error) {
	if minCap <= 0 {
		return nil, fmt.Errorf("ringbuf: capacity must be positive")
	}
	capacity := roundUpPowerOfTwo(minCap)

	// Back the region with uint64 words so the header overlay is 8-byte
	// aligned regardless of allocator behavior.
	words := make([]uint64, TotalSize(capacity)/8)
	mem := unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), TotalSize(capacity))

	rb, err := Init(mem, capacity)
	if err != nil {
		return nil, err
	}
	rb.mem = mem
	return rb, nil
}

// Init formats a caller-provided region as a fresh ring with the given
// power-of-two capacity and returns a view over it. The region must be at
// least TotalSize(capacity) bytes, 8-byte aligned, and outlive the view.
func Init(mem []byte, capacity uint64) (*RingBuffer, error) {
	if capacity == 0 || capacity&(capacity-1) != 0 {
		return nil, fmt.Errorf("ringbuf: capacity %d is not a power of two", capacity)
	}
	if err := checkRegion(mem, TotalSize(capacity)); err != nil {
		return nil, err
	}
	hdr := (*Header)(unsafe.Pointer(&mem[0]))
	hdr.init(capacity)
	return view(hdr), nil
}

// Attach overlays an already-initialized ring region (e.g. a shared-memory
// segment formatted by another process) and returns a view over it.
func Attach(mem []byte) (*RingBuffer, error) {
	if err := checkRegion(mem, HeaderSize); err != nil {
		return nil, err
	}
	hdr := (*Header)(unsafe.Pointer(&mem[0]))
	if !hdr.Valid() {
		return nil, fmt.Errorf("ringbuf: region is not an initialized ring")
	}
	if len(mem) < TotalSize(hdr.Capacity()) {
		return nil, fmt.Errorf("ringbuf: region too small: %d bytes for capacity %d",
			len(mem), hdr.Capacity())
	}
	return view(hdr), nil
}

func checkRegion(mem []byte, need int) error {
	if len(mem) < need {
		return fmt.Errorf("ringbuf: region too small: %d bytes, need %d", len(mem), need)
	}
	if uintptr(unsafe.Pointer(&mem[0]))%8 != 0 {
		return fmt.Errorf("ringbuf: region is not 8-byte aligned")
	}
	return nil
}

func view(hdr *Header) *RingBuffer {
	return &RingBuffer{
		hdr:  hdr,
		data: unsafe.Slice((*byte)(hdr.dataArea()), hdr.Capacity()),
	}
}

// Header returns the shared control block.
func (rb *RingBuffer) Header() *Header { return rb.hdr }

// Data returns the raw data pool. Direct access is only safe through spans
// handed out by an open transaction.
func (rb *RingBuffer) Data() []byte { return rb.data }

// Capacity returns the data pool size in bytes.
func (rb *RingBuffer) Capacity() int { return int(rb.hdr.Capacity()) }

// DebugState returns a consistent-enough snapshot of the ring counters.
func (rb *RingBuffer) DebugState() RingState {
	h := rb.hdr
	head := h.Head()
	tail := h.Tail()
	return RingState{
		Capacity:    h.Capacity(),
		Head:        head,
		Tail:        tail,
		Used:        head - tail,
		WriteLocked: h.WriteLocked(),
		ReadLocked:  h.ReadLocked(),
	}
}
