// File: core/ringbuf/header.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Shared control block of one ring buffer. The layout is fixed and position
// independent so the header can be overlaid on a mapped shared-memory region
// and accessed concurrently from several processes. All mutable fields are
// touched through sync/atomic only.

package ringbuf

import (
	"sync/atomic"
	"unsafe"
)

const (
	// HeaderMagic identifies an initialized ring region ("HIOLRING").
	HeaderMagic = uint64(0x48494F4C52494E47)

	// HeaderVersion is the current layout version.
	HeaderVersion = uint32(1)

	// HeaderSize is the byte size of the control block; the data pool
	// starts immediately after it.
	HeaderSize = 64
)

// Header is the shared control block. Field offsets are part of the
// cross-process contract and must not change within a layout version.
type Header struct {
	magic    uint64   // 0x00: HeaderMagic
	capacity uint64   // 0x08: data pool size in bytes, power of two
	head     uint64   // 0x10: monotonic write counter (bytes published)
	tail     uint64   // 0x18: monotonic read counter (bytes consumed)
	wlock    uint32   // 0x20: write transaction slot (0 free, 1 held)
	rlock    uint32   // 0x24: read transaction slot (0 free, 1 held)
	version  uint32   // 0x28: HeaderVersion
	_        uint32   // 0x2C: padding
	reserved [16]byte // 0x30-0x3F: reserved to 64B
}

// init formats the header in place for a data pool of the given
// power-of-two capacity.
func (h *Header) init(capacity uint64) {
	h.magic = HeaderMagic
	h.version = HeaderVersion
	atomic.StoreUint64(&h.capacity, capacity)
	atomic.StoreUint64(&h.head, 0)
	atomic.StoreUint64(&h.tail, 0)
	atomic.StoreUint32(&h.wlock, 0)
	atomic.StoreUint32(&h.rlock, 0)
}

// Capacity returns the data pool size in bytes.
func (h *Header) Capacity() uint64 {
	return atomic.LoadUint64(&h.capacity)
}

// Mask returns capacity-1 for fast masked wraparound.
func (h *Header) Mask() uint64 {
	return h.Capacity() - 1
}

// Head returns the monotonic write counter.
func (h *Header) Head() uint64 {
	return atomic.LoadUint64(&h.head)
}

// Tail returns the monotonic read counter.
func (h *Header) Tail() uint64 {
	return atomic.LoadUint64(&h.tail)
}

// Used returns the number of unread bytes (head - tail). Monotonic uint64
// arithmetic keeps this correct across counter differences.
func (h *Header) Used() uint64 {
	return h.Head() - h.Tail()
}

// Available returns the number of free bytes.
func (h *Header) Available() uint64 {
	return h.Capacity() - h.Used()
}

// AdvanceHead atomically publishes n more bytes to the reader. Legal only
// while holding the write lock; this is the single publication point of a
// write transaction.
func (h *Header) AdvanceHead(n uint64) {
	atomic.AddUint64(&h.head, n)
}

// AdvanceTail atomically releases n consumed bytes back to the writer.
// Legal only while holding the read lock.
func (h *Header) AdvanceTail(n uint64) {
	atomic.AddUint64(&h.tail, n)
}

// BeginWriteTx attempts to acquire the single write-transaction slot.
// Non-blocking: returns false immediately when another instance holds it.
func (h *Header) BeginWriteTx() bool {
	return atomic.CompareAndSwapUint32(&h.wlock, 0, 1)
}

// EndWriteTx releases the write-transaction slot. Must be called exactly
// once per successful BeginWriteTx.
func (h *Header) EndWriteTx() {
	atomic.StoreUint32(&h.wlock, 0)
}

// BeginReadTx attempts to acquire the single read-transaction slot.
func (h *Header) BeginReadTx() bool {
	return atomic.CompareAndSwapUint32(&h.rlock, 0, 1)
}

// EndReadTx releases the read-transaction slot.
func (h *Header) EndReadTx() {
	atomic.StoreUint32(&h.rlock, 0)
}

// WriteLocked reports whether the write slot is currently held.
func (h *Header) WriteLocked() bool {
	return atomic.LoadUint32(&h.wlock) != 0
}

// ReadLocked reports whether the read slot is currently held.
func (h *Header) ReadLocked() bool {
	return atomic.LoadUint32(&h.rlock) != 0
}

// Valid reports whether the header carries the expected magic, version and
// a power-of-two capacity.
func (h *Header) Valid() bool {
	if h.magic != HeaderMagic || h.version != HeaderVersion {
		return false
	}
	c := h.Capacity()
	return c != 0 && c&(c-1) == 0
}

// dataArea returns a pointer to the first data pool byte.
func (h *Header) dataArea() unsafe.Pointer {
	return unsafe.Pointer(uintptr(unsafe.Pointer(h)) + HeaderSize)
}
