// File: core/ringbuf/consumer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Consumer is the mirror of Producer: it stages sub-reads from the unread
// region [tail, head) and releases the consumed bytes to the writer
// atomically at commit by advancing tail. The header's read slot serializes
// read transactions across all consumer instances sharing the ring.

package ringbuf

import (
	"github.com/momentics/hioload-ring/api"
)

// Compile-time interface compliance.
var _ api.TxReader = (*Consumer)(nil)

// Consumer is a thin non-owning read view over one ring. Transaction state
// is local to the instance. Not safe for concurrent use by multiple
// goroutines.
type Consumer struct {
	hdr    *Header
	data   []byte
	txSize uint64
	inTx   bool
}

// NewConsumer binds a consumer to a ring. The ring must outlive the
// consumer.
func NewConsumer(rb *RingBuffer) *Consumer {
	if rb == nil || rb.hdr == nil || rb.data == nil {
		panic("ringbuf: consumer requires a mapped ring")
	}
	return &Consumer{hdr: rb.hdr, data: rb.data}
}

// Capacity returns the ring's data pool size in bytes.
func (c *Consumer) Capacity() int { return int(c.hdr.Capacity()) }

// InTx reports whether this instance has an open transaction.
func (c *Consumer) InTx() bool { return c.inTx }

// TxSize returns the bytes staged but not yet released in the open
// transaction.
func (c *Consumer) TxSize() int { return int(c.txSize) }

// StartTx opens a read transaction. api.ErrTxBusy when this instance
// already has one open, api.ErrAgain when another instance holds the read
// slot.
func (c *Consumer) StartTx() error {
	if c.inTx {
		return api.ErrTxBusy
	}
	if !c.hdr.BeginReadTx() {
		return api.ErrAgain
	}
	c.inTx = true
	if c.txSize != 0 {
		panic("ringbuf: stale tx size on transaction start")
	}
	return nil
}

// CommitTx releases all staged bytes to the writer by advancing tail in one
// atomic step, then releases the read slot.
func (c *Consumer) CommitTx() error {
	if !c.inTx {
		return api.ErrNoTx
	}
	c.hdr.AdvanceTail(c.txSize)
	c.txSize = 0
	c.inTx = false
	c.hdr.EndReadTx()
	return nil
}

// CancelTx forgets all staged reads and releases the read slot; tail is
// untouched, so the same bytes are readable by the next transaction.
func (c *Consumer) CancelTx() error {
	if !c.inTx {
		return api.ErrNoTx
	}
	c.txSize = 0
	c.inTx = false
	c.hdr.EndReadTx()
	return nil
}

// Close asserts the consumer is idle; closing mid-transaction would leak
// the read slot and is treated as a fatal programming error.
func (c *Consumer) Close() {
	if c.inTx {
		panic("ringbuf: consumer closed with open transaction")
	}
}

// AccessContiguousInTx stages size readable bytes and returns them as 1
// span, or 2 spans across a wrap. With allowPartial the request is clamped
// to the unread bytes; without it a shortfall returns api.ErrNoData and
// leaves the transaction untouched. head only ever grows, so a stale read
// of it under-estimates available data, never over-estimates it.
func (c *Consumer) AccessContiguousInTx(size int, allowPartial bool) (int, api.Spans, error) {
	var spans api.Spans

	if !c.inTx {
		return 0, spans, api.ErrNoTx
	}
	if size == 0 {
		return 0, spans, nil
	}

	capacity := c.hdr.Capacity()
	head := c.hdr.Head()
	tail := c.hdr.Tail()

	used := head - tail
	if used > capacity || c.txSize > used {
		panic("ringbuf: head/tail invariant violated")
	}
	avail := used - c.txSize

	if !allowPartial && avail < uint64(size) {
		return 0, spans, api.ErrNoData
	}
	if avail == 0 {
		return 0, spans, nil
	}

	n := uint64(size)
	if n > avail {
		n = avail
	}

	mask := capacity - 1
	start := (tail + c.txSize) & mask
	end := (start + n) & mask

	c.txSize += n

	if wrap := start >= end && end > 0; !wrap {
		spans[0] = api.Span(c.data[start : start+n])
		return 1, spans, nil
	}
	spans[0] = api.Span(c.data[start:])
	spans[1] = api.Span(c.data[:end])
	return 2, spans, nil
}

// ReadInTx copies up to len(buf) staged bytes out of the ring (fewer when
// allowPartial and data is short). Returns the number of bytes staged.
func (c *Consumer) ReadInTx(buf []byte, allowPartial bool) (int, error) {
	n, spans, err := c.AccessContiguousInTx(len(buf), allowPartial)
	if err != nil {
		return 0, err
	}
	switch n {
	case 0:
		return 0, nil
	case 1:
		return copy(buf, spans[0]), nil
	case 2:
		k := copy(buf, spans[0])
		k += copy(buf[k:], spans[1])
		return k, nil
	default:
		panic("ringbuf: impossible span count")
	}
}

// Read consumes exactly len(buf) bytes as one atomic transaction. On any
// failure after the transaction opened it cancels before returning, so tail
// never advances on a failed Read.
func (c *Consumer) Read(buf []byte) (int, error) {
	if err := c.StartTx(); err != nil {
		return 0, err
	}
	n, err := c.ReadInTx(buf, false)
	if err != nil {
		_ = c.CancelTx()
		return 0, err
	}
	if n != len(buf) {
		panic("ringbuf: strict read staged short")
	}
	if err := c.CommitTx(); err != nil {
		return 0, err
	}
	return n, nil
}
