// File: core/ringbuf/producer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Producer stages sub-writes into a ring and publishes them to the reader
// atomically at commit. One producer instance holds at most one open
// transaction; the header's write slot serializes transactions across all
// producer instances sharing the ring. Every operation is non-blocking:
// contention is reported as api.ErrAgain and the caller owns retry policy.

package ringbuf

import (
	"github.com/momentics/hioload-ring/api"
)

// Compile-time interface compliance.
var _ api.TxWriter = (*Producer)(nil)

// Producer is a thin non-owning write view over one ring. Transaction state
// (inTx, txSize) is local to the instance and invisible to other producers.
// Not safe for concurrent use by multiple goroutines; share the ring, not
// the producer.
type Producer struct {
	hdr    *Header
	data   []byte
	txSize uint64
	inTx   bool
}

// NewProducer binds a producer to a ring. The ring must outlive the
// producer. A nil or unmapped ring is a construction contract violation.
func NewProducer(rb *RingBuffer) *Producer {
	if rb == nil || rb.hdr == nil || rb.data == nil {
		panic("ringbuf: producer requires a mapped ring")
	}
	return &Producer{hdr: rb.hdr, data: rb.data}
}

// Capacity returns the ring's data pool size in bytes.
func (p *Producer) Capacity() int { return int(p.hdr.Capacity()) }

// InTx reports whether this instance has an open transaction.
func (p *Producer) InTx() bool { return p.inTx }

// TxSize returns the bytes staged but not yet published in the open
// transaction.
func (p *Producer) TxSize() int { return int(p.txSize) }

// StartTx opens a write transaction. Returns api.ErrTxBusy when this
// instance already has one open, api.ErrAgain when another instance holds
// the write slot. Neither failure changes any state.
func (p *Producer) StartTx() error {
	if p.inTx {
		return api.ErrTxBusy
	}
	if !p.hdr.BeginWriteTx() {
		return api.ErrAgain
	}
	p.inTx = true
	if p.txSize != 0 {
		panic("ringbuf: stale tx size on transaction start")
	}
	return nil
}

// CommitTx publishes all staged bytes by advancing head in one atomic step,
// then releases the write slot. Returns api.ErrNoTx when idle.
func (p *Producer) CommitTx() error {
	if !p.inTx {
		return api.ErrNoTx
	}
	p.hdr.AdvanceHead(p.txSize)
	p.txSize = 0
	p.inTx = false
	p.hdr.EndWriteTx()
	return nil
}

// CancelTx discards all staged bytes and releases the write slot; head is
// untouched, so the reader never sees them. Returns api.ErrNoTx when idle.
func (p *Producer) CancelTx() error {
	if !p.inTx {
		return api.ErrNoTx
	}
	p.txSize = 0
	p.inTx = false
	p.hdr.EndWriteTx()
	return nil
}

// Close asserts the producer is idle. Closing with an open transaction
// would leave the write slot held forever and corrupt every later
// transaction, so it is treated as a fatal programming error.
func (p *Producer) Close() {
	if p.inTx {
		panic("ringbuf: producer closed with open transaction")
	}
}

// AccessContiguousInTx reserves size bytes of the data pool for this
// transaction and returns them as 1 span, or 2 spans when the region wraps
// past the physical end of the pool. With allowPartial the request is
// clamped to the free space; without it a shortfall returns api.ErrNoSpace
// and leaves the transaction untouched (still open, txSize unchanged).
// A zero-size request, or zero free space under allowPartial, succeeds with
// zero spans. The caller writes into the spans directly; nothing is copied.
func (p *Producer) AccessContiguousInTx(size int, allowPartial bool) (int, api.Spans, error) {
	var spans api.Spans

	if !p.inTx {
		return 0, spans, api.ErrNoTx
	}
	if size == 0 {
		return 0, spans, nil
	}

	capacity := p.hdr.Capacity()
	head := p.hdr.Head()
	tail := p.hdr.Tail()

	// tail only ever grows, so a stale read under-estimates free space and
	// can never let the writer overrun the reader.
	used := head - tail
	if used+p.txSize > capacity {
		panic("ringbuf: head/tail invariant violated")
	}
	avail := capacity - used - p.txSize

	if !allowPartial && avail < uint64(size) {
		return 0, spans, api.ErrNoSpace
	}
	if avail == 0 {
		return 0, spans, nil
	}

	n := uint64(size)
	if n > avail {
		n = avail
	}

	mask := capacity - 1
	start := (head + p.txSize) & mask
	end := (start + n) & mask

	p.txSize += n

	// end == 0 means the region lands exactly on the pool boundary, which
	// is still contiguous.
	if wrap := start >= end && end > 0; !wrap {
		spans[0] = api.Span(p.data[start : start+n])
		return 1, spans, nil
	}
	spans[0] = api.Span(p.data[start:])
	spans[1] = api.Span(p.data[:end])
	return 2, spans, nil
}

// WriteInTx copies p (or a prefix of it when allowPartial and space is
// short) into spans acquired for this transaction, splitting the copy
// across a wrap. Returns the number of bytes staged.
func (p *Producer) WriteInTx(buf []byte, allowPartial bool) (int, error) {
	n, spans, err := p.AccessContiguousInTx(len(buf), allowPartial)
	if err != nil {
		return 0, err
	}
	switch n {
	case 0:
		return 0, nil
	case 1:
		return copy(spans[0], buf), nil
	case 2:
		k := copy(spans[0], buf)
		k += copy(spans[1], buf[k:])
		return k, nil
	default:
		panic("ringbuf: impossible span count")
	}
}

// Write copies buf into the ring as one atomic record: start, strict
// WriteInTx, commit. On any failure after the transaction opened it cancels
// before returning the error, so a failed Write never leaves a transaction
// open or publishes a partial record.
func (p *Producer) Write(buf []byte) (int, error) {
	if err := p.StartTx(); err != nil {
		return 0, err
	}
	n, err := p.WriteInTx(buf, false)
	if err != nil {
		_ = p.CancelTx()
		return 0, err
	}
	if n != len(buf) {
		panic("ringbuf: strict write staged short")
	}
	if err := p.CommitTx(); err != nil {
		return 0, err
	}
	return n, nil
}
