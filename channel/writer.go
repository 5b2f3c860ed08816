// File: channel/writer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Writer wraps a transactional ring writer with caller-side policy: bounded
// spinning on transient failures and an in-order FIFO backlog for records
// that still could not be placed. Records are atomic: a record is either
// fully published by one transaction or not visible at all.

package channel

import (
	"errors"
	"runtime"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-ring/api"
	"github.com/momentics/hioload-ring/control"
)

// Writer is not safe for concurrent use; it owns its producer instance the
// same way the producer owns its transaction state.
type Writer struct {
	w       api.TxWriter
	cfg     Config
	backlog *queue.Queue
	metrics *control.MetricsRegistry
}

// NewWriter wraps w with the given policy. metrics may be nil.
func NewWriter(w api.TxWriter, cfg Config, metrics *control.MetricsRegistry) *Writer {
	return &Writer{
		w:       w,
		cfg:     cfg,
		backlog: queue.New(),
		metrics: metrics,
	}
}

// Backlog returns the number of spilled records awaiting replay.
func (wr *Writer) Backlog() int {
	return wr.backlog.Length()
}

// inc bumps a metrics counter when a registry is attached.
func (wr *Writer) inc(key string, delta int64) {
	if wr.metrics != nil {
		wr.metrics.Add(key, delta)
	}
}

// tryWrite attempts one atomic record write with bounded spinning on
// transient failures. At least one attempt runs regardless of the spin
// budget, so a non-positive SpinAttempts can never report success for a
// record that was neither published nor handed back as an error.
func (wr *Writer) tryWrite(p []byte) error {
	for i := 0; ; i++ {
		_, err := wr.w.Write(p)
		if err == nil {
			wr.inc("writer.writes", 1)
			wr.inc("writer.bytes", int64(len(p)))
			return nil
		}
		if !errors.Is(err, api.ErrAgain) && !errors.Is(err, api.ErrNoSpace) {
			return err
		}
		if i+1 >= wr.cfg.SpinAttempts {
			return err
		}
		wr.inc("writer.retries", 1)
		runtime.Gosched()
	}
}

// Post publishes p as one atomic record. Older spilled records are always
// replayed first so the reader observes records in Post order. When the
// ring stays contended or full past the spin budget, the record is copied
// into the backlog; ErrBacklogFull reports an exhausted backlog bound.
func (wr *Writer) Post(p []byte) error {
	if _, err := wr.Flush(); err != nil && !isTransient(err) {
		return err
	}

	// Anything still backlogged must stay ahead of p in the record order.
	if wr.backlog.Length() > 0 {
		return wr.spill(p)
	}

	err := wr.tryWrite(p)
	if err == nil {
		return nil
	}
	if isTransient(err) {
		return wr.spill(p)
	}
	return err
}

// spill copies p into the backlog; the caller may reuse p immediately.
func (wr *Writer) spill(p []byte) error {
	if wr.cfg.MaxBacklog <= 0 || wr.backlog.Length() >= wr.cfg.MaxBacklog {
		return api.ErrBacklogFull
	}
	rec := make([]byte, len(p))
	copy(rec, p)
	wr.backlog.Add(rec)
	wr.inc("writer.spills", 1)
	return nil
}

// Flush replays spilled records in order until the backlog drains or the
// ring pushes back again. Returns the number of records published.
func (wr *Writer) Flush() (int, error) {
	flushed := 0
	for wr.backlog.Length() > 0 {
		rec := wr.backlog.Peek().([]byte)
		if err := wr.tryWrite(rec); err != nil {
			if isTransient(err) {
				return flushed, nil
			}
			return flushed, err
		}
		wr.backlog.Remove()
		wr.inc("writer.flushed", 1)
		flushed++
	}
	return flushed, nil
}

func isTransient(err error) bool {
	return errors.Is(err, api.ErrAgain) || errors.Is(err, api.ErrNoSpace)
}
