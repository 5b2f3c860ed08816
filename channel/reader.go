// File: channel/reader.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Reader wraps a transactional ring reader with poll and bounded-spin
// helpers. The core never blocks; waiting happens here, on the caller's
// terms.

package channel

import (
	"errors"
	"runtime"

	"github.com/momentics/hioload-ring/api"
	"github.com/momentics/hioload-ring/control"
)

// Reader is not safe for concurrent use.
type Reader struct {
	r       api.TxReader
	cfg     Config
	metrics *control.MetricsRegistry
}

// NewReader wraps r with the given policy. metrics may be nil.
func NewReader(r api.TxReader, cfg Config, metrics *control.MetricsRegistry) *Reader {
	return &Reader{r: r, cfg: cfg, metrics: metrics}
}

func (rd *Reader) inc(key string, delta int64) {
	if rd.metrics != nil {
		rd.metrics.Add(key, delta)
	}
}

// Poll copies up to len(buf) currently-readable bytes out of the ring in
// one transaction and returns how many it got, zero when the ring is empty
// or the read slot is contended. Never waits.
func (rd *Reader) Poll(buf []byte) (int, error) {
	if err := rd.r.StartTx(); err != nil {
		if errors.Is(err, api.ErrAgain) {
			return 0, nil
		}
		return 0, err
	}
	n, err := rd.r.ReadInTx(buf, true)
	if err != nil {
		_ = rd.r.CancelTx()
		return 0, err
	}
	if err := rd.r.CommitTx(); err != nil {
		return 0, err
	}
	if n > 0 {
		rd.inc("reader.reads", 1)
		rd.inc("reader.bytes", int64(n))
	}
	return n, nil
}

// ReadFull spins until it consumes exactly len(buf) bytes as one atomic
// transaction, or the spin budget runs out. Returns the core's transient
// error when the budget is exhausted. At least one attempt runs regardless
// of the spin budget, so a non-positive SpinAttempts can never return a
// zero-byte success.
func (rd *Reader) ReadFull(buf []byte) (int, error) {
	for i := 0; ; i++ {
		n, err := rd.r.Read(buf)
		if err == nil {
			rd.inc("reader.reads", 1)
			rd.inc("reader.bytes", int64(n))
			return n, nil
		}
		if !errors.Is(err, api.ErrAgain) && !errors.Is(err, api.ErrNoData) {
			return 0, err
		}
		if i+1 >= rd.cfg.SpinAttempts {
			return 0, err
		}
		rd.inc("reader.retries", 1)
		runtime.Gosched()
	}
}
