// Package api
// Author: momentics@gmail.com
//
// Transactional byte-channel contracts for cross-thread and cross-process
// producer/consumer pairs.

package api

// TxWriter is the transactional write contract. A writer stages any number
// of sub-writes inside one transaction and publishes them to the reader
// atomically at commit. All operations are non-blocking; contention is
// reported as ErrAgain and retried by the caller.
type TxWriter interface {
	// StartTx opens a transaction. ErrTxBusy if one is already open on
	// this instance, ErrAgain if another instance holds the write lock.
	StartTx() error
	// CommitTx publishes all bytes staged in the open transaction and
	// releases the write lock. ErrNoTx if no transaction is open.
	CommitTx() error
	// CancelTx discards all bytes staged in the open transaction and
	// releases the write lock. ErrNoTx if no transaction is open.
	CancelTx() error
	// AccessContiguousInTx reserves size writable bytes (or fewer when
	// allowPartial) and returns the number of valid spans covering them.
	AccessContiguousInTx(size int, allowPartial bool) (int, Spans, error)
	// WriteInTx copies p (or a prefix of it when allowPartial) into the
	// ring and returns the number of bytes staged.
	WriteInTx(p []byte, allowPartial bool) (int, error)
	// Write is the one-shot helper: start, strict WriteInTx, commit.
	// All-or-nothing; a failed Write never leaves a transaction open.
	Write(p []byte) (int, error)
	// InTx reports whether this instance has an open transaction.
	InTx() bool
}

// TxReader is the symmetric transactional read contract.
type TxReader interface {
	StartTx() error
	CommitTx() error
	CancelTx() error
	AccessContiguousInTx(size int, allowPartial bool) (int, Spans, error)
	ReadInTx(p []byte, allowPartial bool) (int, error)
	Read(p []byte) (int, error)
	InTx() bool
}
