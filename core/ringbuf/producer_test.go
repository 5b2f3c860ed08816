// Copyright 2025 momentics@gmail.com
// Licensed under the Apache License, Version 2.0.

// producer_test.go — Transaction lifecycle, span acquisition and one-shot
// write semantics of the Producer.
package ringbuf

import (
	"bytes"
	"errors"
	"testing"

	"github.com/momentics/hioload-ring/api"
)

func newRing(t *testing.T, capacity int) *RingBuffer {
	t.Helper()
	rb, err := New(capacity)
	if err != nil {
		t.Fatalf("New(%d): %v", capacity, err)
	}
	if rb.Capacity() != capacity {
		t.Fatalf("capacity: got %d, want %d", rb.Capacity(), capacity)
	}
	return rb
}

// drain consumes n bytes so tests can position head/tail precisely.
func drain(t *testing.T, rb *RingBuffer, n int) {
	t.Helper()
	cs := NewConsumer(rb)
	buf := make([]byte, n)
	if _, err := cs.Read(buf); err != nil {
		t.Fatalf("drain %d: %v", n, err)
	}
}

func TestProducer_WriteAdvancesHeadExactly(t *testing.T) {
	rb := newRing(t, 8)
	pr := NewProducer(rb)

	n, err := pr.Write([]byte("ABC"))
	if err != nil || n != 3 {
		t.Fatalf("Write: n=%d err=%v", n, err)
	}
	if st := rb.DebugState(); st.Head != 3 || st.Tail != 0 {
		t.Fatalf("after first write: head=%d tail=%d", st.Head, st.Tail)
	}

	n, err = pr.Write([]byte("DE"))
	if err != nil || n != 2 {
		t.Fatalf("second Write: n=%d err=%v", n, err)
	}
	if st := rb.DebugState(); st.Head != 5 {
		t.Fatalf("after second write: head=%d", st.Head)
	}
	if !bytes.Equal(rb.Data()[:5], []byte("ABCDE")) {
		t.Fatalf("pool contents: %q", rb.Data()[:5])
	}
}

// End-to-end scenario: strict request past the free space fails without
// touching the transaction, the partial retry stages exactly the free
// space, and commit publishes it all at once.
func TestProducer_StrictThenPartialThenCommit(t *testing.T) {
	rb := newRing(t, 8)
	pr := NewProducer(rb)

	if _, err := pr.Write([]byte("ABC")); err != nil {
		t.Fatal(err)
	}
	if _, err := pr.Write([]byte("DE")); err != nil {
		t.Fatal(err)
	}

	if err := pr.StartTx(); err != nil {
		t.Fatalf("StartTx: %v", err)
	}
	n, _, err := pr.AccessContiguousInTx(5, false)
	if !errors.Is(err, api.ErrNoSpace) || n != 0 {
		t.Fatalf("strict over-request: n=%d err=%v, want ErrNoSpace", n, err)
	}
	if pr.TxSize() != 0 {
		t.Fatalf("txSize changed on failed strict request: %d", pr.TxSize())
	}

	n, spans, err := pr.AccessContiguousInTx(5, true)
	if err != nil || n != 1 {
		t.Fatalf("partial request: n=%d err=%v", n, err)
	}
	if len(spans[0]) != 3 {
		t.Fatalf("partial span length: %d, want 3", len(spans[0]))
	}
	if &spans[0][0] != &rb.Data()[5] {
		t.Fatal("partial span not at pool offset 5")
	}
	if pr.TxSize() != 3 {
		t.Fatalf("txSize after partial: %d", pr.TxSize())
	}

	if err := pr.CommitTx(); err != nil {
		t.Fatalf("CommitTx: %v", err)
	}
	if st := rb.DebugState(); st.Head != 8 {
		t.Fatalf("head after commit: %d, want 8", st.Head)
	}
}

func TestProducer_PartialVsStrict(t *testing.T) {
	rb := newRing(t, 8)
	pr := NewProducer(rb)

	if _, err := pr.Write([]byte("XYZ")); err != nil { // 5 bytes free
		t.Fatal(err)
	}
	if err := pr.StartTx(); err != nil {
		t.Fatal(err)
	}
	if _, _, err := pr.AccessContiguousInTx(6, false); !errors.Is(err, api.ErrNoSpace) {
		t.Fatalf("strict 6 of 5: %v, want ErrNoSpace", err)
	}
	n, spans, err := pr.AccessContiguousInTx(6, true)
	if err != nil {
		t.Fatalf("partial 6 of 5: %v", err)
	}
	if got := spans.Total(n); got != 5 {
		t.Fatalf("partial granted %d bytes, want 5", got)
	}
	if pr.TxSize() != 5 {
		t.Fatalf("txSize after partial: %d, want 5", pr.TxSize())
	}
	if err := pr.CancelTx(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_WrapYieldsTwoSpans(t *testing.T) {
	rb := newRing(t, 8)
	pr := NewProducer(rb)

	if _, err := pr.Write(make([]byte, 6)); err != nil {
		t.Fatal(err)
	}
	drain(t, rb, 4) // head=6 tail=4, 6 bytes free

	if err := pr.StartTx(); err != nil {
		t.Fatal(err)
	}
	n, spans, err := pr.AccessContiguousInTx(4, false)
	if err != nil || n != 2 {
		t.Fatalf("wrap request: n=%d err=%v", n, err)
	}
	if len(spans[0]) != 2 || len(spans[1]) != 2 {
		t.Fatalf("span lengths: %d,%d want 2,2", len(spans[0]), len(spans[1]))
	}
	if spans.Total(n) != 4 {
		t.Fatalf("spans total: %d", spans.Total(n))
	}
	if &spans[0][0] != &rb.Data()[6] {
		t.Fatal("first span not at pool offset 6")
	}
	if &spans[1][0] != &rb.Data()[0] {
		t.Fatal("second span not at pool offset 0")
	}

	// Spans are zero-copy windows: bytes written through them land in the
	// pool and become readable in order after commit.
	copy(spans[0], "wx")
	copy(spans[1], "yz")
	if err := pr.CommitTx(); err != nil {
		t.Fatal(err)
	}
	drain(t, rb, 2)
	got := make([]byte, 4)
	if _, err := NewConsumer(rb).Read(got); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte("wxyz")) {
		t.Fatalf("round trip across wrap: %q", got)
	}
}

func TestProducer_DoubleStartTxIsBusy(t *testing.T) {
	rb := newRing(t, 8)
	pr := NewProducer(rb)

	if err := pr.StartTx(); err != nil {
		t.Fatal(err)
	}
	if _, _, err := pr.AccessContiguousInTx(2, false); err != nil {
		t.Fatal(err)
	}

	if err := pr.StartTx(); !errors.Is(err, api.ErrTxBusy) {
		t.Fatalf("second StartTx: %v, want ErrTxBusy", err)
	}
	if pr.TxSize() != 2 {
		t.Fatalf("txSize disturbed by busy StartTx: %d", pr.TxSize())
	}
	if !rb.Header().WriteLocked() {
		t.Fatal("write slot released by busy StartTx")
	}
	if err := pr.CancelTx(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_MutualExclusionAcrossInstances(t *testing.T) {
	rb := newRing(t, 8)
	a := NewProducer(rb)
	b := NewProducer(rb)

	if err := a.StartTx(); err != nil {
		t.Fatal(err)
	}
	if err := b.StartTx(); !errors.Is(err, api.ErrAgain) {
		t.Fatalf("StartTx on locked ring: %v, want ErrAgain", err)
	}
	if err := a.CommitTx(); err != nil {
		t.Fatal(err)
	}
	if err := b.StartTx(); err != nil {
		t.Fatalf("StartTx after release: %v", err)
	}
	if err := b.CancelTx(); err != nil {
		t.Fatal(err)
	}

	// Same after a cancel.
	if err := a.StartTx(); err != nil {
		t.Fatal(err)
	}
	if err := b.StartTx(); !errors.Is(err, api.ErrAgain) {
		t.Fatalf("want ErrAgain, got %v", err)
	}
	if err := a.CancelTx(); err != nil {
		t.Fatal(err)
	}
	if err := b.StartTx(); err != nil {
		t.Fatalf("StartTx after cancel: %v", err)
	}
	_ = b.CancelTx()
}

func TestProducer_CancelDiscardsWithoutPublishing(t *testing.T) {
	rb := newRing(t, 8)
	pr := NewProducer(rb)

	if err := pr.StartTx(); err != nil {
		t.Fatal(err)
	}
	if _, err := pr.WriteInTx([]byte("junk"), false); err != nil {
		t.Fatal(err)
	}
	if err := pr.CancelTx(); err != nil {
		t.Fatal(err)
	}
	if st := rb.DebugState(); st.Head != 0 || st.WriteLocked {
		t.Fatalf("after cancel: head=%d locked=%v", st.Head, st.WriteLocked)
	}

	// The voided bytes are overwritten by the next transaction.
	if _, err := pr.Write([]byte("good")); err != nil {
		t.Fatal(err)
	}
	got := make([]byte, 4)
	if _, err := NewConsumer(rb).Read(got); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte("good")) {
		t.Fatalf("read %q after cancel+write", got)
	}
}

func TestProducer_InTxMisuse(t *testing.T) {
	rb := newRing(t, 8)
	pr := NewProducer(rb)

	if err := pr.CommitTx(); !errors.Is(err, api.ErrNoTx) {
		t.Fatalf("CommitTx idle: %v", err)
	}
	if err := pr.CancelTx(); !errors.Is(err, api.ErrNoTx) {
		t.Fatalf("CancelTx idle: %v", err)
	}
	if _, _, err := pr.AccessContiguousInTx(1, false); !errors.Is(err, api.ErrNoTx) {
		t.Fatalf("AccessContiguousInTx idle: %v", err)
	}
	if _, err := pr.WriteInTx([]byte("x"), false); !errors.Is(err, api.ErrNoTx) {
		t.Fatalf("WriteInTx idle: %v", err)
	}
}

func TestProducer_ZeroSizeAndFullRing(t *testing.T) {
	rb := newRing(t, 8)
	pr := NewProducer(rb)

	if err := pr.StartTx(); err != nil {
		t.Fatal(err)
	}
	n, _, err := pr.AccessContiguousInTx(0, false)
	if err != nil || n != 0 {
		t.Fatalf("zero-size request: n=%d err=%v", n, err)
	}

	// Fill the ring inside the same transaction, then a partial request
	// against zero free space succeeds with zero spans.
	if _, err := pr.WriteInTx(make([]byte, 8), false); err != nil {
		t.Fatal(err)
	}
	n, _, err = pr.AccessContiguousInTx(1, true)
	if err != nil || n != 0 {
		t.Fatalf("partial request on full ring: n=%d err=%v", n, err)
	}
	if pr.TxSize() != 8 {
		t.Fatalf("txSize: %d", pr.TxSize())
	}
	if err := pr.CommitTx(); err != nil {
		t.Fatal(err)
	}
	if st := rb.DebugState(); st.Used != 8 {
		t.Fatalf("used: %d", st.Used)
	}
}

func TestProducer_FailedWriteLeavesNoTransaction(t *testing.T) {
	rb := newRing(t, 8)
	pr := NewProducer(rb)

	if _, err := pr.Write(make([]byte, 6)); err != nil {
		t.Fatal(err)
	}
	if _, err := pr.Write(make([]byte, 4)); !errors.Is(err, api.ErrNoSpace) {
		t.Fatalf("over-full Write: %v, want ErrNoSpace", err)
	}
	if pr.InTx() {
		t.Fatal("failed Write left a transaction open")
	}
	if rb.Header().WriteLocked() {
		t.Fatal("failed Write left the write slot held")
	}
	if st := rb.DebugState(); st.Head != 6 {
		t.Fatalf("head moved on failed Write: %d", st.Head)
	}
}

func TestProducer_CloseWithOpenTxPanics(t *testing.T) {
	rb := newRing(t, 8)
	pr := NewProducer(rb)
	if err := pr.StartTx(); err != nil {
		t.Fatal(err)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("Close with open transaction did not panic")
		}
		_ = pr.CancelTx()
	}()
	pr.Close()
}

func TestNewProducer_NilRingPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewProducer(nil) did not panic")
		}
	}()
	NewProducer(nil)
}
