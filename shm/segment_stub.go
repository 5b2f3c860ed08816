//go:build !linux
// +build !linux

// File: shm/segment_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Non-Linux stubs. In-process rings (ringbuf.New) work everywhere; mapped
// segments are Linux-only for now.

package shm

import "github.com/momentics/hioload-ring/api"

// Create is not available on this platform.
func Create(name string, capacity int) (*Segment, error) {
	return nil, api.ErrNotSupported
}

// Open is not available on this platform.
func Open(name string) (*Segment, error) {
	return nil, api.ErrNotSupported
}

// Close is a no-op on this platform.
func (s *Segment) Close() error { return nil }

// Unlink is a no-op on this platform.
func (s *Segment) Unlink() error { return nil }
