// File: shm/segment.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Platform-independent segment surface. Create/Open are implemented in the
// platform files; everything here works on the mapped region only.

package shm

import (
	"os"
	"path/filepath"

	"github.com/momentics/hioload-ring/core/ringbuf"
)

// DefaultRingCapacity is the data pool size used when a caller passes 0.
const DefaultRingCapacity = 1 << 16

// Segment is one mapped shared-memory ring. The creating side formats the
// region; openers attach to it. Close unmaps; only Unlink removes the
// backing file.
type Segment struct {
	file *os.File
	mem  []byte
	path string
	ring *ringbuf.RingBuffer
}

// Ring returns the ring view over the mapped region. Valid until Close.
func (s *Segment) Ring() *ringbuf.RingBuffer { return s.ring }

// Path returns the backing file path.
func (s *Segment) Path() string { return s.path }

// segmentPath places segments under /dev/shm when present, otherwise the
// temp directory.
func segmentPath(name string) string {
	if info, err := os.Stat("/dev/shm"); err == nil && info.IsDir() {
		return filepath.Join("/dev/shm", "hioload_ring_"+name)
	}
	return filepath.Join(os.TempDir(), "hioload_ring_"+name)
}
