//go:build linux
// +build linux

// File: shm/segment_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux segment mapping via golang.org/x/sys/unix: shm file + ftruncate +
// mmap(MAP_SHARED). The creator formats the ring header in place; openers
// validate it before attaching.

package shm

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-ring/api"
	"github.com/momentics/hioload-ring/core/ringbuf"
)

// Create creates and formats a new segment. capacity is the data pool size
// in bytes and must be a power of two (DefaultRingCapacity when 0). Fails
// if a segment of that name already exists.
func Create(name string, capacity int) (*Segment, error) {
	if capacity <= 0 {
		capacity = DefaultRingCapacity
	}
	ringCap := uint64(capacity)
	if ringCap&(ringCap-1) != 0 {
		return nil, api.NewError(api.ErrCodeInternal, "segment capacity must be a power of two").
			WithContext("name", name).
			WithContext("capacity", capacity)
	}
	path := segmentPath(name)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("shm: create segment %s: %w", path, err)
	}
	cleanup := func() {
		file.Close()
		os.Remove(path)
	}

	total := ringbuf.TotalSize(ringCap)
	if err := file.Truncate(int64(total)); err != nil {
		cleanup()
		return nil, fmt.Errorf("shm: resize segment: %w", err)
	}

	mem, err := unix.Mmap(int(file.Fd()), 0, total,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("shm: mmap segment: %w", err)
	}

	ring, err := ringbuf.Init(mem, ringCap)
	if err != nil {
		_ = unix.Munmap(mem)
		cleanup()
		return nil, fmt.Errorf("shm: format segment: %w", err)
	}

	return &Segment{file: file, mem: mem, path: path, ring: ring}, nil
}

// Open maps an existing segment created by another process and validates
// the ring header.
func Open(name string) (*Segment, error) {
	path := segmentPath(name)

	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("shm: open segment %s: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("shm: stat segment: %w", err)
	}
	if info.Size() < ringbuf.HeaderSize {
		file.Close()
		return nil, api.NewError(api.ErrCodeInternal, "segment file too small").
			WithContext("path", path).
			WithContext("size", info.Size())
	}

	mem, err := unix.Mmap(int(file.Fd()), 0, int(info.Size()),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("shm: mmap segment: %w", err)
	}

	ring, err := ringbuf.Attach(mem)
	if err != nil {
		_ = unix.Munmap(mem)
		file.Close()
		return nil, fmt.Errorf("shm: attach segment: %w", err)
	}

	return &Segment{file: file, mem: mem, path: path, ring: ring}, nil
}

// Close unmaps the region and closes the backing file. The segment file
// stays in place for other processes; remove it with Unlink.
func (s *Segment) Close() error {
	var first error
	if s.mem != nil {
		if err := unix.Munmap(s.mem); err != nil {
			first = fmt.Errorf("shm: munmap: %w", err)
		}
		s.mem = nil
		s.ring = nil
	}
	if s.file != nil {
		if err := s.file.Close(); err != nil && first == nil {
			first = fmt.Errorf("shm: close: %w", err)
		}
		s.file = nil
	}
	return first
}

// Unlink removes the backing file. Existing mappings stay valid until
// their own Close.
func (s *Segment) Unlink() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("shm: unlink segment: %w", err)
	}
	return nil
}
