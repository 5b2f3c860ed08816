// File: core/ringbuf/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fixed-capacity shared-memory byte ring with transactional producer and
// consumer views. The ring is a single contiguous region: a 64-byte control
// header followed by a power-of-two data pool. Head and tail are monotonic
// 64-bit byte counters; physical offsets are counter & (capacity-1). The
// header carries one single-slot lock per side, so at most one write
// transaction and one read transaction exist system-wide at any instant.
//
// The region may live on the Go heap (New) or inside a mapped shared-memory
// segment (Init/Attach), so the same producer/consumer code serves both
// cross-goroutine and cross-process channels.
package ringbuf
