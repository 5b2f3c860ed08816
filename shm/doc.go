// File: shm/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Shared-memory segments backing cross-process rings. A segment is a
// /dev/shm file holding exactly one ring region (64-byte control header
// followed by the power-of-two data pool), mapped MAP_SHARED into each
// participating process. Linux only; other platforms get ErrNotSupported
// stubs.
package shm
