// File: api/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Public contracts of the hioload-ring library: span types, transactional
// writer/reader interfaces and the shared error taxonomy. Implementations
// live in core/ringbuf, shm and channel.
package api
