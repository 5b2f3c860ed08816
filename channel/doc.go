// File: channel/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Convenience writer/reader layered over the transactional ring core. The
// core is strictly non-blocking; this package is where retry, backoff and
// overflow policy live. Writer spills records it cannot place into a FIFO
// backlog and replays them in order; Reader adds bounded spin helpers for
// callers that want to wait for data without owning a poll loop.
package channel
