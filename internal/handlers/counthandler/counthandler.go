// Package counthandler contains a handler that counts
package counthandler

import (
	"sync/atomic"

	"github.com/ooni/tlsapi/model"
)

// Handler is the count handler
type Handler struct {
	// Count is the number of measurements.
	Count int64

	// Handshakes is the number of completed handshakes, including
	// the failed ones.
	Handshakes int64
}

// OnMeasurement counts the number of emitted measurements
func (h *Handler) OnMeasurement(m model.Measurement) {
	atomic.AddInt64(&h.Count, 1)
	if m.TLSHandshakeDone != nil {
		atomic.AddInt64(&h.Handshakes, 1)
	}
}

// Snapshot returns the current counters.
func (h *Handler) Snapshot() (count, handshakes int64) {
	return atomic.LoadInt64(&h.Count), atomic.LoadInt64(&h.Handshakes)
}
