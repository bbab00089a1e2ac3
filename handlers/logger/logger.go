// Package logger is a handler that emits logs
package logger

import (
	"crypto/tls"

	"github.com/apex/log"
	"github.com/ooni/tlsapi/model"
)

var (
	tlsVersion = map[uint16]string{
		tls.VersionTLS10: "TLSv1",
		tls.VersionTLS11: "TLSv1.1",
		tls.VersionTLS12: "TLSv1.2",
		tls.VersionTLS13: "TLSv1.3",
	}
)

// Handler is a handler that logs events.
type Handler struct {
	logger log.Interface
}

// NewHandler returns a new logging handler.
func NewHandler(logger log.Interface) *Handler {
	return &Handler{logger: logger}
}

// OnMeasurement logs the specific measurement
func (h *Handler) OnMeasurement(m model.Measurement) {
	// Socket
	if m.Read != nil {
		h.logger.WithFields(log.Fields{
			"blockedFor": m.Read.Duration,
			"connID":     m.Read.ConnID,
			"elapsed":    m.Read.Time,
			"error":      m.Read.Error,
			"numBytes":   m.Read.NumBytes,
		}).Debug("net: read done")
	}
	if m.Write != nil {
		h.logger.WithFields(log.Fields{
			"blockedFor": m.Write.Duration,
			"connID":     m.Write.ConnID,
			"elapsed":    m.Write.Time,
			"error":      m.Write.Error,
			"numBytes":   m.Write.NumBytes,
		}).Debug("net: write done")
	}
	if m.Close != nil {
		h.logger.WithFields(log.Fields{
			"blockedFor": m.Close.Duration,
			"connID":     m.Close.ConnID,
			"elapsed":    m.Close.Time,
		}).Debug("net: close done")
	}

	// TLS
	if m.TLSHandshakeStart != nil {
		h.logger.WithFields(log.Fields{
			"backend": m.TLSHandshakeStart.Config.Backend,
			"connID":  m.TLSHandshakeStart.ConnID,
			"elapsed": m.TLSHandshakeStart.Time,
			"role":    m.TLSHandshakeStart.Role,
			"sni":     m.TLSHandshakeStart.Config.ServerName,
		}).Debug("tls: start handshake")
	}
	if m.TLSHandshakeDone != nil {
		fields := log.Fields{
			"blockedFor": m.TLSHandshakeDone.Duration,
			"connID":     m.TLSHandshakeDone.ConnID,
			"elapsed":    m.TLSHandshakeDone.Time,
			"error":      m.TLSHandshakeDone.Error,
			"failure":    m.TLSHandshakeDone.Failure,
			"role":       m.TLSHandshakeDone.Role,
		}
		if cs := m.TLSHandshakeDone.ConnectionState; cs != nil {
			fields["alpn"] = cs.NegotiatedProtocol
			fields["version"] = tlsVersion[cs.Version]
		}
		h.logger.WithFields(fields).Debug("tls: handshake done")
	}
}
