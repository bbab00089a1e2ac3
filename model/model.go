// Package model contains the data model of the events emitted while
// using connectors and acceptors. Events of the same connection are
// tagged using a unique int64 ConnID that is never reused.
//
// All events also have a Time. This is always the time in which
// an event has been emitted, relative to the moment in which the
// handler was attached to the context.
//
// Duration, where present, indicates for how long the code has been
// waiting for an event to happen. For example, ReadEvent.Duration
// indicates for how long the code has been blocked inside Read().
//
// When an operation may fail, we also include the Error.
package model

import (
	"crypto/tls"
	"time"
)

// Role is the side of the TLS handshake.
type Role string

const (
	// RoleClient is used by connectors.
	RoleClient = Role("client")

	// RoleServer is used by acceptors.
	RoleServer = Role("server")
)

// CloseEvent is emitted when socket.Close returns.
type CloseEvent struct {
	ConnID   int64
	Duration time.Duration
	Error    error
	Time     time.Duration
}

// ReadEvent is emitted when socket.Read returns.
type ReadEvent struct {
	ConnID   int64
	Duration time.Duration
	Error    error
	NumBytes int64
	Time     time.Duration
}

// WriteEvent is emitted when socket.Write returns.
type WriteEvent struct {
	ConnID   int64
	Duration time.Duration
	Error    error
	NumBytes int64
	Time     time.Duration
}

// TLSConfig contains what we know of the handshake configuration.
type TLSConfig struct {
	Backend    string
	ServerName string `json:",omitempty"`
}

// X509Certificate is an x.509 certificate.
type X509Certificate struct {
	// Data contains the certificate bytes in DER format.
	Data []byte
}

// TLSConnectionState contains the TLS connection state.
type TLSConnectionState struct {
	CipherSuite        uint16
	NegotiatedProtocol string
	PeerCertificates   []X509Certificate
	Version            uint16
}

// NewTLSConnectionState creates a new TLSConnectionState.
func NewTLSConnectionState(s tls.ConnectionState) *TLSConnectionState {
	out := &TLSConnectionState{
		CipherSuite:        s.CipherSuite,
		NegotiatedProtocol: s.NegotiatedProtocol,
		Version:            s.Version,
	}
	for _, cert := range s.PeerCertificates {
		out.PeerCertificates = append(out.PeerCertificates, X509Certificate{
			Data: cert.Raw,
		})
	}
	return out
}

// TLSHandshakeStartEvent is emitted when Connect or Accept starts.
type TLSHandshakeStartEvent struct {
	Config TLSConfig
	ConnID int64
	Role   Role
	Time   time.Duration
}

// TLSHandshakeDoneEvent is emitted when Connect or Accept returns. The
// ConnectionState is nil on failure or when the backend does not
// expose one. Failure is the OONI failure string of Error.
type TLSHandshakeDoneEvent struct {
	ConnectionState *TLSConnectionState `json:",omitempty"`
	ConnID          int64
	Duration        time.Duration
	Error           error
	Failure         string `json:",omitempty"`
	Role            Role
	Time            time.Duration
}

// Measurement contains zero or more events. Do not assume that at any
// time a Measurement will only contain a single event. When a Measurement
// contains an event, the corresponding pointer is non nil.
type Measurement struct {
	Close             *CloseEvent             `json:",omitempty"`
	Read              *ReadEvent              `json:",omitempty"`
	TLSHandshakeStart *TLSHandshakeStartEvent `json:",omitempty"`
	TLSHandshakeDone  *TLSHandshakeDoneEvent  `json:",omitempty"`
	Write             *WriteEvent             `json:",omitempty"`
}

// Handler handles measurement events.
type Handler interface {
	// OnMeasurement is called when an event occurs. OnMeasurement may
	// be called by background goroutines and OnMeasurement calls may
	// happen concurrently.
	OnMeasurement(Measurement)
}
