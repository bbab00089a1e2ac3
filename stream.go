package tlsapi

import (
	"net"
	"sync"
	"time"
)

// TLSStream is an established TLS channel. It owns the socket used to
// create it: closing the stream closes the socket.
type TLSStream struct {
	alpn      []byte
	closeOnce sync.Once
	conn      net.Conn
	socket    AsyncSocket
}

var _ net.Conn = &TLSStream{}

// NewTLSStream is the constructor used by backends after a successful
// handshake. The conn argument is the backend's connection (reading
// from it yields plaintext), socket is the transport the handshake ran
// over, and alpn is the negotiated protocol or nil.
func NewTLSStream(conn net.Conn, socket AsyncSocket, alpn []byte) *TLSStream {
	if len(alpn) <= 0 {
		alpn = nil
	}
	return &TLSStream{alpn: alpn, conn: conn, socket: socket}
}

// NegotiatedALPN returns the protocol negotiated with ALPN or nil if
// ALPN was not used.
func (s *TLSStream) NegotiatedALPN() []byte {
	if s.alpn == nil {
		return nil
	}
	return append([]byte{}, s.alpn...)
}

// Underlying returns the backend's connection (e.g. a *tls.Conn).
func (s *TLSStream) Underlying() net.Conn {
	return s.conn
}

// Read implements net.Conn.Read.
func (s *TLSStream) Read(p []byte) (int, error) {
	return s.conn.Read(p)
}

// Write implements net.Conn.Write.
func (s *TLSStream) Write(p []byte) (int, error) {
	return s.conn.Write(p)
}

// Close closes the stream and the underlying socket.
func (s *TLSStream) Close() (err error) {
	s.closeOnce.Do(func() {
		err = s.conn.Close()
		// the socket is usually closed by conn.Close already but
		// we want to be sure in case the backend did not do it
		s.socket.Close()
	})
	return
}

// CloseWrite shuts down the writing side of the stream. With TLS this
// sends a close_notify alert. Backends whose connection cannot do
// that fall back to closing the stream.
func (s *TLSStream) CloseWrite() error {
	if c, ok := s.conn.(interface{ CloseWrite() error }); ok {
		return c.CloseWrite()
	}
	return s.Close()
}

// LocalAddr implements net.Conn.LocalAddr.
func (s *TLSStream) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

// RemoteAddr implements net.Conn.RemoteAddr.
func (s *TLSStream) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

// SetDeadline implements net.Conn.SetDeadline.
func (s *TLSStream) SetDeadline(t time.Time) error {
	return s.conn.SetDeadline(t)
}

// SetReadDeadline implements net.Conn.SetReadDeadline.
func (s *TLSStream) SetReadDeadline(t time.Time) error {
	return s.conn.SetReadDeadline(t)
}

// SetWriteDeadline implements net.Conn.SetWriteDeadline.
func (s *TLSStream) SetWriteDeadline(t time.Time) error {
	return s.conn.SetWriteDeadline(t)
}

// TLSStreamWithSocket is a TLSStream that remembers the static type of
// the socket it was created from.
type TLSStreamWithSocket[S AsyncSocket] struct {
	*TLSStream
	socket S
}

// Socket returns the socket below TLS. Reading from or writing to it
// directly corrupts the TLS session.
func (s *TLSStreamWithSocket[S]) Socket() S {
	return s.socket
}
