package tlsapi

import (
	"errors"
	"net"
	"time"
)

// ErrDeadlineUnsupported is returned when setting a deadline on a
// SocketBox whose socket does not support deadlines.
var ErrDeadlineUnsupported = errors.New("tlsapi: socket does not support deadlines")

// SocketBox is the uniform handle for any AsyncSocket. It implements
// net.Conn, which is what TLS libraries expect, forwarding addresses
// and deadlines when the wrapped socket supports them.
type SocketBox struct {
	socket AsyncSocket
}

var _ net.Conn = &SocketBox{}

// NewSocketBox wraps socket. If socket is already a *SocketBox, it is
// returned unchanged.
func NewSocketBox(socket AsyncSocket) *SocketBox {
	if box, ok := socket.(*SocketBox); ok {
		return box
	}
	return &SocketBox{socket: socket}
}

// Unbox returns the wrapped socket.
func (b *SocketBox) Unbox() AsyncSocket {
	return b.socket
}

// Read implements net.Conn.Read.
func (b *SocketBox) Read(p []byte) (int, error) {
	return b.socket.Read(p)
}

// Write implements net.Conn.Write.
func (b *SocketBox) Write(p []byte) (int, error) {
	return b.socket.Write(p)
}

// Close implements net.Conn.Close.
func (b *SocketBox) Close() error {
	return b.socket.Close()
}

// LocalAddr implements net.Conn.LocalAddr.
func (b *SocketBox) LocalAddr() net.Addr {
	if s, ok := b.socket.(interface{ LocalAddr() net.Addr }); ok {
		return s.LocalAddr()
	}
	return socketAddr{}
}

// RemoteAddr implements net.Conn.RemoteAddr.
func (b *SocketBox) RemoteAddr() net.Addr {
	if s, ok := b.socket.(interface{ RemoteAddr() net.Addr }); ok {
		return s.RemoteAddr()
	}
	return socketAddr{}
}

// SetDeadline implements net.Conn.SetDeadline.
func (b *SocketBox) SetDeadline(t time.Time) error {
	if s, ok := b.socket.(interface{ SetDeadline(time.Time) error }); ok {
		return s.SetDeadline(t)
	}
	return ErrDeadlineUnsupported
}

// SetReadDeadline implements net.Conn.SetReadDeadline.
func (b *SocketBox) SetReadDeadline(t time.Time) error {
	if s, ok := b.socket.(interface{ SetReadDeadline(time.Time) error }); ok {
		return s.SetReadDeadline(t)
	}
	return ErrDeadlineUnsupported
}

// SetWriteDeadline implements net.Conn.SetWriteDeadline.
func (b *SocketBox) SetWriteDeadline(t time.Time) error {
	if s, ok := b.socket.(interface{ SetWriteDeadline(time.Time) error }); ok {
		return s.SetWriteDeadline(t)
	}
	return ErrDeadlineUnsupported
}

// CloseWrite shuts down the writing side if the socket supports it,
// otherwise it closes the whole socket.
func (b *SocketBox) CloseWrite() error {
	if s, ok := b.socket.(interface{ CloseWrite() error }); ok {
		return s.CloseWrite()
	}
	return b.socket.Close()
}

// socketAddr is the address of sockets that do not have one.
type socketAddr struct{}

func (socketAddr) Network() string { return "socket" }

func (socketAddr) String() string { return "socket" }
