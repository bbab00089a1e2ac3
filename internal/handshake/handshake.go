// Package handshake contains the handshake code shared by the backends
// whose connections implement oohttp.TLSConn.
package handshake

import (
	"context"

	oohttp "github.com/ooni/oohttp"
	"github.com/ooni/tlsapi"
	"github.com/ooni/tlsapi/internal/alpn"
)

// TLSConn is the connection type that both crypto/tls and the utls
// adapter provide.
type TLSConn = oohttp.TLSConn

// Do runs the handshake of tlsconn, created on top of socket. On
// success it returns a stream owning socket. On failure, including
// context cancellation, it closes socket and returns a backend error.
func Do(ctx context.Context, tlsconn TLSConn, socket tlsapi.AsyncSocket) (*tlsapi.TLSStream, error) {
	if err := tlsconn.HandshakeContext(ctx); err != nil {
		socket.Close()
		return nil, tlsapi.NewBackendError(err)
	}
	state := tlsconn.ConnectionState()
	return tlsapi.NewTLSStream(tlsconn, socket, alpn.FromString(state.NegotiatedProtocol)), nil
}
