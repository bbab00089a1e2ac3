package utlstls

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"

	utls "github.com/refraction-networking/utls"
)

// ErrHandshakePanic indicates that utls panicked during the handshake.
var ErrHandshakePanic = errors.New("utlstls: handshake panic")

// utlsConn is what *utls.UConn and *utls.Conn have in common.
type utlsConn interface {
	net.Conn
	HandshakeContext(ctx context.Context) error
	ConnectionState() utls.ConnectionState
	NetConn() net.Conn
}

// conn adapts a utls connection to oohttp.TLSConn.
type conn struct {
	utlsConn
}

// HandshakeContext runs the handshake and converts panics into errors.
func (c *conn) HandshakeContext(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %+v", ErrHandshakePanic, r)
		}
	}()
	return c.utlsConn.HandshakeContext(ctx)
}

// ConnectionState returns the connection state using crypto/tls types.
func (c *conn) ConnectionState() tls.ConnectionState {
	return convertState(c.utlsConn.ConnectionState())
}

func convertState(s utls.ConnectionState) tls.ConnectionState {
	return tls.ConnectionState{
		Version:                     s.Version,
		HandshakeComplete:           s.HandshakeComplete,
		DidResume:                   s.DidResume,
		CipherSuite:                 s.CipherSuite,
		NegotiatedProtocol:          s.NegotiatedProtocol,
		ServerName:                  s.ServerName,
		PeerCertificates:            s.PeerCertificates,
		VerifiedChains:              s.VerifiedChains,
		SignedCertificateTimestamps: s.SignedCertificateTimestamps,
		OCSPResponse:                s.OCSPResponse,
		TLSUnique:                   s.TLSUnique,
	}
}

// NetConn returns the socket below TLS.
func (c *conn) NetConn() net.Conn {
	return c.utlsConn.NetConn()
}

// CloseWrite sends close_notify.
func (c *conn) CloseWrite() error {
	if cw, ok := c.utlsConn.(interface{ CloseWrite() error }); ok {
		return cw.CloseWrite()
	}
	return c.Close()
}
