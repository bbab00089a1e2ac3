package handshake

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"testing"

	"github.com/ooni/tlsapi"
)

// fakeConn is a TLSConn whose handshake result is preset.
type fakeConn struct {
	net.Conn
	err   error
	state tls.ConnectionState
}

func (c *fakeConn) HandshakeContext(ctx context.Context) error {
	return c.err
}

func (c *fakeConn) ConnectionState() tls.ConnectionState {
	return c.state
}

func (c *fakeConn) NetConn() net.Conn {
	return c.Conn
}

// closeCounter counts Close calls.
type closeCounter struct {
	net.Conn
	closed int
}

func (c *closeCounter) Close() error {
	c.closed++
	return nil
}

func TestDoSuccess(t *testing.T) {
	socket := &closeCounter{}
	tlsconn := &fakeConn{state: tls.ConnectionState{NegotiatedProtocol: "h2"}}
	stream, err := Do(context.Background(), tlsconn, socket)
	if err != nil {
		t.Fatal(err)
	}
	if string(stream.NegotiatedALPN()) != "h2" {
		t.Fatal("unexpected ALPN")
	}
	if stream.Underlying() != tlsconn {
		t.Fatal("unexpected underlying conn")
	}
	if socket.closed != 0 {
		t.Fatal("socket should not be closed")
	}
}

func TestDoNoALPN(t *testing.T) {
	stream, err := Do(context.Background(), &fakeConn{}, &closeCounter{})
	if err != nil {
		t.Fatal(err)
	}
	if stream.NegotiatedALPN() != nil {
		t.Fatal("expected no ALPN")
	}
}

func TestDoFailure(t *testing.T) {
	expected := errors.New("mocked error")
	socket := &closeCounter{}
	stream, err := Do(context.Background(), &fakeConn{err: expected}, socket)
	var target *tlsapi.Error
	if !errors.As(err, &target) || target.Kind() != tlsapi.KindBackend {
		t.Fatal("not the error we expected", err)
	}
	if err.Error() != "mocked error" {
		t.Fatal("unexpected error text", err.Error())
	}
	if stream != nil {
		t.Fatal("expected nil stream")
	}
	if socket.closed != 1 {
		t.Fatal("socket should be closed once")
	}
}

func TestDoKeepsNetConn(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	tlsconn := &fakeConn{Conn: client}
	stream, err := Do(context.Background(), tlsconn, client)
	if err != nil {
		t.Fatal(err)
	}
	defer stream.Close()
	if stream.Underlying().(TLSConn).NetConn() != client {
		t.Fatal("unexpected underlying conn")
	}
}
