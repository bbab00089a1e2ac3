package emitting_test

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"

	"github.com/ooni/tlsapi"
	"github.com/ooni/tlsapi/emitting"
	"github.com/ooni/tlsapi/impl/stdtls"
	"github.com/ooni/tlsapi/impl/stubtls"
	"github.com/ooni/tlsapi/internal/handlers/savinghandler"
	"github.com/ooni/tlsapi/model"
	"github.com/ooni/tlsapi/tlsapitest"
)

func newPair(t *testing.T) (*stdtls.Connector, *stdtls.Acceptor) {
	keys := tlsapitest.Keys()
	cb, err := stdtls.NewConnectorBuilder()
	if err != nil {
		t.Fatal(err)
	}
	if err := cb.AddRootCertificate(keys.CA); err != nil {
		t.Fatal(err)
	}
	connector, err := cb.Build()
	if err != nil {
		t.Fatal(err)
	}
	ab, err := stdtls.AcceptorType{}.BuilderFromDERKeys(keys.Chain, keys.Key)
	if err != nil {
		t.Fatal(err)
	}
	acceptor, err := ab.Build()
	if err != nil {
		t.Fatal(err)
	}
	return connector, acceptor
}

func TestHandshakeEmitsEvents(t *testing.T) {
	connector, acceptor := newPair(t)
	handler := &savinghandler.Handler{}
	ctx := emitting.WithHandler(context.Background(), handler)
	network := tlsapitest.NewOSNetwork()
	defer network.Close()
	listener, err := network.Listen()
	if err != nil {
		t.Fatal(err)
	}
	defer listener.Close()
	done := make(chan error, 1)
	go func() {
		server, err := listener.Accept()
		if err != nil {
			done <- err
			return
		}
		stream, err := emitting.NewAcceptor(acceptor).Accept(ctx, server)
		if err != nil {
			done <- err
			return
		}
		_, err = io.Copy(io.Discard, stream)
		stream.Close()
		done <- err
	}()
	client, err := network.DialContext(ctx, listener.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	stream, err := emitting.NewConnector(connector).Connect(ctx, tlsapitest.ServerDomain, client)
	if err != nil {
		t.Fatal(err)
	}
	stream.Close()
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	var starts, dones, reads, writes int
	for _, m := range handler.Snapshot() {
		if m.TLSHandshakeStart != nil {
			starts++
			if m.TLSHandshakeStart.Config.Backend != "crypto/tls" {
				t.Fatal("unexpected backend", m.TLSHandshakeStart.Config.Backend)
			}
		}
		if m.TLSHandshakeDone != nil {
			dones++
			if m.TLSHandshakeDone.Error != nil {
				t.Fatal(m.TLSHandshakeDone.Error)
			}
			if m.TLSHandshakeDone.ConnectionState == nil {
				t.Fatal("missing connection state")
			}
			if m.TLSHandshakeDone.Role == model.RoleClient &&
				len(m.TLSHandshakeDone.ConnectionState.PeerCertificates) <= 0 {
				t.Fatal("missing peer certificates")
			}
		}
		if m.Read != nil {
			reads++
		}
		if m.Write != nil {
			writes++
		}
	}
	if starts != 2 || dones != 2 {
		t.Fatal("unexpected number of handshake events", starts, dones)
	}
	if reads <= 0 || writes <= 0 {
		t.Fatal("expected socket events")
	}
}

func TestFailureEmitsEventsWithoutState(t *testing.T) {
	handler := &savinghandler.Handler{}
	ctx := emitting.WithHandler(context.Background(), handler)
	client, server := net.Pipe()
	defer server.Close()
	_, err := emitting.NewConnector(&stubtls.Connector{}).Connect(ctx, "example.com", client)
	if !errors.Is(err, tlsapi.ErrNotImplemented) {
		t.Fatal("not the error we expected", err)
	}
	all := handler.Snapshot()
	last := all[len(all)-1]
	if last.TLSHandshakeDone == nil || last.TLSHandshakeDone.ConnectionState != nil {
		t.Fatal("unexpected last event")
	}
	if last.TLSHandshakeDone.Error == nil {
		t.Fatal("missing error")
	}
	if last.TLSHandshakeDone.Failure != "not_implemented" {
		t.Fatal("unexpected failure", last.TLSHandshakeDone.Failure)
	}
}

func TestWithoutHandler(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	_, err := emitting.NewConnector(&stubtls.Connector{}).Connect(context.Background(), "example.com", client)
	if !errors.Is(err, tlsapi.ErrNotImplemented) {
		t.Fatal("not the error we expected", err)
	}
}
