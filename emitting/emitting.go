// Package emitting contains connectors and acceptors that emit
// model.Measurement events while they handshake.
//
// Events are only emitted when the context passed to Connect or Accept
// has been configured using WithHandler. Otherwise, the wrapped
// connector or acceptor is used directly.
package emitting

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/ooni/tlsapi"
	"github.com/ooni/tlsapi/internal/connx"
	"github.com/ooni/tlsapi/internal/tracing"
	"github.com/ooni/tlsapi/model"
)

// WithHandler returns a copy of ctx that causes connectors and
// acceptors of this package to emit events to handler. Event times
// are relative to the moment in which WithHandler is called.
func WithHandler(ctx context.Context, handler model.Handler) context.Context {
	return tracing.WithInfo(ctx, &tracing.Info{
		Beginning: time.Now(),
		Handler:   handler,
	})
}

// Connector is an event-emitting tlsapi.Connector.
type Connector struct {
	tlsapi.Connector
}

// NewConnector wraps connector.
func NewConnector(connector tlsapi.Connector) *Connector {
	return &Connector{Connector: connector}
}

// Connect implements tlsapi.Connector.
func (c *Connector) Connect(ctx context.Context, domain string, socket tlsapi.AsyncSocket) (*tlsapi.TLSStream, error) {
	info := tracing.ContextInfo(ctx)
	if info == nil {
		return c.Connector.Connect(ctx, domain, socket)
	}
	id := tracing.NewConnID()
	info.EmitTLSHandshakeStart(id, model.RoleClient, model.TLSConfig{
		Backend:    c.Info().Name,
		ServerName: domain,
	})
	start := time.Now()
	stream, err := c.Connector.Connect(ctx, domain, measuring(info, id, socket))
	info.EmitTLSHandshakeDone(id, model.RoleClient, start, connectionState(stream), err)
	return stream, err
}

// Acceptor is an event-emitting tlsapi.Acceptor.
type Acceptor struct {
	tlsapi.Acceptor
}

// NewAcceptor wraps acceptor.
func NewAcceptor(acceptor tlsapi.Acceptor) *Acceptor {
	return &Acceptor{Acceptor: acceptor}
}

// Accept implements tlsapi.Acceptor.
func (a *Acceptor) Accept(ctx context.Context, socket tlsapi.AsyncSocket) (*tlsapi.TLSStream, error) {
	info := tracing.ContextInfo(ctx)
	if info == nil {
		return a.Acceptor.Accept(ctx, socket)
	}
	id := tracing.NewConnID()
	info.EmitTLSHandshakeStart(id, model.RoleServer, model.TLSConfig{
		Backend: a.Info().Name,
	})
	start := time.Now()
	stream, err := a.Acceptor.Accept(ctx, measuring(info, id, socket))
	info.EmitTLSHandshakeDone(id, model.RoleServer, start, connectionState(stream), err)
	return stream, err
}

func measuring(info *tracing.Info, id int64, socket tlsapi.AsyncSocket) *connx.MeasuringConn {
	return &connx.MeasuringConn{
		Conn:      tlsapi.NewSocketBox(socket),
		Beginning: info.Beginning,
		Handler:   info.Handler,
		ID:        id,
	}
}

// connectionState returns the state of the stream if the backend
// connection exposes it.
func connectionState(stream *tlsapi.TLSStream) *tls.ConnectionState {
	if stream == nil {
		return nil
	}
	conn, ok := stream.Underlying().(interface{ ConnectionState() tls.ConnectionState })
	if !ok {
		return nil
	}
	state := conn.ConnectionState()
	return &state
}
