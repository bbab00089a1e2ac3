// Package tracing allows to trace events.
package tracing

import (
	"context"
	"crypto/tls"
	"sync/atomic"
	"time"

	"github.com/ooni/tlsapi/internal/errwrapper"
	"github.com/ooni/tlsapi/model"
)

type contextkey struct{}

var connID int64

// NewConnID returns a new connection ID. IDs are never reused.
func NewConnID() int64 {
	return atomic.AddInt64(&connID, 1)
}

// Info contains information useful for tracing
type Info struct {
	Beginning time.Time
	Handler   model.Handler
}

// EmitTLSHandshakeStart emits the TLSHandshakeStartEvent event
func (info *Info) EmitTLSHandshakeStart(id int64, role model.Role, config model.TLSConfig) {
	info.Handler.OnMeasurement(model.Measurement{
		TLSHandshakeStart: &model.TLSHandshakeStartEvent{
			Config: config,
			ConnID: id,
			Role:   role,
			Time:   time.Since(info.Beginning),
		},
	})
}

// EmitTLSHandshakeDone emits the TLSHandshakeDoneEvent event
func (info *Info) EmitTLSHandshakeDone(
	id int64, role model.Role, start time.Time, state *tls.ConnectionState, err error,
) {
	stop := time.Now()
	var cs *model.TLSConnectionState
	if state != nil {
		cs = model.NewTLSConnectionState(*state)
	}
	info.Handler.OnMeasurement(model.Measurement{
		TLSHandshakeDone: &model.TLSHandshakeDoneEvent{
			ConnectionState: cs,
			ConnID:          id,
			Duration:        stop.Sub(start),
			Error:           err,
			Failure:         errwrapper.Classify(err),
			Role:            role,
			Time:            stop.Sub(info.Beginning),
		},
	})
}

// WithInfo returns a copy of ctx with the specific tracing info
func WithInfo(ctx context.Context, info *Info) context.Context {
	if info == nil {
		panic("nil handler") // like httptrace.WithClientTrace
	}
	return context.WithValue(ctx, contextkey{}, info)
}

// ContextInfo returns the trace info with the context.
func ContextInfo(ctx context.Context) *Info {
	ip, _ := ctx.Value(contextkey{}).(*Info)
	return ip
}
