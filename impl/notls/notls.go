// Package notls is a tlsapi backend that does not use TLS at all: the
// stream returned by Connect and Accept is the socket itself. It is
// useful to exercise code written against tlsapi without certificates.
package notls

import (
	"context"

	"github.com/ooni/tlsapi"
)

const (
	// Implemented is false because this backend does not do TLS.
	Implemented = false

	// SupportsALPN is false because there is no handshake.
	SupportsALPN = false

	// SupportsDERKeys is true because keys are accepted and ignored.
	SupportsDERKeys = true

	// SupportsPKCS12Keys is true because keys are accepted and ignored.
	SupportsPKCS12Keys = true
)

// Info describes this backend.
func Info() tlsapi.ImplInfo {
	return tlsapi.ImplInfo{Name: "notls", Version: "0"}
}

// passthrough returns a stream reading and writing socket directly.
func passthrough(ctx context.Context, socket tlsapi.AsyncSocket) (*tlsapi.TLSStream, error) {
	if err := ctx.Err(); err != nil {
		socket.Close()
		return nil, tlsapi.NewBackendError(err)
	}
	return tlsapi.NewTLSStream(tlsapi.NewSocketBox(socket), socket, nil), nil
}
