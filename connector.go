package tlsapi

import "context"

// Connector performs client-side TLS handshakes. A Connector is
// immutable once built and safe for concurrent use.
type Connector interface {
	// Info describes the backend.
	Info() ImplInfo

	// Connect performs the TLS handshake over socket, verifying that
	// the peer certificate is valid for domain unless hostname
	// verification was disabled. Connect takes ownership of socket:
	// on failure the socket is closed.
	Connect(ctx context.Context, domain string, socket AsyncSocket) (*TLSStream, error)
}

// ConnectorBuilder configures a Connector. A builder is not safe for
// concurrent use and can only be built once: after Build every method
// fails with ErrBuilderConsumed.
type ConnectorBuilder[C Connector] interface {
	// SetALPNProtocols sets the protocols offered to the server, in
	// preference order. It fails with ErrALPNUnsupported if the backend
	// cannot negotiate ALPN.
	SetALPNProtocols(protocols ...[]byte) error

	// SetVerifyHostname enables or disables hostname verification. It
	// fails with ErrVerifyHostnameUnsupported if the backend cannot
	// disable verification.
	SetVerifyHostname(verify bool) error

	// AddRootCertificate adds a DER encoded certificate to the set of
	// trusted roots. It fails if der is not a valid certificate.
	AddRootCertificate(der []byte) error

	// Build returns the configured Connector.
	Build() (C, error)
}

// ConnectorType describes a connector backend. Implemented and
// SupportsALPN return constants, so calling them never touches the
// backend.
type ConnectorType[C Connector] interface {
	// Info describes the backend.
	Info() ImplInfo

	// Implemented is false for fake backends.
	Implemented() bool

	// SupportsALPN tells whether the backend can negotiate ALPN.
	SupportsALPN() bool

	// Builder returns a new builder.
	Builder() (ConnectorBuilder[C], error)
}

// ConnectWithSocket is like c.Connect but returns a stream that
// remembers the static type of socket.
func ConnectWithSocket[S AsyncSocket](
	ctx context.Context, c Connector, domain string, socket S,
) (*TLSStreamWithSocket[S], error) {
	stream, err := c.Connect(ctx, domain, socket)
	if err != nil {
		return nil, err
	}
	return &TLSStreamWithSocket[S]{TLSStream: stream, socket: socket}, nil
}
