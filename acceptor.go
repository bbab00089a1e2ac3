package tlsapi

import "context"

// Acceptor performs server-side TLS handshakes. An Acceptor is
// immutable once built and safe for concurrent use.
type Acceptor interface {
	// Info describes the backend.
	Info() ImplInfo

	// Accept performs the TLS handshake over socket using the
	// configured key material. Accept takes ownership of socket: on
	// failure the socket is closed.
	Accept(ctx context.Context, socket AsyncSocket) (*TLSStream, error)
}

// AcceptorBuilder configures an Acceptor. Like ConnectorBuilder, it
// is single use.
type AcceptorBuilder[A Acceptor] interface {
	// SetALPNProtocols sets the protocols the server is willing to
	// speak, in preference order. The server picks the first protocol
	// of this list that the client also offered. It fails with
	// ErrALPNUnsupported if the backend cannot negotiate ALPN.
	SetALPNProtocols(protocols ...[]byte) error

	// Build returns the configured Acceptor.
	Build() (A, error)
}

// AcceptorType describes an acceptor backend.
type AcceptorType[A Acceptor] interface {
	// Info describes the backend.
	Info() ImplInfo

	// Implemented is false for fake backends.
	Implemented() bool

	// SupportsALPN tells whether the backend can negotiate ALPN.
	SupportsALPN() bool

	// SupportsDERKeys tells whether BuilderFromDERKeys works.
	SupportsDERKeys() bool

	// SupportsPKCS12Keys tells whether BuilderFromPKCS12 works.
	SupportsPKCS12Keys() bool

	// BuilderFromDERKeys returns a builder using the given DER
	// certificate chain (leaf first) and DER private key (PKCS#8,
	// PKCS#1 or SEC 1).
	BuilderFromDERKeys(certChain [][]byte, key []byte) (AcceptorBuilder[A], error)

	// BuilderFromPKCS12 returns a builder using a PKCS#12 archive.
	BuilderFromPKCS12(pfx []byte, password string) (AcceptorBuilder[A], error)
}

// AcceptWithSocket is like a.Accept but returns a stream that
// remembers the static type of socket.
func AcceptWithSocket[S AsyncSocket](
	ctx context.Context, a Acceptor, socket S,
) (*TLSStreamWithSocket[S], error) {
	stream, err := a.Accept(ctx, socket)
	if err != nil {
		return nil, err
	}
	return &TLSStreamWithSocket[S]{TLSStream: stream, socket: socket}, nil
}
