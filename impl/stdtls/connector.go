package stdtls

import (
	"context"
	"crypto/tls"
	"crypto/x509"

	"github.com/ooni/tlsapi"
	"github.com/ooni/tlsapi/internal/alpn"
	"github.com/ooni/tlsapi/internal/certverify"
	"github.com/ooni/tlsapi/internal/domain"
	"github.com/ooni/tlsapi/internal/handshake"
)

// ConnectorType is the tlsapi.ConnectorType of this backend.
type ConnectorType struct{}

var _ tlsapi.ConnectorType[*Connector] = ConnectorType{}

// Info implements tlsapi.ConnectorType.
func (ConnectorType) Info() tlsapi.ImplInfo {
	return Info()
}

// Implemented implements tlsapi.ConnectorType.
func (ConnectorType) Implemented() bool {
	return Implemented
}

// SupportsALPN implements tlsapi.ConnectorType.
func (ConnectorType) SupportsALPN() bool {
	return SupportsALPN
}

// Builder implements tlsapi.ConnectorType.
func (ConnectorType) Builder() (tlsapi.ConnectorBuilder[*Connector], error) {
	return NewConnectorBuilder()
}

// ConnectorBuilder is the tlsapi.ConnectorBuilder of this backend.
type ConnectorBuilder struct {
	config         *tls.Config
	consumed       bool
	roots          *x509.CertPool
	verifyHostname bool
}

var _ tlsapi.ConnectorBuilder[*Connector] = &ConnectorBuilder{}

// NewConnectorBuilder returns a builder that verifies hostnames using
// the system roots and does not use ALPN.
func NewConnectorBuilder() (*ConnectorBuilder, error) {
	return &ConnectorBuilder{
		config:         &tls.Config{},
		verifyHostname: true,
	}, nil
}

// Underlying returns the config being built, for settings that this
// package does not expose. Changes to ServerName, RootCAs,
// InsecureSkipVerify and VerifyConnection are overwritten by Build.
func (b *ConnectorBuilder) Underlying() *tls.Config {
	return b.config
}

// SetALPNProtocols implements tlsapi.ConnectorBuilder.
func (b *ConnectorBuilder) SetALPNProtocols(protocols ...[]byte) error {
	if b.consumed {
		return tlsapi.ErrBuilderConsumed
	}
	nextProtos, err := alpn.ToStrings(protocols)
	if err != nil {
		return tlsapi.NewBackendError(err)
	}
	b.config.NextProtos = nextProtos
	return nil
}

// SetVerifyHostname implements tlsapi.ConnectorBuilder.
func (b *ConnectorBuilder) SetVerifyHostname(verify bool) error {
	if b.consumed {
		return tlsapi.ErrBuilderConsumed
	}
	b.verifyHostname = verify
	return nil
}

// AddRootCertificate implements tlsapi.ConnectorBuilder.
func (b *ConnectorBuilder) AddRootCertificate(der []byte) error {
	if b.consumed {
		return tlsapi.ErrBuilderConsumed
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return tlsapi.NewBackendError(err)
	}
	if b.roots == nil {
		b.roots = systemCertPool()
	}
	b.roots.AddCert(cert)
	return nil
}

// Build implements tlsapi.ConnectorBuilder.
func (b *ConnectorBuilder) Build() (*Connector, error) {
	if b.consumed {
		return nil, tlsapi.ErrBuilderConsumed
	}
	b.consumed = true
	config := b.config.Clone()
	config.RootCAs = b.roots
	config.InsecureSkipVerify = false
	config.VerifyConnection = nil
	if !b.verifyHostname {
		verifier := &certverify.Verifier{Roots: b.roots}
		config.InsecureSkipVerify = true
		config.VerifyConnection = func(state tls.ConnectionState) error {
			return verifier.Verify(state.PeerCertificates)
		}
	}
	return &Connector{config: config}, nil
}

// Connector is the tlsapi.Connector of this backend.
type Connector struct {
	config *tls.Config
}

var _ tlsapi.Connector = &Connector{}

// Info implements tlsapi.Connector.
func (*Connector) Info() tlsapi.ImplInfo {
	return Info()
}

// Underlying returns a copy of the config used for handshakes.
func (c *Connector) Underlying() *tls.Config {
	return c.config.Clone()
}

// Connect implements tlsapi.Connector.
func (c *Connector) Connect(ctx context.Context, domainName string, socket tlsapi.AsyncSocket) (*tlsapi.TLSStream, error) {
	config := c.config.Clone()
	config.ServerName = domain.Normalize(domainName)
	tlsconn := tls.Client(tlsapi.NewSocketBox(socket), config)
	return handshake.Do(ctx, tlsconn, socket)
}

// systemCertPool returns a copy of the system roots or an empty pool
// when they are not available.
func systemCertPool() *x509.CertPool {
	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		return x509.NewCertPool()
	}
	return pool
}
