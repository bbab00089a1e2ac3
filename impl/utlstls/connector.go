package utlstls

import (
	"context"
	"crypto/x509"

	"github.com/ooni/tlsapi"
	"github.com/ooni/tlsapi/internal/alpn"
	"github.com/ooni/tlsapi/internal/certverify"
	"github.com/ooni/tlsapi/internal/domain"
	"github.com/ooni/tlsapi/internal/handshake"
	utls "github.com/refraction-networking/utls"
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
	config         *utls.Config
	consumed       bool
	helloID        utls.ClientHelloID
	roots          *x509.CertPool
	verifyHostname bool
}

var _ tlsapi.ConnectorBuilder[*Connector] = &ConnectorBuilder{}

// NewConnectorBuilder returns a builder that verifies hostnames using
// the system roots, does not use ALPN and sends the same ClientHello
// that crypto/tls would send.
func NewConnectorBuilder() (*ConnectorBuilder, error) {
	return &ConnectorBuilder{
		config:         &utls.Config{},
		helloID:        utls.HelloGolang,
		verifyHostname: true,
	}, nil
}

// Underlying returns the config being built.
func (b *ConnectorBuilder) Underlying() *utls.Config {
	return b.config
}

// SetClientHelloID selects the ClientHello to mimic. The ALPN list
// configured with SetALPNProtocols replaces the one of the parrot.
func (b *ConnectorBuilder) SetClientHelloID(id utls.ClientHelloID) error {
	if b.consumed {
		return tlsapi.ErrBuilderConsumed
	}
	b.helloID = id
	return nil
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
		if b.roots, err = x509.SystemCertPool(); err != nil || b.roots == nil {
			b.roots = x509.NewCertPool()
		}
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
	config.VerifyPeerCertificate = nil
	if !b.verifyHostname {
		verifier := &certverify.Verifier{Roots: b.roots}
		config.InsecureSkipVerify = true
		config.VerifyPeerCertificate = func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
			return verifier.VerifyRaw(rawCerts)
		}
	}
	return &Connector{config: config, helloID: b.helloID}, nil
}

// Connector is the tlsapi.Connector of this backend.
type Connector struct {
	config  *utls.Config
	helloID utls.ClientHelloID
}

var _ tlsapi.Connector = &Connector{}

// Info implements tlsapi.Connector.
func (*Connector) Info() tlsapi.ImplInfo {
	return Info()
}

// ClientHelloID returns the ClientHello being mimicked.
func (c *Connector) ClientHelloID() utls.ClientHelloID {
	return c.helloID
}

// Connect implements tlsapi.Connector.
func (c *Connector) Connect(ctx context.Context, domainName string, socket tlsapi.AsyncSocket) (*tlsapi.TLSStream, error) {
	config := c.config.Clone()
	config.ServerName = domain.Normalize(domainName)
	uconn := utls.UClient(tlsapi.NewSocketBox(socket), config, c.helloID)
	if c.helloID != utls.HelloGolang {
		if err := applyALPN(uconn, config); err != nil {
			socket.Close()
			return nil, tlsapi.NewBackendError(err)
		}
	}
	return handshake.Do(ctx, &conn{uconn}, socket)
}

// applyALPN makes the parroted ClientHello advertise the protocols of
// config, or no ALPN extension at all when there are none. The config
// must be the one used to create uconn.
func applyALPN(uconn *utls.UConn, config *utls.Config) error {
	protocols := config.NextProtos
	if err := uconn.BuildHandshakeState(); err != nil {
		return err
	}
	exts := uconn.Extensions[:0]
	for _, ext := range uconn.Extensions {
		if alpnExt, ok := ext.(*utls.ALPNExtension); ok {
			if len(protocols) <= 0 {
				continue
			}
			alpnExt.AlpnProtocols = protocols
		}
		exts = append(exts, ext)
	}
	uconn.Extensions = exts
	// building the parrot state may have replaced them
	config.NextProtos = protocols
	uconn.HandshakeState.Hello.AlpnProtocols = protocols
	return nil
}
