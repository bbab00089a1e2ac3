package notls

import (
	"context"

	"github.com/ooni/tlsapi"
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
	return &ConnectorBuilder{}, nil
}

// ConnectorBuilder is the tlsapi.ConnectorBuilder of this backend.
type ConnectorBuilder struct {
	consumed bool
}

// SetALPNProtocols always fails with tlsapi.ErrALPNUnsupported.
func (b *ConnectorBuilder) SetALPNProtocols(protocols ...[]byte) error {
	if b.consumed {
		return tlsapi.ErrBuilderConsumed
	}
	return tlsapi.ErrALPNUnsupported
}

// SetVerifyHostname accepts and ignores the setting.
func (b *ConnectorBuilder) SetVerifyHostname(verify bool) error {
	if b.consumed {
		return tlsapi.ErrBuilderConsumed
	}
	return nil
}

// AddRootCertificate accepts and ignores the certificate.
func (b *ConnectorBuilder) AddRootCertificate(der []byte) error {
	if b.consumed {
		return tlsapi.ErrBuilderConsumed
	}
	return nil
}

// Build implements tlsapi.ConnectorBuilder.
func (b *ConnectorBuilder) Build() (*Connector, error) {
	if b.consumed {
		return nil, tlsapi.ErrBuilderConsumed
	}
	b.consumed = true
	return &Connector{}, nil
}

// Connector is the tlsapi.Connector of this backend.
type Connector struct{}

// Info implements tlsapi.Connector.
func (*Connector) Info() tlsapi.ImplInfo {
	return Info()
}

// Connect returns a stream that reads and writes socket unchanged.
func (*Connector) Connect(ctx context.Context, domain string, socket tlsapi.AsyncSocket) (*tlsapi.TLSStream, error) {
	return passthrough(ctx, socket)
}
