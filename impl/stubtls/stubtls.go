// Package stubtls is a tlsapi backend where every operation fails with
// tlsapi.ErrNotImplemented. It stands in for a backend that is not
// available on the current platform.
package stubtls

import (
	"context"

	"github.com/ooni/tlsapi"
)

const (
	// Implemented is false because nothing works.
	Implemented = false

	// SupportsALPN is false.
	SupportsALPN = false

	// SupportsDERKeys is false.
	SupportsDERKeys = false

	// SupportsPKCS12Keys is false.
	SupportsPKCS12Keys = false
)

// Info describes this backend.
func Info() tlsapi.ImplInfo {
	return tlsapi.ImplInfo{Name: "stub", Version: "0"}
}

// ConnectorType is the tlsapi.ConnectorType of this backend.
type ConnectorType struct{}

var _ tlsapi.ConnectorType[*Connector] = ConnectorType{}

// Info implements tlsapi.ConnectorType.
func (ConnectorType) Info() tlsapi.ImplInfo { return Info() }

// Implemented implements tlsapi.ConnectorType.
func (ConnectorType) Implemented() bool { return Implemented }

// SupportsALPN implements tlsapi.ConnectorType.
func (ConnectorType) SupportsALPN() bool { return SupportsALPN }

// Builder always fails.
func (ConnectorType) Builder() (tlsapi.ConnectorBuilder[*Connector], error) {
	return nil, tlsapi.ErrNotImplemented
}

// Connector cannot be obtained from this package. It only exists so
// that ConnectorType has a connector type to refer to.
type Connector struct {
	_ struct{}
}

// Info implements tlsapi.Connector.
func (*Connector) Info() tlsapi.ImplInfo { return Info() }

// Connect closes socket and fails.
func (*Connector) Connect(ctx context.Context, domain string, socket tlsapi.AsyncSocket) (*tlsapi.TLSStream, error) {
	socket.Close()
	return nil, tlsapi.ErrNotImplemented
}

// AcceptorType is the tlsapi.AcceptorType of this backend.
type AcceptorType struct{}

var _ tlsapi.AcceptorType[*Acceptor] = AcceptorType{}

// Info implements tlsapi.AcceptorType.
func (AcceptorType) Info() tlsapi.ImplInfo { return Info() }

// Implemented implements tlsapi.AcceptorType.
func (AcceptorType) Implemented() bool { return Implemented }

// SupportsALPN implements tlsapi.AcceptorType.
func (AcceptorType) SupportsALPN() bool { return SupportsALPN }

// SupportsDERKeys implements tlsapi.AcceptorType.
func (AcceptorType) SupportsDERKeys() bool { return SupportsDERKeys }

// SupportsPKCS12Keys implements tlsapi.AcceptorType.
func (AcceptorType) SupportsPKCS12Keys() bool { return SupportsPKCS12Keys }

// BuilderFromDERKeys always fails.
func (AcceptorType) BuilderFromDERKeys(chain [][]byte, key []byte) (tlsapi.AcceptorBuilder[*Acceptor], error) {
	return nil, tlsapi.ErrNotImplemented
}

// BuilderFromPKCS12 always fails.
func (AcceptorType) BuilderFromPKCS12(pfx []byte, password string) (tlsapi.AcceptorBuilder[*Acceptor], error) {
	return nil, tlsapi.ErrNotImplemented
}

// Acceptor cannot be obtained from this package.
type Acceptor struct {
	_ struct{}
}

// Info implements tlsapi.Acceptor.
func (*Acceptor) Info() tlsapi.ImplInfo { return Info() }

// Accept closes socket and fails.
func (*Acceptor) Accept(ctx context.Context, socket tlsapi.AsyncSocket) (*tlsapi.TLSStream, error) {
	socket.Close()
	return nil, tlsapi.ErrNotImplemented
}
