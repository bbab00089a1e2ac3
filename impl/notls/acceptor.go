package notls

import (
	"context"

	"github.com/ooni/tlsapi"
)

// AcceptorType is the tlsapi.AcceptorType of this backend.
type AcceptorType struct{}

var _ tlsapi.AcceptorType[*Acceptor] = AcceptorType{}

// Info implements tlsapi.AcceptorType.
func (AcceptorType) Info() tlsapi.ImplInfo {
	return Info()
}

// Implemented implements tlsapi.AcceptorType.
func (AcceptorType) Implemented() bool {
	return Implemented
}

// SupportsALPN implements tlsapi.AcceptorType.
func (AcceptorType) SupportsALPN() bool {
	return SupportsALPN
}

// SupportsDERKeys implements tlsapi.AcceptorType.
func (AcceptorType) SupportsDERKeys() bool {
	return SupportsDERKeys
}

// SupportsPKCS12Keys implements tlsapi.AcceptorType.
func (AcceptorType) SupportsPKCS12Keys() bool {
	return SupportsPKCS12Keys
}

// BuilderFromDERKeys ignores the keys.
func (AcceptorType) BuilderFromDERKeys(chain [][]byte, key []byte) (tlsapi.AcceptorBuilder[*Acceptor], error) {
	return &AcceptorBuilder{}, nil
}

// BuilderFromPKCS12 ignores the archive.
func (AcceptorType) BuilderFromPKCS12(pfx []byte, password string) (tlsapi.AcceptorBuilder[*Acceptor], error) {
	return &AcceptorBuilder{}, nil
}

// AcceptorBuilder is the tlsapi.AcceptorBuilder of this backend.
type AcceptorBuilder struct {
	consumed bool
}

// SetALPNProtocols always fails with tlsapi.ErrALPNUnsupported.
func (b *AcceptorBuilder) SetALPNProtocols(protocols ...[]byte) error {
	if b.consumed {
		return tlsapi.ErrBuilderConsumed
	}
	return tlsapi.ErrALPNUnsupported
}

// Build implements tlsapi.AcceptorBuilder.
func (b *AcceptorBuilder) Build() (*Acceptor, error) {
	if b.consumed {
		return nil, tlsapi.ErrBuilderConsumed
	}
	b.consumed = true
	return &Acceptor{}, nil
}

// Acceptor is the tlsapi.Acceptor of this backend.
type Acceptor struct{}

// Info implements tlsapi.Acceptor.
func (*Acceptor) Info() tlsapi.ImplInfo {
	return Info()
}

// Accept returns a stream that reads and writes socket unchanged.
func (*Acceptor) Accept(ctx context.Context, socket tlsapi.AsyncSocket) (*tlsapi.TLSStream, error) {
	return passthrough(ctx, socket)
}
