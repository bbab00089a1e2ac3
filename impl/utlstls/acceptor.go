package utlstls

import (
	"context"

	"github.com/ooni/tlsapi"
	"github.com/ooni/tlsapi/internal/alpn"
	"github.com/ooni/tlsapi/internal/handshake"
	"github.com/ooni/tlsapi/internal/keymaterial"
	utls "github.com/refraction-networking/utls"
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

// BuilderFromDERKeys implements tlsapi.AcceptorType.
func (AcceptorType) BuilderFromDERKeys(chain [][]byte, key []byte) (tlsapi.AcceptorBuilder[*Acceptor], error) {
	kp, err := keymaterial.FromDER(chain, key)
	if err != nil {
		return nil, tlsapi.NewBackendError(err)
	}
	return newAcceptorBuilder(kp), nil
}

// BuilderFromPKCS12 implements tlsapi.AcceptorType.
func (AcceptorType) BuilderFromPKCS12(pfx []byte, password string) (tlsapi.AcceptorBuilder[*Acceptor], error) {
	kp, err := keymaterial.FromPKCS12(pfx, password)
	if err != nil {
		return nil, tlsapi.NewBackendError(err)
	}
	return newAcceptorBuilder(kp), nil
}

// AcceptorBuilder is the tlsapi.AcceptorBuilder of this backend.
type AcceptorBuilder struct {
	config   *utls.Config
	consumed bool
}

var _ tlsapi.AcceptorBuilder[*Acceptor] = &AcceptorBuilder{}

func newAcceptorBuilder(kp *keymaterial.KeyPair) *AcceptorBuilder {
	return &AcceptorBuilder{config: &utls.Config{
		Certificates: []utls.Certificate{{
			Certificate: kp.Chain,
			PrivateKey:  kp.Key,
			Leaf:        kp.Leaf,
		}},
	}}
}

// SetALPNProtocols implements tlsapi.AcceptorBuilder.
func (b *AcceptorBuilder) SetALPNProtocols(protocols ...[]byte) error {
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

// Build implements tlsapi.AcceptorBuilder.
func (b *AcceptorBuilder) Build() (*Acceptor, error) {
	if b.consumed {
		return nil, tlsapi.ErrBuilderConsumed
	}
	b.consumed = true
	return &Acceptor{config: b.config.Clone()}, nil
}

// Acceptor is the tlsapi.Acceptor of this backend.
type Acceptor struct {
	config *utls.Config
}

var _ tlsapi.Acceptor = &Acceptor{}

// Info implements tlsapi.Acceptor.
func (*Acceptor) Info() tlsapi.ImplInfo {
	return Info()
}

// Accept implements tlsapi.Acceptor.
func (a *Acceptor) Accept(ctx context.Context, socket tlsapi.AsyncSocket) (*tlsapi.TLSStream, error) {
	tlsconn := utls.Server(tlsapi.NewSocketBox(socket), a.config)
	return handshake.Do(ctx, &conn{tlsconn}, socket)
}
