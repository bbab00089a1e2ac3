package tlsapi

import "context"

// DynAcceptorType is an AcceptorType whose concrete acceptor type has
// been erased.
type DynAcceptorType = AcceptorType[*AcceptorBox]

// BoxAcceptorType erases the acceptor type of typ.
func BoxAcceptorType[A Acceptor](typ AcceptorType[A]) DynAcceptorType {
	if dyn, ok := any(typ).(DynAcceptorType); ok {
		return dyn
	}
	return &acceptorTypeBox[A]{typ: typ}
}

type acceptorTypeBox[A Acceptor] struct {
	typ AcceptorType[A]
}

func (t *acceptorTypeBox[A]) Info() ImplInfo {
	return t.typ.Info()
}

func (t *acceptorTypeBox[A]) Implemented() bool {
	return t.typ.Implemented()
}

func (t *acceptorTypeBox[A]) SupportsALPN() bool {
	return t.typ.SupportsALPN()
}

func (t *acceptorTypeBox[A]) SupportsDERKeys() bool {
	return t.typ.SupportsDERKeys()
}

func (t *acceptorTypeBox[A]) SupportsPKCS12Keys() bool {
	return t.typ.SupportsPKCS12Keys()
}

func (t *acceptorTypeBox[A]) BuilderFromDERKeys(certChain [][]byte, key []byte) (AcceptorBuilder[*AcceptorBox], error) {
	builder, err := t.typ.BuilderFromDERKeys(certChain, key)
	if err != nil {
		return nil, err
	}
	return BoxAcceptorBuilder[A](builder), nil
}

func (t *acceptorTypeBox[A]) BuilderFromPKCS12(pfx []byte, password string) (AcceptorBuilder[*AcceptorBox], error) {
	builder, err := t.typ.BuilderFromPKCS12(pfx, password)
	if err != nil {
		return nil, err
	}
	return BoxAcceptorBuilder[A](builder), nil
}

// AcceptorBuilderBox is an AcceptorBuilder whose concrete acceptor type
// has been erased.
type AcceptorBuilderBox struct {
	builder acceptorBuilderDyn
}

var _ AcceptorBuilder[*AcceptorBox] = &AcceptorBuilderBox{}

type acceptorBuilderDyn interface {
	SetALPNProtocols(protocols ...[]byte) error
	buildBox() (*AcceptorBox, error)
}

// BoxAcceptorBuilder erases the acceptor type of builder.
func BoxAcceptorBuilder[A Acceptor](builder AcceptorBuilder[A]) *AcceptorBuilderBox {
	if box, ok := any(builder).(*AcceptorBuilderBox); ok {
		return box
	}
	return &AcceptorBuilderBox{builder: &acceptorBuilderAdapter[A]{builder}}
}

type acceptorBuilderAdapter[A Acceptor] struct {
	AcceptorBuilder[A]
}

func (a *acceptorBuilderAdapter[A]) buildBox() (*AcceptorBox, error) {
	acceptor, err := a.Build()
	if err != nil {
		return nil, err
	}
	return BoxAcceptor(acceptor), nil
}

// SetALPNProtocols implements AcceptorBuilder.
func (b *AcceptorBuilderBox) SetALPNProtocols(protocols ...[]byte) error {
	return b.builder.SetALPNProtocols(protocols...)
}

// Build implements AcceptorBuilder.
func (b *AcceptorBuilderBox) Build() (*AcceptorBox, error) {
	return b.builder.buildBox()
}

// AcceptorBox is an Acceptor whose concrete type has been erased.
type AcceptorBox struct {
	acceptor Acceptor
}

var _ Acceptor = &AcceptorBox{}

// BoxAcceptor wraps acceptor.
func BoxAcceptor(acceptor Acceptor) *AcceptorBox {
	if box, ok := acceptor.(*AcceptorBox); ok {
		return box
	}
	return &AcceptorBox{acceptor: acceptor}
}

// Unbox returns the wrapped acceptor.
func (a *AcceptorBox) Unbox() Acceptor {
	return a.acceptor
}

// Info implements Acceptor.
func (a *AcceptorBox) Info() ImplInfo {
	return a.acceptor.Info()
}

// Accept implements Acceptor. The socket reaches the wrapped acceptor
// as a *SocketBox.
func (a *AcceptorBox) Accept(ctx context.Context, socket AsyncSocket) (*TLSStream, error) {
	return a.acceptor.Accept(ctx, NewSocketBox(socket))
}
