package tlsapi

import "context"

// DynConnectorType is a ConnectorType whose concrete connector type has
// been erased. Use it when the backend is chosen at runtime.
type DynConnectorType = ConnectorType[*ConnectorBox]

// BoxConnectorType erases the connector type of typ.
func BoxConnectorType[C Connector](typ ConnectorType[C]) DynConnectorType {
	if dyn, ok := any(typ).(DynConnectorType); ok {
		return dyn
	}
	return &connectorTypeBox[C]{typ: typ}
}

type connectorTypeBox[C Connector] struct {
	typ ConnectorType[C]
}

func (t *connectorTypeBox[C]) Info() ImplInfo {
	return t.typ.Info()
}

func (t *connectorTypeBox[C]) Implemented() bool {
	return t.typ.Implemented()
}

func (t *connectorTypeBox[C]) SupportsALPN() bool {
	return t.typ.SupportsALPN()
}

func (t *connectorTypeBox[C]) Builder() (ConnectorBuilder[*ConnectorBox], error) {
	builder, err := t.typ.Builder()
	if err != nil {
		return nil, err
	}
	return BoxConnectorBuilder[C](builder), nil
}

// ConnectorBuilderBox is a ConnectorBuilder whose concrete connector
// type has been erased.
type ConnectorBuilderBox struct {
	builder connectorBuilderDyn
}

var _ ConnectorBuilder[*ConnectorBox] = &ConnectorBuilderBox{}

// connectorBuilderDyn is the type-erased view of a ConnectorBuilder.
type connectorBuilderDyn interface {
	SetALPNProtocols(protocols ...[]byte) error
	SetVerifyHostname(verify bool) error
	AddRootCertificate(der []byte) error
	buildBox() (*ConnectorBox, error)
}

// BoxConnectorBuilder erases the connector type of builder.
func BoxConnectorBuilder[C Connector](builder ConnectorBuilder[C]) *ConnectorBuilderBox {
	if box, ok := any(builder).(*ConnectorBuilderBox); ok {
		return box
	}
	return &ConnectorBuilderBox{builder: &connectorBuilderAdapter[C]{builder}}
}

type connectorBuilderAdapter[C Connector] struct {
	ConnectorBuilder[C]
}

func (a *connectorBuilderAdapter[C]) buildBox() (*ConnectorBox, error) {
	connector, err := a.Build()
	if err != nil {
		return nil, err
	}
	return BoxConnector(connector), nil
}

// SetALPNProtocols implements ConnectorBuilder.
func (b *ConnectorBuilderBox) SetALPNProtocols(protocols ...[]byte) error {
	return b.builder.SetALPNProtocols(protocols...)
}

// SetVerifyHostname implements ConnectorBuilder.
func (b *ConnectorBuilderBox) SetVerifyHostname(verify bool) error {
	return b.builder.SetVerifyHostname(verify)
}

// AddRootCertificate implements ConnectorBuilder.
func (b *ConnectorBuilderBox) AddRootCertificate(der []byte) error {
	return b.builder.AddRootCertificate(der)
}

// Build implements ConnectorBuilder.
func (b *ConnectorBuilderBox) Build() (*ConnectorBox, error) {
	return b.builder.buildBox()
}

// ConnectorBox is a Connector whose concrete type has been erased.
type ConnectorBox struct {
	connector Connector
}

var _ Connector = &ConnectorBox{}

// BoxConnector wraps connector.
func BoxConnector(connector Connector) *ConnectorBox {
	if box, ok := connector.(*ConnectorBox); ok {
		return box
	}
	return &ConnectorBox{connector: connector}
}

// Unbox returns the wrapped connector.
func (c *ConnectorBox) Unbox() Connector {
	return c.connector
}

// Info implements Connector.
func (c *ConnectorBox) Info() ImplInfo {
	return c.connector.Info()
}

// Connect implements Connector. The socket reaches the wrapped
// connector as a *SocketBox.
func (c *ConnectorBox) Connect(ctx context.Context, domain string, socket AsyncSocket) (*TLSStream, error) {
	return c.connector.Connect(ctx, domain, NewSocketBox(socket))
}
