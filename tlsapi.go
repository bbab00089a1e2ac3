// Package tlsapi is an implementation neutral TLS API.
//
// Code written against this package does not know which TLS library
// performs the handshake. For example:
//
//	func download[C tlsapi.Connector](ctx context.Context, typ tlsapi.ConnectorType[C]) ([]byte, error) {
//		conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", "example.com:443")
//		if err != nil {
//			return nil, err
//		}
//		builder, err := typ.Builder()
//		if err != nil {
//			return nil, err
//		}
//		connector, err := builder.Build()
//		if err != nil {
//			return nil, err
//		}
//		stream, err := connector.Connect(ctx, "example.com", conn)
//		...
//	}
//
// The same function can be written without type parameters by taking a
// DynConnectorType, which is what you want when the backend is selected
// at runtime (see the backends package).
//
// Backends live under impl/:
//
// - impl/stdtls wraps crypto/tls;
//
// - impl/utlstls wraps github.com/refraction-networking/utls;
//
// - impl/notls returns plain sockets without TLS;
//
// - impl/stubtls returns an error on any operation.
//
// Every backend is expected to pass the scenarios in package tlsapitest.
package tlsapi

// ImplInfo describes a backend.
type ImplInfo struct {
	// Name is the backend name (e.g. "crypto/tls").
	Name string

	// Version is the version of the underlying library.
	Version string
}

// String returns "name=version".
func (i ImplInfo) String() string {
	return i.Name + "=" + i.Version
}
