package tlsapitest

import (
	"errors"
	"testing"

	"github.com/ooni/tlsapi"
)

// newConnector builds a connector after calling configure on the
// builder. It skips the test when the backend is a stub.
func newConnector[C tlsapi.Connector](
	t *testing.T, typ tlsapi.ConnectorType[C], configure func(b tlsapi.ConnectorBuilder[C]) error,
) C {
	builder, err := typ.Builder()
	if errors.Is(err, tlsapi.ErrNotImplemented) {
		t.Skip("backend not implemented:", typ.Info())
	}
	if err != nil {
		t.Fatal(err)
	}
	if configure != nil {
		if err := configure(builder); err != nil {
			t.Fatal(err)
		}
	}
	connector, err := builder.Build()
	if err != nil {
		t.Fatal(err)
	}
	return connector
}

// newAcceptor builds an acceptor from Keys after calling configure on
// the builder. It skips the test when the backend is a stub.
func newAcceptor[A tlsapi.Acceptor](
	t *testing.T, typ tlsapi.AcceptorType[A], configure func(b tlsapi.AcceptorBuilder[A]) error,
) A {
	if !typ.SupportsDERKeys() {
		t.Skip("backend cannot load DER keys:", typ.Info())
	}
	keys := Keys()
	builder, err := typ.BuilderFromDERKeys(keys.Chain, keys.Key)
	if errors.Is(err, tlsapi.ErrNotImplemented) {
		t.Skip("backend not implemented:", typ.Info())
	}
	if err != nil {
		t.Fatal(err)
	}
	if configure != nil {
		if err := configure(builder); err != nil {
			t.Fatal(err)
		}
	}
	acceptor, err := builder.Build()
	if err != nil {
		t.Fatal(err)
	}
	return acceptor
}

// trustTestCA configures a builder to trust the CA of Keys.
func trustTestCA[C tlsapi.Connector](b tlsapi.ConnectorBuilder[C]) error {
	return b.AddRootCertificate(Keys().CA)
}

func requireImplemented(t *testing.T, infos ...interface {
	Implemented() bool
	Info() tlsapi.ImplInfo
}) {
	for _, info := range infos {
		if !info.Implemented() {
			t.Skip("backend does not implement TLS:", info.Info())
		}
	}
}
