package stubtls

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/ooni/tlsapi"
	"github.com/ooni/tlsapi/tlsapitest"
)

func TestConformance(t *testing.T) {
	tlsapitest.RunAll[*Connector, *Acceptor](t, ConnectorType{}, AcceptorType{})
}

func TestEverythingFails(t *testing.T) {
	if _, err := (ConnectorType{}).Builder(); !errors.Is(err, tlsapi.ErrNotImplemented) {
		t.Fatal("not the error we expected", err)
	}
	if _, err := (AcceptorType{}).BuilderFromDERKeys(nil, nil); !errors.Is(err, tlsapi.ErrNotImplemented) {
		t.Fatal("not the error we expected", err)
	}
	if _, err := (AcceptorType{}).BuilderFromPKCS12(nil, ""); !errors.Is(err, tlsapi.ErrNotImplemented) {
		t.Fatal("not the error we expected", err)
	}
	client, server := net.Pipe()
	defer server.Close()
	if _, err := (&Connector{}).Connect(context.Background(), "x", client); !errors.Is(err, tlsapi.ErrNotImplemented) {
		t.Fatal("not the error we expected", err)
	}
	if _, err := (&Acceptor{}).Accept(context.Background(), server); !errors.Is(err, tlsapi.ErrNotImplemented) {
		t.Fatal("not the error we expected", err)
	}
}

func TestBoxedTypeKeepsFlags(t *testing.T) {
	dyn := tlsapi.BoxConnectorType[*Connector](ConnectorType{})
	if dyn.Implemented() || dyn.SupportsALPN() {
		t.Fatal("unexpected flags")
	}
	if dyn.Info() != Info() {
		t.Fatal("unexpected info")
	}
}

func TestTypeFlags(t *testing.T) {
	if (ConnectorType{}).Implemented() || (ConnectorType{}).SupportsALPN() {
		t.Fatal("unexpected connector flags")
	}
	typ := AcceptorType{}
	if typ.Implemented() || typ.SupportsALPN() || typ.SupportsDERKeys() || typ.SupportsPKCS12Keys() {
		t.Fatal("unexpected acceptor flags")
	}
	for _, info := range []tlsapi.ImplInfo{
		(ConnectorType{}).Info(), typ.Info(), (&Connector{}).Info(), (&Acceptor{}).Info(),
	} {
		if info != Info() {
			t.Fatal("unexpected info", info)
		}
	}
}
