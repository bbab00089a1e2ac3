package stdtls

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/ooni/tlsapi"
	"github.com/ooni/tlsapi/tlsapitest"
)

func TestConformance(t *testing.T) {
	tlsapitest.RunAll[*Connector, *Acceptor](t, ConnectorType{}, AcceptorType{})
}

func TestConformanceBoxed(t *testing.T) {
	tlsapitest.RunAll[*tlsapi.ConnectorBox, *tlsapi.AcceptorBox](
		t,
		tlsapi.BoxConnectorType[*Connector](ConnectorType{}),
		tlsapi.BoxAcceptorType[*Acceptor](AcceptorType{}),
	)
}

func TestInfo(t *testing.T) {
	info := ConnectorType{}.Info()
	if info.Name != "crypto/tls" || !strings.HasPrefix(info.Version, "go") {
		t.Fatal("unexpected info", info)
	}
}

func TestBuildWithoutHostnameVerification(t *testing.T) {
	builder, err := NewConnectorBuilder()
	if err != nil {
		t.Fatal(err)
	}
	if err := builder.SetVerifyHostname(false); err != nil {
		t.Fatal(err)
	}
	connector, err := builder.Build()
	if err != nil {
		t.Fatal(err)
	}
	config := connector.Underlying()
	if !config.InsecureSkipVerify || config.VerifyConnection == nil {
		t.Fatal("expected chain-only verification")
	}
}

func TestSetALPNProtocolsEmptyProtocol(t *testing.T) {
	builder, err := NewConnectorBuilder()
	if err != nil {
		t.Fatal(err)
	}
	err = builder.SetALPNProtocols([]byte("h2"), []byte{})
	var e *tlsapi.Error
	if !errors.As(err, &e) || e.Kind() != tlsapi.KindBackend {
		t.Fatal("not the error we expected", err)
	}
}

func TestAddRootCertificateInvalid(t *testing.T) {
	builder, err := NewConnectorBuilder()
	if err != nil {
		t.Fatal(err)
	}
	if err := builder.AddRootCertificate([]byte("antani")); err == nil {
		t.Fatal("expected an error here")
	}
}

func TestAcceptorBuilderFromPEM(t *testing.T) {
	keys := tlsapitest.Keys()
	builder, err := NewAcceptorBuilderFromPEM(keys.CertPEM, keys.KeyPEM)
	if err != nil {
		t.Fatal(err)
	}
	if err := builder.SetALPNProtocols([]byte("h2")); err != nil {
		t.Fatal(err)
	}
	acceptor, err := builder.Build()
	if err != nil {
		t.Fatal(err)
	}
	config := acceptor.Underlying()
	if len(config.Certificates) != 1 || len(config.NextProtos) != 1 {
		t.Fatal("unexpected config")
	}
	if _, err := builder.Build(); !errors.Is(err, tlsapi.ErrBuilderConsumed) {
		t.Fatal("not the error we expected", err)
	}
}

func TestAcceptorBuilderFromInvalidKeys(t *testing.T) {
	if _, err := (AcceptorType{}).BuilderFromDERKeys(nil, nil); err == nil {
		t.Fatal("expected an error here")
	}
	if _, err := (AcceptorType{}).BuilderFromPKCS12([]byte("antani"), ""); err == nil {
		t.Fatal("expected an error here")
	}
	if _, err := NewAcceptorBuilderFromPEM([]byte("antani"), nil); err == nil {
		t.Fatal("expected an error here")
	}
}

func TestAcceptorBuilderFromPKCS12(t *testing.T) {
	pfx, err := os.ReadFile("../../internal/keymaterial/testdata/server.p12")
	if err != nil {
		t.Fatal(err)
	}
	builder, err := AcceptorType{}.BuilderFromPKCS12(pfx, "tlsapi")
	if err != nil {
		t.Fatal(err)
	}
	acceptor, err := builder.Build()
	if err != nil {
		t.Fatal(err)
	}
	if len(acceptor.Underlying().Certificates) != 1 {
		t.Fatal("unexpected config")
	}
}
