package tracing

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ooni/tlsapi/internal/handlers/counthandler"
	"github.com/ooni/tlsapi/internal/handlers/savinghandler"
	"github.com/ooni/tlsapi/model"
)

func TestIntegrationWorks(t *testing.T) {
	const count = 3
	var wg sync.WaitGroup
	wg.Add(1)
	ctx := WithInfo(context.Background(), &Info{
		Handler: &counthandler.Handler{},
	})
	go func(ctx context.Context) {
		info := ContextInfo(ctx)
		for i := 0; i < count; i++ {
			info.Handler.OnMeasurement(model.Measurement{})
		}
		wg.Done()
	}(ctx)
	wg.Wait()
	if ContextInfo(ctx).Handler.(*counthandler.Handler).Count != 3 {
		t.Fatal("did not record all emitted measurements")
	}
}

func TestContextInfoMissing(t *testing.T) {
	if ContextInfo(context.Background()) != nil {
		t.Fatal("expected nil info")
	}
}

func TestPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	WithInfo(context.Background(), nil)
}

func TestNewConnIDIsNeverReused(t *testing.T) {
	first := NewConnID()
	if second := NewConnID(); second <= first {
		t.Fatal("connection IDs should increase")
	}
}

func TestEmitTLSHandshakeStart(t *testing.T) {
	handler := &savinghandler.Handler{}
	info := &Info{Handler: handler, Beginning: time.Now()}
	info.EmitTLSHandshakeStart(7, model.RoleClient, model.TLSConfig{
		Backend:    "crypto/tls",
		ServerName: "antani",
	})
	if len(handler.All) != 1 {
		t.Fatal("no events have been saved")
	}
	evt := handler.All[0].TLSHandshakeStart
	if evt == nil {
		t.Fatal("missing correct event")
	}
	if evt.ConnID != 7 || evt.Role != model.RoleClient {
		t.Fatal("unexpected ConnID or Role")
	}
	if evt.Config.ServerName != "antani" {
		t.Fatal("SNI not correctly saved")
	}
}

func TestEmitTLSHandshakeDoneNoState(t *testing.T) {
	handler := &savinghandler.Handler{}
	info := &Info{Handler: handler}
	info.EmitTLSHandshakeDone(1, model.RoleServer, time.Now(), nil, errors.New("mocked error"))
	if len(handler.All) != 1 {
		t.Fatal("no events have been saved")
	}
	evt := handler.All[0].TLSHandshakeDone
	if evt == nil {
		t.Fatal("missing correct event")
	}
	if evt.ConnectionState != nil {
		t.Fatal("unexpected ConnectionState value")
	}
	if evt.Error == nil {
		t.Fatal("the error was not saved")
	}
	if evt.Failure != "unknown_failure: mocked error" {
		t.Fatal("unexpected failure", evt.Failure)
	}
}

func TestEmitTLSHandshakeDoneWithState(t *testing.T) {
	handler := &savinghandler.Handler{}
	info := &Info{Handler: handler}
	info.EmitTLSHandshakeDone(1, model.RoleClient, time.Now(), &tls.ConnectionState{
		PeerCertificates: []*x509.Certificate{{
			Raw: []byte("0xdeadbeef"),
		}},
		Version: tls.VersionTLS12,
	}, nil)
	if len(handler.All) != 1 {
		t.Fatal("no events have been saved")
	}
	evt := handler.All[0].TLSHandshakeDone
	if evt == nil || evt.ConnectionState == nil {
		t.Fatal("unexpected ConnectionState value")
	}
	if evt.Failure != "" {
		t.Fatal("expected no failure")
	}
	if evt.ConnectionState.Version != tls.VersionTLS12 {
		t.Fatal("unexpected TLS version")
	}
	if len(evt.ConnectionState.PeerCertificates) != 1 {
		t.Fatal("unexpected number of peer certificates")
	}
	cert := evt.ConnectionState.PeerCertificates[0]
	if !bytes.Equal(cert.Data, []byte("0xdeadbeef")) {
		t.Fatal("incorrectly saved certificate info")
	}
}
