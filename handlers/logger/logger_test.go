package logger

import (
	"crypto/tls"
	"testing"

	"github.com/apex/log"
	"github.com/apex/log/handlers/memory"
	"github.com/ooni/tlsapi/model"
)

func TestOnMeasurement(t *testing.T) {
	memhandler := memory.New()
	handler := NewHandler(&log.Logger{
		Handler: memhandler,
		Level:   log.DebugLevel,
	})
	handler.OnMeasurement(model.Measurement{
		TLSHandshakeStart: &model.TLSHandshakeStartEvent{
			Config: model.TLSConfig{Backend: "crypto/tls", ServerName: "example.com"},
			Role:   model.RoleClient,
		},
	})
	handler.OnMeasurement(model.Measurement{
		TLSHandshakeDone: &model.TLSHandshakeDoneEvent{
			ConnectionState: &model.TLSConnectionState{
				NegotiatedProtocol: "h2",
				Version:            tls.VersionTLS13,
			},
			Role: model.RoleClient,
		},
	})
	handler.OnMeasurement(model.Measurement{
		Read:  &model.ReadEvent{NumBytes: 10},
		Write: &model.WriteEvent{NumBytes: 11},
		Close: &model.CloseEvent{},
	})
	if len(memhandler.Entries) != 5 {
		t.Fatal("unexpected number of entries", len(memhandler.Entries))
	}
	start := memhandler.Entries[0]
	if start.Message != "tls: start handshake" || start.Fields["sni"] != "example.com" {
		t.Fatal("unexpected start entry", start.Message, start.Fields)
	}
	done := memhandler.Entries[1]
	if done.Fields["version"] != "TLSv1.3" || done.Fields["alpn"] != "h2" {
		t.Fatal("unexpected done entry", done.Fields)
	}
}

func TestOnMeasurementUnknownVersion(t *testing.T) {
	memhandler := memory.New()
	handler := NewHandler(&log.Logger{
		Handler: memhandler,
		Level:   log.DebugLevel,
	})
	handler.OnMeasurement(model.Measurement{
		TLSHandshakeDone: &model.TLSHandshakeDoneEvent{
			ConnectionState: &model.TLSConnectionState{Version: 0x0300},
			Role:            model.RoleServer,
		},
	})
	if len(memhandler.Entries) != 1 {
		t.Fatal("unexpected number of entries", len(memhandler.Entries))
	}
	if memhandler.Entries[0].Fields["version"] != "" {
		t.Fatal("unexpected version", memhandler.Entries[0].Fields["version"])
	}
}
