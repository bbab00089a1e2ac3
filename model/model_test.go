package model

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewTLSConnectionState(t *testing.T) {
	state := NewTLSConnectionState(tls.ConnectionState{
		CipherSuite:        tls.TLS_AES_128_GCM_SHA256,
		NegotiatedProtocol: "h2",
		PeerCertificates: []*x509.Certificate{
			{Raw: []byte("leaf")}, {Raw: []byte("intermediate")},
		},
		Version: tls.VersionTLS13,
	})
	if len(state.PeerCertificates) != 2 {
		t.Fatal("too few certificates")
	}
	if string(state.PeerCertificates[0].Data) != "leaf" {
		t.Fatal("certificates not in order")
	}
	if state.Version != tls.VersionTLS13 || state.NegotiatedProtocol != "h2" {
		t.Fatal("unexpected state")
	}
}

func TestMeasurementOmitsMissingEvents(t *testing.T) {
	data, err := json.Marshal(Measurement{
		TLSHandshakeStart: &TLSHandshakeStartEvent{Role: RoleClient},
	})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "Read") {
		t.Fatal("unexpected Read event in", string(data))
	}
	if !strings.Contains(string(data), `"Role":"client"`) {
		t.Fatal("missing role in", string(data))
	}
}
