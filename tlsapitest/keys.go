// Package tlsapitest contains the scenarios that every tlsapi backend
// should pass. The scenarios are generic over the connector and
// acceptor types, so they run unmodified against concrete backends and
// against their boxed forms.
package tlsapitest

import (
	"crypto/x509"
	"encoding/pem"
	"sync"

	"github.com/m-lab/go/rtx"
	"github.com/ooni/netem"
)

// ServerDomain is the domain for which ServerKeys is valid.
const ServerDomain = "localhost"

// ServerKeys is the key material of the test server.
type ServerKeys struct {
	// CA is the DER of the certificate that signed Chain.
	CA []byte

	// Chain is the server chain in DER, leaf first.
	Chain [][]byte

	// Key is the PKCS#8 DER private key of the leaf.
	Key []byte

	// CertPEM is Chain encoded as PEM.
	CertPEM []byte

	// KeyPEM is Key encoded as PEM.
	KeyPEM []byte
}

var (
	keysOnce sync.Once
	keys     *ServerKeys
)

// Keys returns the key material of the test server. The CA is created
// once per process using github.com/ooni/netem.
func Keys() *ServerKeys {
	keysOnce.Do(func() {
		keys = newServerKeys()
	})
	return keys
}

func newServerKeys() *ServerKeys {
	ca := netem.MustNewCA()
	cert := ca.MustNewTLSCertificate(ServerDomain)
	key, err := x509.MarshalPKCS8PrivateKey(cert.PrivateKey)
	rtx.Must(err, "cannot marshal the test server key")
	sk := &ServerKeys{
		CA:    ca.CACert().Raw,
		Chain: cert.Certificate,
		Key:   key,
		KeyPEM: pem.EncodeToMemory(&pem.Block{
			Type:  "PRIVATE KEY",
			Bytes: key,
		}),
	}
	for _, der := range cert.Certificate {
		sk.CertPEM = append(sk.CertPEM, pem.EncodeToMemory(&pem.Block{
			Type:  "CERTIFICATE",
			Bytes: der,
		})...)
	}
	return sk
}
