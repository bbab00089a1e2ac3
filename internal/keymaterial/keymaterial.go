// Package keymaterial loads server certificates and private keys in
// the formats accepted by the acceptor builders.
package keymaterial

import (
	"crypto"
	"crypto/x509"
	"encoding/pem"

	"github.com/pkg/errors"
	"golang.org/x/crypto/pkcs12"
)

// KeyPair is a certificate chain (leaf first, DER) with the private
// key of the leaf.
type KeyPair struct {
	Chain [][]byte
	Key   crypto.PrivateKey
	Leaf  *x509.Certificate
}

// ErrEmptyChain indicates a chain without certificates.
var ErrEmptyChain = errors.New("keymaterial: empty certificate chain")

// ErrNoPEMCertificate indicates that no CERTIFICATE block was found.
var ErrNoPEMCertificate = errors.New("keymaterial: no CERTIFICATE block in PEM data")

// ErrNoPEMKey indicates that no private key block was found.
var ErrNoPEMKey = errors.New("keymaterial: no private key block in PEM data")

// FromDER builds a KeyPair from a DER chain and a DER private key.
func FromDER(chain [][]byte, keyDER []byte) (*KeyPair, error) {
	if len(chain) <= 0 {
		return nil, ErrEmptyChain
	}
	leaf, err := x509.ParseCertificate(chain[0])
	if err != nil {
		return nil, errors.Wrap(err, "keymaterial: cannot parse leaf certificate")
	}
	key, err := ParsePrivateKey(keyDER)
	if err != nil {
		return nil, err
	}
	return &KeyPair{Chain: chain, Key: key, Leaf: leaf}, nil
}

// FromPEM builds a KeyPair from PEM encoded certificates and key.
func FromPEM(certPEM, keyPEM []byte) (*KeyPair, error) {
	chain, err := DecodePEMCertificates(certPEM)
	if err != nil {
		return nil, err
	}
	keyDER, err := DecodePEMKey(keyPEM)
	if err != nil {
		return nil, err
	}
	return FromDER(chain, keyDER)
}

// DecodePEMKey returns the DER bytes of the first private key block
// in data.
func DecodePEMKey(data []byte) ([]byte, error) {
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			return nil, ErrNoPEMKey
		}
		switch block.Type {
		case "PRIVATE KEY", "RSA PRIVATE KEY", "EC PRIVATE KEY":
			return block.Bytes, nil
		}
	}
}

// FromPKCS12 builds a KeyPair from a PKCS#12 archive containing a
// single certificate and its key.
func FromPKCS12(pfx []byte, password string) (*KeyPair, error) {
	key, cert, err := pkcs12.Decode(pfx, password)
	if err != nil {
		return nil, errors.Wrap(err, "keymaterial: cannot decode PKCS#12 archive")
	}
	return &KeyPair{Chain: [][]byte{cert.Raw}, Key: key, Leaf: cert}, nil
}

// DecodePEMCertificates returns the DER bytes of every CERTIFICATE
// block in data, in order.
func DecodePEMCertificates(data []byte) ([][]byte, error) {
	var out [][]byte
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type == "CERTIFICATE" {
			out = append(out, block.Bytes)
		}
	}
	if len(out) <= 0 {
		return nil, ErrNoPEMCertificate
	}
	return out, nil
}

// ParsePrivateKey parses a DER private key in PKCS#8, PKCS#1 or
// SEC 1 form.
func ParsePrivateKey(der []byte) (crypto.PrivateKey, error) {
	if key, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		return key, nil
	}
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}
	key, err := x509.ParseECPrivateKey(der)
	if err != nil {
		return nil, errors.New("keymaterial: cannot parse private key")
	}
	return key, nil
}
