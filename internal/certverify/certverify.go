// Package certverify verifies peer certificate chains without
// checking the hostname.
package certverify

import (
	"crypto/x509"
	"errors"
)

// ErrNoPeerCertificates indicates that the peer did not send any
// certificate.
var ErrNoPeerCertificates = errors.New("certverify: peer did not send any certificate")

// Verifier verifies chains against a set of roots.
type Verifier struct {
	// Roots is the OPTIONAL set of trusted roots. When nil, we use
	// the system roots.
	Roots *x509.CertPool
}

// VerifyRaw verifies the DER certificates sent by the peer (leaf
// first) using the server authentication key usage.
func (v *Verifier) VerifyRaw(rawCerts [][]byte) error {
	certs := make([]*x509.Certificate, 0, len(rawCerts))
	for _, raw := range rawCerts {
		cert, err := x509.ParseCertificate(raw)
		if err != nil {
			return err
		}
		certs = append(certs, cert)
	}
	return v.Verify(certs)
}

// Verify is like VerifyRaw but takes parsed certificates.
func (v *Verifier) Verify(certs []*x509.Certificate) error {
	if len(certs) <= 0 {
		return ErrNoPeerCertificates
	}
	intermediates := x509.NewCertPool()
	for _, cert := range certs[1:] {
		intermediates.AddCert(cert)
	}
	_, err := certs[0].Verify(x509.VerifyOptions{
		Intermediates: intermediates,
		Roots:         v.Roots,
	})
	return err
}
