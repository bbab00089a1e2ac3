// Package tlsconf creates connectors and acceptors from a
// configuration that usually comes from command line flags.
package tlsconf

import (
	"os"

	"github.com/ooni/tlsapi"
	"github.com/ooni/tlsapi/backends"
	"github.com/ooni/tlsapi/internal/keymaterial"
	"github.com/pkg/errors"
)

// Config contains the TLS configuration.
type Config struct {
	// Backend is the name of the backend (see backends.Names). The
	// empty string selects the default backend.
	Backend string

	// ALPN is the OPTIONAL list of protocols to negotiate.
	ALPN []string

	// CABundle is the OPTIONAL path of a PEM file containing extra
	// root certificates for the connector.
	CABundle string

	// NoVerifyHostname disables the hostname check in the connector.
	NoVerifyHostname bool

	// CertFile and KeyFile are the PEM files used by the acceptor.
	CertFile string
	KeyFile  string

	// PKCS12File is used by the acceptor instead of CertFile and
	// KeyFile when not empty.
	PKCS12File     string
	PKCS12Password string
}

// LoadCABundle returns the DER certificates in the PEM file at path.
func LoadCABundle(path string) ([][]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "tlsconf: cannot read CA bundle")
	}
	certs, err := keymaterial.DecodePEMCertificates(data)
	if err != nil {
		return nil, errors.Wrapf(err, "tlsconf: invalid CA bundle %s", path)
	}
	return certs, nil
}

func (c *Config) alpn() [][]byte {
	var out [][]byte
	for _, p := range c.ALPN {
		out = append(out, []byte(p))
	}
	return out
}

// ApplyConnector applies the configuration to builder.
func (c *Config) ApplyConnector(builder tlsapi.ConnectorBuilder[*tlsapi.ConnectorBox]) error {
	if c.CABundle != "" {
		certs, err := LoadCABundle(c.CABundle)
		if err != nil {
			return err
		}
		for _, cert := range certs {
			if err := builder.AddRootCertificate(cert); err != nil {
				return errors.Wrap(err, "tlsconf: cannot add root certificate")
			}
		}
	}
	if c.NoVerifyHostname {
		if err := builder.SetVerifyHostname(false); err != nil {
			return errors.Wrap(err, "tlsconf: cannot disable hostname verification")
		}
	}
	if len(c.ALPN) > 0 {
		if err := builder.SetALPNProtocols(c.alpn()...); err != nil {
			return errors.Wrap(err, "tlsconf: cannot set ALPN")
		}
	}
	return nil
}

// NewConnector returns a connector of the configured backend.
func (c *Config) NewConnector() (*tlsapi.ConnectorBox, error) {
	backend, err := backends.Lookup(c.Backend)
	if err != nil {
		return nil, err
	}
	builder, err := backend.Connector.Builder()
	if err != nil {
		return nil, errors.Wrapf(err, "tlsconf: %s", backend.Name)
	}
	if err := c.ApplyConnector(builder); err != nil {
		return nil, err
	}
	return builder.Build()
}

// NewAcceptor returns an acceptor of the configured backend.
func (c *Config) NewAcceptor() (*tlsapi.AcceptorBox, error) {
	backend, err := backends.Lookup(c.Backend)
	if err != nil {
		return nil, err
	}
	builder, err := c.acceptorBuilder(backend.Acceptor)
	if err != nil {
		return nil, errors.Wrapf(err, "tlsconf: %s", backend.Name)
	}
	if len(c.ALPN) > 0 {
		if err := builder.SetALPNProtocols(c.alpn()...); err != nil {
			return nil, errors.Wrap(err, "tlsconf: cannot set ALPN")
		}
	}
	return builder.Build()
}

func (c *Config) acceptorBuilder(typ tlsapi.DynAcceptorType) (tlsapi.AcceptorBuilder[*tlsapi.AcceptorBox], error) {
	if c.PKCS12File != "" {
		if !typ.SupportsPKCS12Keys() {
			return nil, tlsapi.ErrKeysUnsupported
		}
		pfx, err := os.ReadFile(c.PKCS12File)
		if err != nil {
			return nil, errors.Wrap(err, "cannot read PKCS#12 file")
		}
		return typ.BuilderFromPKCS12(pfx, c.PKCS12Password)
	}
	if !typ.SupportsDERKeys() {
		return nil, tlsapi.ErrKeysUnsupported
	}
	certPEM, err := os.ReadFile(c.CertFile)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read certificate file")
	}
	keyPEM, err := os.ReadFile(c.KeyFile)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read key file")
	}
	chain, err := keymaterial.DecodePEMCertificates(certPEM)
	if err != nil {
		return nil, err
	}
	key, err := keymaterial.DecodePEMKey(keyPEM)
	if err != nil {
		return nil, err
	}
	return typ.BuilderFromDERKeys(chain, key)
}
