// Package backends lists the tlsapi backends of this module so that
// they can be selected by name at runtime.
package backends

import (
	"errors"
	"fmt"

	"github.com/ooni/tlsapi"
	"github.com/ooni/tlsapi/impl/notls"
	"github.com/ooni/tlsapi/impl/stdtls"
	"github.com/ooni/tlsapi/impl/stubtls"
	"github.com/ooni/tlsapi/impl/utlstls"
)

// ErrUnknownBackend indicates that no backend has the requested name.
var ErrUnknownBackend = errors.New("backends: unknown backend")

// Backend is a named pair of boxed connector and acceptor types.
type Backend struct {
	Name      string
	Connector tlsapi.DynConnectorType
	Acceptor  tlsapi.DynAcceptorType
}

// Default is the name of the backend used when none is specified.
const Default = "stdtls"

// All returns every backend, the default one first.
func All() []Backend {
	return []Backend{{
		Name:      "stdtls",
		Connector: tlsapi.BoxConnectorType[*stdtls.Connector](stdtls.ConnectorType{}),
		Acceptor:  tlsapi.BoxAcceptorType[*stdtls.Acceptor](stdtls.AcceptorType{}),
	}, {
		Name:      "utls",
		Connector: tlsapi.BoxConnectorType[*utlstls.Connector](utlstls.ConnectorType{}),
		Acceptor:  tlsapi.BoxAcceptorType[*utlstls.Acceptor](utlstls.AcceptorType{}),
	}, {
		Name:      "notls",
		Connector: tlsapi.BoxConnectorType[*notls.Connector](notls.ConnectorType{}),
		Acceptor:  tlsapi.BoxAcceptorType[*notls.Acceptor](notls.AcceptorType{}),
	}, {
		Name:      "stub",
		Connector: tlsapi.BoxConnectorType[*stubtls.Connector](stubtls.ConnectorType{}),
		Acceptor:  tlsapi.BoxAcceptorType[*stubtls.Acceptor](stubtls.AcceptorType{}),
	}}
}

// Names returns the names of all backends.
func Names() []string {
	var out []string
	for _, b := range All() {
		out = append(out, b.Name)
	}
	return out
}

// Lookup returns the backend called name. The empty name selects
// the Default backend.
func Lookup(name string) (Backend, error) {
	if name == "" {
		name = Default
	}
	for _, b := range All() {
		if b.Name == name {
			return b, nil
		}
	}
	return Backend{}, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
}
