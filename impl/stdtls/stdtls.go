// Package stdtls implements tlsapi using crypto/tls.
package stdtls

import (
	"runtime"

	"github.com/ooni/tlsapi"
)

const (
	// Implemented is true because this backend performs real TLS.
	Implemented = true

	// SupportsALPN is true because crypto/tls negotiates ALPN.
	SupportsALPN = true

	// SupportsDERKeys is true because acceptors load DER keys.
	SupportsDERKeys = true

	// SupportsPKCS12Keys is true because acceptors load PKCS#12.
	SupportsPKCS12Keys = true
)

// Info describes this backend.
func Info() tlsapi.ImplInfo {
	return tlsapi.ImplInfo{Name: "crypto/tls", Version: runtime.Version()}
}
