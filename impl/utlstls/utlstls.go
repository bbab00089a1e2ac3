// Package utlstls implements tlsapi using github.com/refraction-networking/utls,
// which allows the client to send the ClientHello of a popular browser.
package utlstls

import (
	"runtime/debug"

	"github.com/ooni/tlsapi"
)

const (
	// Implemented is true because this backend performs real TLS.
	Implemented = true

	// SupportsALPN is true because utls negotiates ALPN.
	SupportsALPN = true

	// SupportsDERKeys is true because acceptors load DER keys.
	SupportsDERKeys = true

	// SupportsPKCS12Keys is true because acceptors load PKCS#12.
	SupportsPKCS12Keys = true
)

const modulePath = "github.com/refraction-networking/utls"

// Info describes this backend. The version is the one of the utls
// module linked into the current binary, when known.
func Info() tlsapi.ImplInfo {
	info := tlsapi.ImplInfo{Name: "utls", Version: "unknown"}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, dep := range bi.Deps {
			if dep.Path == modulePath {
				info.Version = dep.Version
				break
			}
		}
	}
	return info
}
