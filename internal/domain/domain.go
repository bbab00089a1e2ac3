// Package domain normalizes the domain passed to Connect.
package domain

import (
	"net"
	"strings"

	"golang.org/x/net/idna"
)

// Normalize returns the ASCII form of domain suitable for SNI and for
// hostname verification. IP addresses are returned unchanged. When the
// domain is not a valid IDNA name we return it lowercased and let the
// TLS library decide.
func Normalize(domain string) string {
	domain = strings.TrimSuffix(domain, ".")
	if net.ParseIP(domain) != nil {
		return domain
	}
	ascii, err := idna.Lookup.ToASCII(domain)
	if err != nil {
		return strings.ToLower(domain)
	}
	return ascii
}
