// Package errwrapper maps handshake errors to OONI failure strings.
//
// Backend errors are opaque, so the classification of the errors they
// carry only looks at their text, like netxlite's classifier does for
// errors whose type is not exported.
package errwrapper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ooni/tlsapi"
)

// Failure strings.
const (
	FailureALPNUnsupported           = "alpn_unsupported"
	FailureConnectionAlreadyClosed   = "connection_already_closed"
	FailureConnectionReset           = "connection_reset"
	FailureEOFError                  = "eof_error"
	FailureGenericTimeoutError       = "generic_timeout_error"
	FailureInterrupted               = "interrupted"
	FailureKeysUnsupported           = "keys_unsupported"
	FailureNotImplemented            = "not_implemented"
	FailureSSLFailedHandshake        = "ssl_failed_handshake"
	FailureSSLInvalidCertificate     = "ssl_invalid_certificate"
	FailureSSLInvalidHostname        = "ssl_invalid_hostname"
	FailureSSLUnknownAuthority       = "ssl_unknown_authority"
	FailureVerifyHostnameUnsupported = "verify_hostname_unsupported"
)

var kinds = []struct {
	err     error
	failure string
}{
	{tlsapi.ErrALPNUnsupported, FailureALPNUnsupported},
	{tlsapi.ErrKeysUnsupported, FailureKeysUnsupported},
	{tlsapi.ErrNotImplemented, FailureNotImplemented},
	{tlsapi.ErrVerifyHostnameUnsupported, FailureVerifyHostnameUnsupported},
}

// Classify returns the failure string of err or the empty string
// when err is nil.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.failure
		}
	}
	if errors.Is(err, context.Canceled) {
		return FailureInterrupted
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureGenericTimeoutError
	}
	if failure := classifyTLSText(err.Error()); failure != "" {
		return failure
	}
	if failure := classifyWithStringSuffix(err.Error()); failure != "" {
		return failure
	}
	return fmt.Sprintf("unknown_failure: %s", err.Error())
}

func classifyTLSText(s string) string {
	switch {
	case strings.Contains(s, "x509: certificate is valid for"),
		strings.Contains(s, "x509: certificate is not valid for any names"):
		return FailureSSLInvalidHostname
	case strings.Contains(s, "x509: certificate signed by unknown authority"):
		return FailureSSLUnknownAuthority
	case strings.Contains(s, "x509: "):
		return FailureSSLInvalidCertificate
	case strings.Contains(s, "tls: "):
		return FailureSSLFailedHandshake
	}
	return ""
}

func classifyWithStringSuffix(s string) string {
	switch {
	case strings.HasSuffix(s, "EOF"):
		return FailureEOFError
	case strings.HasSuffix(s, "i/o timeout"):
		return FailureGenericTimeoutError
	case strings.HasSuffix(s, "connection reset by peer"):
		return FailureConnectionReset
	case strings.HasSuffix(s, "use of closed network connection"),
		strings.HasSuffix(s, "io: read/write on closed pipe"):
		return FailureConnectionAlreadyClosed
	}
	return ""
}
