// Package alpn converts ALPN protocol lists.
package alpn

import "errors"

// ErrEmptyProtocol indicates an empty protocol name.
var ErrEmptyProtocol = errors.New("alpn: empty protocol name")

// ErrProtocolTooLong indicates a protocol name longer than 255 bytes.
var ErrProtocolTooLong = errors.New("alpn: protocol name longer than 255 bytes")

// ToStrings validates protocols and converts them to the []string used
// by crypto/tls and utls. A nil or empty input yields nil, which
// disables ALPN.
func ToStrings(protocols [][]byte) ([]string, error) {
	if len(protocols) <= 0 {
		return nil, nil
	}
	out := make([]string, 0, len(protocols))
	for _, p := range protocols {
		if len(p) <= 0 {
			return nil, ErrEmptyProtocol
		}
		if len(p) > 255 {
			return nil, ErrProtocolTooLong
		}
		out = append(out, string(p))
	}
	return out, nil
}

// FromString returns the negotiated protocol as bytes or nil when no
// protocol was negotiated.
func FromString(protocol string) []byte {
	if protocol == "" {
		return nil
	}
	return []byte(protocol)
}
