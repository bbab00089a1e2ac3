package tlsapi

import (
	"context"
	"errors"
)

// ErrorKind is the kind of an Error. Generic code should only look at
// the kind, never at the text of backend errors.
type ErrorKind int

const (
	// KindBackend is an opaque failure reported by a backend.
	KindBackend = ErrorKind(iota)

	// KindALPNUnsupported means the backend cannot negotiate ALPN.
	KindALPNUnsupported

	// KindVerifyHostnameUnsupported means the backend cannot disable
	// hostname verification.
	KindVerifyHostnameUnsupported

	// KindNotImplemented means the backend is a stub.
	KindNotImplemented

	// KindBuilderConsumed means Build was already called.
	KindBuilderConsumed

	// KindKeysUnsupported means the backend cannot load server key
	// material in the requested format.
	KindKeysUnsupported
)

var kindText = map[ErrorKind]string{
	KindBackend:                   "backend error",
	KindALPNUnsupported:           "ALPN is not supported by this backend",
	KindVerifyHostnameUnsupported: "disabling hostname verification is not supported by this backend",
	KindNotImplemented:            "not implemented by this backend",
	KindBuilderConsumed:           "builder already consumed by Build",
	KindKeysUnsupported:           "key format not supported by this backend",
}

// String returns a description of the kind.
func (k ErrorKind) String() string {
	if s, found := kindText[k]; found {
		return s
	}
	return "unknown error kind"
}

// Error is the error returned by every operation of this package and
// of the backends. It either carries an opaque backend failure or one
// of the capability-gap kinds above.
type Error struct {
	kind    ErrorKind
	backend error
}

var (
	// ErrALPNUnsupported is the KindALPNUnsupported error.
	ErrALPNUnsupported = &Error{kind: KindALPNUnsupported}

	// ErrVerifyHostnameUnsupported is the KindVerifyHostnameUnsupported error.
	ErrVerifyHostnameUnsupported = &Error{kind: KindVerifyHostnameUnsupported}

	// ErrNotImplemented is the KindNotImplemented error.
	ErrNotImplemented = &Error{kind: KindNotImplemented}

	// ErrBuilderConsumed is the KindBuilderConsumed error.
	ErrBuilderConsumed = &Error{kind: KindBuilderConsumed}

	// ErrKeysUnsupported is the KindKeysUnsupported error.
	ErrKeysUnsupported = &Error{kind: KindKeysUnsupported}
)

// NewBackendError wraps err as an opaque backend error. It returns nil
// if err is nil and err itself if err is already an *Error.
func NewBackendError(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{kind: KindBackend, backend: err}
}

// Kind returns the error kind.
func (e *Error) Kind() ErrorKind {
	return e.kind
}

// Error implements error.
func (e *Error) Error() string {
	if e.kind == KindBackend && e.backend != nil {
		return e.backend.Error()
	}
	return "tlsapi: " + e.kind.String()
}

// Is allows errors.Is to match capability-gap kinds and context
// cancellation. Backend errors never match each other.
func (e *Error) Is(target error) bool {
	if target == context.Canceled || target == context.DeadlineExceeded {
		return e.backend != nil && errors.Is(e.backend, target)
	}
	t, ok := target.(*Error)
	return ok && t.kind != KindBackend && t.kind == e.kind
}
