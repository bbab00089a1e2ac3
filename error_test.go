package tlsapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestNewBackendErrorNil(t *testing.T) {
	if NewBackendError(nil) != nil {
		t.Fatal("expected nil")
	}
}

func TestNewBackendErrorKeepsText(t *testing.T) {
	err := NewBackendError(io.EOF)
	if err.Error() != "EOF" {
		t.Fatal("unexpected text", err.Error())
	}
	var e *Error
	if !errors.As(err, &e) || e.Kind() != KindBackend {
		t.Fatal("expected a backend error")
	}
	if errors.Is(err, io.EOF) {
		t.Fatal("backend errors should be opaque")
	}
	if errors.Unwrap(err) != nil {
		t.Fatal("backend errors should not unwrap")
	}
}

func TestNewBackendErrorPassesThroughErrors(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", ErrALPNUnsupported)
	if NewBackendError(wrapped) != ErrALPNUnsupported {
		t.Fatal("expected the original *Error")
	}
}

func TestErrorIsMatchesKinds(t *testing.T) {
	if !errors.Is(ErrALPNUnsupported, ErrALPNUnsupported) {
		t.Fatal("kind should match itself")
	}
	if errors.Is(ErrALPNUnsupported, ErrNotImplemented) {
		t.Fatal("different kinds should not match")
	}
	if errors.Is(NewBackendError(io.EOF), NewBackendError(io.EOF)) {
		t.Fatal("backend errors should never match each other")
	}
	other := &Error{kind: KindBuilderConsumed}
	if !errors.Is(other, ErrBuilderConsumed) {
		t.Fatal("errors of the same kind should match")
	}
}

func TestErrorIsMatchesContextErrors(t *testing.T) {
	err := NewBackendError(fmt.Errorf("handshake: %w", context.Canceled))
	if !errors.Is(err, context.Canceled) {
		t.Fatal("expected context.Canceled")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("unexpected context.DeadlineExceeded")
	}
	if errors.Is(ErrNotImplemented, context.Canceled) {
		t.Fatal("kinds should not match context errors")
	}
}

func TestErrorText(t *testing.T) {
	if ErrNotImplemented.Error() != "tlsapi: not implemented by this backend" {
		t.Fatal("unexpected text", ErrNotImplemented.Error())
	}
	if ErrorKind(1000).String() != "unknown error kind" {
		t.Fatal("unexpected text for unknown kind")
	}
}
