package common

import (
	"errors"
	"testing"

	"github.com/ooni/tlsapi/handlers"
	"github.com/ooni/tlsapi/handlers/logger"
)

func TestNewHandler(t *testing.T) {
	defer func(v string) { *FlagEvents = v }(*FlagEvents)
	*FlagEvents = "log"
	h, err := NewHandler()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := h.(*logger.Handler); !ok {
		t.Fatal("expected the logger handler")
	}
	*FlagEvents = "json"
	if h, err = NewHandler(); err != nil || h != handlers.StdoutHandler {
		t.Fatal("expected the stdout handler")
	}
	*FlagEvents = "none"
	if h, err = NewHandler(); err != nil || h != handlers.NoHandler {
		t.Fatal("expected the no handler")
	}
	*FlagEvents = "antani"
	if _, err = NewHandler(); !errors.Is(err, ErrUnknownEvents) {
		t.Fatal("not the error we expected", err)
	}
}
