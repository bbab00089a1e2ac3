// Package common contains common flags
package common

import (
	"errors"
	"flag"

	"github.com/apex/log"
	"github.com/ooni/tlsapi/handlers"
	"github.com/ooni/tlsapi/handlers/logger"
	"github.com/ooni/tlsapi/model"
)

var (
	// FlagHelp is used to request the help screen
	FlagHelp = flag.Bool("help", false, "Print usage")

	// FlagEvents selects how to report events: log, json, or none
	FlagEvents = flag.String("events", "log", "How to report events: log, json, or none")
)

// ErrUnknownEvents indicates an invalid -events value.
var ErrUnknownEvents = errors.New("common: unknown -events value")

// NewHandler returns the handler selected by -events.
func NewHandler() (model.Handler, error) {
	switch *FlagEvents {
	case "log":
		return logger.NewHandler(log.Log), nil
	case "json":
		return handlers.StdoutHandler, nil
	case "none":
		return handlers.NoHandler, nil
	}
	return nil, ErrUnknownEvents
}
