// Package domain defines domain-level errors for the quotes feature.
package domain

import "errors"

// Domain errors for quote operations.
// These errors represent business logic failures and should be handled appropriately by upper layers.
var (
	// ErrUpstreamUnavailable indicates that the upstream quote provider could not
	// serve a symbol and no cached value exists to fall back on.
	ErrUpstreamUnavailable = errors.New("upstream quote provider unavailable")

	// ErrNoSymbols indicates that a quote request carried no usable symbols.
	ErrNoSymbols = errors.New("no symbols requested")
)
