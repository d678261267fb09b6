// Package domain defines domain-level errors for the portfolio feature.
package domain

import "errors"

// Domain errors for portfolio operations.
// These errors represent business logic failures and should be handled appropriately by upper layers.
var (
	// ErrPortfolioNotFound indicates that no portfolio matches the given id and owner.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrHoldingNotFound indicates that no holding matches the given id within the portfolio.
	ErrHoldingNotFound = errors.New("holding not found")

	// ErrNameRequired indicates that a portfolio was submitted without a name.
	ErrNameRequired = errors.New("portfolio name is required")

	// ErrSymbolRequired indicates that a holding was submitted without a symbol.
	ErrSymbolRequired = errors.New("holding symbol is required")

	// ErrInvalidQuantity indicates a zero or negative holding quantity.
	// Rejected before any mutation, nothing is partially applied.
	ErrInvalidQuantity = errors.New("holding quantity must be positive")

	// ErrInvalidPurchasePrice indicates a negative purchase price.
	ErrInvalidPurchasePrice = errors.New("holding purchase price must not be negative")
)
