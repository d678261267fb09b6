// Package entity defines the domain models for the portfolio feature.
package entity

import "time"

// Portfolio is a named collection of holdings owned by exactly one user.
type Portfolio struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Holding is a position inside a portfolio. It is owned by exactly one
// portfolio and is removed when that portfolio is deleted.
type Holding struct {
	ID            string
	PortfolioID   string
	Symbol        string
	Quantity      float64 // always positive; zero/negative is rejected at mutation time
	PurchasePrice float64
	PurchaseDate  time.Time
	CreatedAt     time.Time
}
