// Package entity defines the domain models for the quotes feature.
package entity

import "time"

// Quote represents the latest known market quote for a symbol.
// A quote is a value object: it is replaced wholesale on refresh and
// never partially mutated.
type Quote struct {
	Symbol        string    // Ticker symbol (e.g., "AAPL", "7203.T")
	Price         float64   // Last traded price
	Change        float64   // Absolute change since previous close
	ChangePercent float64   // Relative change since previous close
	Volume        int64     // Trading volume
	MarketCap     float64   // Market capitalization, 0 when the upstream omits it
	AsOf          time.Time // Upstream timestamp of the quote
	FetchedAt     time.Time // Local timestamp of the fetch that produced it
}

// QuoteResult is a quote read through the store, with explicit staleness.
// Stale means the entry is older than its freshness target and a refresh
// could not replace it in time.
type QuoteResult struct {
	Quote Quote
	Stale bool
}
