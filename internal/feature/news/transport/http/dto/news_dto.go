// Package dto defines the HTTP response shapes for the news feature.
package dto

// NewsItemResponse はクライアントへ返すニュース項目です。
type NewsItemResponse struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Summary        string   `json:"summary,omitempty"`
	Source         string   `json:"source"`
	URL            string   `json:"url,omitempty"`
	Sentiment      string   `json:"sentiment"`
	RelatedSymbols []string `json:"related_symbols,omitempty"`
	PublishedAt    string   `json:"published_at"`
}

// ErrorResponse is the common error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
