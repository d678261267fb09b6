// Package dto defines the wire format of the upstream news feed.
package dto

// FeedResponse はニュースフィードAPIのレスポンスです。
type FeedResponse struct {
	Data []FeedItem `json:"data"`
}

// FeedItem はフィード上の1記事です。
type FeedItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Source      string `json:"source"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"` // RFC3339
}
