// Package entity defines the domain models for the news feature.
package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Sentiment はニュース項目のセンチメント分類です。
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// ParseSentiment は分類器の出力をSentimentへ変換します。
// 解釈できない出力はneutralに倒します。
func ParseSentiment(s string) Sentiment {
	switch Sentiment(strings.ToLower(strings.TrimSpace(s))) {
	case SentimentPositive:
		return SentimentPositive
	case SentimentNegative:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// NewsItem は取り込み済みのニュース項目です。
// Fingerprintをユニークキーとして、同一項目の再取り込みは冪等になります。
type NewsItem struct {
	ID             string
	Fingerprint    string
	Title          string
	Summary        string
	Source         string
	URL            string
	Sentiment      Sentiment
	RelatedSymbols []string
	PublishedAt    time.Time
	IngestedAt     time.Time
}

// Fingerprint は正規化した (title, source, published_at) から決定的な
// 識別子を計算します。前後の空白と大文字小文字の違いは同一視します。
func Fingerprint(title, source string, publishedAt time.Time) string {
	normalize := func(s string) string {
		return strings.ToLower(strings.Join(strings.Fields(s), " "))
	}
	h := sha256.New()
	h.Write([]byte(normalize(title)))
	h.Write([]byte{'|'})
	h.Write([]byte(normalize(source)))
	h.Write([]byte{'|'})
	h.Write([]byte(publishedAt.UTC().Format(time.RFC3339)))
	return hex.EncodeToString(h.Sum(nil))
}
