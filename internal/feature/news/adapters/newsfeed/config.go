package newsfeed

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println(".env ファイルが見つかりませんでした")
	}

	base := os.Getenv("NEWS_FEED_BASE_URL")
	if base == "" {
		base = "https://api.marketaux.com"
	}

	return Config{
		APIKey:  os.Getenv("NEWS_FEED_API_KEY"),
		BaseURL: base,
		Timeout: 15 * time.Second,
	}
}
