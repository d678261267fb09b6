package twelvedata

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	TwelveDataAPIKey string
	BaseURL          string
	Timeout          time.Duration
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println(".env ファイルが見つかりませんでした")
	}

	base := os.Getenv("TWELVE_DATA_BASE_URL")
	if base == "" {
		base = "https://api.twelvedata.com"
	}

	return Config{
		TwelveDataAPIKey: os.Getenv("TWELVE_DATA_API_KEY"),
		BaseURL:          base,
		Timeout:          10 * time.Second,
	}
}
