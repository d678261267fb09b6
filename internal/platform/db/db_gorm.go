// Package db provides the GORM connection used for the valuation snapshot series.
package db

import (
	"fmt"
	"log"
	"os"
	"time"

	gpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Config はPostgreSQL接続設定を保持します。
type Config struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     string
	SSLMode  string
}

// LoadConfig は環境変数から接続設定を読み込みます。
func LoadConfig() Config {
	sslmode := os.Getenv("DB_SSLMODE")
	if sslmode == "" {
		sslmode = "disable"
	}
	return Config{
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     os.Getenv("DB_NAME"),
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		SSLMode:  sslmode,
	}
}

// BuildDSN は設定からPostgreSQLのDSN文字列を生成します。
func BuildDSN(cfg Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
}

// OpenDB はPostgreSQLに接続し、必要に応じてマイグレーションを実行します。
// 起動直後にDBがまだ立ち上がっていないケースを考慮して60秒までリトライします。
func OpenDB(models ...any) *gorm.DB {
	dsn := BuildDSN(LoadConfig())

	var (
		db  *gorm.DB
		err error
	)

	deadline := time.Now().Add(60 * time.Second)
	for {
		db, err = gorm.Open(gpostgres.Open(dsn), &gorm.Config{})
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			log.Fatalf("DB connect failed after 60s: %v", err)
		}
		log.Printf("DB connect failed, retrying...: %v", err)
		time.Sleep(3 * time.Second)
	}

	if os.Getenv("RUN_MIGRATIONS") == "true" && len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
	}

	return db
}
