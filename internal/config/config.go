package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host string
	Port string
}

// TLSConfig holds TLS settings
type TLSConfig struct {
	Enabled    bool
	CertFile   string
	KeyFile    string
	MinVersion string
}

// Config is the full server configuration
type Config struct {
	Server ServerConfig
	TLS    TLSConfig
	DBPath string
}

// LoadConfig reads configuration from the environment, with an optional
// .env file for local development.
func LoadConfig() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	return &Config{
		Server: ServerConfig{
			Host: getEnv("HOST", "0.0.0.0"),
			Port: getEnv("PORT", "3000"),
		},
		TLS: TLSConfig{
			Enabled:    getEnv("TLS_ENABLED", "false") == "true",
			CertFile:   getEnv("TLS_CERT_FILE", ""),
			KeyFile:    getEnv("TLS_KEY_FILE", ""),
			MinVersion: getEnv("TLS_MIN_VERSION", "1.2"),
		},
		DBPath: getEnv("DB_PATH", "./data/church-hub.db"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
