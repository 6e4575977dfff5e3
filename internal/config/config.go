package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"qfparse/internal/parser"
)

type Config struct {
	LogLevel      string
	LogFormat     string
	MaxExpansion  int
	WorkerCount   int
	DatabaseURL   string
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	return &Config{
		LogLevel:      getEnv("QF_LOG_LEVEL", "info"),
		LogFormat:     getEnv("QF_LOG_FORMAT", "console"),
		MaxExpansion:  getEnvInt("QF_MAX_EXPANSION", parser.DefaultMaxExpansion),
		WorkerCount:   getEnvInt("WORKER_COUNT", 8),
		DatabaseURL:   getEnv("DATABASE_URL", "postgres://localhost:5432/qfparse?sslmode=disable"),
		Neo4jURI:      getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:     getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword: getEnv("NEO4J_PASSWORD", "password"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Invalid integer, using default")
		return fallback
	}
	return n
}
