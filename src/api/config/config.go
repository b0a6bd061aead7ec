package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	aicfg "github.com/factcheck-ai/factcheck/src/config"
)

type Config struct {
	MySQLDSN     string
	RedisURL     string
	JWTSecret    string
	Port         string
	TLSCert      string
	TLSKey       string
	SourcesFile  string
	CheckTimeout time.Duration
	CheckRate    int
	AI           aicfg.AI
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		if def == "" {
			log.Fatalf("missing env %s", key)
		}
		return def
	}
	return v
}

func Load() Config {
	_ = godotenv.Load()

	timeout, _ := strconv.Atoi(getenv("CHECK_TIMEOUT_SECONDS", "90"))
	rate, _ := strconv.Atoi(getenv("CHECK_RATE_PER_MINUTE", "30"))
	return Config{
		MySQLDSN:     getenv("MYSQL_DSN", "factcheck:factcheck@tcp(127.0.0.1:3306)/factcheck?parseTime=true"),
		RedisURL:     getenv("REDIS_URL", "redis://127.0.0.1:6379/0"),
		JWTSecret:    getenv("JWT_SECRET", ""),
		Port:         getenv("PORT", "8080"),
		TLSCert:      os.Getenv("TLS_CERT"),
		TLSKey:       os.Getenv("TLS_KEY"),
		SourcesFile:  getenv("SOURCES_FILE", "configs/sources.yaml"),
		CheckTimeout: time.Duration(timeout) * time.Second,
		CheckRate:    rate,
		AI:           aicfg.LoadAIFromEnv(),
	}
}
