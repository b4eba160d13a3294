package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort   string
	MongoURI     string
	MongoDBName  string
	JWTSecret    string
	LogFile      string
	OpenTaskRead bool
}

var (
	ErrMissingMongoURI  = errors.New("MONGO_URI is required")
	ErrMissingJWTSecret = errors.New("JWT_SECRET is required")
)

// Load reads configuration from the environment, with an optional .env file.
// A missing .env is not an error; the container environment is enough.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		MongoURI:     os.Getenv("MONGO_URI"),
		MongoDBName:  getEnv("MONGO_DB_NAME", "project_management"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		LogFile:      getEnv("LOG_FILE", "logs/server.log"),
		OpenTaskRead: getEnvBool("OPEN_TASK_READ", true),
	}

	if cfg.MongoURI == "" {
		return nil, ErrMissingMongoURI
	}
	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
