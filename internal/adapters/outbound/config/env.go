package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/openkraft/codegate/internal/domain"
)

// Environment variable names.
const (
	EnvDatabaseURL = "CODEGATE_DATABASE_URL"
	EnvS3Endpoint  = "CODEGATE_S3_ENDPOINT"
	EnvS3AccessKey = "CODEGATE_S3_ACCESS_KEY"
	EnvS3SecretKey = "CODEGATE_S3_SECRET_KEY"
	EnvS3UseSSL    = "CODEGATE_S3_USE_SSL"
	EnvLogLevel    = "CODEGATE_LOG_LEVEL"
)

// LoadDotEnv loads .env.local then .env from the working directory.
// Variables already set in the process win; missing files are ignored.
func LoadDotEnv() {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")
}

// ReadEnvironment reads process-level settings.
func ReadEnvironment() domain.Environment {
	useSSL := true
	if v := os.Getenv(EnvS3UseSSL); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			useSSL = b
		}
	}
	return domain.Environment{
		DatabaseURL: os.Getenv(EnvDatabaseURL),
		S3Endpoint:  os.Getenv(EnvS3Endpoint),
		S3AccessKey: os.Getenv(EnvS3AccessKey),
		S3SecretKey: os.Getenv(EnvS3SecretKey),
		S3UseSSL:    useSSL,
		LogLevel:    os.Getenv(EnvLogLevel),
	}
}
