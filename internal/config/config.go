package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Environment variables names
const (
	EnvDBURL         = "DB_URL"
	EnvDBPort        = "DB_PORT"
	EnvDBName        = "DB_NAME"
	EnvDBUser        = "DB_USER"
	EnvDBPassword    = "DB_PASSWORD"
	EnvListenAddr    = "LISTEN_ADDR"
	EnvUploadsPath   = "UPLOADS_PATH"
	EnvLogLevel      = "LOG_LEVEL"
	EnvLogPretty     = "LOG_PRETTY"
	EnvPosterBackend = "POSTER_BACKEND"
	EnvS3Endpoint    = "S3_ENDPOINT"
	EnvS3AccessKey   = "S3_ACCESS_KEY"
	EnvS3SecretKey   = "S3_SECRET_KEY"
	EnvS3Bucket      = "S3_BUCKET"
	EnvS3UseSSL      = "S3_USE_SSL"
)

const (
	PosterBackendDisk = "disk"
	PosterBackendS3   = "s3"
)

type DBConfig struct {
	User     string
	Password string
	URL      string
	Port     string
	Name     string
}

type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type Config struct {
	DB            DBConfig
	ListenAddr    string
	UploadsPath   string
	LogLevel      string
	LogPretty     bool
	PosterBackend string
	S3            S3Config
}

// Load reads the configuration from the environment, after loading the optional env files
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		log.Debug().Err(err).Msg("No env file loaded")
	}

	cfg := &Config{
		DB: DBConfig{
			User:     os.Getenv(EnvDBUser),
			Password: os.Getenv(EnvDBPassword),
			URL:      getEnvOrDefault(EnvDBURL, "localhost"),
			Port:     getEnvOrDefault(EnvDBPort, "27017"),
			Name:     getEnvOrDefault(EnvDBName, "marquee"),
		},
		ListenAddr:    getEnvOrDefault(EnvListenAddr, ":8080"),
		UploadsPath:   getEnvOrDefault(EnvUploadsPath, "uploads/movies"),
		LogLevel:      getEnvOrDefault(EnvLogLevel, "info"),
		LogPretty:     getEnvAsBool(EnvLogPretty, false),
		PosterBackend: getEnvOrDefault(EnvPosterBackend, PosterBackendDisk),
		S3: S3Config{
			Endpoint:  os.Getenv(EnvS3Endpoint),
			AccessKey: os.Getenv(EnvS3AccessKey),
			SecretKey: os.Getenv(EnvS3SecretKey),
			Bucket:    os.Getenv(EnvS3Bucket),
			UseSSL:    getEnvAsBool(EnvS3UseSSL, true),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	switch cfg.PosterBackend {
	case PosterBackendDisk:
	case PosterBackendS3:
		if cfg.S3.Endpoint == "" || cfg.S3.Bucket == "" {
			return fmt.Errorf("%s and %s are required when %s is %q", EnvS3Endpoint, EnvS3Bucket, EnvPosterBackend, PosterBackendS3)
		}
	default:
		return fmt.Errorf("unknown %s: %q", EnvPosterBackend, cfg.PosterBackend)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	strValue := os.Getenv(key)
	if strValue == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(strValue)
	if err != nil {
		log.Warn().Str("key", key).Str("value", strValue).Msg("Invalid boolean, using default")
		return defaultValue
	}
	return value
}
