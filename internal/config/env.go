package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	APISecretKey   string
	UploadDir      string
	OutputDir      string
	DefaultWorkers int
	QueueWorkers   int
	ItemTimeout    time.Duration
	JobRetention   time.Duration
	ReaperInterval time.Duration
	AwsAccessKey   string
	AwsSecretKey   string
	AwsRegion      string
	ArtifactBucket string
	LogLevel       string
	Development    bool
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		APISecretKey:   getEnv("API_SECRET_KEY", ""),
		UploadDir:      getEnv("UPLOAD_DIR", "/tmp/uploads"),
		OutputDir:      getEnv("OUTPUT_DIR", "/tmp/outputs"),
		DefaultWorkers: getEnvInt("DEFAULT_MAX_WORKERS", 3),
		QueueWorkers:   getEnvInt("QUEUE_WORKERS", 2),
		ItemTimeout:    getEnvDuration("ITEM_TIMEOUT", 0),
		JobRetention:   getEnvDuration("JOB_RETENTION", 24*time.Hour),
		ReaperInterval: getEnvDuration("REAPER_INTERVAL", 10*time.Minute),
		AwsAccessKey:   getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey:   getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:      getEnv("AWS_REGION", "us-east-2"),
		ArtifactBucket: getEnv("ARTIFACT_BUCKET", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Development:    getEnv("APP_ENV", "production") != "production",
	}

	if cfg.APISecretKey == "" {
		log.Println("WARN: API_SECRET_KEY not set; job creation and deletion will be rejected")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("WARN: %s=%q not a duration, using default %s", key, v, def)
		return def
	}
	return d
}
