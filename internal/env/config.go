package env

import (
	"fmt"
	"os"
)

// Config is the runtime configuration of the hunt service.
type Config struct {
	KafkaBroker       string
	EventTopic        string
	GroupID           string
	NotificationTopic string

	// DatabaseURL selects the Postgres progress store. Empty keeps progress
	// in memory.
	DatabaseURL string

	// StringsBucket and StringsLocale select a localized string table in S3.
	// An empty locale uses the built-in English table.
	StringsBucket string
	StringsLocale string

	LogLevel  string
	LogFormat string
	LogFile   string
}

// Load reads Config from the environment. Kafka settings are required.
func Load() (Config, error) {
	cfg := Config{
		KafkaBroker:       os.Getenv("KAFKA_BROKER"),
		EventTopic:        os.Getenv("KAFKA_TOPIC"),
		GroupID:           os.Getenv("KAFKA_GROUP_ID"),
		NotificationTopic: os.Getenv("KAFKA_NOTIFICATION_TOPIC"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		StringsBucket:     GetEnv("CATALOG_BUCKET_NAME", "treasure-hunt"),
		StringsLocale:     os.Getenv("STRINGS_LOCALE"),
		LogLevel:          GetEnv("LOG_LEVEL", "info"),
		LogFormat:         GetEnv("LOG_FORMAT", "json"),
		LogFile:           os.Getenv("LOG_FILE"),
	}

	if cfg.KafkaBroker == "" || cfg.EventTopic == "" || cfg.GroupID == "" {
		return Config{}, fmt.Errorf("missing one or more required environment variables: KAFKA_BROKER, KAFKA_TOPIC, KAFKA_GROUP_ID")
	}
	return cfg, nil
}
