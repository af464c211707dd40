package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr     string
	RedisAddr    string
	PostgresDSN  string // empty disables the order archive
	KafkaBrokers []string
	ServiceName  string

	TelegramToken    string
	DispatcherChatID string

	CommerceBaseURL      string
	CommerceClientID     string
	CommerceClientSecret string
	LocationsFlow        string

	GeocoderURL string
	GeocoderKey string

	PaymentProviderToken string
	ReminderDelay        time.Duration
}

func Load() Config {
	return Config{
		HTTPAddr:     getenv("HTTP_ADDR", ":8081"),
		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
		KafkaBrokers: splitCSV(getenv("KAFKA_BROKERS", "kafka:9092")),
		ServiceName:  getenv("SERVICE_NAME", "order-bot"),

		TelegramToken:    os.Getenv("TELEGRAM_TOKEN"),
		DispatcherChatID: os.Getenv("DISPATCHER_CHAT_ID"),

		CommerceBaseURL:      getenv("COMMERCE_BASE_URL", "https://api.moltin.com"),
		CommerceClientID:     os.Getenv("COMMERCE_CLIENT_ID"),
		CommerceClientSecret: os.Getenv("COMMERCE_CLIENT_SECRET"),
		LocationsFlow:        getenv("LOCATIONS_FLOW", "pizzeria"),

		GeocoderURL: getenv("GEOCODER_URL", "https://geocode-maps.yandex.ru/1.x"),
		GeocoderKey: os.Getenv("GEOCODER_KEY"),

		PaymentProviderToken: os.Getenv("PAYMENT_PROVIDER_TOKEN"),
		ReminderDelay:        getduration("REMINDER_DELAY", time.Hour),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
