package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string
	BaseURL        string
	DatabaseURL    string
	RedisURL       string
	KafkaBrokers   []string
	NatsURL        string
	JaegerEndpoint string

	// Connectors whose API version is read from the configs table.
	MultipleAPIVersionConnectors []string
	// Merchants whose connector request reference id is the payment id.
	PaymentIDAsReferenceMerchants []string

	LatencyHeaderEnabled bool
	ConfigCacheTTL       time.Duration
	DispatchTimeout      time.Duration
}

func defaults(v *viper.Viper) {
	v.SetDefault("PORT", "8085")
	v.SetDefault("BASE_URL", "http://localhost:8085")
	v.SetDefault("REDIS_URL", "localhost:6379")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("NATS_URL", "nats://localhost:4222")
	v.SetDefault("MULTIPLE_API_VERSION_CONNECTORS", "")
	v.SetDefault("PAYMENT_ID_AS_REFERENCE_MERCHANTS", "")
	v.SetDefault("LATENCY_HEADER_ENABLED", false)
	v.SetDefault("CONFIG_CACHE_TTL", "5m")
	v.SetDefault("DISPATCH_TIMEOUT", "30s")
}

func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()
	defaults(v)
	return fromViper(v)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Port:                          v.GetString("PORT"),
		BaseURL:                       strings.TrimSuffix(v.GetString("BASE_URL"), "/"),
		DatabaseURL:                   v.GetString("DATABASE_URL"),
		RedisURL:                      v.GetString("REDIS_URL"),
		KafkaBrokers:                  splitList(v.GetString("KAFKA_BROKERS")),
		NatsURL:                       v.GetString("NATS_URL"),
		JaegerEndpoint:                v.GetString("JAEGER_ENDPOINT"),
		MultipleAPIVersionConnectors:  splitList(v.GetString("MULTIPLE_API_VERSION_CONNECTORS")),
		PaymentIDAsReferenceMerchants: splitList(v.GetString("PAYMENT_ID_AS_REFERENCE_MERCHANTS")),
		LatencyHeaderEnabled:          v.GetBool("LATENCY_HEADER_ENABLED"),
		ConfigCacheTTL:                v.GetDuration("CONFIG_CACHE_TTL"),
		DispatchTimeout:               v.GetDuration("DISPATCH_TIMEOUT"),
	}
}

// splitList reads a comma separated env value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
