package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	defaults(v)
	cfg := fromViper(v)

	assert.Equal(t, "8085", cfg.Port)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 5*time.Minute, cfg.ConfigCacheTTL)
	assert.Equal(t, 30*time.Second, cfg.DispatchTimeout)
	assert.False(t, cfg.LatencyHeaderEnabled)
	assert.Empty(t, cfg.MultipleAPIVersionConnectors)
	assert.Empty(t, cfg.PaymentIDAsReferenceMerchants)
}

func TestOverrides(t *testing.T) {
	v := viper.New()
	defaults(v)
	v.Set("BASE_URL", "https://pay.example.com/")
	v.Set("KAFKA_BROKERS", "k1:9092, k2:9092,")
	v.Set("MULTIPLE_API_VERSION_CONNECTORS", "stripe,adyen")
	v.Set("PAYMENT_ID_AS_REFERENCE_MERCHANTS", "merchant_1")
	v.Set("LATENCY_HEADER_ENABLED", "true")
	v.Set("CONFIG_CACHE_TTL", "90s")
	cfg := fromViper(v)

	assert.Equal(t, "https://pay.example.com", cfg.BaseURL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []string{"stripe", "adyen"}, cfg.MultipleAPIVersionConnectors)
	assert.Equal(t, []string{"merchant_1"}, cfg.PaymentIDAsReferenceMerchants)
	assert.True(t, cfg.LatencyHeaderEnabled)
	assert.Equal(t, 90*time.Second, cfg.ConfigCacheTTL)
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"blanks", " , ,", nil},
		{"trimmed", " a ,b", []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitList(tt.in))
		})
	}
}
