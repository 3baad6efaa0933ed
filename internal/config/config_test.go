package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{
		"SERVER_PORT", "DATABASE_URL", "JWT_SECRET", "FRONTEND_URL", "KHALTI_BASE_URL",
		"KHALTI_TIMEOUT_SECONDS", "KAFKA_BROKERS", "CART_STORE", "ORDER_STRICT_TRANSITIONS",
		"DELIVERY_FEE", "CURRENCY",
	} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, "4000", cfg.Port)
	assert.Equal(t, "https://a.khalti.com/api/v2", cfg.KhaltiBaseURL)
	assert.Equal(t, 15*time.Second, cfg.KhaltiTimeout)
	assert.Equal(t, CartStorePostgres, cfg.CartStore)
	assert.True(t, cfg.StrictTransitions)
	assert.True(t, cfg.DeliveryFee.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, "Rs.", cfg.Currency)
	assert.Nil(t, cfg.KafkaBrokers)

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite::memory:")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("FRONTEND_URL", "https://shop.example.com/")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("CART_STORE", "Mongo")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("ORDER_STRICT_TRANSITIONS", "false")
	t.Setenv("DELIVERY_FEE", "75.5")
	t.Setenv("KHALTI_TIMEOUT_SECONDS", "3")

	cfg := Load()
	assert.Equal(t, "https://shop.example.com", cfg.FrontendURL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, CartStoreMongo, cfg.CartStore)
	assert.False(t, cfg.StrictTransitions)
	assert.Equal(t, "75.5", cfg.DeliveryFee.String())
	assert.Equal(t, 3*time.Second, cfg.KhaltiTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestValidate_CartStore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		store   string
		mongo   string
		wantErr bool
	}{
		{name: "postgres", store: CartStorePostgres},
		{name: "mongo with uri", store: CartStoreMongo, mongo: "mongodb://x"},
		{name: "mongo without uri", store: CartStoreMongo, wantErr: true},
		{name: "unknown", store: "redis", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := &Config{DatabaseURL: "x", JWTSecret: []byte("x"), CartStore: tt.store, MongoURI: tt.mongo}
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
				return
			}
			assert.NoError(t, cfg.Validate())
		})
	}
}
