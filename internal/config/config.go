package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	pkgconfig "github.com/Skotchmaster/beauty_shop/pkg/config"
	"github.com/shopspring/decimal"
)

const (
	CartStorePostgres = "postgres"
	CartStoreMongo    = "mongo"
)

type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   []byte
	LogLevel    string
	FrontendURL string

	// SecureCookies marks the CSRF cookie Secure.
	SecureCookies bool

	KhaltiSecretKey string
	KhaltiBaseURL   string
	KhaltiTimeout   time.Duration

	UploadDir      string
	PublicAssetURL string

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string

	CartStore     string
	MongoURI      string
	MongoDatabase string

	StrictTransitions bool
	DeliveryFee       decimal.Decimal
	Currency          string
}

func Load() *Config {
	return &Config{
		Port:        pkgconfig.EnvDefault("SERVER_PORT", "4000"),
		DatabaseURL: pkgconfig.EnvDefault("DATABASE_URL", ""),
		JWTSecret:   []byte(pkgconfig.EnvDefault("JWT_SECRET", "")),
		LogLevel:    pkgconfig.EnvDefault("LOG_LEVEL", "info"),
		FrontendURL: strings.TrimRight(pkgconfig.EnvDefault("FRONTEND_URL", "http://localhost:5173"), "/"),

		SecureCookies: pkgconfig.EnvBoolDefault("SECURE_COOKIES", false),

		KhaltiSecretKey: pkgconfig.EnvDefault("KHALTI_SECRET_KEY", ""),
		KhaltiBaseURL:   pkgconfig.EnvDefault("KHALTI_BASE_URL", "https://a.khalti.com/api/v2"),
		KhaltiTimeout:   pkgconfig.EnvSecondsDefault("KHALTI_TIMEOUT_SECONDS", 15*time.Second),

		UploadDir:      pkgconfig.EnvDefault("UPLOAD_DIR", "./uploads"),
		PublicAssetURL: strings.TrimRight(pkgconfig.EnvDefault("PUBLIC_ASSET_URL", "/uploads"), "/"),

		KafkaBrokers: pkgconfig.CSV(pkgconfig.EnvDefault("KAFKA_BROKERS", "")),

		ESURL:      pkgconfig.EnvDefault("ES_URL", ""),
		ESUser:     pkgconfig.EnvDefault("ES_USER", ""),
		ESPassword: pkgconfig.EnvDefault("ES_PASSWORD", ""),

		CartStore:     strings.ToLower(pkgconfig.EnvDefault("CART_STORE", CartStorePostgres)),
		MongoURI:      pkgconfig.EnvDefault("MONGO_URI", ""),
		MongoDatabase: pkgconfig.EnvDefault("MONGO_DATABASE", "beauty_shop"),

		StrictTransitions: pkgconfig.EnvBoolDefault("ORDER_STRICT_TRANSITIONS", true),
		DeliveryFee:       pkgconfig.EnvDecimalDefault("DELIVERY_FEE", decimal.NewFromInt(50)),
		Currency:          pkgconfig.EnvDefault("CURRENCY", "Rs."),
	}
}

// Validate reports every missing or inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if len(c.JWTSecret) == 0 {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.CartStore {
	case CartStorePostgres:
	case CartStoreMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required when CART_STORE=mongo"))
		}
	default:
		errs = append(errs, fmt.Errorf("CART_STORE must be %q or %q, got %q", CartStorePostgres, CartStoreMongo, c.CartStore))
	}
	if c.DeliveryFee.IsNegative() {
		errs = append(errs, errors.New("DELIVERY_FEE must not be negative"))
	}
	return errors.Join(errs...)
}
