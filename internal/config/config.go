package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	ErrUnknownStorage  = errors.New("unknown cart storage backend")
	ErrInvalidDuration = errors.New("notification duration must be positive")
)

// Config captures runtime configuration for the cart service.
type Config struct {
	HTTP      HTTPConfig
	Database  DatabaseConfig
	Kafka     KafkaConfig
	Telemetry TelemetryConfig
	Service   ServiceConfig
	Cart      CartConfig
}

type HTTPConfig struct {
	Port          int
	ShutdownGrace int
}

type DatabaseConfig struct {
	URL            string
	AutoMigrate    bool
	MigrationsPath string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// CartConfig controls where the cart snapshot lives and how pages present it.
type CartConfig struct {
	Storage        string
	Origin         string
	StorageKey     string
	NotifyDuration time.Duration
	HomePages      []string
	CartPage       string
	CurrencySymbol string
}

type TelemetryConfig struct {
	LogLevel      string
	OTelEndpoint  string
	OTelInsecure  bool
	EnableTracing bool
	EnableMetrics bool
	SampleRate    float64
}

type ServiceConfig struct {
	Name        string
	Version     string
	Environment string
}

const (
	defaultHTTPPort       = 8080
	defaultShutdownGrace  = 15
	defaultMigrationsPath = "migrations"
	defaultAutoMigrate    = true
	defaultServiceName    = "cart-api"
	defaultServiceVersion = "0.1.0"
	defaultEnvironment    = "development"
	defaultLogLevel       = "info"
	defaultOTelSampleRate = 1.0
	defaultKafkaTopic     = "cart-events"
	defaultCartStorage    = StoragePostgres
	defaultCartOrigin     = "http://localhost:8080"
	defaultStorageKey     = "trendhive_cart_v1"
	defaultNotifyMillis   = 1800
	defaultHomePages      = ",home.html,index.html"
	defaultCartPage       = "cart.html"
	defaultCurrency       = "₹"
)

// Load reads configuration from environment variables, applying defaults when
// needed. A .env file in the working directory is applied first when present;
// variables already set in the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	httpCfg, err := loadHTTPConfig()
	if err != nil {
		return nil, fmt.Errorf("loading HTTP config: %w", err)
	}

	dbCfg := loadDatabaseConfig()
	kafkaCfg := loadKafkaConfig()
	telCfg, err := loadTelemetryConfig()
	if err != nil {
		return nil, fmt.Errorf("loading telemetry config: %w", err)
	}

	serviceCfg := loadServiceConfig()

	cartCfg, err := loadCartConfig()
	if err != nil {
		return nil, fmt.Errorf("loading cart config: %w", err)
	}

	return &Config{
		HTTP:      httpCfg,
		Database:  dbCfg,
		Kafka:     kafkaCfg,
		Telemetry: telCfg,
		Service:   serviceCfg,
		Cart:      cartCfg,
	}, nil
}

func loadHTTPConfig() (HTTPConfig, error) {
	port := defaultHTTPPort
	if value, ok := os.LookupEnv("API_HTTP_PORT"); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return HTTPConfig{}, fmt.Errorf("invalid API_HTTP_PORT: %w", err)
		}
		port = parsed
	}

	shutdownGrace := defaultShutdownGrace
	if value, ok := os.LookupEnv("API_SHUTDOWN_GRACE_SECONDS"); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return HTTPConfig{}, fmt.Errorf("invalid API_SHUTDOWN_GRACE_SECONDS: %w", err)
		}
		shutdownGrace = parsed
	}

	return HTTPConfig{
		Port:          port,
		ShutdownGrace: shutdownGrace,
	}, nil
}

func loadDatabaseConfig() DatabaseConfig {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		databaseURL = buildDatabaseURL()
	}

	autoMigrate := defaultAutoMigrate
	if value, ok := os.LookupEnv("AUTO_MIGRATE"); ok {
		autoMigrate = value == "true"
	}

	migrationsPath := getEnvOrDefault("MIGRATIONS_PATH", defaultMigrationsPath)

	return DatabaseConfig{
		URL:            databaseURL,
		AutoMigrate:    autoMigrate,
		MigrationsPath: migrationsPath,
	}
}

func loadKafkaConfig() KafkaConfig {
	var brokers []string
	if value, ok := os.LookupEnv("KAFKA_BROKERS"); ok && value != "" {
		brokers = strings.Split(value, ",")
	}

	return KafkaConfig{
		Brokers: brokers,
		Topic:   getEnvOrDefault("KAFKA_TOPIC", defaultKafkaTopic),
	}
}

func loadCartConfig() (CartConfig, error) {
	storage := strings.ToLower(getEnvOrDefault("CART_STORAGE", defaultCartStorage))
	if storage != StoragePostgres && storage != StorageMemory {
		return CartConfig{}, fmt.Errorf("%w: %q", ErrUnknownStorage, storage)
	}

	notifyMillis := defaultNotifyMillis
	if value, ok := os.LookupEnv("CART_NOTIFY_MILLIS"); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return CartConfig{}, fmt.Errorf("invalid CART_NOTIFY_MILLIS: %w", err)
		}
		if parsed <= 0 {
			return CartConfig{}, fmt.Errorf("invalid CART_NOTIFY_MILLIS: %w", ErrInvalidDuration)
		}
		notifyMillis = parsed
	}

	homes := defaultHomePages
	if value, ok := os.LookupEnv("CART_HOME_PAGES"); ok {
		homes = value
	}

	return CartConfig{
		Storage:        storage,
		Origin:         getEnvOrDefault("CART_ORIGIN", defaultCartOrigin),
		StorageKey:     getEnvOrDefault("CART_STORAGE_KEY", defaultStorageKey),
		NotifyDuration: time.Duration(notifyMillis) * time.Millisecond,
		HomePages:      splitPages(homes),
		CartPage:       getEnvOrDefault("CART_PAGE", defaultCartPage),
		CurrencySymbol: getEnvOrDefault("CART_CURRENCY_SYMBOL", defaultCurrency),
	}, nil
}

// splitPages keeps empty entries so the site root can be listed as a home page.
func splitPages(value string) []string {
	parts := strings.Split(value, ",")
	pages := make([]string, 0, len(parts))
	for _, part := range parts {
		pages = append(pages, strings.ToLower(strings.TrimSpace(part)))
	}
	return pages
}

func loadTelemetryConfig() (TelemetryConfig, error) {
	logLevel := getEnvOrDefault("LOG_LEVEL", defaultLogLevel)
	otelEndpoint := getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	otelInsecure := getBoolEnv("OTEL_EXPORTER_OTLP_INSECURE", true)
	enableTracing := getBoolEnv("OTEL_ENABLE_TRACING", true)
	enableMetrics := getBoolEnv("OTEL_ENABLE_METRICS", true)

	sampleRate := defaultOTelSampleRate
	if value, ok := os.LookupEnv("OTEL_SAMPLE_RATE"); ok {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return TelemetryConfig{}, fmt.Errorf("invalid OTEL_SAMPLE_RATE: %w", err)
		}
		sampleRate = parsed
	}

	return TelemetryConfig{
		LogLevel:      logLevel,
		OTelEndpoint:  otelEndpoint,
		OTelInsecure:  otelInsecure,
		EnableTracing: enableTracing,
		EnableMetrics: enableMetrics,
		SampleRate:    sampleRate,
	}, nil
}

func loadServiceConfig() ServiceConfig {
	return ServiceConfig{
		Name:        getEnvOrDefault("API_SERVICE_NAME", defaultServiceName),
		Version:     getEnvOrDefault("SERVICE_VERSION", defaultServiceVersion),
		Environment: getEnvOrDefault("ENVIRONMENT", defaultEnvironment),
	}
}

func buildDatabaseURL() string {
	host := getEnvOrDefault("DB_HOST", "localhost")
	port := getEnvOrDefault("DB_PORT", "5432")
	user := getEnvOrDefault("DB_USER", "postgres")
	password := getEnvOrDefault("DB_PASSWORD", "postgres")
	dbName := getEnvOrDefault("DB_NAME", "cart")
	sslMode := getEnvOrDefault("DB_SSLMODE", "disable")

	maxConns := getEnvOrDefault("DB_MAX_CONNS", "25")
	minConns := getEnvOrDefault("DB_MIN_CONNS", "5")
	maxLifetime := getEnvOrDefault("DB_MAX_CONN_LIFETIME", "5m")

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&pool_max_conns=%s&pool_min_conns=%s&pool_max_conn_lifetime=%s",
		user, password, host, port, dbName, sslMode, maxConns, minConns, maxLifetime,
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		return value == "true"
	}
	return defaultValue
}
