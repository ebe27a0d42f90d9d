package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Store    StoreConfig
	Remote   RemoteConfig
	Auth     AuthConfig
	Payment  PaymentConfig
	Events   EventsConfig
	Tracking TrackingConfig
	Backup   BackupConfig
}

type ServerConfig struct {
	AppEnv          string
	Port            string
	StaticDir       string
	UploadDir       string
	PublicURL       string // prefix for uploaded file URLs; empty means host-relative
	AllowOrigins    []string
	ShutdownTimeout time.Duration
}

func (c ServerConfig) IsDevelopment() bool {
	return c.AppEnv == "development" || c.AppEnv == "dev"
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

// StoreConfig selects the durable key-value backend for the collections.
type StoreConfig struct {
	Driver          string // postgres, redis, mongo; memory only in development
	PostgresDSN     string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

// RemoteConfig enables the remote-first persistence mode.
type RemoteConfig struct {
	Enabled bool
	BaseURL string
	Token   string
	Timeout time.Duration
	Retries int
}

type AuthConfig struct {
	FirebaseProjectID       string
	FirebaseCredentialsJSON string
	JWTSecret               string
	TokenTTL                time.Duration
	AdminEmails             []string
	AdminMobiles            []string
}

type PaymentConfig struct {
	ClientID      string
	ClientSecret  string
	Environment   string // sandbox or production
	BaseURL       string
	APIVersion    string
	Currency      string
	ReturnURL     string
	FallbackPhone string
	Timeout       time.Duration
}

// Endpoint returns the gateway base URL, derived from Environment unless BaseURL is set.
func (c PaymentConfig) Endpoint() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	if c.Environment == "production" {
		return "https://api.cashfree.com/pg"
	}
	return "https://sandbox.cashfree.com/pg"
}

func (c PaymentConfig) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.ReturnURL != ""
}

type EventsConfig struct {
	KafkaBrokers []string
	KafkaTopic   string
}

type TrackingConfig struct {
	Simulate bool
}

// BackupConfig schedules the daily snapshot. An empty Dir disables it.
type BackupConfig struct {
	Dir       string
	Retention time.Duration
	Hour      int
	Minute    int
}

// Validate rejects settings that would lose data or run insecurely in production.
func (c *Config) Validate() error {
	if (c.Store.Driver == "" || c.Store.Driver == "memory") && !c.Server.IsDevelopment() {
		return errors.New("STORE_DRIVER=memory is not durable; use postgres, redis or mongo outside development")
	}
	return nil
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:          getEnv("APP_ENV", "production"),
			Port:            getEnv("PORT", "5000"),
			StaticDir:       getEnv("STATIC_DIR", "dist"),
			UploadDir:       getEnv("UPLOAD_DIR", "uploads"),
			PublicURL:       strings.TrimRight(getEnv("PUBLIC_URL", ""), "/"),
			AllowOrigins:    getEnvSlice("CORS_ALLOW_ORIGINS", []string{"*"}),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "info"),
			Encoding:          getEnv("LOGGER_ENCODING", "json"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Store: StoreConfig{
			Driver:          strings.ToLower(getEnv("STORE_DRIVER", "postgres")),
			PostgresDSN:     getEnv("DATABASE_URL", ""),
			RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword:   getEnv("REDIS_PASSWORD", ""),
			RedisDB:         getEnvInt("REDIS_DB", 0),
			MongoURI:        getEnv("MONGO_URL", "mongodb://localhost:27017"),
			MongoDatabase:   getEnv("MONGO_DATABASE", "swiftcart"),
			MongoCollection: getEnv("MONGO_COLLECTION", "kv_entries"),
		},
		Remote: RemoteConfig{
			Enabled: getEnvBool("ENABLE_API", false),
			BaseURL: getEnv("API_BASE_URL", ""),
			Token:   getEnv("API_TOKEN", ""),
			Timeout: getEnvDuration("API_TIMEOUT", 5*time.Second),
			Retries: getEnvInt("API_RETRIES", 1),
		},
		Auth: AuthConfig{
			FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
			FirebaseCredentialsJSON: getEnv("FIREBASE_CREDENTIALS_JSON", ""),
			JWTSecret:               getEnv("JWT_SECRET", ""),
			TokenTTL:                getEnvDuration("JWT_TTL", 24*time.Hour),
			AdminEmails:             getEnvSlice("ADMIN_EMAILS", []string{"admin@flipkart.com", "owner@flipkart.com"}),
			AdminMobiles:            getEnvSlice("ADMIN_MOBILES", []string{"9999999999", "7891906445", "6378041283"}),
		},
		Payment: PaymentConfig{
			ClientID:      getEnv("CASHFREE_CLIENT_ID", ""),
			ClientSecret:  getEnv("CASHFREE_CLIENT_SECRET", ""),
			Environment:   strings.ToLower(getEnv("CASHFREE_ENV", "sandbox")),
			BaseURL:       getEnv("CASHFREE_BASE_URL", ""),
			APIVersion:    getEnv("CASHFREE_API_VERSION", "2023-08-01"),
			Currency:      getEnv("PAYMENT_CURRENCY", "INR"),
			ReturnURL:     getEnv("PAYMENT_RETURN_URL", ""),
			FallbackPhone: getEnv("PAYMENT_FALLBACK_PHONE", "9999999999"),
			Timeout:       getEnvDuration("PAYMENT_TIMEOUT", 10*time.Second),
		},
		Events: EventsConfig{
			KafkaBrokers: getEnvSlice("KAFKA_BROKERS", nil),
			KafkaTopic:   getEnv("KAFKA_TOPIC_ORDERS", "orders.events"),
		},
		Tracking: TrackingConfig{
			Simulate: getEnvBool("TRACKING_SIMULATION", false),
		},
		Backup: BackupConfig{
			Dir:       getEnv("BACKUP_DIR", ""),
			Retention: getEnvDuration("BACKUP_RETENTION", 4*24*time.Hour),
			Hour:      getEnvInt("BACKUP_HOUR", 2),
			Minute:    getEnvInt("BACKUP_MINUTE", 0),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
