package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server         ServerConfig
	Mongo          MongoConfig
	Midas          MidasConfig
	Assets         AssetsConfig
	Categories     map[string]string
	Pagination     PaginationConfig
	Redis          RedisConfig
	Kafka          KafkaConfig
	ProcessManager ServiceConfig
	Admin          AdminConfig
	RateLimit      RateLimitConfig
	Stream         StreamConfig
	Scheduler      SchedulerConfig
	Sitemap        SitemapConfig
	Logging        LoggingConfig
}

// ServerConfig holds server specific configuration
type ServerConfig struct {
	Port         string `validate:"required"`
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	Timezone     string `validate:"required"`
}

// MongoConfig holds document store configuration
type MongoConfig struct {
	URI                  string `validate:"required"`
	Database             string `validate:"required"`
	NewsCollection       string `validate:"required"`
	PricesCollection     string `validate:"required"`
	IndicesCollection    string `validate:"required"`
	TickersCollection    string `validate:"required"`
	ConnectTimeout       time.Duration
	QueryTimeout         time.Duration
	MaxPoolSize          uint64
	ServerSelectionDelay time.Duration
}

// MidasConfig holds configuration for the upstream chart API
type MidasConfig struct {
	BaseURL        string `validate:"required,url"`
	Timeout        time.Duration
	MaxRetries     uint64
	RequestsPerSec float64
	UserAgent      string
	AcceptLanguage string
}

// AssetsConfig describes where banner images, custom article images and
// per-company financials files live
type AssetsConfig struct {
	Type             string `validate:"oneof=local s3"`
	Local            LocalAssetsConfig
	S3               S3AssetsConfig
	CustomImagesDir  string
	BannersDir       string
	FinancialsDir    string
	CustomImagesURL  string
	BannerBaseURL    string `validate:"required"`
	DefaultBanner    string `validate:"required"`
	OtherCategoryDir string `validate:"required"`
}

// LocalAssetsConfig holds local filesystem asset configuration
type LocalAssetsConfig struct {
	BasePath string
}

// S3AssetsConfig holds S3 asset configuration
type S3AssetsConfig struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// PaginationConfig holds paging limits
type PaginationConfig struct {
	DefaultPageSize int `validate:"min=1"`
	MaxPageSize     int `validate:"gtefield=DefaultPageSize"`
	DefaultLatest   int `validate:"min=1"`
	MaxLatest       int `validate:"gtefield=DefaultLatest"`
}

// RedisConfig holds response cache configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

// Enabled reports whether a redis address was configured
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// KafkaConfig holds Kafka specific configuration
type KafkaConfig struct {
	Brokers  string
	ClientID string
	Topics   map[string]string
}

// BrokerList splits the comma separated broker string
func (k KafkaConfig) BrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(k.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// ServiceConfig holds configuration for external services
type ServiceConfig struct {
	URL     string `validate:"required,url"`
	Timeout time.Duration
}

// AdminConfig holds admin panel authentication configuration
type AdminConfig struct {
	Username     string
	PasswordHash string
	JWTSecret    string `validate:"required,min=16"`
	TokenTTL     time.Duration
}

// RateLimitConfig holds per-client request limits
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

// StreamConfig holds live price stream configuration
type StreamConfig struct {
	Interval time.Duration
}

// SchedulerConfig holds background job schedules
type SchedulerConfig struct {
	AssetReindex string
}

// SitemapConfig holds sitemap generation configuration
type SitemapConfig struct {
	BaseURL    string `validate:"required,url"`
	LatestNews int    `validate:"min=0"`
}

// LoggingConfig holds logging specific configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads the configuration from file and environment variables
func LoadConfig(path string) (*Config, error) {
	// A missing .env is fine, production sets real environment variables
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "30s")
	v.SetDefault("server.idleTimeout", "120s")
	v.SetDefault("server.timezone", "Europe/Istanbul")

	// Mongo defaults
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "kap_news")
	v.SetDefault("mongo.newsCollection", "news_items")
	v.SetDefault("mongo.pricesCollection", "prices")
	v.SetDefault("mongo.indicesCollection", "indices")
	v.SetDefault("mongo.tickersCollection", "tickers")
	v.SetDefault("mongo.connectTimeout", "10s")
	v.SetDefault("mongo.queryTimeout", "5s")
	v.SetDefault("mongo.maxPoolSize", 50)
	v.SetDefault("mongo.serverSelectionDelay", "5s")

	// Midas defaults
	v.SetDefault("midas.baseURL", "https://www.getmidas.com/wp-json/midas-api/v1")
	v.SetDefault("midas.timeout", "10s")
	v.SetDefault("midas.maxRetries", 2)
	v.SetDefault("midas.requestsPerSec", 5)
	v.SetDefault("midas.userAgent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("midas.acceptLanguage", "en-US,en;q=0.9,tr;q=0.8")

	// Asset defaults
	v.SetDefault("assets.type", "local")
	v.SetDefault("assets.local.basePath", "./data")
	v.SetDefault("assets.customImagesDir", "news_images")
	v.SetDefault("assets.bannersDir", "banners")
	v.SetDefault("assets.financialsDir", "financials")
	v.SetDefault("assets.customImagesURL", "/news_images")
	v.SetDefault("assets.bannerBaseURL", "/banners")
	v.SetDefault("assets.defaultBanner", "diğer.jpg")
	v.SetDefault("assets.otherCategoryDir", "diğer")

	// Category name (lower-case) -> banner folder
	v.SetDefault("categories", map[string]string{
		"sözleşme":     "sözleşme",
		"yatırım":      "yatırım",
		"sermaye":      "sermaye",
		"halka arz":    "halka_arz",
		"spk":          "spk",
		"piyasa özeti": "piyasa",
		"diğer":        "diğer",
		"other":        "diğer",
	})

	// Pagination defaults
	v.SetDefault("pagination.defaultPageSize", 20)
	v.SetDefault("pagination.maxPageSize", 100)
	v.SetDefault("pagination.defaultLatest", 10)
	v.SetDefault("pagination.maxLatest", 500)

	// Redis defaults (empty addr disables the cache)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "60s")
	v.SetDefault("redis.prefix", "kapnews")

	// Kafka defaults (empty brokers disables publishing)
	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.clientID", "kap-news-api")
	v.SetDefault("kafka.topics.adminEvents", "admin-events")

	// Process manager defaults
	v.SetDefault("processManager.url", "http://localhost:8000")
	v.SetDefault("processManager.timeout", "15s")

	// Admin defaults (empty password hash disables login)
	v.SetDefault("admin.username", "admin@kaphaber.com")
	v.SetDefault("admin.passwordHash", "")
	v.SetDefault("admin.jwtSecret", "")
	v.SetDefault("admin.tokenTTL", "12h")

	// Rate limit defaults
	v.SetDefault("rateLimit.requestsPerMinute", 600)
	v.SetDefault("rateLimit.burst", 60)

	// Stream defaults
	v.SetDefault("stream.interval", "60s")

	// Scheduler defaults
	v.SetDefault("scheduler.assetReindex", "@every 5m")

	// Sitemap defaults
	v.SetDefault("sitemap.baseURL", "https://kaphaber.com")
	v.SetDefault("sitemap.latestNews", 500)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
