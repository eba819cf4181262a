package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the process configuration. Keys are addressed as section.key in
// config.toml and as CDL_SECTION_KEY in the environment.
type Config struct {
	App            AppConfig            `mapstructure:"app"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Log            LogConfig            `mapstructure:"log"`
	HTTP           HTTPConfig           `mapstructure:"http"`
	Shopify        ShopifyConfig        `mapstructure:"shopify"`
	BulkSync       BulkSyncConfig       `mapstructure:"bulk_sync"`
	Storage        StorageConfig        `mapstructure:"storage"`
	Reconciliation ReconciliationConfig `mapstructure:"reconciliation"`
	Telemetry      TelemetryConfig      `mapstructure:"telemetry"`
	Swagger        SwaggerConfig        `mapstructure:"swagger"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
	Output string `mapstructure:"output"` // stdout, stderr or a file path
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
}

// DSN returns a postgres URL with user and password escaped
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// RedisConfig backs the reconciliation lock. Disabled means an in-process lock.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns host:port
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type HTTPConfig struct {
	ReadTimeout      time.Duration `mapstructure:"read_timeout"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
	IdleTimeout      time.Duration `mapstructure:"idle_timeout"`
	MaxHeaderBytes   int           `mapstructure:"max_header_bytes"`
	MaxBodySize      int64         `mapstructure:"max_body_size"`
	CORSAllowOrigins []string      `mapstructure:"cors_allow_origins"`
	CORSAllowMethods []string      `mapstructure:"cors_allow_methods"`
	CORSAllowHeaders []string      `mapstructure:"cors_allow_headers"`
	TrustedProxies   []string      `mapstructure:"trusted_proxies"`
}

// ShopifyConfig is the store context shared by every Admin API call
type ShopifyConfig struct {
	Store       string `mapstructure:"store"`
	AccessToken string `mapstructure:"access_token"`
	APIVersion  string `mapstructure:"api_version"`
	LocationID  string `mapstructure:"location_id"`
	// BaseURL replaces https://{store}.myshopify.com, for proxies and tests
	BaseURL             string        `mapstructure:"base_url"`
	ConnectTimeout      time.Duration `mapstructure:"connect_timeout"`
	ReadTimeout         time.Duration `mapstructure:"read_timeout"`
	DefaultThrottleWait time.Duration `mapstructure:"default_throttle_wait"`
}

type BulkSyncConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	// MaxDuration is the age at which a running export is marked expired
	MaxDuration     time.Duration `mapstructure:"max_duration"`
	Workers         int           `mapstructure:"workers"`
	QueueSize       int           `mapstructure:"queue_size"`
	ArchiveKey      string        `mapstructure:"archive_key"`
	VendorReportKey string        `mapstructure:"vendor_report_key"`
}

// StorageConfig selects the blob store. The bucket driver opens URL through
// gocloud (file:///path, mem://); the s3 driver uses the remaining fields.
type StorageConfig struct {
	Driver       string `mapstructure:"driver"`
	URL          string `mapstructure:"url"`
	Endpoint     string `mapstructure:"endpoint"`
	Bucket       string `mapstructure:"bucket"`
	Region       string `mapstructure:"region"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	UseSSL       bool   `mapstructure:"use_ssl"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

type ReconciliationConfig struct {
	LockTTL time.Duration `mapstructure:"lock_ttl"`
}

type TelemetryConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	CollectorEndpoint string        `mapstructure:"collector_endpoint"` // OTLP gRPC, host:port
	SamplingRatio     float64       `mapstructure:"sampling_ratio"`
	ServiceName       string        `mapstructure:"service_name"`
	Insecure          bool          `mapstructure:"insecure"`
	MetricsInterval   time.Duration `mapstructure:"metrics_interval"`
	DBTraceEnabled    bool          `mapstructure:"db_trace_enabled"`
	DBLogFullSQL      bool          `mapstructure:"db_log_full_sql"`
	DBSlowQueryThresh time.Duration `mapstructure:"db_slow_query_threshold"`
	// ProfilerAddress is a Pyroscope server URL; empty disables profiling
	ProfilerAddress       string `mapstructure:"profiler_address"`
	ProfilerUser          string `mapstructure:"profiler_user"`
	ProfilerPassword      string `mapstructure:"profiler_password"`
	ProfilerMutexFraction int    `mapstructure:"profiler_mutex_fraction"`
}

// SwaggerConfig controls the /swagger documentation endpoint
type SwaggerConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// defaults lists every key. Viper only maps environment variables onto keys
// it already knows, so a key missing here cannot be set from CDL_*.
var defaults = map[string]any{
	"app.name": "cdl-admin",
	"app.env":  "development",
	"app.port": "8080",

	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "cdl",
	"database.sslmode":            "disable",
	"database.max_open_conns":     10,
	"database.max_idle_conns":     2,
	"database.conn_max_lifetime":  60,
	"database.conn_max_idle_time": 30,

	"redis.enabled":  false,
	"redis.host":     "localhost",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"http.read_timeout": 15 * time.Second,
	// batch actions wait on many sequential mutations
	"http.write_timeout":      5 * time.Minute,
	"http.idle_timeout":       60 * time.Second,
	"http.max_header_bytes":   1 << 20,
	"http.max_body_size":      10 << 20,
	"http.cors_allow_origins": []string{},
	"http.cors_allow_methods": []string{"GET", "POST", "OPTIONS"},
	"http.cors_allow_headers": []string{"Content-Type", "Authorization", "X-Request-ID"},
	"http.trusted_proxies":    []string{},

	"shopify.store":                 "",
	"shopify.access_token":          "",
	"shopify.api_version":           "2025-01",
	"shopify.location_id":           "",
	"shopify.base_url":              "",
	"shopify.connect_timeout":       5 * time.Second,
	"shopify.read_timeout":          15 * time.Second,
	"shopify.default_throttle_wait": time.Duration(0),

	"bulk_sync.enabled":           false,
	"bulk_sync.poll_interval":     5 * time.Second,
	"bulk_sync.max_duration":      2 * time.Hour,
	"bulk_sync.workers":           2,
	"bulk_sync.queue_size":        16,
	"bulk_sync.archive_key":       "jsonl/{job_id}.jsonl",
	"bulk_sync.vendor_report_key": "csv/vendors.csv",

	"storage.driver":         "bucket",
	"storage.url":            "file:///var/lib/cdl-admin/blobs",
	"storage.endpoint":       "",
	"storage.bucket":         "",
	"storage.region":         "",
	"storage.access_key":     "",
	"storage.secret_key":     "",
	"storage.use_ssl":        false,
	"storage.use_path_style": false,

	"reconciliation.lock_ttl": 10 * time.Minute,

	"telemetry.enabled":                 false,
	"telemetry.collector_endpoint":      "localhost:4317",
	"telemetry.sampling_ratio":          1.0,
	"telemetry.service_name":            "cdl-admin",
	"telemetry.insecure":                false,
	"telemetry.metrics_interval":        30 * time.Second,
	"telemetry.db_trace_enabled":        false,
	"telemetry.db_log_full_sql":         false,
	"telemetry.db_slow_query_threshold": 200 * time.Millisecond,
	"telemetry.profiler_address":        "",
	"telemetry.profiler_user":           "",
	"telemetry.profiler_password":       "",
	"telemetry.profiler_mutex_fraction": 0,

	"swagger.enabled": true,
}

// Load reads configuration. Later sources win: built-in defaults, then
// config.toml in . or /app, then .env, then the process environment.
func Load() (*Config, error) {
	// godotenv never overwrites variables already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config.toml: %w", err)
		}
	}

	v.SetEnvPrefix("CDL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate reports every problem found, joined
func (c *Config) validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	db := c.Database
	if db.MaxOpenConns <= 0 {
		fail("database.max_open_conns must be positive")
	}
	if db.MaxIdleConns < 0 {
		fail("database.max_idle_conns cannot be negative")
	} else if db.MaxIdleConns > db.MaxOpenConns {
		fail("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)", db.MaxIdleConns, db.MaxOpenConns)
	}

	bs := c.BulkSync
	if bs.PollInterval <= 0 {
		fail("bulk_sync.poll_interval must be positive")
	} else if bs.MaxDuration < bs.PollInterval {
		fail("bulk_sync.max_duration (%s) must be at least bulk_sync.poll_interval (%s)", bs.MaxDuration, bs.PollInterval)
	}
	if bs.Workers <= 0 || bs.QueueSize <= 0 {
		fail("bulk_sync.workers and bulk_sync.queue_size must be positive")
	}

	switch c.Storage.Driver {
	case "s3":
		if c.Storage.Bucket == "" {
			fail("storage.bucket is required for the s3 driver")
		}
	case "bucket":
		if c.Storage.URL == "" {
			fail("storage.url is required for the bucket driver")
		}
	default:
		fail("storage.driver must be 's3' or 'bucket', got %q", c.Storage.Driver)
	}

	if r := c.Telemetry.SamplingRatio; r < 0 || r > 1 {
		fail("telemetry.sampling_ratio must be within [0, 1], got %g", r)
	}
	if addr := c.Telemetry.ProfilerAddress; addr != "" {
		if u, err := url.Parse(addr); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			fail("telemetry.profiler_address must be an http(s) URL, got %q", addr)
		}
	}
	if c.Telemetry.ProfilerMutexFraction < 0 {
		fail("telemetry.profiler_mutex_fraction cannot be negative")
	}

	if c.App.Env == "production" {
		if c.Shopify.Store == "" && c.Shopify.BaseURL == "" {
			fail("shopify.store is required in production")
		}
		if c.Shopify.AccessToken == "" {
			fail("shopify.access_token is required in production")
		}
		if db.Password == "" {
			fail("database.password is required in production")
		}
		if db.SSLMode == "disable" {
			fail("database.sslmode cannot be 'disable' in production")
		}
		if slices.Contains(c.HTTP.CORSAllowOrigins, "*") {
			fail("http.cors_allow_origins cannot contain '*' in production")
		}
		if c.Telemetry.DBLogFullSQL {
			fail("telemetry.db_log_full_sql must be false in production")
		}
		if c.Swagger.Enabled {
			fail("swagger.enabled must be false in production")
		}
	}

	return errors.Join(errs...)
}
