package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// Application
	App AppConfig `mapstructure:"app"`

	// Authentication
	Auth AuthConfig `mapstructure:"auth"`

	// PostgreSQL
	Postgres PostgresConfig `mapstructure:"postgres"`

	// Redis
	Redis RedisConfig `mapstructure:"redis"`

	// NATS
	NATS NATSConfig `mapstructure:"nats"`

	// Prometheus
	Prometheus PrometheusConfig `mapstructure:"prometheus"`

	// URL safety checks
	Safety SafetyConfig `mapstructure:"safety"`

	// GeoIP
	GeoIP GeoIPConfig `mapstructure:"geoip"`
}

type AppConfig struct {
	// BaseURL is the public origin encoded into QR images, e.g. https://qr.example.com
	BaseURL string `mapstructure:"base_url"`
	Secret  string `mapstructure:"secret"`
	LogFile string `mapstructure:"log_file"`
}

type AuthConfig struct {
	JWTSecret      string `mapstructure:"jwt_secret"`
	AccessTokenTTL string `mapstructure:"access_token_ttl"`
	Issuer         string `mapstructure:"issuer"`
}

type PostgresConfig struct {
	Host              string `mapstructure:"host"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	Database          string `mapstructure:"database"`
	Port              int    `mapstructure:"port"`
	SSLMode           string `mapstructure:"sslmode"`
	MaxConns          int32  `mapstructure:"max_conns"`
	MinConns          int32  `mapstructure:"min_conns"`
	MaxConnLifetime   string `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   string `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod string `mapstructure:"health_check_period"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type NATSConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	MonitorPort int    `mapstructure:"monitor_port"`
}

type PrometheusConfig struct {
	Port           int    `mapstructure:"port"`
	Retention      string `mapstructure:"retention"`
	ScrapeInterval string `mapstructure:"scrape_interval"`
	Target         string `mapstructure:"target"`
}

type SafetyConfig struct {
	// SafeBrowsingKey enables the Google Safe Browsing lookup; empty means
	// the threat-list check reports safe without calling out.
	SafeBrowsingKey string `mapstructure:"safe_browsing_key"`
	CacheTTL        string `mapstructure:"cache_ttl"`
}

type GeoIPConfig struct {
	// DBPath points at a GeoLite2-City mmdb file. Missing file disables the
	// local lookup and every resolution goes through the remote fallback.
	DBPath string `mapstructure:"db_path"`
}

func Load() (*Config, error) {
	// Load local .env for development (ignored when missing).
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()

	// Search for config/config.yaml (plus root for overrides).
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Allow environment variables to override YAML entries.
	v.SetEnvPrefix("")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Preserve legacy env variable names.
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// Application
	v.BindEnv("app.base_url", "APP_URL")
	v.BindEnv("app.secret", "SECRET_KEY")
	v.BindEnv("app.log_file", "APP_LOG_FILE")

	// Authentication
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("auth.access_token_ttl", "JWT_ACCESS_TTL")
	v.BindEnv("auth.issuer", "JWT_ISSUER")

	// PostgreSQL
	v.BindEnv("postgres.host", "PG_HOST")
	v.BindEnv("postgres.user", "PG_USER")
	v.BindEnv("postgres.password", "PG_PASSWORD")
	v.BindEnv("postgres.database", "PG_DB")
	v.BindEnv("postgres.port", "PG_PORT")
	v.BindEnv("postgres.sslmode", "PG_SSLMODE")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")

	// NATS
	v.BindEnv("nats.host", "NATS_HOST")
	v.BindEnv("nats.port", "NATS_PORT")
	v.BindEnv("nats.user", "NATS_USER")
	v.BindEnv("nats.password", "NATS_PASSWORD")
	v.BindEnv("nats.monitor_port", "NATS_MONITOR_PORT")

	// Prometheus
	v.BindEnv("prometheus.port", "PROM_PORT")
	v.BindEnv("prometheus.retention", "PROM_RETENTION")
	v.BindEnv("prometheus.scrape_interval", "PROM_SCRAPE_INTERVAL")
	v.BindEnv("prometheus.target", "PROM_TARGET")

	// Safety
	v.BindEnv("safety.safe_browsing_key", "GOOGLE_SAFE_BROWSING_KEY")
	v.BindEnv("safety.cache_ttl", "SAFETY_CACHE_TTL")

	// GeoIP
	v.BindEnv("geoip.db_path", "GEOLITE2_DB_PATH")
}
