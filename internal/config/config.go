package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	BackendBaseURL     string        `mapstructure:"backend_base_url"`
	WithCredentials    bool          `mapstructure:"with_credentials"`
	SessionCookieName  string        `mapstructure:"session_cookie_name"`
	SessionCookie      string        `mapstructure:"session_cookie"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`
	HTTPDebug          bool          `mapstructure:"http_debug"`
	HTTPTracing        bool          `mapstructure:"http_tracing"`
	CookieStore        string        `mapstructure:"cookie_store"`

	SheltersFile        string        `mapstructure:"shelters_file"`
	PublishersFile      string        `mapstructure:"publishers_file"`
	PollIntervalSeconds int64         `mapstructure:"poll_interval"`
	PollInterval        time.Duration `mapstructure:"-"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "animal-rescue")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("backend_base_url", "")
	v.SetDefault("with_credentials", true)
	v.SetDefault("session_cookie_name", "SESSION")
	v.SetDefault("session_cookie", "")
	v.SetDefault("http_timeout_seconds", 0) // no timeout
	v.SetDefault("http_debug", false)
	v.SetDefault("http_tracing", false)
	v.SetDefault("cookie_store", "bbolt")
	v.SetDefault("shelters_file", "./configs/shelters.yaml")
	v.SetDefault("publishers_file", "./configs/publishers.yaml")
	v.SetDefault("poll_interval", 60) // seconds
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/animal-rescue.db")
	v.SetDefault("storage_ttl_seconds", int64((30*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()
	// The frontend build used REACT_APP_BACKEND_BASE_URL; keep honouring it.
	if err := v.BindEnv("backend_base_url", "BACKEND_BASE_URL", "REACT_APP_BACKEND_BASE_URL"); err != nil {
		return nil, fmt.Errorf("bind backend_base_url: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	var err error
	if cfg.HTTPTimeout, err = seconds("http_timeout_seconds", cfg.HTTPTimeoutSeconds, true); err != nil {
		return nil, err
	}
	if cfg.PollInterval, err = seconds("poll_interval", cfg.PollIntervalSeconds, false); err != nil {
		return nil, err
	}
	if cfg.StorageTTL, err = seconds("storage_ttl_seconds", cfg.StorageTTLSeconds, false); err != nil {
		return nil, err
	}
	if cfg.StorageCleanupInterval, err = seconds("storage_cleanup_interval_seconds", cfg.StorageCleanupSeconds, false); err != nil {
		return nil, err
	}

	cfg.CookieStore = strings.ToLower(strings.TrimSpace(cfg.CookieStore))
	switch cfg.CookieStore {
	case "bbolt", "none":
	default:
		return nil, fmt.Errorf("invalid cookie_store %q (want bbolt or none)", cfg.CookieStore)
	}
	cfg.SessionCookieName = strings.TrimSpace(cfg.SessionCookieName)
	if cfg.SessionCookieName == "" {
		return nil, fmt.Errorf("session_cookie_name must not be empty")
	}

	return &cfg, nil
}

// seconds converts a seconds setting into a duration; zero is accepted only when allowZero.
func seconds(key string, v int64, allowZero bool) (time.Duration, error) {
	if v < 0 || (v == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s %d (must be positive seconds)", key, v)
	}
	return time.Duration(v) * time.Second, nil
}
