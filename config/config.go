package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"licensepanel/logger"
)

// EnvPrefix is the prefix of every environment override (LICENSEPANEL_STORE_BACKEND, ...).
const EnvPrefix = "LICENSEPANEL"

// EnvConfigFile names the environment variable pointing at the YAML file.
const EnvConfigFile = "LICENSEPANEL_CONFIG"

// Store backends
const (
	StoreSQLite = "sqlite"
	StoreMySQL  = "mysql"
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Quota backends
const (
	QuotaStore = "store"
	QuotaRedis = "redis"
)

// Config 서버 전체 설정
type Config struct {
	Server   ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Store    StoreConfig   `yaml:"store" envconfig:"STORE"`
	Quota    QuotaConfig   `yaml:"quota" envconfig:"QUOTA"`
	Auth     AuthConfig    `yaml:"auth" envconfig:"AUTH"`
	Logging  LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Verify   VerifyConfig  `yaml:"verify" envconfig:"VERIFY"`
	Audit    AuditConfig   `yaml:"audit" envconfig:"AUDIT"`
	Timezone string        `yaml:"timezone" envconfig:"TIMEZONE"`
}

// ServerConfig HTTP 서버 설정
type ServerConfig struct {
	Addr            string        `yaml:"addr" envconfig:"ADDR"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// StoreConfig 레코드 저장소 설정
type StoreConfig struct {
	Backend string `yaml:"backend" envconfig:"BACKEND"`
	// DSN is the SQLite path, the MySQL DSN or the MongoDB URI.
	DSN      string `yaml:"dsn" envconfig:"DSN"`
	Database string `yaml:"database" envconfig:"DATABASE"`
}

// QuotaConfig 디바이스 카운터 저장소 설정
type QuotaConfig struct {
	Backend       string `yaml:"backend" envconfig:"BACKEND"`
	RedisAddr     string `yaml:"redis_addr" envconfig:"REDIS_ADDR"`
	RedisPassword string `yaml:"redis_password" envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" envconfig:"REDIS_DB"`
	KeyPrefix     string `yaml:"key_prefix" envconfig:"KEY_PREFIX"`
}

// AuthConfig 관리자 API 토큰 설정
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" envconfig:"JWT_SECRET"`
	Issuer    string `yaml:"issuer" envconfig:"ISSUER"`
	// Disabled turns off admin authentication. Local development only.
	Disabled bool `yaml:"disabled" envconfig:"DISABLED"`
}

// LoggingConfig 로그 설정
type LoggingConfig struct {
	Level     string `yaml:"level" envconfig:"LEVEL"`
	Dir       string `yaml:"dir" envconfig:"DIR"`
	MaxSizeMB int    `yaml:"max_size_mb" envconfig:"MAX_SIZE_MB"`
	MaxAge    int    `yaml:"max_age_days" envconfig:"MAX_AGE_DAYS"`
	Color     bool   `yaml:"color" envconfig:"COLOR"`
	Caller    bool   `yaml:"caller" envconfig:"CALLER"`
}

// VerifyConfig 공개 검증 엔드포인트 보호 설정
type VerifyConfig struct {
	RateLimit float64 `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
	Burst     int     `yaml:"burst" envconfig:"BURST"`
	// TrustedProxies lists proxy IPs or CIDRs allowed to set X-Forwarded-For.
	// Empty means the connection address identifies the client.
	TrustedProxies []string `yaml:"trusted_proxies" envconfig:"TRUSTED_PROXIES"`
}

// AuditConfig 카운터 점검 스케줄 설정
type AuditConfig struct {
	// Interval 0 disables the periodic audit.
	Interval time.Duration `yaml:"interval" envconfig:"INTERVAL"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			Backend:  StoreSQLite,
			DSN:      "./licensepanel.db",
			Database: "licensepanel",
		},
		Quota: QuotaConfig{
			Backend:   QuotaStore,
			RedisAddr: "localhost:6379",
			KeyPrefix: "license_devices_count:",
		},
		Auth: AuthConfig{
			Issuer: "licensepanel",
		},
		Logging: LoggingConfig{
			Level:     "info",
			Dir:       "./logs",
			MaxSizeMB: 100,
			MaxAge:    30,
			Color:     true,
		},
		Verify: VerifyConfig{
			RateLimit: 10,
			Burst:     20,
		},
		Audit: AuditConfig{
			Interval: time.Hour,
		},
		Timezone: "UTC",
	}
}

// Flags holds the command-line overrides registered on a FlagSet.
type Flags struct {
	ConfigFile string
	Addr       string
	Store      string
	DSN        string
}

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.ConfigFile, "config", "", "path to a YAML configuration file")
	fs.StringVar(&f.Addr, "addr", "", "HTTP listen address")
	fs.StringVar(&f.Store, "store", "", "record store backend (sqlite, mysql, mongo, memory)")
	fs.StringVar(&f.DSN, "dsn", "", "record store DSN or URI")
	return f
}

// Load builds the configuration: defaults, then the YAML file, then the
// environment, then the flags changed on fs. fs and flags may be nil.
func Load(fs *pflag.FlagSet, flags *Flags) (Config, error) {
	cfg := Default()

	path := os.Getenv(EnvConfigFile)
	if flags != nil && flags.ConfigFile != "" {
		path = flags.ConfigFile
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
		logger.Info("Loaded configuration file: %s", path)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load config from env: %w", err)
	}

	if fs != nil && flags != nil {
		applyFlags(fs, flags, &cfg)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyFlags(fs *pflag.FlagSet, f *Flags, cfg *Config) {
	if fs.Changed("addr") {
		cfg.Server.Addr = f.Addr
	}
	if fs.Changed("store") {
		cfg.Store.Backend = f.Store
	}
	if fs.Changed("dsn") {
		cfg.Store.DSN = f.DSN
	}
}

// Validate reports configuration errors that must stop startup.
func (c *Config) Validate() error {
	var errs []error

	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	switch c.Store.Backend {
	case StoreSQLite, StoreMemory:
	case StoreMySQL, StoreMongo:
		if strings.TrimSpace(c.Store.DSN) == "" {
			errs = append(errs, fmt.Errorf("store.dsn is required for backend %q", c.Store.Backend))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}
	if c.Store.Backend == StoreMongo && c.Store.Database == "" {
		errs = append(errs, errors.New("store.database is required for backend \"mongo\""))
	}

	c.Quota.Backend = strings.ToLower(strings.TrimSpace(c.Quota.Backend))
	switch c.Quota.Backend {
	case QuotaStore:
	case QuotaRedis:
		if c.Quota.RedisAddr == "" {
			errs = append(errs, errors.New("quota.redis_addr is required for backend \"redis\""))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown quota backend %q", c.Quota.Backend))
	}

	if c.Verify.RateLimit <= 0 {
		errs = append(errs, fmt.Errorf("verify.rate_limit must be positive, got %v", c.Verify.RateLimit))
	}
	if c.Verify.Burst <= 0 {
		errs = append(errs, fmt.Errorf("verify.burst must be positive, got %d", c.Verify.Burst))
	}
	for _, entry := range c.Verify.TrustedProxies {
		if !validProxyEntry(strings.TrimSpace(entry)) {
			errs = append(errs, fmt.Errorf("verify.trusted_proxies: invalid address or CIDR %q", entry))
		}
	}
	if c.Audit.Interval < 0 {
		errs = append(errs, errors.New("audit.interval must not be negative"))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err))
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	if !c.Auth.Disabled && c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required unless auth.disabled is set"))
	}

	return errors.Join(errs...)
}

func validProxyEntry(entry string) bool {
	if strings.Contains(entry, "/") {
		_, err := netip.ParsePrefix(entry)
		return err == nil
	}
	_, err := netip.ParseAddr(entry)
	return err == nil
}

// LoggerConfig translates the logging section for logger.Initialize.
func (c Config) LoggerConfig() logger.Config {
	level, _ := logger.ParseLevel(c.Logging.Level)
	return logger.Config{
		Level:      level,
		LogDir:     c.Logging.Dir,
		MaxSize:    int64(c.Logging.MaxSizeMB) * 1024 * 1024,
		MaxAge:     c.Logging.MaxAge,
		UseColor:   c.Logging.Color,
		ShowCaller: c.Logging.Caller,
	}
}
