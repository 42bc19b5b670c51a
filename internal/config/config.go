package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ezfintutor/tutormail/internal/security/secretbox"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr            string        `yaml:"addr"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Storage StorageConfig `yaml:"storage"`

	Cache struct {
		Kind  string        `yaml:"kind"` // none | memory | redis
		TTL   time.Duration `yaml:"ttl"`
		Redis struct {
			Addr     string `yaml:"addr"`
			DB       int    `yaml:"db"`
			Password string `yaml:"password"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	SMTP struct {
		Host               string        `yaml:"host"`
		Port               int           `yaml:"port"`
		Username           string        `yaml:"username"`
		Password           string        `yaml:"password"`
		PasswordEnc        string        `yaml:"password_enc"` // secretbox: base64(nonce)|base64(ct)
		From               string        `yaml:"from"`
		TLS                string        `yaml:"tls"`                  // auto | starttls | ssl | none
		InsecureSkipVerify bool          `yaml:"insecure_skip_verify"` // sólo dev
		Timeout            time.Duration `yaml:"timeout"`
	} `yaml:"smtp"`

	Admin struct {
		Enforce    bool   `yaml:"enforce"`
		APIKeyHash string `yaml:"api_key_hash"` // bcrypt
		JWTSecret  string `yaml:"jwt_secret"`   // HS256
		JWTIssuer  string `yaml:"jwt_issuer"`
	} `yaml:"admin"`

	Security struct {
		SecretBoxMasterKey string `yaml:"secretbox_master_key"`
	} `yaml:"security"`
}

// StorageConfig elige y configura el store de templates.
type StorageConfig struct {
	Driver          string        `yaml:"driver"` // memory | fs | sqlite | postgres | mysql
	DSN             string        `yaml:"dsn"`
	Path            string        `yaml:"path"`  // fs / sqlite
	Watch           bool          `yaml:"watch"` // fs: recarga ante cambios externos
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	Migrate         bool          `yaml:"migrate"` // aplica migraciones al arrancar
}

// Default devuelve la configuración base, sin archivo ni entorno.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load lee el YAML (si path no es vacío), aplica overrides de entorno y completa defaults.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	c.applyEnvOverrides()
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Storage.Driver == "fs" && c.Storage.Path == "" {
		c.Storage.Path = "data/email_templates.yaml"
	}
	if c.Storage.Driver == "sqlite" && c.Storage.Path == "" && c.Storage.DSN == "" {
		c.Storage.Path = "data/tutormail.db"
	}
	if c.Storage.MaxOpenConns == 0 {
		c.Storage.MaxOpenConns = 10
	}
	if c.Storage.MaxIdleConns == 0 {
		c.Storage.MaxIdleConns = 2
	}
	if c.Storage.ConnMaxLifetime == 0 {
		c.Storage.ConnMaxLifetime = 30 * time.Minute
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "none"
		if c.Storage.seesForeignWrites() {
			c.Cache.Kind = "memory"
		}
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 2 * time.Minute
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "tutormail"
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.SMTP.TLS == "" {
		c.SMTP.TLS = "auto"
	}
	if c.SMTP.Timeout == 0 {
		c.SMTP.Timeout = 15 * time.Second
	}
	if c.Admin.JWTIssuer == "" {
		c.Admin.JWTIssuer = "ezfintutor"
	}
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}

// applyEnvOverrides: pisa el YAML con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvStr("STORAGE_PATH"); ok {
		c.Storage.Path = v
	}
	if v, ok := getEnvBool("STORAGE_WATCH"); ok {
		c.Storage.Watch = v
	}
	if v, ok := getEnvBool("STORAGE_MIGRATE"); ok {
		c.Storage.Migrate = v
	}
	if v, ok := getEnvInt("STORAGE_MAX_OPEN_CONNS"); ok {
		c.Storage.MaxOpenConns = v
	}

	// CACHE
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvDur("CACHE_TTL"); ok {
		c.Cache.TTL = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}

	// SMTP
	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.SMTP.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.SMTP.Port = v
	}
	if v, ok := getEnvStr("SMTP_USERNAME"); ok {
		c.SMTP.Username = v
	}
	if v, ok := getEnvStr("SMTP_PASSWORD"); ok {
		c.SMTP.Password = v
	}
	if v, ok := getEnvStr("SMTP_PASSWORD_ENC"); ok {
		c.SMTP.PasswordEnc = v
	}
	if v, ok := getEnvStr("SMTP_FROM"); ok {
		c.SMTP.From = v
	}
	if v, ok := getEnvStr("SMTP_TLS"); ok {
		c.SMTP.TLS = strings.ToLower(v)
	}
	if v, ok := getEnvBool("SMTP_INSECURE_SKIP_VERIFY"); ok {
		c.SMTP.InsecureSkipVerify = v
	}
	if v, ok := getEnvDur("SMTP_TIMEOUT"); ok {
		c.SMTP.Timeout = v
	}

	// ADMIN
	if v, ok := getEnvBool("ADMIN_ENFORCE"); ok {
		c.Admin.Enforce = v
	}
	if v, ok := getEnvStr("ADMIN_API_KEY_HASH"); ok {
		c.Admin.APIKeyHash = v
	}
	if v, ok := getEnvStr("ADMIN_JWT_SECRET"); ok {
		c.Admin.JWTSecret = v
	}

	// SECURITY
	if v, ok := getEnvStr("SECRETBOX_MASTER_KEY"); ok {
		c.Security.SecretBoxMasterKey = v
	}
}

// Validate revisa combinaciones que no pueden arrancar.
func (c *Config) Validate() error {
	switch c.Cache.Kind {
	case "none", "memory":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			return errors.New("config: cache.kind=redis requires cache.redis.addr")
		}
	default:
		return fmt.Errorf("config: unknown cache.kind %q", c.Cache.Kind)
	}
	switch c.SMTP.TLS {
	case "auto", "starttls", "ssl", "none":
	default:
		return fmt.Errorf("config: unknown smtp.tls %q", c.SMTP.TLS)
	}
	if c.Cache.Kind == "memory" && !c.Storage.seesForeignWrites() {
		return fmt.Errorf("config: cache.kind=memory with storage.driver=%s would keep serving stale templates after writes from other processes (use redis, none, or fs with watch)", c.Storage.Driver)
	}
	if c.Admin.Enforce && c.Admin.APIKeyHash == "" && c.Admin.JWTSecret == "" {
		return errors.New("config: admin.enforce requires api_key_hash or jwt_secret")
	}
	if c.SMTP.PasswordEnc != "" && c.Security.SecretBoxMasterKey == "" {
		return errors.New("config: smtp.password_enc requires security.secretbox_master_key")
	}
	return nil
}

// seesForeignWrites reporta si el proceso se entera de escrituras hechas por
// otros procesos (CLI, otra réplica) y puede invalidar un cache local.
// memory no es compartido; fs sólo con watch.
func (s StorageConfig) seesForeignWrites() bool {
	switch s.Driver {
	case "memory":
		return true
	case "fs":
		return s.Watch
	}
	return false
}

// SMTPPassword devuelve la password SMTP en claro, descifrando password_enc si hace falta.
func (c *Config) SMTPPassword() (string, error) {
	if c.SMTP.PasswordEnc == "" {
		return c.SMTP.Password, nil
	}
	pw, err := secretbox.DecryptWithKey(c.Security.SecretBoxMasterKey, c.SMTP.PasswordEnc)
	if err != nil {
		return "", fmt.Errorf("config: smtp.password_enc: %w", err)
	}
	return pw, nil
}

// IsProd reporta si app.env es prod.
func (c *Config) IsProd() bool {
	return c.App.Env == "prod" || c.App.Env == "production"
}
