package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config es la configuración del servicio. Se carga una vez en startup
// (YAML + overrides por env) y es read-only de ahí en más.
type Config struct {
	App struct {
		// dev | prod
		Env      string `yaml:"env"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
		ReadTimeout        string   `yaml:"read_timeout"`
		WriteTimeout       string   `yaml:"write_timeout"`
	} `yaml:"server"`

	Auth struct {
		// Secret compartido con el emisor de tokens (firma HMAC e IKM de HKDF).
		Secret string `yaml:"secret"`
		// Algoritmo de firma esperado (HS256 por defecto).
		Algorithm string `yaml:"algorithm"`
		// TTL del session JWT emitido tras verificar un magic link.
		AccessTTL string `yaml:"access_ttl"`
		// TTL de los magic links.
		MagicLinkTTL string `yaml:"magic_link_ttl"`
		Session      struct {
			CookieName string `yaml:"cookie_name"`
			Domain     string `yaml:"domain"`
			SameSite   string `yaml:"samesite"`
			Secure     bool   `yaml:"secure"`
		} `yaml:"session"`
	} `yaml:"auth"`

	Storage struct {
		// dsn vacío habilita el repositorio en memoria (dev/tests).
		DSN string `yaml:"dsn"`
	} `yaml:"storage"`

	Cache struct {
		// memory | redis
		Kind  string `yaml:"kind"`
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		// Límite para POST /v1/auth/magic/send
		MagicSend struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"magic_send"`
	} `yaml:"rate"`

	SMTP struct {
		Host      string `yaml:"host"`
		Port      int    `yaml:"port"`
		From      string `yaml:"from"`
		User      string `yaml:"user"`
		Pass      string `yaml:"pass"`
		TLSMode   string `yaml:"tls_mode"` // auto | starttls | ssl | none
		SkipCerts bool   `yaml:"skip_certs"`
	} `yaml:"smtp"`

	URLs struct {
		Backend  string `yaml:"backend"`
		Frontend string `yaml:"frontend"`
	} `yaml:"urls"`
}

// Load lee el YAML (si path no está vacío), aplica defaults y luego
// overrides por variables de entorno.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}

	// sane defaults
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "10s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "30s"
	}
	if c.Auth.Algorithm == "" {
		c.Auth.Algorithm = "HS256"
	}
	if c.Auth.AccessTTL == "" {
		c.Auth.AccessTTL = "24h"
	}
	if c.Auth.MagicLinkTTL == "" {
		c.Auth.MagicLinkTTL = "15m"
	}
	if c.Auth.Session.CookieName == "" {
		c.Auth.Session.CookieName = "access_token"
	}
	if c.Auth.Session.SameSite == "" {
		c.Auth.Session.SameSite = "lax"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "2m"
	}
	if c.Rate.MagicSend.Limit == 0 {
		c.Rate.MagicSend.Limit = 5
	}
	if c.Rate.MagicSend.Window == "" {
		c.Rate.MagicSend.Window = "10m"
	}
	if c.URLs.Frontend == "" {
		c.URLs.Frontend = "http://localhost:3000"
	}
	if c.URLs.Backend == "" {
		c.URLs.Backend = "http://localhost:8080"
	}

	// env overrides
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = v
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.App.LogLevel = v
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("SECRET_KEY"); ok {
		c.Auth.Secret = v
	}
	if v, ok := getEnvStr("JWT_ALGORITHM"); ok {
		c.Auth.Algorithm = v
	}
	if v, ok := getEnvStr("DATABASE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Kind = "redis"
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.SMTP.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.SMTP.Port = v
	}
	if v, ok := getEnvStr("SMTP_FROM"); ok {
		c.SMTP.From = v
	}
	if v, ok := getEnvStr("SMTP_USER"); ok {
		c.SMTP.User = v
	}
	if v, ok := getEnvStr("SMTP_PASS"); ok {
		c.SMTP.Pass = v
	}
	if v, ok := getEnvStr("FRONTEND_URL"); ok {
		c.URLs.Frontend = v
	}
	if v, ok := getEnvStr("BACKEND_URL"); ok {
		c.URLs.Backend = v
	}
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}

	if c.Auth.Secret == "" {
		return nil, fmt.Errorf("config: auth.secret is required (env SECRET_KEY)")
	}

	return &c, nil
}

// MustDuration parsea una duración de la config; los defaults ya validados
// garantizan un valor sano si el YAML trae basura.
func MustDuration(s, fallback string) time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(fallback)
	return d
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
