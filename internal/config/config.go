package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

var validEnvs = map[string]bool{
	"local": true,
	"alpha": true,
	"beta":  true,
	"prod":  true,
}

type Config struct {
	ServerPort  string
	AppEnv      string
	AuthDevMode bool
	LogLevel    string
	BaseURL     string
	DB          DBConfig
	Auth        AuthConfig
	SMTP        SMTPConfig
	Invite      InviteConfig
}

func (c Config) ParseLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c Config) Validate() error {
	if _, err := strconv.Atoi(c.ServerPort); err != nil {
		return fmt.Errorf("invalid SERVER_PORT %q: %w", c.ServerPort, err)
	}
	if !validEnvs[c.AppEnv] {
		return fmt.Errorf("invalid APP_ENV %q: must be one of local, alpha, beta, prod", c.AppEnv)
	}
	if c.AuthDevMode && c.AppEnv != "local" {
		return fmt.Errorf("AUTH_DEV_MODE must not be enabled in %s environment", c.AppEnv)
	}
	if !c.AuthDevMode {
		if c.Auth.Issuer == "" {
			return fmt.Errorf("AUTH_ISSUER is required when AUTH_DEV_MODE is disabled")
		}
		if c.Auth.Audience == "" {
			return fmt.Errorf("AUTH_AUDIENCE is required when AUTH_DEV_MODE is disabled")
		}
	}
	if _, err := c.Invite.TTLDuration(); err != nil {
		return err
	}
	if _, err := c.Invite.SweepIntervalDuration(); err != nil {
		return err
	}
	return nil
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (d DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     d.Name,
		RawQuery: fmt.Sprintf("sslmode=%s", url.QueryEscape(d.SSLMode)),
	}
	return u.String()
}

// AuthConfig describes the external identity provider whose tokens the API
// accepts.
type AuthConfig struct {
	Issuer   string
	JWKSURL  string
	Audience string
}

// ResolveJWKSURL falls back to the issuer's well-known JWKS location when no
// explicit URL is configured.
func (a AuthConfig) ResolveJWKSURL() string {
	if a.JWKSURL != "" {
		return a.JWKSURL
	}
	return strings.TrimRight(a.Issuer, "/") + "/.well-known/jwks.json"
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Enabled reports whether an SMTP server is configured; without one invite
// mails are only logged.
func (s SMTPConfig) Enabled() bool {
	return s.Host != ""
}

type InviteConfig struct {
	TTL           string
	SweepInterval string
}

func (i InviteConfig) TTLDuration() (time.Duration, error) {
	d, err := time.ParseDuration(i.TTL)
	if err != nil {
		return 0, fmt.Errorf("invalid INVITE_TTL %q: %w", i.TTL, err)
	}
	return d, nil
}

func (i InviteConfig) SweepIntervalDuration() (time.Duration, error) {
	d, err := time.ParseDuration(i.SweepInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid INVITE_SWEEP_INTERVAL %q: %w", i.SweepInterval, err)
	}
	return d, nil
}

func Load() Config {
	return Config{
		ServerPort:  envOrDefault("SERVER_PORT", "8080"),
		AppEnv:      envOrDefault("APP_ENV", "local"),
		AuthDevMode: strings.EqualFold(envOrDefault("AUTH_DEV_MODE", "false"), "true"),
		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
		BaseURL:     envOrDefault("APP_BASE_URL", "http://localhost:3000"),
		DB: DBConfig{
			Host:     envOrDefault("DB_HOST", "localhost"),
			Port:     envOrDefault("DB_PORT", "5432"),
			User:     envOrDefault("DB_USER", "teamtodo"),
			Password: envOrDefault("DB_PASSWORD", "teamtodo"),
			Name:     envOrDefault("DB_NAME", "teamtodo"),
			SSLMode:  envOrDefault("DB_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			Issuer:   os.Getenv("AUTH_ISSUER"),
			JWKSURL:  os.Getenv("AUTH_JWKS_URL"),
			Audience: os.Getenv("AUTH_AUDIENCE"),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     envOrDefault("SMTP_PORT", "587"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     envOrDefault("SMTP_FROM", "no-reply@teamtodo.local"),
		},
		Invite: InviteConfig{
			TTL:           envOrDefault("INVITE_TTL", "24h"),
			SweepInterval: envOrDefault("INVITE_SWEEP_INTERVAL", "10m"),
		},
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
