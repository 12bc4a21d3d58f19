package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	CORS      CORSConfig
	Email     EmailConfig
	Signup    SignupConfig
	Social    SocialConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// IsProduction reports whether the server runs in production mode.
func (s *ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	AccessKey   string `mapstructure:"access_key"`
	SecretKey   string `mapstructure:"secret_key"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// Email verification policies.
const (
	EmailVerificationMandatory = "mandatory"
	EmailVerificationOptional  = "optional"
	EmailVerificationNone      = "none"
)

// SignupConfig holds the signup policy for social accounts.
type SignupConfig struct {
	Enabled           bool     `mapstructure:"enabled"`
	AutoSignup        bool     `mapstructure:"auto_signup"`
	EmailRequired     bool     `mapstructure:"email_required"`
	UsernameRequired  bool     `mapstructure:"username_required"`
	UsernameMinLength int      `mapstructure:"username_min_length"`
	UsernameBlacklist []string `mapstructure:"username_blacklist"`
	EmailVerification string   `mapstructure:"email_verification"`
}

// VerifiedEmailRequired reports whether users must keep a verified email.
func (s *SignupConfig) VerifiedEmailRequired() bool {
	return s.EmailVerification == EmailVerificationMandatory
}

// SocialAppConfig declares one provider application.
type SocialAppConfig struct {
	Provider   string         `mapstructure:"provider"`
	ProviderID string         `mapstructure:"provider_id"`
	Name       string         `mapstructure:"name"`
	ClientID   string         `mapstructure:"client_id"`
	Secret     string         `mapstructure:"secret"`
	Key        string         `mapstructure:"key"`
	Settings   map[string]any `mapstructure:"settings"`
}

// SocialConfig holds provider settings.
type SocialConfig struct {
	Apps             []SocialAppConfig `mapstructure:"apps"`
	VerifyTimeout    time.Duration     `mapstructure:"verify_timeout"`
	ProviderCacheTTL time.Duration     `mapstructure:"provider_cache_ttl"`
	PendingLoginTTL  time.Duration     `mapstructure:"pending_login_ttl"`
	PendingStore     string            `mapstructure:"pending_store"`
}

// RateLimitConfig holds the per-client limit for token authentication.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

// Load reads configuration from environment variables with the SOCIALID_
// prefix and, when SOCIALID_CONFIG_FILE is set, from that file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SOCIALID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file := os.Getenv("SOCIALID_CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", file, err)
		}
	}

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "socialid")
	v.SetDefault("db.password", "socialid_secret")
	v.SetDefault("db.name", "socialid_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Redis defaults
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "socialid:")

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "socialid")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@socialid.dev")
	v.SetDefault("email.from_name", "socialid")
	v.SetDefault("email.frontend_url", "http://localhost:3000")

	// Signup defaults
	v.SetDefault("signup.enabled", true)
	v.SetDefault("signup.auto_signup", true)
	v.SetDefault("signup.email_required", true)
	v.SetDefault("signup.username_required", true)
	v.SetDefault("signup.username_min_length", 1)
	v.SetDefault("signup.username_blacklist", "admin,root,administrator,support")
	v.SetDefault("signup.email_verification", EmailVerificationOptional)

	// Social defaults
	v.SetDefault("social.verify_timeout", "10s")
	v.SetDefault("social.provider_cache_ttl", "5m")
	v.SetDefault("social.pending_login_ttl", "15m")
	v.SetDefault("social.pending_store", "redis")

	// Rate limit defaults
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.rps", 1.0)
	v.SetDefault("rate_limit.burst", 5)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                "SOCIALID_SERVER_PORT",
		"server.read_timeout":        "SOCIALID_SERVER_READ_TIMEOUT",
		"server.write_timeout":       "SOCIALID_SERVER_WRITE_TIMEOUT",
		"server.environment":         "SOCIALID_SERVER_ENVIRONMENT",
		"db.host":                    "SOCIALID_DB_HOST",
		"db.port":                    "SOCIALID_DB_PORT",
		"db.user":                    "SOCIALID_DB_USER",
		"db.password":                "SOCIALID_DB_PASSWORD",
		"db.name":                    "SOCIALID_DB_NAME",
		"db.sslmode":                 "SOCIALID_DB_SSLMODE",
		"db.max_open":                "SOCIALID_DB_MAX_OPEN",
		"db.max_idle":                "SOCIALID_DB_MAX_IDLE",
		"redis.addr":                 "SOCIALID_REDIS_ADDR",
		"redis.password":             "SOCIALID_REDIS_PASSWORD",
		"redis.db":                   "SOCIALID_REDIS_DB",
		"redis.prefix":               "SOCIALID_REDIS_PREFIX",
		"jwt.secret":                 "SOCIALID_JWT_SECRET",
		"jwt.access_expiry":          "SOCIALID_JWT_ACCESS_EXPIRY",
		"jwt.refresh_expiry":         "SOCIALID_JWT_REFRESH_EXPIRY",
		"jwt.issuer":                 "SOCIALID_JWT_ISSUER",
		"log.level":                  "SOCIALID_LOG_LEVEL",
		"log.format":                 "SOCIALID_LOG_FORMAT",
		"cors.allowed_origins":       "SOCIALID_CORS_ALLOWED_ORIGINS",
		"email.provider":             "SOCIALID_EMAIL_PROVIDER",
		"email.region":               "SOCIALID_EMAIL_REGION",
		"email.access_key":           "SOCIALID_EMAIL_ACCESS_KEY",
		"email.secret_key":           "SOCIALID_EMAIL_SECRET_KEY",
		"email.from_address":         "SOCIALID_EMAIL_FROM_ADDRESS",
		"email.from_name":            "SOCIALID_EMAIL_FROM_NAME",
		"email.frontend_url":         "SOCIALID_EMAIL_FRONTEND_URL",
		"signup.enabled":             "SOCIALID_SIGNUP_ENABLED",
		"signup.auto_signup":         "SOCIALID_SIGNUP_AUTO_SIGNUP",
		"signup.email_required":      "SOCIALID_SIGNUP_EMAIL_REQUIRED",
		"signup.username_required":   "SOCIALID_SIGNUP_USERNAME_REQUIRED",
		"signup.username_min_length": "SOCIALID_SIGNUP_USERNAME_MIN_LENGTH",
		"signup.username_blacklist":  "SOCIALID_SIGNUP_USERNAME_BLACKLIST",
		"signup.email_verification":  "SOCIALID_SIGNUP_EMAIL_VERIFICATION",
		"social.verify_timeout":      "SOCIALID_SOCIAL_VERIFY_TIMEOUT",
		"social.provider_cache_ttl":  "SOCIALID_SOCIAL_PROVIDER_CACHE_TTL",
		"social.pending_login_ttl":   "SOCIALID_SOCIAL_PENDING_LOGIN_TTL",
		"social.pending_store":       "SOCIALID_SOCIAL_PENDING_STORE",
		"social.google.client_id":    "SOCIALID_SOCIAL_GOOGLE_CLIENT_ID",
		"social.google.secret":       "SOCIALID_SOCIAL_GOOGLE_SECRET",
		"social.facebook.client_id":  "SOCIALID_SOCIAL_FACEBOOK_CLIENT_ID",
		"social.facebook.secret":     "SOCIALID_SOCIAL_FACEBOOK_SECRET",
		"social.github.client_id":    "SOCIALID_SOCIAL_GITHUB_CLIENT_ID",
		"social.github.secret":       "SOCIALID_SOCIAL_GITHUB_SECRET",
		"social.oidc.provider_id":    "SOCIALID_SOCIAL_OIDC_PROVIDER_ID",
		"social.oidc.name":           "SOCIALID_SOCIAL_OIDC_NAME",
		"social.oidc.issuer":         "SOCIALID_SOCIAL_OIDC_ISSUER",
		"social.oidc.client_id":      "SOCIALID_SOCIAL_OIDC_CLIENT_ID",
		"social.oidc.secret":         "SOCIALID_SOCIAL_OIDC_SECRET",
		"rate_limit.enabled":         "SOCIALID_RATE_LIMIT_ENABLED",
		"rate_limit.rps":             "SOCIALID_RATE_LIMIT_RPS",
		"rate_limit.burst":           "SOCIALID_RATE_LIMIT_BURST",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if SOCIALID_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("SOCIALID_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Redis = RedisConfig{
		Addr:     v.GetString("redis.addr"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
		Prefix:   v.GetString("redis.prefix"),
	}
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		AccessKey:   v.GetString("email.access_key"),
		SecretKey:   v.GetString("email.secret_key"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		FrontendURL: v.GetString("email.frontend_url"),
	}
	cfg.Signup = SignupConfig{
		Enabled:           v.GetBool("signup.enabled"),
		AutoSignup:        v.GetBool("signup.auto_signup"),
		EmailRequired:     v.GetBool("signup.email_required"),
		UsernameRequired:  v.GetBool("signup.username_required"),
		UsernameMinLength: v.GetInt("signup.username_min_length"),
		UsernameBlacklist: stringList(v, "signup.username_blacklist"),
		EmailVerification: v.GetString("signup.email_verification"),
	}
	switch cfg.Signup.EmailVerification {
	case EmailVerificationMandatory, EmailVerificationOptional, EmailVerificationNone:
	default:
		return nil, fmt.Errorf("invalid signup.email_verification %q", cfg.Signup.EmailVerification)
	}

	apps, err := socialApps(v)
	if err != nil {
		return nil, err
	}
	cfg.Social = SocialConfig{
		Apps:             apps,
		VerifyTimeout:    v.GetDuration("social.verify_timeout"),
		ProviderCacheTTL: v.GetDuration("social.provider_cache_ttl"),
		PendingLoginTTL:  v.GetDuration("social.pending_login_ttl"),
		PendingStore:     v.GetString("social.pending_store"),
	}
	cfg.RateLimit = RateLimitConfig{
		Enabled: v.GetBool("rate_limit.enabled"),
		RPS:     v.GetFloat64("rate_limit.rps"),
		Burst:   v.GetInt("rate_limit.burst"),
	}

	return cfg, nil
}

// socialApps merges apps listed under social.apps in the config file with the
// per-provider environment shorthands.
func socialApps(v *viper.Viper) ([]SocialAppConfig, error) {
	var apps []SocialAppConfig
	if v.IsSet("social.apps") {
		if err := v.UnmarshalKey("social.apps", &apps); err != nil {
			return nil, fmt.Errorf("parsing social.apps: %w", err)
		}
	}
	for _, provider := range []string{"google", "facebook", "github"} {
		clientID := v.GetString("social." + provider + ".client_id")
		if clientID == "" {
			continue
		}
		apps = append(apps, SocialAppConfig{
			Provider: provider,
			ClientID: clientID,
			Secret:   v.GetString("social." + provider + ".secret"),
		})
	}
	if clientID := v.GetString("social.oidc.client_id"); clientID != "" {
		apps = append(apps, SocialAppConfig{
			Provider:   "openid_connect",
			ProviderID: v.GetString("social.oidc.provider_id"),
			Name:       v.GetString("social.oidc.name"),
			ClientID:   clientID,
			Secret:     v.GetString("social.oidc.secret"),
			Settings:   map[string]any{"server_url": v.GetString("social.oidc.issuer")},
		})
	}
	for i, app := range apps {
		if app.Provider == "" || app.ClientID == "" {
			return nil, fmt.Errorf("social app %d: provider and client_id are required", i)
		}
		if app.Provider == "openid_connect" && app.ProviderID == "" {
			return nil, fmt.Errorf("social app %d: openid_connect apps need a provider_id", i)
		}
	}
	return apps, nil
}

// stringList reads a list that may be given as a comma-separated string.
func stringList(v *viper.Viper, key string) []string {
	if raw, ok := v.Get(key).([]any); ok {
		out := make([]string, 0, len(raw))
		for _, item := range raw {
			if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return splitList(v.GetString(key))
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
