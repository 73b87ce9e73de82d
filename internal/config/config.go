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
	Server   ServerConfig
	DB       DBConfig
	S3       S3Config
	Log      LogConfig
	Parser   ParserConfig
	Lookup   LookupConfig
	Pipeline PipelineConfig
	CORS     CORSConfig
	Queue    QueueConfig
	Email    EmailConfig
}

// EmailConfig holds escalation digest delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	DigestTo    string `mapstructure:"digest_to"`
}

// QueueConfig holds document processing worker settings.
type QueueConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ParserProviderConfig holds settings for a single LLM extraction provider.
type ParserProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ParserConfig holds LLM extraction settings with primary/fallback support.
type ParserConfig struct {
	Primary  ParserProviderConfig `mapstructure:"primary"`
	Fallback ParserProviderConfig `mapstructure:"fallback"`
}

// PrimaryConfig returns the primary extraction provider config, or nil if not configured.
func (p *ParserConfig) PrimaryConfig() *ParserProviderConfig {
	if p.Primary.Provider != "" {
		return &p.Primary
	}
	return nil
}

// FallbackConfig returns the fallback extraction provider config, or nil if not configured.
func (p *ParserConfig) FallbackConfig() *ParserProviderConfig {
	if p.Fallback.Provider != "" {
		return &p.Fallback
	}
	return nil
}

// LookupConfig holds auxiliary unit resolution settings.
type LookupConfig struct {
	Enabled   bool                 `mapstructure:"enabled"`
	CachePath string               `mapstructure:"cache_path"`
	Provider  ParserProviderConfig `mapstructure:"provider"`
}

// ProviderConfig returns the resolution provider config, or nil if not configured.
func (l *LookupConfig) ProviderConfig() *ParserProviderConfig {
	if l.Provider.Provider != "" {
		return &l.Provider
	}
	return nil
}

// PipelineConfig holds the tuned extraction and normalization constants.
type PipelineConfig struct {
	PriceTolerance       float64 `mapstructure:"price_tolerance"`
	MinLineLength        int     `mapstructure:"min_line_length"`
	MaxDescriptionTokens int     `mapstructure:"max_description_tokens"`
	TailExclusion        int     `mapstructure:"tail_exclusion"`
	MinConfidence        float64 `mapstructure:"min_confidence"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
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

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the ITEMIZE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ITEMIZE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "itemize")
	v.SetDefault("db.password", "itemize_secret")
	v.SetDefault("db.name", "itemize_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "itemize-documents")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 50)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Queue defaults
	v.SetDefault("queue.concurrency", 4)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@itemize.local")
	v.SetDefault("email.from_name", "Itemize")
	v.SetDefault("email.digest_to", "")

	// Parser provider defaults
	v.SetDefault("parser.primary.provider", "")
	v.SetDefault("parser.primary.api_key", "")
	v.SetDefault("parser.primary.default_model", "")
	v.SetDefault("parser.primary.max_retries", 2)
	v.SetDefault("parser.primary.timeout_secs", 120)
	v.SetDefault("parser.fallback.provider", "")
	v.SetDefault("parser.fallback.api_key", "")
	v.SetDefault("parser.fallback.default_model", "")
	v.SetDefault("parser.fallback.max_retries", 2)
	v.SetDefault("parser.fallback.timeout_secs", 120)

	// Lookup defaults
	v.SetDefault("lookup.enabled", true)
	v.SetDefault("lookup.cache_path", "")
	v.SetDefault("lookup.provider.provider", "")
	v.SetDefault("lookup.provider.api_key", "")
	v.SetDefault("lookup.provider.default_model", "")
	v.SetDefault("lookup.provider.max_retries", 2)
	v.SetDefault("lookup.provider.timeout_secs", 60)

	// Pipeline defaults, tuned on a sampled document set
	v.SetDefault("pipeline.price_tolerance", 0.05)
	v.SetDefault("pipeline.min_line_length", 10)
	v.SetDefault("pipeline.max_description_tokens", 5)
	v.SetDefault("pipeline.tail_exclusion", 3)
	v.SetDefault("pipeline.min_confidence", 0.6)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                     "ITEMIZE_SERVER_PORT",
		"server.read_timeout":             "ITEMIZE_SERVER_READ_TIMEOUT",
		"server.write_timeout":            "ITEMIZE_SERVER_WRITE_TIMEOUT",
		"server.environment":              "ITEMIZE_SERVER_ENVIRONMENT",
		"db.host":                         "ITEMIZE_DB_HOST",
		"db.port":                         "ITEMIZE_DB_PORT",
		"db.user":                         "ITEMIZE_DB_USER",
		"db.password":                     "ITEMIZE_DB_PASSWORD",
		"db.name":                         "ITEMIZE_DB_NAME",
		"db.sslmode":                      "ITEMIZE_DB_SSLMODE",
		"db.max_open":                     "ITEMIZE_DB_MAX_OPEN",
		"db.max_idle":                     "ITEMIZE_DB_MAX_IDLE",
		"s3.region":                       "ITEMIZE_S3_REGION",
		"s3.bucket":                       "ITEMIZE_S3_BUCKET",
		"s3.endpoint":                     "ITEMIZE_S3_ENDPOINT",
		"s3.access_key":                   "ITEMIZE_S3_ACCESS_KEY",
		"s3.secret_key":                   "ITEMIZE_S3_SECRET_KEY",
		"s3.max_file_size_mb":             "ITEMIZE_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":               "ITEMIZE_S3_PRESIGN_EXPIRY",
		"log.level":                       "ITEMIZE_LOG_LEVEL",
		"log.format":                      "ITEMIZE_LOG_FORMAT",
		"cors.allowed_origins":            "ITEMIZE_CORS_ALLOWED_ORIGINS",
		"queue.concurrency":               "ITEMIZE_QUEUE_CONCURRENCY",
		"parser.primary.provider":         "ITEMIZE_PARSER_PRIMARY_PROVIDER",
		"parser.primary.api_key":          "ITEMIZE_PARSER_PRIMARY_API_KEY",
		"parser.primary.default_model":    "ITEMIZE_PARSER_PRIMARY_DEFAULT_MODEL",
		"parser.primary.max_retries":      "ITEMIZE_PARSER_PRIMARY_MAX_RETRIES",
		"parser.primary.timeout_secs":     "ITEMIZE_PARSER_PRIMARY_TIMEOUT_SECS",
		"parser.fallback.provider":        "ITEMIZE_PARSER_FALLBACK_PROVIDER",
		"parser.fallback.api_key":         "ITEMIZE_PARSER_FALLBACK_API_KEY",
		"parser.fallback.default_model":   "ITEMIZE_PARSER_FALLBACK_DEFAULT_MODEL",
		"parser.fallback.max_retries":     "ITEMIZE_PARSER_FALLBACK_MAX_RETRIES",
		"parser.fallback.timeout_secs":    "ITEMIZE_PARSER_FALLBACK_TIMEOUT_SECS",
		"lookup.enabled":                  "ITEMIZE_LOOKUP_ENABLED",
		"lookup.cache_path":               "ITEMIZE_LOOKUP_CACHE_PATH",
		"lookup.provider.provider":        "ITEMIZE_LOOKUP_PROVIDER_PROVIDER",
		"lookup.provider.api_key":         "ITEMIZE_LOOKUP_PROVIDER_API_KEY",
		"lookup.provider.default_model":   "ITEMIZE_LOOKUP_PROVIDER_DEFAULT_MODEL",
		"lookup.provider.max_retries":     "ITEMIZE_LOOKUP_PROVIDER_MAX_RETRIES",
		"lookup.provider.timeout_secs":    "ITEMIZE_LOOKUP_PROVIDER_TIMEOUT_SECS",
		"pipeline.price_tolerance":        "ITEMIZE_PIPELINE_PRICE_TOLERANCE",
		"pipeline.min_line_length":        "ITEMIZE_PIPELINE_MIN_LINE_LENGTH",
		"pipeline.max_description_tokens": "ITEMIZE_PIPELINE_MAX_DESCRIPTION_TOKENS",
		"pipeline.tail_exclusion":         "ITEMIZE_PIPELINE_TAIL_EXCLUSION",
		"pipeline.min_confidence":         "ITEMIZE_PIPELINE_MIN_CONFIDENCE",
		"email.provider":                  "ITEMIZE_EMAIL_PROVIDER",
		"email.region":                    "ITEMIZE_EMAIL_REGION",
		"email.from_address":              "ITEMIZE_EMAIL_FROM_ADDRESS",
		"email.from_name":                 "ITEMIZE_EMAIL_FROM_NAME",
		"email.digest_to":                 "ITEMIZE_EMAIL_DIGEST_TO",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if ITEMIZE_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("ITEMIZE_SERVER_PORT") == "" {
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
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: strings.Split(v.GetString("cors.allowed_origins"), ","),
	}
	cfg.Queue = QueueConfig{
		Concurrency: v.GetInt("queue.concurrency"),
	}
	cfg.Parser = ParserConfig{
		Primary: ParserProviderConfig{
			Provider:     v.GetString("parser.primary.provider"),
			APIKey:       v.GetString("parser.primary.api_key"),
			DefaultModel: v.GetString("parser.primary.default_model"),
			MaxRetries:   v.GetInt("parser.primary.max_retries"),
			TimeoutSecs:  v.GetInt("parser.primary.timeout_secs"),
		},
		Fallback: ParserProviderConfig{
			Provider:     v.GetString("parser.fallback.provider"),
			APIKey:       v.GetString("parser.fallback.api_key"),
			DefaultModel: v.GetString("parser.fallback.default_model"),
			MaxRetries:   v.GetInt("parser.fallback.max_retries"),
			TimeoutSecs:  v.GetInt("parser.fallback.timeout_secs"),
		},
	}
	cfg.Lookup = LookupConfig{
		Enabled:   v.GetBool("lookup.enabled"),
		CachePath: v.GetString("lookup.cache_path"),
		Provider: ParserProviderConfig{
			Provider:     v.GetString("lookup.provider.provider"),
			APIKey:       v.GetString("lookup.provider.api_key"),
			DefaultModel: v.GetString("lookup.provider.default_model"),
			MaxRetries:   v.GetInt("lookup.provider.max_retries"),
			TimeoutSecs:  v.GetInt("lookup.provider.timeout_secs"),
		},
	}
	cfg.Pipeline = PipelineConfig{
		PriceTolerance:       v.GetFloat64("pipeline.price_tolerance"),
		MinLineLength:        v.GetInt("pipeline.min_line_length"),
		MaxDescriptionTokens: v.GetInt("pipeline.max_description_tokens"),
		TailExclusion:        v.GetInt("pipeline.tail_exclusion"),
		MinConfidence:        v.GetFloat64("pipeline.min_confidence"),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		DigestTo:    v.GetString("email.digest_to"),
	}

	return cfg, nil
}
