package config

import (
	"context"
	"encoding/json"
	"time"
)

// Config is the complete defaultdesk configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"     validate:"required"`
	Database   DatabaseConfig   `koanf:"database"   validate:"required"`
	Redis      RedisConfig      `koanf:"redis"`
	Auth       AuthConfig       `koanf:"auth"       validate:"required"`
	Storage    StorageConfig    `koanf:"storage"    validate:"required"`
	Audit      AuditConfig      `koanf:"audit"      validate:"required"`
	Timeouts   TimeoutsConfig   `koanf:"timeouts"   validate:"required"`
	Search     SearchConfig     `koanf:"search"     validate:"required"`
	RateLimit  RateLimitConfig  `koanf:"ratelimit"`
	Monitoring MonitoringConfig `koanf:"monitoring"`
	Runtime    RuntimeConfig    `koanf:"runtime"    validate:"required"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"             validate:"required"        env:"SERVER_HOST"`
	Port            int           `koanf:"port"             validate:"min=1,max=65535" env:"SERVER_PORT"`
	CORS            CORSConfig    `koanf:"cors"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"min=0"           env:"SERVER_SHUTDOWN_TIMEOUT"`
	// MaxUploadBytes caps the multipart body accepted by the attachment endpoint.
	MaxUploadBytes int64 `koanf:"max_upload_bytes" validate:"min=1" env:"SERVER_MAX_UPLOAD_BYTES"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"   env:"SERVER_CORS_ALLOWED_ORIGINS"   validate:"dive,origin"`
	AllowCredentials bool     `koanf:"allow_credentials" env:"SERVER_CORS_ALLOW_CREDENTIALS"`
	MaxAge           int      `koanf:"max_age"           env:"SERVER_CORS_MAX_AGE"`
}

type DatabaseConfig struct {
	ConnString      string          `koanf:"conn_string"        env:"DB_CONN_STRING"`
	Host            string          `koanf:"host"               env:"DB_HOST"`
	Port            string          `koanf:"port"               env:"DB_PORT"`
	User            string          `koanf:"user"               env:"DB_USER"`
	Password        SensitiveString `koanf:"password"           env:"DB_PASSWORD"           sensitive:"true"`
	DBName          string          `koanf:"name"               env:"DB_NAME"`
	SSLMode         string          `koanf:"ssl_mode"           env:"DB_SSL_MODE"`
	MaxOpenConns    int             `koanf:"max_open_conns"     env:"DB_MAX_OPEN_CONNS"     validate:"min=1"`
	MaxIdleConns    int             `koanf:"max_idle_conns"     env:"DB_MAX_IDLE_CONNS"     validate:"min=0"`
	ConnMaxLifetime time.Duration   `koanf:"conn_max_lifetime"  env:"DB_CONN_MAX_LIFETIME"`
	ConnMaxIdleTime time.Duration   `koanf:"conn_max_idle_time" env:"DB_CONN_MAX_IDLE_TIME"`
	PingTimeout     time.Duration   `koanf:"ping_timeout"       env:"DB_PING_TIMEOUT"`
	ConnectRetries  uint64          `koanf:"connect_retries"    env:"DB_CONNECT_RETRIES"`
	AutoMigrate     bool            `koanf:"auto_migrate"       env:"DB_AUTO_MIGRATE"`
}

type RedisConfig struct {
	Enabled      bool            `koanf:"enabled"       env:"REDIS_ENABLED"`
	URL          string          `koanf:"url"           env:"REDIS_URL"`
	Host         string          `koanf:"host"          env:"REDIS_HOST"`
	Port         string          `koanf:"port"          env:"REDIS_PORT"`
	Password     SensitiveString `koanf:"password"      env:"REDIS_PASSWORD"      sensitive:"true"`
	DB           int             `koanf:"db"            env:"REDIS_DB"            validate:"min=0"`
	PoolSize     int             `koanf:"pool_size"     env:"REDIS_POOL_SIZE"     validate:"min=0"`
	DialTimeout  time.Duration   `koanf:"dial_timeout"  env:"REDIS_DIAL_TIMEOUT"`
	ReadTimeout  time.Duration   `koanf:"read_timeout"  env:"REDIS_READ_TIMEOUT"`
	WriteTimeout time.Duration   `koanf:"write_timeout" env:"REDIS_WRITE_TIMEOUT"`
	PingTimeout  time.Duration   `koanf:"ping_timeout"  env:"REDIS_PING_TIMEOUT"`
}

type AuthConfig struct {
	SessionTTL      time.Duration `koanf:"session_ttl"       env:"AUTH_SESSION_TTL"       validate:"min=1m"`
	SessionCacheTTL time.Duration `koanf:"session_cache_ttl" env:"AUTH_SESSION_CACHE_TTL"`
	BcryptCost      int           `koanf:"bcrypt_cost"       env:"AUTH_BCRYPT_COST"       validate:"min=4,max=31"`
	// Bootstrap seeds the first admin when the users table is empty.
	BootstrapEmail    string          `koanf:"bootstrap_email"    env:"AUTH_BOOTSTRAP_EMAIL"    validate:"omitempty,email"`
	BootstrapPassword SensitiveString `koanf:"bootstrap_password" env:"AUTH_BOOTSTRAP_PASSWORD" sensitive:"true"`
}

type StorageConfig struct {
	Driver        string        `koanf:"driver"         env:"STORAGE_DRIVER"         validate:"oneof=local s3"`
	LocalDir      string        `koanf:"local_dir"      env:"STORAGE_LOCAL_DIR"`
	PublicBaseURL string        `koanf:"public_base_url" env:"STORAGE_PUBLIC_BASE_URL"`
	PresignExpiry time.Duration `koanf:"presign_expiry" env:"STORAGE_PRESIGN_EXPIRY"`
	RetryAttempts uint64        `koanf:"retry_attempts" env:"STORAGE_RETRY_ATTEMPTS"`
	// SigningKey signs local download links. Empty means a per-process key.
	SigningKey SensitiveString `koanf:"signing_key" env:"STORAGE_SIGNING_KEY" sensitive:"true"`
	S3         S3Config        `koanf:"s3"`
}

type S3Config struct {
	Bucket          string          `koanf:"bucket"            env:"S3_BUCKET"`
	Region          string          `koanf:"region"            env:"S3_REGION"`
	Endpoint        string          `koanf:"endpoint"          env:"S3_ENDPOINT"`
	AccessKeyID     string          `koanf:"access_key_id"     env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey SensitiveString `koanf:"secret_access_key" env:"S3_SECRET_ACCESS_KEY" sensitive:"true"`
	UsePathStyle    bool            `koanf:"use_path_style"    env:"S3_USE_PATH_STYLE"`
}

type AuditConfig struct {
	Driver     string `koanf:"driver"        env:"AUDIT_DRIVER"        validate:"oneof=postgres sqlite"`
	SQLitePath string `koanf:"sqlite_path"   env:"AUDIT_SQLITE_PATH"`
	// HTTPRequests adds an access row per mutating request next to the
	// domain entry. Off by default so each write audits once.
	HTTPRequests bool `koanf:"http_requests" env:"AUDIT_HTTP_REQUESTS"`
}

// TimeoutsConfig bounds every I/O step taken on behalf of a request.
type TimeoutsConfig struct {
	Operation time.Duration `koanf:"operation" env:"TIMEOUT_OPERATION" validate:"min=1ms"`
	Lock      time.Duration `koanf:"lock"      env:"TIMEOUT_LOCK"      validate:"min=1ms"`
	Blob      time.Duration `koanf:"blob"      env:"TIMEOUT_BLOB"      validate:"min=1ms"`
	Auth      time.Duration `koanf:"auth"      env:"TIMEOUT_AUTH"      validate:"min=1ms"`
}

type SearchConfig struct {
	DefaultLimit int `koanf:"default_limit" env:"SEARCH_DEFAULT_LIMIT" validate:"min=1"`
	MaxLimit     int `koanf:"max_limit"     env:"SEARCH_MAX_LIMIT"     validate:"min=1"`
}

type RateLimitConfig struct {
	Enabled  bool       `koanf:"enabled"   env:"RATELIMIT_ENABLED"`
	Login    RateConfig `koanf:"login"`
	Prefix   string     `koanf:"prefix"    env:"RATELIMIT_PREFIX"`
	UseRedis bool       `koanf:"use_redis" env:"RATELIMIT_USE_REDIS"`
}

type RateConfig struct {
	Limit  int64         `koanf:"limit"  env:"RATELIMIT_LOGIN_LIMIT"  validate:"min=0"`
	Period time.Duration `koanf:"period" env:"RATELIMIT_LOGIN_PERIOD"`
}

type MonitoringConfig struct {
	Enabled bool   `koanf:"enabled" env:"MONITORING_ENABLED"`
	Path    string `koanf:"path"    env:"MONITORING_PATH"`
}

type RuntimeConfig struct {
	Environment string `koanf:"environment" validate:"oneof=development staging production" env:"RUNTIME_ENVIRONMENT"`
	LogLevel    string `koanf:"log_level"   validate:"oneof=debug info warn error"          env:"RUNTIME_LOG_LEVEL"`
}

// Service loads and validates configuration from a set of sources.
type Service interface {
	Load(ctx context.Context, sources ...Source) (*Config, error)
	Validate(cfg *Config) error
	GetSource(key string) SourceType
}

// Source is one layer of configuration input.
type Source interface {
	Load() (map[string]any, error)
	Watch(ctx context.Context, callback func()) error
	Type() SourceType
	Close() error
}

type SourceType string

const (
	SourceDefault SourceType = "default"
	SourceYAML    SourceType = "yaml"
	SourceEnv     SourceType = "env"
	SourceCLI     SourceType = "cli"
)

// Metadata records which source supplied each key.
type Metadata struct {
	Sources  map[string]SourceType
	LoadedAt time.Time
}

// SensitiveString keeps secrets out of logs and JSON dumps.
type SensitiveString string

const redacted = "[REDACTED]"

func (s SensitiveString) String() string {
	if s == "" {
		return ""
	}
	return redacted
}

func (s SensitiveString) Value() string {
	return string(s)
}

func (s SensitiveString) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *SensitiveString) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = SensitiveString(v)
	return nil
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5001,
			ShutdownTimeout: 5 * time.Second,
			MaxUploadBytes:  20 << 20,
			CORS: CORSConfig{
				AllowedOrigins:   []string{"http://localhost:5173"},
				AllowCredentials: true,
				MaxAge:           86400,
			},
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            "5432",
			User:            "postgres",
			Password:        "",
			DBName:          "defaultdesk",
			SSLMode:         "disable",
			MaxOpenConns:    20,
			MaxIdleConns:    4,
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			PingTimeout:     5 * time.Second,
			ConnectRetries:  5,
			AutoMigrate:     true,
		},
		Redis: RedisConfig{
			Enabled:      false,
			Host:         "localhost",
			Port:         "6379",
			PoolSize:     10,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PingTimeout:  2 * time.Second,
		},
		Auth: AuthConfig{
			SessionTTL:        12 * time.Hour,
			SessionCacheTTL:   30 * time.Second,
			BcryptCost:        10,
			BootstrapEmail:    "admin@example.com",
			BootstrapPassword: "admin123",
		},
		Storage: StorageConfig{
			Driver:        "local",
			LocalDir:      "./uploads",
			PublicBaseURL: "/files",
			PresignExpiry: time.Hour,
			RetryAttempts: 3,
			S3:            S3Config{Region: "us-east-1"},
		},
		Audit: AuditConfig{
			Driver:       "postgres",
			SQLitePath:   "./audit.db",
			HTTPRequests: false,
		},
		Timeouts: TimeoutsConfig{
			Operation: 5 * time.Second,
			Lock:      2 * time.Second,
			Blob:      15 * time.Second,
			Auth:      3 * time.Second,
		},
		Search: SearchConfig{
			DefaultLimit: 50,
			MaxLimit:     200,
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			Login:   RateConfig{Limit: 10, Period: time.Minute},
			Prefix:  "defaultdesk:ratelimit:",
		},
		Monitoring: MonitoringConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Runtime: RuntimeConfig{
			Environment: "development",
			LogLevel:    "info",
		},
	}
}
