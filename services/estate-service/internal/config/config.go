package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/vidyaa00/REMS/shared/mailer"
)

// DefaultJWTSecret is used when JWT_SECRET is unset. Deployments must override it.
const DefaultJWTSecret = "your_jwt_secret_key"

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"

	UploadLocal = "local"
	UploadS3    = "s3"
)

type Config struct {
	AppEnv         string   `env:"APP_ENV"              envDefault:"development"`
	HTTPAddr       string   `env:"HTTP_ADDR"            envDefault:":5001"`
	GRPCHealthAddr string   `env:"GRPC_HEALTH_ADDR"`
	LogLevel       string   `env:"LOG_LEVEL"            envDefault:"info"`
	LogPretty      bool     `env:"LOG_PRETTY"           envDefault:"false"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000,http://localhost:5173" envSeparator:","`

	Store     StoreConfig
	Auth      AuthConfig
	Upload    UploadConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Consul    ConsulConfig
	SMTP      mailer.Config
}

type StoreConfig struct {
	Driver   string `env:"DATA_STORE"       envDefault:"mongo"`
	URI      string `env:"MONGODB_URI"      envDefault:"mongodb://localhost:27017"`
	Database string `env:"MONGODB_DATABASE" envDefault:"real-estate"`
}

type AuthConfig struct {
	JWTSecret              string        `env:"JWT_SECRET"`
	JWTIssuer              string        `env:"JWT_ISSUER"                    envDefault:"estate-service"`
	SessionTTL             time.Duration `env:"JWT_EXPIRES_IN"                envDefault:"24h"`
	PasswordResetTTL       time.Duration `env:"PASSWORD_RESET_EXPIRES_IN"     envDefault:"1h"`
	PasswordResetURL       string        `env:"APP_PASSWORD_RESET_URL"        envDefault:"http://localhost:3000/reset-password"`
	AllowAdminRegistration bool          `env:"AUTH_ALLOW_ADMIN_REGISTRATION" envDefault:"true"`
}

type UploadConfig struct {
	Driver   string `env:"UPLOAD_DRIVER"    envDefault:"local"`
	Dir      string `env:"UPLOAD_DIR"       envDefault:"public"`
	MaxBytes int64  `env:"UPLOAD_MAX_BYTES" envDefault:"10485760"`

	S3Bucket        string `env:"S3_BUCKET"`
	S3Region        string `env:"S3_REGION"          envDefault:"us-east-1"`
	S3Endpoint      string `env:"S3_ENDPOINT"`
	S3AccessKey     string `env:"S3_ACCESS_KEY"`
	S3SecretKey     string `env:"S3_SECRET_KEY"`
	S3PublicBaseURL string `env:"S3_PUBLIC_BASE_URL"`
}

type CacheConfig struct {
	RedisURL    string        `env:"REDIS_URL"`
	FeaturedTTL time.Duration `env:"FEATURED_CACHE_TTL" envDefault:"5m"`
}

type RateLimitConfig struct {
	RPS   float64 `env:"RATE_LIMIT_RPS"   envDefault:"5"`
	Burst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`
}

type ConsulConfig struct {
	Addr          string `env:"CONSUL_ADDR"`
	ServiceName   string `env:"CONSUL_SERVICE_NAME"   envDefault:"estate-service"`
	AdvertiseHost string `env:"CONSUL_ADVERTISE_HOST" envDefault:"localhost"`
}

// Load reads an optional .env file and then the process environment.
func Load(logger *zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	return Parse(logger)
}

// Parse reads the configuration from the process environment only.
func Parse(logger *zerolog.Logger) (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Auth.JWTSecret == "" {
		logger.Warn().Msg("JWT_SECRET is not set, falling back to the insecure default secret")
		cfg.Auth.JWTSecret = DefaultJWTSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreMongo, StoreMemory:
	default:
		return fmt.Errorf("DATA_STORE must be %q or %q, got %q", StoreMongo, StoreMemory, c.Store.Driver)
	}

	switch c.Upload.Driver {
	case UploadLocal:
	case UploadS3:
		if c.Upload.S3Bucket == "" {
			return errors.New("S3_BUCKET is required when UPLOAD_DRIVER=s3")
		}
	default:
		return fmt.Errorf("UPLOAD_DRIVER must be %q or %q, got %q", UploadLocal, UploadS3, c.Upload.Driver)
	}

	if c.Upload.MaxBytes <= 0 {
		return errors.New("UPLOAD_MAX_BYTES must be positive")
	}
	if c.Auth.SessionTTL <= 0 || c.Auth.PasswordResetTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	return c.SMTP.Validate()
}
