package config

import (
	"fmt"
	"time"

	"github.com/creasty/defaults"
	"github.com/spf13/viper"
)

// Config represents the API server configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Passkey  PasskeyConfig  `mapstructure:"passkey"`
	Wallet   WalletConfig   `mapstructure:"wallet"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Onramp   OnrampConfig   `mapstructure:"onramp"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Shutdown ShutdownConfig `mapstructure:"shutdown"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host" default:"0.0.0.0"`
	Port            int           `mapstructure:"port" default:"8080"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" default:"30s"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" default:"30s"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" default:"60s"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" default:"30s"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host     string `mapstructure:"host" default:"localhost"`
	Port     int    `mapstructure:"port" default:"5432"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database" default:"yuki_api"`
	SSLMode  string `mapstructure:"ssl_mode" default:"disable"`
}

// AuthConfig contains session token settings
type AuthConfig struct {
	// TokenSecret is the HMAC key used to sign session tokens.
	TokenSecret string        `mapstructure:"token_secret"`
	Issuer      string        `mapstructure:"issuer" default:"yuki"`
	SessionTTL  time.Duration `mapstructure:"session_ttl" default:"24h"`
	// LoginPath is where unauthenticated protected requests are redirected.
	LoginPath string `mapstructure:"login_path" default:"/login"`
}

// PasskeyConfig contains WebAuthn relying-party settings
type PasskeyConfig struct {
	RPID         string        `mapstructure:"rp_id"`
	Origin       string        `mapstructure:"origin"`
	ChallengeTTL time.Duration `mapstructure:"challenge_ttl" default:"5m"`
}

// WalletConfig contains wallet envelope settings
type WalletConfig struct {
	ChainID int64 `mapstructure:"chain_id" default:"1"`
}

// UploadConfig contains image upload limits and blob storage settings
type UploadConfig struct {
	MaxAvatarBytes int64  `mapstructure:"max_avatar_bytes" default:"4194304"`
	MaxBannerBytes int64  `mapstructure:"max_banner_bytes" default:"8388608"`
	BlobDir        string `mapstructure:"blob_dir" default:"./data/blobs"`
	BlobBaseURL    string `mapstructure:"blob_base_url" default:"/static/blobs"`
}

// OnrampConfig contains fiat onramp provider settings
type OnrampConfig struct {
	Coinbase CoinbaseOnrampConfig `mapstructure:"coinbase"`
}

// CoinbaseOnrampConfig contains Coinbase Onramp settings
type CoinbaseOnrampConfig struct {
	AppID         string        `mapstructure:"app_id"`
	BaseURL       string        `mapstructure:"base_url" default:"https://pay.coinbase.com/buy/select-asset"`
	SessionSecret string        `mapstructure:"session_secret"`
	SessionTTL    time.Duration `mapstructure:"session_ttl" default:"10m"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level" default:"info"`
	Format     string `mapstructure:"format" default:"json"`
	OutputPath string `mapstructure:"output_path" default:"stdout"`
}

// ShutdownConfig contains graceful shutdown settings
type ShutdownConfig struct {
	Timeout time.Duration `mapstructure:"timeout" default:"30s"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := defaults.Set(&config); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func validate(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if config.Auth.TokenSecret == "" {
		return fmt.Errorf("auth.token_secret is required")
	}
	if config.Passkey.RPID == "" {
		return fmt.Errorf("passkey.rp_id is required")
	}
	if config.Passkey.Origin == "" {
		return fmt.Errorf("passkey.origin is required")
	}
	return nil
}

// GetConnectionString returns a PostgreSQL connection string
func (c *DatabaseConfig) GetConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
