package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the process configuration, read from the environment (and an
// optional .env file).
type Config struct {
	Port           string `mapstructure:"port"`
	DBDriver       string `mapstructure:"db_driver"`
	DatabaseURL    string `mapstructure:"database_url"`
	DBHost         string `mapstructure:"db_host"`
	DBPort         string `mapstructure:"db_port"`
	DBUser         string `mapstructure:"db_user"`
	DBPassword     string `mapstructure:"db_password"`
	DBName         string `mapstructure:"db_name"`
	SQLitePath     string `mapstructure:"sqlite_path"`
	JWTSecret      string `mapstructure:"jwt_secret"`
	JWTTTLHours    int    `mapstructure:"jwt_ttl_hours"`
	PermissionsDir string `mapstructure:"permissions_dir"`
	LogLevel       string `mapstructure:"log_level"`
	CORSOrigins    string `mapstructure:"cors_origins"`
}

const defaultJWTSecret = "your-super-secret-key-change-in-production"

var keys = []string{
	"port", "db_driver", "database_url", "db_host", "db_port", "db_user",
	"db_password", "db_name", "sqlite_path", "jwt_secret", "jwt_ttl_hours",
	"permissions_dir", "log_level", "cors_origins",
}

// Load reads .env (when present) and the environment. The returned bool
// reports whether a .env file was found so the caller can log it once the
// logger exists.
func Load() (*Config, bool, error) {
	envFound := godotenv.Load() == nil

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "3000")
	v.SetDefault("db_driver", "postgres")
	v.SetDefault("db_port", "5432")
	v.SetDefault("sqlite_path", "taskhub.db")
	v.SetDefault("jwt_secret", defaultJWTSecret)
	v.SetDefault("jwt_ttl_hours", 24)
	v.SetDefault("permissions_dir", "permissions")
	v.SetDefault("log_level", "info")
	v.SetDefault("cors_origins", "*")

	// AutomaticEnv only resolves keys viper already knows about.
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, envFound, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, envFound, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, envFound, err
	}
	return &cfg, envFound, nil
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.JWTTTLHours <= 0 {
		return fmt.Errorf("JWT_TTL_HOURS must be positive")
	}
	return nil
}

// InsecureSecret reports whether the built-in development secret is in use.
func (c *Config) InsecureSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}
