// Package config loads server configuration from an optional YAML file,
// a .env file and environment variables, in increasing order of priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Config is the root configuration structure.
type Config struct {
	Env     string  `yaml:"env" env:"LOSTFOUND_ENV" env-default:"dev"`
	HTTP    HTTP    `yaml:"http"`
	Storage Storage `yaml:"storage"`
	Auth    Auth    `yaml:"auth"`
	Uploads Uploads `yaml:"uploads"`
	CORS    CORS    `yaml:"cors"`
	Log     Log     `yaml:"log"`
}

type HTTP struct {
	Address string `yaml:"address" env:"LOSTFOUND_ADDR" env-default:":5000"`
}

type Storage struct {
	Driver        string `yaml:"driver" env:"LOSTFOUND_STORAGE" env-default:"sqlite"`
	SQLitePath    string `yaml:"sqlite_path" env:"LOSTFOUND_DB" env-default:"lostfound.db"`
	MongoURI      string `yaml:"mongo_uri" env:"MONGODB_URI"`
	MongoDatabase string `yaml:"mongo_database" env:"MONGODB_DATABASE" env-default:"lostfound"`
}

type Auth struct {
	// JWTSecret overrides the secret persisted in the store when set.
	JWTSecret   string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenExpiry time.Duration `yaml:"token_expiry" env:"JWT_EXPIRE" env-default:"168h"`
	AdminEmail  string        `yaml:"admin_email" env:"LOSTFOUND_ADMIN_EMAIL"`
	AdminName   string        `yaml:"admin_name" env:"LOSTFOUND_ADMIN_NAME" env-default:"Administrator"`
}

type Uploads struct {
	Dir          string `yaml:"dir" env:"LOSTFOUND_UPLOADS" env-default:"uploads"`
	MaxBytes     int64  `yaml:"max_bytes" env:"LOSTFOUND_UPLOAD_MAX_BYTES" env-default:"5242880"`
	MaxDimension int    `yaml:"max_dimension" env:"LOSTFOUND_UPLOAD_MAX_DIMENSION" env-default:"1024"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"LOSTFOUND_CORS_ORIGINS" env-separator:"," env-default:"*"`
}

type Log struct {
	Path   string `yaml:"path" env:"LOSTFOUND_LOG"`
	Format string `yaml:"format" env:"LOSTFOUND_LOG_FORMAT" env-default:"text"`
}

// Load reads configuration. An empty path skips the YAML file and uses
// defaults plus environment. A .env file in the working directory is
// loaded first if present; variables already set in the environment win.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	cfg.Auth.AdminEmail = strings.ToLower(strings.TrimSpace(cfg.Auth.AdminEmail))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and cross-field requirements.
func (c *Config) Validate() error {
	var errs []error

	if c.HTTP.Address == "" {
		errs = append(errs, errors.New("http.address must not be empty"))
	}

	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			errs = append(errs, errors.New("storage.sqlite_path must not be empty"))
		}
	case DriverMongo:
		if c.Storage.MongoURI == "" {
			errs = append(errs, errors.New("storage.mongo_uri is required for the mongo driver"))
		}
		if c.Storage.MongoDatabase == "" {
			errs = append(errs, errors.New("storage.mongo_database must not be empty"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not one of %s, %s", c.Storage.Driver, DriverSQLite, DriverMongo))
	}

	if c.Auth.TokenExpiry <= 0 {
		errs = append(errs, errors.New("auth.token_expiry must be positive"))
	}
	if c.Uploads.Dir == "" {
		errs = append(errs, errors.New("uploads.dir must not be empty"))
	}
	if c.Uploads.MaxBytes <= 0 {
		errs = append(errs, errors.New("uploads.max_bytes must be positive"))
	}
	if c.Uploads.MaxDimension <= 0 {
		errs = append(errs, errors.New("uploads.max_dimension must be positive"))
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of text, json", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
