package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// ErrMissingSecret is fatal: the service cannot issue or verify tokens without it.
var ErrMissingSecret = errors.New("JWT_SECRET is required")

type Config struct {
	ServerPort     string
	RequestTimeout time.Duration
	Storage        string
	DatabaseURL    string
	RedisURL       string
	JWTSecret      string
	JWTIssuer      string
	JWTAudience    string
	JWTExpiry      time.Duration
	AdminPassword  string
	BcryptCost     int
	LogLevel       string
}

// fileConfig mirrors Config for the optional YAML file named by CONFIG_FILE.
type fileConfig struct {
	Server struct {
		Port           string `yaml:"port"`
		RequestTimeout string `yaml:"requestTimeout"`
	} `yaml:"server"`
	Storage struct {
		Driver      string `yaml:"driver"`
		DatabaseURL string `yaml:"databaseUrl"`
		RedisURL    string `yaml:"redisUrl"`
	} `yaml:"storage"`
	JWT struct {
		Secret        string `yaml:"secret"`
		Issuer        string `yaml:"issuer"`
		Audience      string `yaml:"audience"`
		ExpireMinutes int    `yaml:"expireMinutes"`
	} `yaml:"jwt"`
	Bootstrap struct {
		AdminPassword string `yaml:"adminPassword"`
	} `yaml:"bootstrap"`
	Security struct {
		BcryptCost int `yaml:"bcryptCost"`
	} `yaml:"security"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

func defaults() map[string]string {
	return map[string]string{
		"SERVER_PORT":        "8080",
		"REQUEST_TIMEOUT":    "15s",
		"STORAGE":            StoragePostgres,
		"JWT_ISSUER":         "accountsvc",
		"JWT_AUDIENCE":       "accountsvc-clients",
		"JWT_EXPIRE_MINUTES": "60",
		"ADMIN_PASSWORD":     "Admin123",
		"BCRYPT_COST":        "12",
		"LOG_LEVEL":          "info",
	}
}

// LoadConfig resolves settings from defaults, then the YAML file named by
// CONFIG_FILE, then the environment (highest precedence).
func LoadConfig() (*Config, error) {
	values := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := overlayFile(values, path); err != nil {
			return nil, err
		}
	}

	for key := range envKeys {
		if v := os.Getenv(key); v != "" {
			values[key] = v
		}
	}

	return build(values)
}

var envKeys = map[string]struct{}{
	"SERVER_PORT": {}, "REQUEST_TIMEOUT": {}, "STORAGE": {}, "DATABASE_URL": {}, "REDIS_URL": {},
	"JWT_SECRET": {}, "JWT_ISSUER": {}, "JWT_AUDIENCE": {}, "JWT_EXPIRE_MINUTES": {},
	"ADMIN_PASSWORD": {}, "BCRYPT_COST": {}, "LOG_LEVEL": {},
}

func overlayFile(values map[string]string, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	set := func(key, v string) {
		if v != "" {
			values[key] = v
		}
	}
	set("SERVER_PORT", fc.Server.Port)
	set("REQUEST_TIMEOUT", fc.Server.RequestTimeout)
	set("STORAGE", fc.Storage.Driver)
	set("DATABASE_URL", fc.Storage.DatabaseURL)
	set("REDIS_URL", fc.Storage.RedisURL)
	set("JWT_SECRET", fc.JWT.Secret)
	set("JWT_ISSUER", fc.JWT.Issuer)
	set("JWT_AUDIENCE", fc.JWT.Audience)
	if fc.JWT.ExpireMinutes != 0 {
		values["JWT_EXPIRE_MINUTES"] = strconv.Itoa(fc.JWT.ExpireMinutes)
	}
	set("ADMIN_PASSWORD", fc.Bootstrap.AdminPassword)
	if fc.Security.BcryptCost != 0 {
		values["BCRYPT_COST"] = strconv.Itoa(fc.Security.BcryptCost)
	}
	set("LOG_LEVEL", fc.Logging.Level)
	return nil
}

func build(values map[string]string) (*Config, error) {
	expireMinutes, err := strconv.Atoi(values["JWT_EXPIRE_MINUTES"])
	if err != nil || expireMinutes <= 0 {
		return nil, errors.New("JWT_EXPIRE_MINUTES must be a positive integer")
	}

	timeout, err := time.ParseDuration(values["REQUEST_TIMEOUT"])
	if err != nil || timeout <= 0 {
		return nil, errors.New("invalid REQUEST_TIMEOUT format")
	}

	cost, err := strconv.Atoi(values["BCRYPT_COST"])
	if err != nil {
		return nil, errors.New("BCRYPT_COST must be an integer")
	}

	cfg := &Config{
		ServerPort:     values["SERVER_PORT"],
		RequestTimeout: timeout,
		Storage:        values["STORAGE"],
		DatabaseURL:    values["DATABASE_URL"],
		RedisURL:       values["REDIS_URL"],
		JWTSecret:      values["JWT_SECRET"],
		JWTIssuer:      values["JWT_ISSUER"],
		JWTAudience:    values["JWT_AUDIENCE"],
		JWTExpiry:      time.Duration(expireMinutes) * time.Minute,
		AdminPassword:  values["ADMIN_PASSWORD"],
		BcryptCost:     cost,
		LogLevel:       values["LOG_LEVEL"],
	}

	// Validate required fields
	if cfg.JWTSecret == "" {
		return nil, ErrMissingSecret
	}
	switch cfg.Storage {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required")
		}
	case StorageMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE %q", cfg.Storage)
	}

	return cfg, nil
}
