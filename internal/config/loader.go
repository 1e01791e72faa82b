package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig reads configFile (when it exists) and the environment.
// A missing file is not an error: defaults plus environment are enough to boot.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" && fileExists(configFile) {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)

	v.SetEnvPrefix("WORKFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Plain PORT and JWT_SECRET are what most hosting platforms set.
	_ = v.BindEnv("server.port", "WORKFLOW_SERVER_PORT", "PORT")
	_ = v.BindEnv("jwt.secret_key", "WORKFLOW_JWT_SECRET_KEY", "JWT_SECRET")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every key so that environment overrides reach Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.base_path", "/api")
	v.SetDefault("server.production_mode", false)

	v.SetDefault("database.driver", DriverMemory)
	v.SetDefault("database.path", "./database/workflow.db")

	v.SetDefault("redis_service.enabled", false)
	v.SetDefault("redis_service.host", "localhost")
	v.SetDefault("redis_service.port", 6379)
	v.SetDefault("redis_service.db", 0)
	v.SetDefault("redis_service.password", "")

	v.SetDefault("jwt.secret_key", "")
	v.SetDefault("jwt.algorithm", "HS256")
	v.SetDefault("jwt.expire_minutes", 7*24*60)

	v.SetDefault("upload.dir", filepath.Join(os.TempDir(), "workflow-uploads"))
	v.SetDefault("upload.max_size_mb", 32)

	v.SetDefault("simulation.interval_ms", 1000)
	v.SetDefault("simulation.max_streams_per_user", 3)

	v.SetDefault("cors.origins", []string{"*"})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.allow_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allow_headers", []string{"Authorization", "Content-Type"})

	v.SetDefault("log.level", "info")
}

func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	if cfg.JWT.SecretKey == "" {
		return errors.New("jwt secret key must not be empty")
	}
	if cfg.JWT.ExpireMinutes <= 0 {
		return fmt.Errorf("invalid jwt expiry: %d minutes", cfg.JWT.ExpireMinutes)
	}

	if cfg.Upload.MaxSizeMB <= 0 {
		return fmt.Errorf("invalid upload size cap: %d MB", cfg.Upload.MaxSizeMB)
	}
	if cfg.Simulation.IntervalMS <= 0 {
		return fmt.Errorf("invalid simulation interval: %d ms", cfg.Simulation.IntervalMS)
	}
	// 0 disables the per-user stream cap.
	if cfg.Simulation.MaxStreamsPerUser < 0 {
		return fmt.Errorf("invalid stream cap: %d", cfg.Simulation.MaxStreamsPerUser)
	}

	switch cfg.Database.Driver {
	case DriverMemory:
	case DriverSQLite:
		dbDir := filepath.Dir(cfg.Database.Path)
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			return fmt.Errorf("create database directory: %w", err)
		}
	default:
		return fmt.Errorf("unknown database driver: %q", cfg.Database.Driver)
	}

	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		return fmt.Errorf("create upload directory: %w", err)
	}

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
