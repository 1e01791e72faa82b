package config

import (
	"fmt"
	"time"
)

// Config holds the application settings.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis_service"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Upload     UploadConfig     `mapstructure:"upload"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Log        LogConfig        `mapstructure:"log"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	BasePath       string `mapstructure:"base_path"`
	ProductionMode bool   `mapstructure:"production_mode"`
}

// GetAddress returns host:port.
func (s *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// DatabaseConfig selects the store backing users and datasets.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

// RedisConfig Redis settings. Redis is optional and only backs the stream limiter.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	DB       int    `mapstructure:"db"`
	Password string `mapstructure:"password"`
}

// GetAddress returns host:port.
func (r *RedisConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig token signing settings
type JWTConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	Algorithm     string `mapstructure:"algorithm"`
	ExpireMinutes int    `mapstructure:"expire_minutes"`
}

// GetExpireDuration returns the token validity window.
func (j *JWTConfig) GetExpireDuration() time.Duration {
	return time.Duration(j.ExpireMinutes) * time.Minute
}

// UploadConfig controls where uploaded files land and how large they may be.
type UploadConfig struct {
	Dir       string `mapstructure:"dir"`
	MaxSizeMB int    `mapstructure:"max_size_mb"`
}

// GetMaxBytes returns the upload cap in bytes.
func (u *UploadConfig) GetMaxBytes() int64 {
	return int64(u.MaxSizeMB) << 20
}

// SimulationConfig push stream settings
type SimulationConfig struct {
	IntervalMS        int `mapstructure:"interval_ms"`
	MaxStreamsPerUser int `mapstructure:"max_streams_per_user"`
}

// GetInterval returns the delay between two stream events.
func (s *SimulationConfig) GetInterval() time.Duration {
	return time.Duration(s.IntervalMS) * time.Millisecond
}

// CORSConfig CORS settings
type CORSConfig struct {
	Origins          []string `mapstructure:"origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	AllowMethods     []string `mapstructure:"allow_methods"`
	AllowHeaders     []string `mapstructure:"allow_headers"`
}

// LogConfig logging settings
type LogConfig struct {
	Level string `mapstructure:"level"`
}
