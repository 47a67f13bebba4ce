package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	Verification VerificationConfig `json:"verification"`
	Providers    ProvidersConfig    `json:"providers"`
	Redis        RedisConfig        `json:"redis"`
	Database     DatabaseConfig     `json:"database"`
	Logging      LoggingConfig      `json:"logging"`
}

// VerificationConfig holds the thresholds and windows applied by the
// verification pipeline.
type VerificationConfig struct {
	AuthenticityThreshold   float64       `json:"authenticity_threshold"`
	DetectionThreshold      float64       `json:"detection_threshold"`
	FaceSimilarityThreshold float64       `json:"face_similarity_threshold"`
	FreshnessWindow         time.Duration `json:"freshness_window"`
	ClockSkewGrace          time.Duration `json:"clock_skew_grace"`
	StageTimeout            time.Duration `json:"stage_timeout"`
	MaxImageBytes           int           `json:"max_image_bytes"`
}

// ProvidersConfig points at the inference services backing the
// evidence providers.
type ProvidersConfig struct {
	AuthenticityURL string        `json:"authenticity_url"`
	ActivityURL     string        `json:"activity_url"`
	FaceURL         string        `json:"face_url"`
	Timeout         time.Duration `json:"timeout"`
}

// RedisConfig configures the duplicate-submission guard backend.
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// DatabaseConfig configures the eco-points ledger store.
type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

// LoggingConfig
type LoggingConfig struct {
	Level string `json:"level"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Default config
	config := &Config{
		Verification: VerificationConfig{
			AuthenticityThreshold:   0.5,
			DetectionThreshold:      0.5,
			FaceSimilarityThreshold: 0.6,
			FreshnessWindow:         7 * 24 * time.Hour,
			ClockSkewGrace:          5 * time.Minute,
			StageTimeout:            5 * time.Second,
			MaxImageBytes:           10 << 20,
		},
		Providers: ProvidersConfig{
			AuthenticityURL: "http://localhost:8001",
			ActivityURL:     "http://localhost:8002",
			FaceURL:         "http://localhost:8003",
			Timeout:         30 * time.Second,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    os.Getenv("USER"),
			DBName:  "ecoconnect",
			SSLMode: "disable",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}

	// Load from file if exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	overrideWithEnv(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func overrideWithEnv(config *Config) {
	if url := os.Getenv("PROVIDER_AUTHENTICITY_URL"); url != "" {
		config.Providers.AuthenticityURL = url
	}
	if url := os.Getenv("PROVIDER_ACTIVITY_URL"); url != "" {
		config.Providers.ActivityURL = url
	}
	if url := os.Getenv("PROVIDER_FACE_URL"); url != "" {
		config.Providers.FaceURL = url
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		config.Redis.Addr = addr
	}
	if pass := os.Getenv("REDIS_PASSWORD"); pass != "" {
		config.Redis.Password = pass
	}
	if dbHost := os.Getenv("DATABASE_HOST"); dbHost != "" {
		config.Database.Host = dbHost
	}
	if dbPort := os.Getenv("DATABASE_PORT"); dbPort != "" {
		if p, err := strconv.Atoi(dbPort); err == nil {
			config.Database.Port = p
		}
	}
	if dbUser := os.Getenv("DATABASE_USER"); dbUser != "" {
		config.Database.User = dbUser
	}
	if dbPass := os.Getenv("DATABASE_PASSWORD"); dbPass != "" {
		config.Database.Password = dbPass
	}
	if dbName := os.Getenv("DATABASE_DBNAME"); dbName != "" {
		config.Database.DBName = dbName
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	v := c.Verification
	if v.AuthenticityThreshold < 0 || v.AuthenticityThreshold > 1 {
		return fmt.Errorf("authenticity_threshold must be in [0,1], got %v", v.AuthenticityThreshold)
	}
	if v.DetectionThreshold < 0 || v.DetectionThreshold > 1 {
		return fmt.Errorf("detection_threshold must be in [0,1], got %v", v.DetectionThreshold)
	}
	if v.FaceSimilarityThreshold < -1 || v.FaceSimilarityThreshold > 1 {
		return fmt.Errorf("face_similarity_threshold must be in [-1,1], got %v", v.FaceSimilarityThreshold)
	}
	if v.FreshnessWindow <= 0 {
		return fmt.Errorf("freshness_window must be positive, got %v", v.FreshnessWindow)
	}
	if v.StageTimeout <= 0 {
		return fmt.Errorf("stage_timeout must be positive, got %v", v.StageTimeout)
	}
	return nil
}

// GetDatabaseURL returns the database connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}
