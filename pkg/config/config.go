package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// MinTrainingRows is the smallest dataset the predictor will fit on.
const MinTrainingRows = 5

// Config holds all application configuration
type Config struct {
	Env       string
	Server    ServerConfig
	Redis     RedisConfig
	Model     ModelConfig
	Synthetic SyntheticConfig
	Recommend RecommendConfig
	Plants    PlantCatalogConfig
	OTEL      OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	MaxUploadBytes int64
	MaxDatasetRows int
	AllowedOrigins []string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// ModelConfig holds nutrient predictor configuration
type ModelConfig struct {
	MinTrainingRows int
	RidgeLambda     float64
	TestFraction    float64
	Seed            uint64
	// CacheTTLSeconds bounds how long a cached prediction is served
	CacheTTLSeconds int
}

// SyntheticConfig holds synthetic label generation configuration
type SyntheticConfig struct {
	Seed          uint64
	NoiseFraction float64
}

// RecommendConfig holds recommendation policy configuration
type RecommendConfig struct {
	MarginalTolerance float64
}

// PlantCatalogConfig holds plant catalog configuration
type PlantCatalogConfig struct {
	// CatalogPath optionally points at a TOML file replacing the built-in profiles
	CatalogPath string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Env: getEnv("ENV", "production"),
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_BYTES", 10<<20)),
			MaxDatasetRows: getEnvAsInt("MAX_DATASET_ROWS", 100000),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Model: ModelConfig{
			MinTrainingRows: getEnvAsInt("MODEL_MIN_TRAINING_ROWS", MinTrainingRows),
			RidgeLambda:     getEnvAsFloat("MODEL_RIDGE_LAMBDA", 0.5),
			TestFraction:    getEnvAsFloat("MODEL_TEST_FRACTION", 0.2),
			Seed:            uint64(getEnvAsInt("MODEL_SEED", 42)),
			CacheTTLSeconds: getEnvAsInt("PREDICTION_CACHE_TTL_SECONDS", 300),
		},
		Synthetic: SyntheticConfig{
			Seed:          uint64(getEnvAsInt("SYNTHETIC_SEED", 42)),
			NoiseFraction: getEnvAsFloat("SYNTHETIC_NOISE_FRACTION", 0.1),
		},
		Recommend: RecommendConfig{
			MarginalTolerance: getEnvAsFloat("RECOMMEND_MARGINAL_TOLERANCE", 0.2),
		},
		Plants: PlantCatalogConfig{
			CatalogPath: getEnv("PLANT_CATALOG_PATH", ""),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "waste-nutrient-advisor"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	// The training floor can be raised but never lowered.
	if c.Model.MinTrainingRows < MinTrainingRows {
		c.Model.MinTrainingRows = MinTrainingRows
	}
	if c.Model.RidgeLambda <= 0 {
		return fmt.Errorf("MODEL_RIDGE_LAMBDA must be positive, got %v", c.Model.RidgeLambda)
	}
	if c.Model.TestFraction < 0.1 || c.Model.TestFraction > 0.5 {
		return fmt.Errorf("MODEL_TEST_FRACTION must be within [0.1, 0.5], got %v", c.Model.TestFraction)
	}
	if c.Synthetic.NoiseFraction < 0 || c.Synthetic.NoiseFraction >= 1 {
		return fmt.Errorf("SYNTHETIC_NOISE_FRACTION must be within [0, 1), got %v", c.Synthetic.NoiseFraction)
	}
	if c.Recommend.MarginalTolerance < 0 {
		return fmt.Errorf("RECOMMEND_MARGINAL_TOLERANCE must not be negative, got %v", c.Recommend.MarginalTolerance)
	}
	return nil
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
