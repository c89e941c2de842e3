package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service configuration
type Config struct {
	Service   ServiceConfig
	Storage   StorageConfig
	Oracle    OracleConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

// ServiceConfig holds service-specific settings
type ServiceConfig struct {
	Name        string
	Port        int
	Environment string
	LogLevel    string
	LogFormat   string
}

// StorageConfig holds IPFS pinning-service settings
type StorageConfig struct {
	// AddEndpoint is the API base used for publishing (POST <AddEndpoint>/api/v0/add?pin=true)
	AddEndpoint string
	// GatewayEndpoint is the read gateway base (GET <GatewayEndpoint><cid>)
	GatewayEndpoint string
	APIKey          string
	APISecret       string
	Timeout         time.Duration
}

// OracleConfig holds the on-chain Platform oracle settings
type OracleConfig struct {
	RPCURL          string
	ContractAddress string
	// EncryptorKey is the hex-encoded private key of the registered
	// encryptor identity. Only its signature ever leaves the process.
	EncryptorKey string
	CallTimeout  time.Duration
}

// CORSConfig holds cross-origin settings
type CORSConfig struct {
	AllowedOrigins []string
}

// RateLimitConfig holds abuse-protection settings
type RateLimitConfig struct {
	Enabled       bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	GlobalLimit   int64
	AccountLimit  int64
	WindowSeconds int
}

// Load loads configuration from environment variables.
// A local .env file is honored in development; missing required
// settings are an error so deployment mistakes fail at startup,
// never per request.
func Load(serviceName string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Service: ServiceConfig{
			Name:        serviceName,
			Port:        getEnvInt("PORT", 8080),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "text"),
		},
		Storage: StorageConfig{
			AddEndpoint:     getEnv("IPFS_ADD_ENDPOINT", "https://ipfs.infura.io:5001"),
			GatewayEndpoint: os.Getenv("IPFS_ENDPOINT"),
			APIKey:          os.Getenv("INFURA_API_KEY"),
			APISecret:       os.Getenv("INFURA_API_SECRET"),
			Timeout:         getEnvDuration("IPFS_TIMEOUT", 30*time.Second),
		},
		Oracle: OracleConfig{
			RPCURL:          os.Getenv("INFURA_URL"),
			ContractAddress: os.Getenv("PLATFORM_CONTRACT_ADDRESS"),
			EncryptorKey:    os.Getenv("ENCRYPTOR_PRIVATE_KEY"),
			CallTimeout:     getEnvDuration("ORACLE_CALL_TIMEOUT", 10*time.Second),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", nil),
		},
		RateLimit: RateLimitConfig{
			Enabled:       getEnvBool("RATE_LIMIT_ENABLED", false),
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			GlobalLimit:   int64(getEnvInt("RATE_LIMIT_GLOBAL", 300)),
			AccountLimit:  int64(getEnvInt("RATE_LIMIT_ACCOUNT", 30)),
			WindowSeconds: getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	required := map[string]string{
		"INFURA_API_KEY":            c.Storage.APIKey,
		"INFURA_API_SECRET":         c.Storage.APISecret,
		"IPFS_ENDPOINT":             c.Storage.GatewayEndpoint,
		"INFURA_URL":                c.Oracle.RPCURL,
		"PLATFORM_CONTRACT_ADDRESS": c.Oracle.ContractAddress,
		"ENCRYPTOR_PRIVATE_KEY":     c.Oracle.EncryptorKey,
	}

	var missing []string
	for name, value := range required {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		missing = append(missing, "ALLOWED_ORIGINS")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// getEnv gets an environment variable or returns a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
