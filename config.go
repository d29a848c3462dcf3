package stackmate

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/KyberNetwork/logger"
	"github.com/joho/godotenv"
)

// Config collects the environment-driven settings. The library works without
// any of them; they exist so deployments can point at self-hosted indexer
// nodes, a dev proxy, or a Redis instance for the durable transaction log.
type Config struct {
	Network          Network
	MainnetURL       string
	TestnetURL       string
	ProxyURL         string
	RedisAddr        string
	StorageNamespace string
	Policy           RetryPolicy
}

// LoadConfig reads settings from the environment, optionally seeded from a
// .env file. A missing .env file is fine; malformed values are not.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.WithFields(logger.Fields{
			"error": err,
		}).Warn("Failed to load .env file, relying on process environment")
	}

	network, err := GetEnvNetwork()
	if err != nil {
		return nil, err
	}
	policy, err := GetEnvRetryPolicy()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Network:          network,
		MainnetURL:       envOr("STACKMATE_MAINNET_URL", NetworkMainnet.BaseURL()),
		TestnetURL:       envOr("STACKMATE_TESTNET_URL", NetworkTestnet.BaseURL()),
		ProxyURL:         os.Getenv("STACKMATE_PROXY_URL"),
		RedisAddr:        os.Getenv("STACKMATE_REDIS_ADDR"),
		StorageNamespace: envOr("STACKMATE_STORAGE_NAMESPACE", DefaultStorageNamespace),
		Policy:           policy,
	}
	return cfg, nil
}

// IndexerOptions translates the config into indexer construction options.
func (c *Config) IndexerOptions() []IndexerOption {
	return []IndexerOption{
		WithBaseURL(NetworkMainnet, c.MainnetURL),
		WithBaseURL(NetworkTestnet, c.TestnetURL),
	}
}

// GetEnvNetwork returns the configured network, defaulting to testnet.
func GetEnvNetwork() (Network, error) {
	raw := os.Getenv("STACKMATE_NETWORK")
	if raw == "" {
		return NetworkTestnet, nil
	}
	network := Network(raw)
	if network != NetworkMainnet && network != NetworkTestnet {
		return "", fmt.Errorf("invalid STACKMATE_NETWORK value: %s, must be 'mainnet' or 'testnet'", raw)
	}
	return network, nil
}

// GetEnvRetryPolicy returns the default retry policy with any knobs
// overridden from the environment.
func GetEnvRetryPolicy() (RetryPolicy, error) {
	policy := DefaultRetryPolicy()

	if raw := os.Getenv("STACKMATE_MAX_RETRIES"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return RetryPolicy{}, fmt.Errorf("invalid STACKMATE_MAX_RETRIES value: %s, must be a non-negative integer", raw)
		}
		policy.MaxRetries = n
	}
	if raw := os.Getenv("STACKMATE_INITIAL_DELAY_MS"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms <= 0 {
			return RetryPolicy{}, fmt.Errorf("invalid STACKMATE_INITIAL_DELAY_MS value: %s, must be a positive integer", raw)
		}
		policy.InitialDelay = time.Duration(ms) * time.Millisecond
	}
	if raw := os.Getenv("STACKMATE_MAX_DELAY_MS"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms <= 0 {
			return RetryPolicy{}, fmt.Errorf("invalid STACKMATE_MAX_DELAY_MS value: %s, must be a positive integer", raw)
		}
		policy.MaxDelay = time.Duration(ms) * time.Millisecond
	}
	if raw := os.Getenv("STACKMATE_MAX_CONCURRENT"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return RetryPolicy{}, fmt.Errorf("invalid STACKMATE_MAX_CONCURRENT value: %s, must be a positive integer", raw)
		}
		policy.MaxConcurrent = n
	}
	return policy, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
