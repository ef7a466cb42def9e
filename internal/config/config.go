package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"positionScope/internal/dex"
)

// ServeConfig holds configuration for the HTTP valuation service.
type ServeConfig struct {
	Listen             string
	RPCURL             string
	PGDSN              string
	PriceAPIURL        string
	CacheTTL           time.Duration
	MaxConcurrentReads int64
	RPCRateLimit       float64
	RPCMaxRetries      int
	RPCRetryBackoff    time.Duration
	LogLevel           string
	Deployments        []dex.DeploymentSpec
	APIKeys            map[string]string
}

// LoadServe merges config file, environment variables, and flags.
func LoadServe(cfgFile string, flags *pflag.FlagSet) (ServeConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return ServeConfig{}, err
	}

	v.SetDefault("listen", ":8080")
	v.SetDefault("cache-ttl", 120*time.Second)
	v.SetDefault("max-concurrent-reads", 12)
	v.SetDefault("rpc-rate-limit", 0.0)
	v.SetDefault("rpc-max-retries", 2)
	v.SetDefault("rpc-retry-backoff", 200*time.Millisecond)
	v.SetDefault("log-level", "info")

	cfg := ServeConfig{
		Listen:             v.GetString("listen"),
		RPCURL:             v.GetString("rpc"),
		PGDSN:              v.GetString("pg-dsn"),
		PriceAPIURL:        v.GetString("price-api"),
		CacheTTL:           v.GetDuration("cache-ttl"),
		MaxConcurrentReads: v.GetInt64("max-concurrent-reads"),
		RPCRateLimit:       v.GetFloat64("rpc-rate-limit"),
		RPCMaxRetries:      v.GetInt("rpc-max-retries"),
		RPCRetryBackoff:    v.GetDuration("rpc-retry-backoff"),
		LogLevel:           v.GetString("log-level"),
		APIKeys:            v.GetStringMapString("api-keys"),
	}

	if err := v.UnmarshalKey("deployments", &cfg.Deployments); err != nil {
		return ServeConfig{}, fmt.Errorf("decode deployments: %w", err)
	}

	return cfg, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("POSITIONSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}
