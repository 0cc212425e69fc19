package server

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/argo-replay/pkg/errors"
	"github.com/rxtech-lab/argo-replay/pkg/marketdata"
)

// Config holds the HTTP service configuration.
type Config struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port" validate:"gte=1,lte=65535"`
	// MaxSeries caps the series arena; the oldest series is evicted when
	// the cap is exceeded.
	MaxSeries  int                     `yaml:"max_series" validate:"gte=1"`
	MarketData marketdata.ClientConfig `yaml:"market_data"`
}

// DefaultConfig mirrors the defaults of the reference deployment.
func DefaultConfig() Config {
	return Config{
		Host:      "0.0.0.0",
		Port:      8000,
		MaxSeries: 64,
		MarketData: marketdata.ClientConfig{
			Provider: marketdata.ProviderYahoo,
		},
	}
}

// LoadConfig reads a YAML config file over the defaults and validates the
// result. An empty path returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to read server config", err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse server config", err)
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid server config", err)
	}

	return cfg, nil
}
