package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"
	"github.com/hashicorp/go-multierror"
	logging "github.com/ipfs/go-log/v2"
	"github.com/multiformats/go-multiaddr"
	"github.com/pkg/errors"
)

var log = logging.Logger("config")

// Config is the configuration of the weight and gas estimation services.
type Config struct {
	API           *APIConfig           `toml:"api"`
	Gas           *GasConfig           `toml:"gas"`
	ChainSelector *ChainSelectorConfig `toml:"chainSelector"`
	Observability *ObservabilityConfig `toml:"observability"`
}

// APIConfig holds all configuration options related to the api.
type APIConfig struct {
	// APIAddress is the multiaddr the JSON-RPC server listens on.
	APIAddress string `toml:"apiAddress"`
}

func newDefaultAPIConfig() *APIConfig {
	return &APIConfig{
		APIAddress: "/ip4/127.0.0.1/tcp/3453",
	}
}

// GasConfig configures the gas estimator.
type GasConfig struct {
	// DefaultMaxFee caps the total fee of an estimated message, in attoFIL,
	// when the caller does not give one. "0" disables capping.
	DefaultMaxFee string `toml:"defaultMaxFee"`
	// PriceCacheSize is the number of tipsets whose message premiums are cached.
	PriceCacheSize int `toml:"priceCacheSize"`
}

// MaxFee parses DefaultMaxFee.
func (cfg *GasConfig) MaxFee() (abi.TokenAmount, error) {
	if cfg.DefaultMaxFee == "" {
		return big.Zero(), nil
	}
	fee, err := big.FromString(cfg.DefaultMaxFee)
	if err != nil {
		return big.Zero(), errors.Wrapf(err, "parsing default max fee %q", cfg.DefaultMaxFee)
	}
	if fee.Sign() < 0 {
		return big.Zero(), errors.Errorf("default max fee %s is negative", fee)
	}
	return fee, nil
}

func newDefaultGasConfig() *GasConfig {
	return &GasConfig{
		// 0.07 FIL
		DefaultMaxFee:  "70000000000000000",
		PriceCacheSize: 4096,
	}
}

// ChainSelectorConfig configures tipset weighing.
type ChainSelectorConfig struct {
	WeightCacheSize int `toml:"weightCacheSize"`
}

func newDefaultChainSelectorConfig() *ChainSelectorConfig {
	return &ChainSelectorConfig{
		WeightCacheSize: 8192,
	}
}

// ObservabilityConfig controls metrics export.
type ObservabilityConfig struct {
	MetricsEnabled   bool   `toml:"metricsEnabled"`
	MetricsNamespace string `toml:"metricsNamespace"`
}

func newDefaultObservabilityConfig() *ObservabilityConfig {
	return &ObservabilityConfig{
		MetricsEnabled:   true,
		MetricsNamespace: "venus_gas",
	}
}

// NewDefaultConfig returns a config object with all the fields filled out to
// their default values
func NewDefaultConfig() *Config {
	return &Config{
		API:           newDefaultAPIConfig(),
		Gas:           newDefaultGasConfig(),
		ChainSelector: newDefaultChainSelectorConfig(),
		Observability: newDefaultObservabilityConfig(),
	}
}

// Validate reports every invalid value in the config.
func (cfg *Config) Validate() error {
	var result *multierror.Error
	if _, err := multiaddr.NewMultiaddr(cfg.API.APIAddress); err != nil {
		result = multierror.Append(result, errors.Wrapf(err, "api.apiAddress %q", cfg.API.APIAddress))
	}
	if _, err := cfg.Gas.MaxFee(); err != nil {
		result = multierror.Append(result, err)
	}
	if cfg.Gas.PriceCacheSize <= 0 {
		result = multierror.Append(result, errors.Errorf("gas.priceCacheSize must be positive, got %d", cfg.Gas.PriceCacheSize))
	}
	if cfg.ChainSelector.WeightCacheSize <= 0 {
		result = multierror.Append(result, errors.Errorf("chainSelector.weightCacheSize must be positive, got %d", cfg.ChainSelector.WeightCacheSize))
	}
	if cfg.Observability.MetricsEnabled && cfg.Observability.MetricsNamespace == "" {
		result = multierror.Append(result, errors.New("observability.metricsNamespace must be set when metrics are enabled"))
	}
	return result.ErrorOrNil()
}

// WriteFile writes the config to the given filepath.
func (cfg *Config) WriteFile(file string) error {
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	if err := toml.NewEncoder(f).Encode(*cfg); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

// ReadFile reads a config file from disk. Values missing from the file keep
// their defaults.
func ReadFile(file string) (*Config, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close() // nolint: errcheck

	cfg := NewDefaultConfig()
	md, err := toml.DecodeReader(f, cfg)
	if err != nil {
		return nil, err
	}
	for _, key := range md.Undecoded() {
		log.Warnf("unknown config key %s in %s", key, file)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", file)
	}
	return cfg, nil
}
