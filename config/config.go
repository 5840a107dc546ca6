package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/openst/mosaic/core"
)

// Configuration keys. With the MOSAIC prefix they map to the
// environment variables the node is configured with, e.g.
// MOSAIC_ORIGIN_ENDPOINT.
const (
	envPrefix = "mosaic"

	keyOriginEndpoint            = "origin_endpoint"
	keyAuxiliaryEndpoint         = "auxiliary_endpoint"
	keyOriginCoreAddress         = "origin_core_address"
	keyOriginValidatorAddress    = "origin_validator_address"
	keyAuxiliaryValidatorAddress = "auxiliary_validator_address"
	keyOriginBlockStoreAddress   = "origin_block_store_address"
	keyAuxBlockStoreAddress      = "auxiliary_block_store_address"
	keyOriginPassword            = "origin_password"
	keyAuxiliaryPassword         = "auxiliary_password"
	keyPollingInterval           = "polling_interval"

	defaultOriginEndpoint    = "http://127.0.0.1:8545"
	defaultAuxiliaryEndpoint = "http://127.0.0.1:8546"
	defaultPollingInterval   = time.Second
)

// Config holds the settings for running a mosaic node. It is built once
// at startup and immutable afterwards.
type Config struct {
	// OriginEndpoint is the address of the origin chain node.
	OriginEndpoint string
	// AuxiliaryEndpoint is the address of the auxiliary chain node.
	AuxiliaryEndpoint string
	// OriginCoreAddress is the address of a core contract on origin.
	// It is optional as it may not be needed depending on the mode that
	// the node is run in.
	OriginCoreAddress *core.Address
	// OriginValidatorAddress sends messages as a validator on origin.
	OriginValidatorAddress core.Address
	// AuxiliaryValidatorAddress sends messages as a validator on
	// auxiliary.
	AuxiliaryValidatorAddress core.Address
	// OriginBlockStoreAddress is the contract that records origin
	// blocks; it lives on the auxiliary chain.
	OriginBlockStoreAddress core.Address
	// AuxiliaryBlockStoreAddress is the contract that records auxiliary
	// blocks; it lives on the origin chain.
	AuxiliaryBlockStoreAddress core.Address
	// OriginPassword unlocks the validator account on the origin node.
	OriginPassword string
	// AuxiliaryPassword unlocks the validator account on the auxiliary
	// node.
	AuxiliaryPassword string
	// PollingInterval is the duration between two polls for new blocks.
	PollingInterval time.Duration
}

// Load reads the configuration from MOSAIC_* environment variables,
// falling back to defaults where available. It returns an error if a
// mandatory value is missing or cannot be parsed; such errors are fatal
// at startup.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetDefault(keyOriginEndpoint, defaultOriginEndpoint)
	v.SetDefault(keyAuxiliaryEndpoint, defaultAuxiliaryEndpoint)
	v.SetDefault(keyPollingInterval, defaultPollingInterval)

	cfg := &Config{
		OriginEndpoint:    v.GetString(keyOriginEndpoint),
		AuxiliaryEndpoint: v.GetString(keyAuxiliaryEndpoint),
		OriginPassword:    v.GetString(keyOriginPassword),
		AuxiliaryPassword: v.GetString(keyAuxiliaryPassword),
		PollingInterval:   v.GetDuration(keyPollingInterval),
	}

	var err error
	if cfg.OriginValidatorAddress, err = requireAddress(v, keyOriginValidatorAddress); err != nil {
		return nil, err
	}
	if cfg.AuxiliaryValidatorAddress, err = requireAddress(v, keyAuxiliaryValidatorAddress); err != nil {
		return nil, err
	}
	if cfg.OriginBlockStoreAddress, err = requireAddress(v, keyOriginBlockStoreAddress); err != nil {
		return nil, err
	}
	if cfg.AuxiliaryBlockStoreAddress, err = requireAddress(v, keyAuxBlockStoreAddress); err != nil {
		return nil, err
	}

	if raw := v.GetString(keyOriginCoreAddress); raw != "" {
		address, err := core.ParseAddress(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid %s", envName(keyOriginCoreAddress))
		}
		cfg.OriginCoreAddress = &address
	}

	if cfg.PollingInterval <= 0 {
		return nil, errors.Newf("%s must be a positive duration", envName(keyPollingInterval))
	}

	return cfg, nil
}

func requireAddress(v *viper.Viper, key string) (core.Address, error) {
	raw := v.GetString(key)
	if raw == "" {
		return core.Address{}, errors.Newf("%s must be set", envName(key))
	}
	address, err := core.ParseAddress(raw)
	if err != nil {
		return core.Address{}, errors.Wrapf(err, "invalid %s", envName(key))
	}
	return address, nil
}

func envName(key string) string {
	return "MOSAIC_" + strings.ToUpper(key)
}
