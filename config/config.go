//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package config implements the helper configuration file.
//
//	helpers:
//	  - role: H1
//	    address: 127.0.0.1:9001
//	    client_address: 127.0.0.1:8001
//	  ...
//	runtime:
//	  gates: compact
//	  workers: 8
//	  gateway:
//	    send_buffer: 1024
//	    receive_timeout: 30s
//	  log_level: info
package config

import (
	"os"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/cryo28/ipa/gateway"
	"github.com/cryo28/ipa/step"
)

// Helper defines the addresses of one helper.
type Helper struct {
	Role          gateway.Role `yaml:"role"`
	Address       string       `yaml:"address"`
	ClientAddress string       `yaml:"client_address"`
}

// Runtime defines the runtime parameters of a helper.
type Runtime struct {
	Gates    step.Mode      `yaml:"gates"`
	Workers  int            `yaml:"workers"`
	Gateway  gateway.Config `yaml:"gateway"`
	LogLevel string         `yaml:"log_level"`
}

// Config defines the helper network and runtime configuration.
type Config struct {
	Helpers []Helper `yaml:"helpers"`
	Runtime Runtime  `yaml:"runtime"`
}

// Load loads and validates the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	config, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return config, nil
}

// Parse parses and validates the configuration data.
func Parse(data []byte) (*Config, error) {
	config := new(Config)
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration and fills in default values.
func (c *Config) Validate() error {
	if len(c.Helpers) != len(gateway.Roles) {
		return errors.Newf("expected %d helpers, got %d",
			len(gateway.Roles), len(c.Helpers))
	}
	var seen [3]bool
	for _, h := range c.Helpers {
		if int(h.Role) >= len(seen) {
			return errors.Newf("invalid role %d", h.Role)
		}
		if seen[h.Role] {
			return errors.Newf("duplicate helper %s", h.Role)
		}
		seen[h.Role] = true
		if len(h.Address) == 0 {
			return errors.Newf("helper %s: no address", h.Role)
		}
		if len(h.ClientAddress) == 0 {
			return errors.Newf("helper %s: no client address", h.Role)
		}
	}
	return c.Runtime.Validate()
}

// Helper returns the configuration of the helper role.
func (c *Config) Helper(role gateway.Role) (Helper, error) {
	for _, h := range c.Helpers {
		if h.Role == role {
			return h, nil
		}
	}
	return Helper{}, errors.Newf("helper %s not configured", role)
}

// Validate checks the runtime parameters and fills in default
// values.
func (r *Runtime) Validate() error {
	mode, err := step.ParseMode(string(r.Gates))
	if err != nil {
		return err
	}
	r.Gates = mode

	if r.Workers < 0 {
		return errors.Newf("invalid workers %d", r.Workers)
	}
	if r.Workers == 0 {
		r.Workers = runtime.NumCPU()
	}
	if err := r.Gateway.Validate(); err != nil {
		return err
	}
	// Every worker may hold a send credit while it waits to receive;
	// fewer credits than workers can stall all workers of a helper.
	if r.Gateway.SendBuffer < r.Workers {
		return errors.Newf("gateway send buffer %d smaller than workers %d",
			r.Gateway.SendBuffer, r.Workers)
	}
	if _, err := r.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns the configured log level.
func (r *Runtime) Level() (zerolog.Level, error) {
	if len(r.LogLevel) == 0 {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(r.LogLevel)
}
