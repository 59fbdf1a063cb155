//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package env implements global environment for the helper
// processes.
package env

import (
	"crypto/rand"
	"io"

	"github.com/rs/zerolog"
)

// Config defines the global environment of a helper. Config must not
// be modified after being passed to any module. It is safe for
// concurrent use by multiple modules as they do not modify it.
type Config struct {
	Rand   io.Reader
	Logger *zerolog.Logger
}

// GetRandom returns the source of entropy for PRSS key exchange and
// input sharing.
func (config *Config) GetRandom() io.Reader {
	if config != nil && config.Rand != nil {
		return config.Rand
	}
	return rand.Reader
}

// GetLogger returns the logger. If no logger is configured, GetLogger
// returns a disabled logger.
func (config *Config) GetLogger() zerolog.Logger {
	if config != nil && config.Logger != nil {
		return *config.Logger
	}
	return zerolog.Nop()
}
