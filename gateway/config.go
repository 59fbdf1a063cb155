//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package gateway

import (
	"time"

	"github.com/cockroachdb/errors"
)

// Default configuration values.
const (
	DefaultSendBuffer     = 1024
	DefaultBatch          = 64
	DefaultReceiveTimeout = 30 * time.Second
)

// Config configures the gateway of a query.
type Config struct {
	// SendBuffer bounds the number of unacknowledged messages in
	// flight from this helper to one peer within one query. A sender
	// exceeding the bound is suspended until the peer consumes a
	// message.
	SendBuffer int `yaml:"send_buffer"`

	// Batch is the maximum number of frames written to a peer
	// connection before it is flushed.
	Batch int `yaml:"batch"`

	// ReceiveTimeout fails the peer link of a query if a receive
	// waits longer than the timeout. It also bounds how long frames
	// of a query are buffered before this helper starts the query.
	// Zero selects the default and a negative value disables the
	// timeout.
	ReceiveTimeout time.Duration `yaml:"receive_timeout"`
}

// DefaultConfig returns the default gateway configuration.
func DefaultConfig() Config {
	return Config{
		SendBuffer:     DefaultSendBuffer,
		Batch:          DefaultBatch,
		ReceiveTimeout: DefaultReceiveTimeout,
	}
}

// Validate checks the configuration and fills in default values.
func (c *Config) Validate() error {
	if c.SendBuffer == 0 {
		c.SendBuffer = DefaultSendBuffer
	}
	if c.Batch == 0 {
		c.Batch = DefaultBatch
	}
	if c.ReceiveTimeout == 0 {
		c.ReceiveTimeout = DefaultReceiveTimeout
	}
	if c.SendBuffer < 0 {
		return errors.Newf("invalid send buffer %d", c.SendBuffer)
	}
	if c.Batch < 0 {
		return errors.Newf("invalid batch %d", c.Batch)
	}
	return nil
}
