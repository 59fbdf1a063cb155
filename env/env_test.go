//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package env

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	var config *Config
	require.Equal(t, rand.Reader, config.GetRandom())
	log := config.GetLogger()
	log.Info().Msg("discarded")

	config = new(Config)
	require.Equal(t, rand.Reader, config.GetRandom())
}

func TestConfigured(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	src := bytes.NewReader([]byte{1, 2, 3})
	config := &Config{
		Rand:   src,
		Logger: &logger,
	}
	require.Equal(t, src, config.GetRandom())

	log := config.GetLogger()
	log.Info().Str("gate", "protocol/multiply").Msg("hello")
	require.Contains(t, buf.String(), "protocol/multiply")
}
