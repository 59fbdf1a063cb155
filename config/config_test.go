//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/cryo28/ipa/gateway"
	"github.com/cryo28/ipa/step"
)

const testConfig = `
helpers:
  - role: H1
    address: 127.0.0.1:9001
    client_address: 127.0.0.1:8001
  - role: H2
    address: 127.0.0.1:9002
    client_address: 127.0.0.1:8002
  - role: H3
    address: 127.0.0.1:9003
    client_address: 127.0.0.1:8003
runtime:
  gates: descriptive
  workers: 4
  gateway:
    send_buffer: 16
    receive_timeout: 30s
  log_level: debug
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "network.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	h, err := c.Helper(gateway.H2)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9002", h.Address)
	require.Equal(t, "127.0.0.1:8002", h.ClientAddress)

	require.Equal(t, step.ModeDescriptive, c.Runtime.Gates)
	require.Equal(t, 4, c.Runtime.Workers)
	require.Equal(t, 16, c.Runtime.Gateway.SendBuffer)
	require.Equal(t, gateway.DefaultBatch, c.Runtime.Gateway.Batch)
	require.Equal(t, 30*time.Second, c.Runtime.Gateway.ReceiveTimeout)

	level, err := c.Runtime.Level()
	require.NoError(t, err)
	require.Equal(t, zerolog.DebugLevel, level)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestDefaults(t *testing.T) {
	c, err := Parse([]byte(`
helpers:
  - {role: H1, address: a:1, client_address: a:2}
  - {role: H2, address: b:1, client_address: b:2}
  - {role: H3, address: c:1, client_address: c:2}
runtime:
  workers: 2
`))
	require.NoError(t, err)
	require.Equal(t, step.ModeCompact, c.Runtime.Gates)
	require.Equal(t, gateway.DefaultSendBuffer, c.Runtime.Gateway.SendBuffer)
	require.Equal(t, gateway.DefaultReceiveTimeout,
		c.Runtime.Gateway.ReceiveTimeout)
}

func TestInvalid(t *testing.T) {
	tests := []string{
		// Missing helper.
		`
helpers:
  - {role: H1, address: a:1, client_address: a:2}
  - {role: H2, address: b:1, client_address: b:2}
`,
		// Duplicate role.
		`
helpers:
  - {role: H1, address: a:1, client_address: a:2}
  - {role: H1, address: b:1, client_address: b:2}
  - {role: H3, address: c:1, client_address: c:2}
`,
		// Unknown role.
		`
helpers:
  - {role: H1, address: a:1, client_address: a:2}
  - {role: H2, address: b:1, client_address: b:2}
  - {role: H4, address: c:1, client_address: c:2}
`,
		// Missing address.
		`
helpers:
  - {role: H1, client_address: a:2}
  - {role: H2, address: b:1, client_address: b:2}
  - {role: H3, address: c:1, client_address: c:2}
`,
		// Send buffer smaller than the worker pool.
		`
helpers:
  - {role: H1, address: a:1, client_address: a:2}
  - {role: H2, address: b:1, client_address: b:2}
  - {role: H3, address: c:1, client_address: c:2}
runtime:
  workers: 8
  gateway: {send_buffer: 4}
`,
		// Unknown gate mode.
		`
helpers:
  - {role: H1, address: a:1, client_address: a:2}
  - {role: H2, address: b:1, client_address: b:2}
  - {role: H3, address: c:1, client_address: c:2}
runtime:
  gates: compiled
`,
		// Unknown log level.
		`
helpers:
  - {role: H1, address: a:1, client_address: a:2}
  - {role: H2, address: b:1, client_address: b:2}
  - {role: H3, address: c:1, client_address: c:2}
runtime:
  workers: 1
  log_level: loud
`,
	}
	for idx, test := range tests {
		_, err := Parse([]byte(test))
		require.Error(t, err, "test %d", idx)
	}
}
