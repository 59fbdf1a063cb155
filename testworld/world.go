//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package testworld runs the three helpers in one process over an
// in-memory network.
package testworld

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cryo28/ipa/env"
	"github.com/cryo28/ipa/gateway"
	"github.com/cryo28/ipa/mpcerr"
	"github.com/cryo28/ipa/protocol"
	"github.com/cryo28/ipa/prss"
	"github.com/cryo28/ipa/step"
)

// StepPRSSExchange names the step of the PRSS key exchange.
const StepPRSSExchange = "prss_exchange"

// Config configures the test world.
type Config struct {
	Gateway gateway.Config
	Mode    step.Mode
	Workers int
	Env     env.Config
}

// DefaultConfig returns the default test world configuration.
func DefaultConfig() Config {
	return Config{
		Gateway: gateway.DefaultConfig(),
		Mode:    step.ModeCompact,
		Workers: 8,
	}
}

// World implements three helpers connected over in-memory pipes.
type World struct {
	config  Config
	network *gateway.InMemoryNetwork
	meshes  [3]*gateway.Mesh
}

// New creates a new test world.
func New(config Config) (*World, error) {
	if config.Mode == "" {
		config.Mode = step.ModeCompact
	}
	w := &World{
		config:  config,
		network: gateway.NewInMemoryNetwork(),
	}
	log := config.Env.GetLogger()
	for _, r := range gateway.Roles {
		m, err := gateway.NewMesh(r, w.network.Transport(r), config.Gateway,
			log)
		if err != nil {
			w.Close()
			return nil, err
		}
		if err := m.Connect(context.Background()); err != nil {
			w.Close()
			return nil, err
		}
		w.meshes[r] = m
	}
	return w, nil
}

// Close closes the helpers and the network.
func (w *World) Close() {
	for _, m := range w.meshes {
		if m != nil {
			m.Close()
		}
	}
	w.network.Close()
}

// Config returns the world configuration.
func (w *World) Config() Config {
	return w.config
}

// Mesh returns the mesh of the helper.
func (w *World) Mesh(role gateway.Role) *gateway.Mesh {
	return w.meshes[role]
}

// DropLink closes the physical link between the helpers a and b.
func (w *World) DropLink(a, b gateway.Role) {
	w.network.Drop(a, b)
}

// Setup opens the query gateway of the helper, runs the PRSS key
// exchange, and returns the query's root context.
func Setup(ctx context.Context, mesh *gateway.Mesh, id gateway.QueryID,
	mode step.Mode, workers int, e *env.Config) (*protocol.Context, error) {

	if err := mesh.Connect(ctx); err != nil {
		return nil, err
	}
	gw, err := mesh.Gateway(id)
	if err != nil {
		return nil, err
	}
	root := step.Root(mode)
	endpoint, err := prss.Exchange(ctx, gw, root.Narrow(StepPRSSExchange),
		e.GetRandom())
	if err != nil {
		gw.Abort(err)
		return nil, err
	}
	return protocol.NewContext(gw, endpoint, root, workers), nil
}

// Func defines a protocol function run by each helper.
type Func[T any] func(ctx context.Context, c *protocol.Context) (T, error)

// RunEach runs fn on all three helpers for a new query and returns
// the per-helper results and errors. A helper whose fn fails aborts
// its query gateway.
func RunEach[T any](ctx context.Context, w *World, fn Func[T]) (
	[3]T, [3]error) {

	id := gateway.NewQueryID()

	var results [3]T
	var errs [3]error
	var wg sync.WaitGroup

	for _, r := range gateway.Roles {
		wg.Add(1)
		go func(r gateway.Role) {
			defer wg.Done()

			c, err := Setup(ctx, w.meshes[r], id, w.config.Mode,
				w.config.Workers, &w.config.Env)
			if err != nil {
				errs[r] = err
				return
			}
			gw := c.Gateway()
			results[r], errs[r] = fn(ctx, c)
			if errs[r] != nil {
				gw.Abort(errs[r])
			} else {
				gw.Close()
			}
		}(r)
	}
	wg.Wait()

	return results, errs
}

// Run runs fn on all three helpers for a new query. The first
// failing helper cancels the others. Of the helpers' errors, Run
// returns the most specific one: a cause reported by a helper is
// preferred over a connectivity failure, which is preferred over a
// cancellation.
func Run[T any](ctx context.Context, w *World, fn Func[T]) ([3]T, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results, errs := RunEach(ctx, w,
		func(ctx context.Context, c *protocol.Context) (T, error) {
			result, err := fn(ctx, c)
			if err != nil {
				cancel()
			}
			return result, err
		})

	var result error
	for _, err := range errs {
		if err != nil && (result == nil || rank(err) < rank(result)) {
			result = err
		}
	}
	return results, result
}

func rank(err error) int {
	switch mpcerr.KindOf(err) {
	case mpcerr.KindCancelled:
		return 2
	case mpcerr.KindConnectivity:
		return 1
	default:
		return 0
	}
}

// Logger returns a logger for tests.
func Logger(level zerolog.Level) *zerolog.Logger {
	log := zerolog.New(zerolog.NewConsoleWriter()).Level(level).
		With().Timestamp().Logger()
	return &log
}
