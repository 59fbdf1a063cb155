//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package protocol implements the execution context of the helper
// sub-protocols. A Context binds a gate to the query gateway and
// the PRSS endpoint; sub-protocols narrow the context for each of
// their steps and address messages by record within the step.
package protocol

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/cryo28/ipa/ff"
	"github.com/cryo28/ipa/gateway"
	"github.com/cryo28/ipa/mpcerr"
	"github.com/cryo28/ipa/prss"
	"github.com/cryo28/ipa/step"
)

// RecordID identifies a record within a step.
type RecordID = gateway.RecordID

// Context defines the execution context of a sub-protocol. Contexts
// are immutable; Narrow and SetTotalRecords return new contexts.
type Context struct {
	gate    step.Gate
	gw      *gateway.Gateway
	prss    *prss.Endpoint
	workers int
	total   int

	indexed func() (*prss.IndexedRandomness, error)
}

func newContext(gate step.Gate, gw *gateway.Gateway, endpoint *prss.Endpoint,
	workers int) *Context {

	return &Context{
		gate:    gate,
		gw:      gw,
		prss:    endpoint,
		workers: workers,
		indexed: sync.OnceValues(func() (*prss.IndexedRandomness, error) {
			return endpoint.Indexed(gate)
		}),
	}
}

// NewContext creates a new context rooted at the gate. The workers
// argument bounds the number of concurrent tasks of ForEach; zero
// uses the number of CPUs.
func NewContext(gw *gateway.Gateway, endpoint *prss.Endpoint, root step.Gate,
	workers int) *Context {

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return newContext(root, gw, endpoint, workers)
}

// Role returns the helper role.
func (c *Context) Role() gateway.Role {
	return c.gw.Role()
}

// Gate returns the gate of the context.
func (c *Context) Gate() step.Gate {
	return c.gate
}

// Gateway returns the query gateway.
func (c *Context) Gateway() *gateway.Gateway {
	return c.gw
}

// Workers returns the worker pool size.
func (c *Context) Workers() int {
	return c.workers
}

// TotalRecords returns the number of records of the context's step
// or zero if the number is not bounded.
func (c *Context) TotalRecords() int {
	return c.total
}

// Narrow returns the context for the substep. The records bound is
// not inherited.
func (c *Context) Narrow(s step.Substep) *Context {
	return newContext(c.gate.Narrow(s), c.gw, c.prss, c.workers)
}

// SetTotalRecords returns a context whose channels accept only
// records in [0, total).
func (c *Context) SetTotalRecords(total int) *Context {
	n := *c
	n.total = total
	return &n
}

// Indexed returns the indexed randomness of the context's gate. The
// generator is created on first use and shared by all records.
func (c *Context) Indexed() (*prss.IndexedRandomness, error) {
	return c.indexed()
}

// Sequential returns the sequential randomness of the context's gate.
// Each call returns fresh streams starting from the beginning.
func (c *Context) Sequential() (*prss.SequentialRandomness, error) {
	return c.prss.Sequential(c.gate)
}

// Channel returns the channel to the peer at the context's gate.
func (c *Context) Channel(peer gateway.Role) (*gateway.Channel, error) {
	return c.gw.Channel(c.gate, peer, c.total)
}

// Send sends the field element to the peer at the context's gate.
func Send[F ff.Field[F]](ctx context.Context, c *Context, peer gateway.Role,
	record RecordID, v F) error {

	ch, err := c.Channel(peer)
	if err != nil {
		return err
	}
	buf := make([]byte, v.Size())
	ff.Marshal(v, buf)
	return ch.Send(ctx, record, buf)
}

// Receive receives a field element from the peer at the context's
// gate.
func Receive[F ff.Field[F]](ctx context.Context, c *Context,
	peer gateway.Role, record RecordID) (F, error) {

	var zero F
	ch, err := c.Channel(peer)
	if err != nil {
		return zero, err
	}
	data, err := ch.Receive(ctx, record)
	if err != nil {
		return zero, err
	}
	v, err := ff.Unmarshal[F](data)
	if err != nil {
		c.gw.Abort(err)
		return zero, err
	}
	return v, nil
}

// ForEach runs fn for the records [0, count) on the worker pool. The
// first error cancels the remaining tasks and is returned.
func ForEach(ctx context.Context, c *Context, count int,
	fn func(ctx context.Context, record RecordID) error) error {

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i := 0; i < count; i++ {
		if gctx.Err() != nil {
			break
		}
		record := RecordID(i)
		g.Go(func() error {
			return fn(gctx, record)
		})
	}
	err := g.Wait()
	if err == nil && ctx.Err() != nil {
		err = mpcerr.Cancelled(ctx.Err())
	}
	return err
}
