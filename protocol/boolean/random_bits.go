//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package boolean implements sub-protocols producing secret shared
// bits.
package boolean

import (
	"context"
	"sync/atomic"

	"github.com/cryo28/ipa/ff"
	"github.com/cryo28/ipa/mpcerr"
	"github.com/cryo28/ipa/protocol"
	"github.com/cryo28/ipa/protocol/basics"
	"github.com/cryo28/ipa/prss"
	"github.com/cryo28/ipa/secret"
)

// Substeps of the random bits generator.
const (
	StepSquare   = "square"
	StepReveal   = "reveal"
	StepFallback = "fallback"
)

// MaxFallbackAttempts bounds the number of fallback draws for one
// bit.
const MaxFallbackAttempts = 4

// RandomBitsGenerator generates secret shared random bits with the
// square root method: for a shared random r, the helpers reveal
// s = r² and compute b = (r·√s⁻¹ + 1)/2, which is 0 or 1 with equal
// probability as r·√s⁻¹ = ±1. A draw with r = 0 is aborted and
// retried on the fallback step.
type RandomBitsGenerator[F ff.Field[F]] struct {
	c        *protocol.Context
	fallback *protocol.Context
	aborts   atomic.Uint64
}

// NewRandomBitsGenerator creates a new random bits generator for the
// context.
func NewRandomBitsGenerator[F ff.Field[F]](c *protocol.Context) (
	*RandomBitsGenerator[F], error) {

	var zero F
	if zero.Prime()%4 != 3 {
		return nil, mpcerr.Arithmeticf("random bits: unsupported field %s",
			ff.TypeOf(zero))
	}
	return &RandomBitsGenerator[F]{
		c:        c,
		fallback: c.Narrow(StepFallback),
	}, nil
}

// Aborts returns the number of aborted draws.
func (g *RandomBitsGenerator[F]) Aborts() uint64 {
	return g.aborts.Load()
}

// Generate generates the random bit of the record. Fallback attempt
// a of the record uses the fallback record record·MaxFallbackAttempts+a
// so that all helpers address the same draws.
func (g *RandomBitsGenerator[F]) Generate(ctx context.Context,
	record protocol.RecordID) (secret.Replicated[F], error) {

	bit, ok, err := g.draw(ctx, g.c, record)
	if err != nil || ok {
		return bit, err
	}
	for a := 0; a < MaxFallbackAttempts; a++ {
		g.aborts.Add(1)
		fr := record*MaxFallbackAttempts + protocol.RecordID(a)
		bit, ok, err = g.draw(ctx, g.fallback, fr)
		if err != nil || ok {
			return bit, err
		}
	}
	g.aborts.Add(1)
	return bit, mpcerr.Arithmeticf("random bit %d: %d draws aborted",
		record, MaxFallbackAttempts+1)
}

// GenerateAll generates count random bits.
func (g *RandomBitsGenerator[F]) GenerateAll(ctx context.Context,
	count int) ([]secret.Replicated[F], error) {

	result := make([]secret.Replicated[F], count)
	err := protocol.ForEach(ctx, g.c, count,
		func(ctx context.Context, record protocol.RecordID) error {
			bit, err := g.Generate(ctx, record)
			if err != nil {
				return err
			}
			result[record] = bit
			return nil
		})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (g *RandomBitsGenerator[F]) draw(ctx context.Context,
	c *protocol.Context, record protocol.RecordID) (
	secret.Replicated[F], bool, error) {

	var zero F

	ir, err := c.Indexed()
	if err != nil {
		return secret.Replicated[F]{}, false, err
	}
	r := prss.Random[F](ir, record)
	square, err := basics.Multiply(ctx, c.Narrow(StepSquare), record, r, r)
	if err != nil {
		return r, false, err
	}
	s, err := basics.Reveal(ctx, c.Narrow(StepReveal), record, square)
	if err != nil {
		return r, false, err
	}
	if s == zero {
		return r, false, nil
	}
	root, ok := ff.Sqrt(s)
	if !ok {
		return r, false, mpcerr.Arithmeticf("random bit %d: %s is not a square",
			record, s)
	}
	inv, err := ff.Inv(root)
	if err != nil {
		return r, false, err
	}
	two := zero.FromUint64(2)
	half, err := ff.Inv(two)
	if err != nil {
		return r, false, err
	}
	role := c.Role()
	bit := basics.AddConst(role, r.MulConst(inv), ff.One[F]()).MulConst(half)

	return bit, true, nil
}
