//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package basics

import (
	"context"

	"github.com/cryo28/ipa/ff"
	"github.com/cryo28/ipa/gateway"
	"github.com/cryo28/ipa/protocol"
	"github.com/cryo28/ipa/prss"
	"github.com/cryo28/ipa/secret"
)

// Reshare creates a fresh sharing of x that the target helper learns
// nothing from. The target's new share is pure randomness shared
// with its peers; the two other helpers compute the remaining
// element together. Only the two non-target helpers communicate.
//
// With r₀ and r₁ the helper's left and right randomness of the
// record, the new elements are x'ₜ = r₀(Hₜ), x'ₜ₊₁ = r₁(Hₜ), and
// x'ₜ₊₂ = x − x'ₜ − x'ₜ₊₁.
func Reshare[F ff.Field[F]](ctx context.Context, c *protocol.Context,
	record protocol.RecordID, x secret.Replicated[F], to gateway.Role) (
	secret.Replicated[F], error) {

	ir, err := c.Indexed()
	if err != nil {
		return secret.Replicated[F]{}, err
	}
	r0, r1 := prss.GenerateFields[F](ir, record)
	role := c.Role()

	switch role {
	case to:
		return secret.New(r0, r1), nil

	case to.Peer(gateway.Right):
		// Holds xₜ₊₁ and xₜ₊₂; r₀ is x'ₜ₊₁.
		part := x.Left().Add(x.Right()).Sub(r0)
		other, err := exchange(ctx, c, record, role.Peer(gateway.Right), part)
		if err != nil {
			return secret.Replicated[F]{}, err
		}
		return secret.New(r0, part.Add(other)), nil

	default:
		// Holds xₜ₊₂ and xₜ; r₁ is x'ₜ.
		part := x.Right().Sub(r1)
		other, err := exchange(ctx, c, record, role.Peer(gateway.Left), part)
		if err != nil {
			return secret.Replicated[F]{}, err
		}
		return secret.New(part.Add(other), r1), nil
	}
}

func exchange[F ff.Field[F]](ctx context.Context, c *protocol.Context,
	record protocol.RecordID, peer gateway.Role, v F) (F, error) {

	if err := protocol.Send(ctx, c, peer, record, v); err != nil {
		var zero F
		return zero, err
	}
	return protocol.Receive[F](ctx, c, peer, record)
}

// ReshareAll reshares the vector to the target helper. Element i
// uses record i.
func ReshareAll[F ff.Field[F]](ctx context.Context, c *protocol.Context,
	x []secret.Replicated[F], to gateway.Role) ([]secret.Replicated[F], error) {

	c = c.SetTotalRecords(len(x))
	result := make([]secret.Replicated[F], len(x))

	err := protocol.ForEach(ctx, c, len(x),
		func(ctx context.Context, record protocol.RecordID) error {
			v, err := Reshare(ctx, c, record, x[record], to)
			if err != nil {
				return err
			}
			result[record] = v
			return nil
		})
	if err != nil {
		return nil, err
	}
	return result, nil
}
