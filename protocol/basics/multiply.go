//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package basics implements the basic sub-protocols over replicated
// shares: multiplication, reveal, resharing, and the local
// operations that need the helper role.
package basics

import (
	"context"

	"github.com/cryo28/ipa/ff"
	"github.com/cryo28/ipa/gateway"
	"github.com/cryo28/ipa/mpcerr"
	"github.com/cryo28/ipa/protocol"
	"github.com/cryo28/ipa/prss"
	"github.com/cryo28/ipa/secret"
)

// Multiply computes the share of a·b. Each helper sends one field
// element to its left peer and receives one from its right peer.
func Multiply[F ff.Field[F]](ctx context.Context, c *protocol.Context,
	record protocol.RecordID, a, b secret.Replicated[F]) (
	secret.Replicated[F], error) {

	z := a.Left().Mul(b.Left()).
		Add(a.Left().Mul(b.Right())).
		Add(a.Right().Mul(b.Left()))

	return crossTerm(ctx, c, record, z)
}

// SumOfProducts computes the share of Σ aᵢ·bᵢ with the communication
// of one multiplication.
func SumOfProducts[F ff.Field[F]](ctx context.Context, c *protocol.Context,
	record protocol.RecordID, a, b []secret.Replicated[F]) (
	secret.Replicated[F], error) {

	if len(a) != len(b) {
		return secret.Replicated[F]{}, mpcerr.Arithmeticf(
			"sum of products: vector lengths differ: %d != %d",
			len(a), len(b))
	}
	var z F
	for i := range a {
		z = z.Add(a[i].Left().Mul(b[i].Left())).
			Add(a[i].Left().Mul(b[i].Right())).
			Add(a[i].Right().Mul(b[i].Left()))
	}
	return crossTerm(ctx, c, record, z)
}

// crossTerm masks the helper's additive share z with a zero sharing
// and converts the additive sharing into a replicated one.
func crossTerm[F ff.Field[F]](ctx context.Context, c *protocol.Context,
	record protocol.RecordID, z F) (secret.Replicated[F], error) {

	ir, err := c.Indexed()
	if err != nil {
		return secret.Replicated[F]{}, err
	}
	z = z.Add(prss.Zero[F](ir, record))

	role := c.Role()
	err = protocol.Send(ctx, c, role.Peer(gateway.Left), record, z)
	if err != nil {
		return secret.Replicated[F]{}, err
	}
	right, err := protocol.Receive[F](ctx, c, role.Peer(gateway.Right), record)
	if err != nil {
		return secret.Replicated[F]{}, err
	}
	return secret.New(z, right), nil
}

// MultiplyAll multiplies the vectors element-wise. Element i uses
// record i.
func MultiplyAll[F ff.Field[F]](ctx context.Context, c *protocol.Context,
	a, b []secret.Replicated[F]) ([]secret.Replicated[F], error) {

	if len(a) != len(b) {
		return nil, mpcerr.Arithmeticf("multiply: vector lengths differ: %d != %d",
			len(a), len(b))
	}
	c = c.SetTotalRecords(len(a))
	result := make([]secret.Replicated[F], len(a))

	err := protocol.ForEach(ctx, c, len(a),
		func(ctx context.Context, record protocol.RecordID) error {
			v, err := Multiply(ctx, c, record, a[record], b[record])
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
