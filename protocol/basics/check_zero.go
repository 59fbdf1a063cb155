//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package basics

import (
	"context"

	"github.com/cryo28/ipa/ff"
	"github.com/cryo28/ipa/protocol"
	"github.com/cryo28/ipa/prss"
	"github.com/cryo28/ipa/secret"
)

// Substeps of CheckZero.
const (
	StepMultiply = "multiply"
	StepReveal   = "reveal"
)

// CheckZero tests if the shared value is zero without revealing it.
// The value is multiplied by a shared random value r and the product
// is revealed; a non-zero value gives a uniformly random non-zero
// product unless r is zero, which happens with probability 1/p.
func CheckZero[F ff.Field[F]](ctx context.Context, c *protocol.Context,
	record protocol.RecordID, x secret.Replicated[F]) (bool, error) {

	ir, err := c.Indexed()
	if err != nil {
		return false, err
	}
	r := prss.Random[F](ir, record)

	rx, err := Multiply(ctx, c.Narrow(StepMultiply), record, r, x)
	if err != nil {
		return false, err
	}
	v, err := Reveal(ctx, c.Narrow(StepReveal), record, rx)
	if err != nil {
		return false, err
	}
	var zero F
	return v == zero, nil
}
