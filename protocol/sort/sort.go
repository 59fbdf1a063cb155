//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package sort

import (
	"context"

	"github.com/cryo28/ipa/ff"
	"github.com/cryo28/ipa/mpcerr"
	"github.com/cryo28/ipa/protocol"
	"github.com/cryo28/ipa/protocol/basics"
	"github.com/cryo28/ipa/secret"
	"github.com/cryo28/ipa/step"
)

// MaxKeyBits is the maximum number of sort key bits.
const MaxKeyBits = 32

// Substeps of one sort pass.
const (
	StepMultiply = "multiply"
	StepShuffle  = "shuffle"
	StepReveal   = "reveal"
)

// Sort sorts the rows by the key whose secret shared bits, least
// significant first, are in the columns keyBits. The bit columns must
// hold shares of 0 or 1. The sort is a stable radix sort with one
// pass per key bit.
//
// A pass computes each row's destination index from the bit and the
// prefix counts of ones, shuffles the rows together with their
// destinations, and reveals the shuffled destinations. The revealed
// values are a random permutation, so the helpers learn nothing
// about the key order when they place the rows.
func Sort[F ff.Field[F]](ctx context.Context, c *protocol.Context,
	rows Rows[F], keyBits []int) (Rows[F], error) {

	if err := rows.validate(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return rows, nil
	}
	if len(keyBits) > MaxKeyBits {
		return nil, mpcerr.Arithmeticf("too many key bits: %d > %d",
			len(keyBits), MaxKeyBits)
	}
	if err := ff.CheckCapacity[F](uint64(len(rows)), "sort records"); err != nil {
		return nil, err
	}
	width := rows.Width()
	for _, col := range keyBits {
		if col < 0 || col >= width {
			return nil, mpcerr.Arithmeticf("key column %d out of range [0,%d)",
				col, width)
		}
	}

	for bit, col := range keyBits {
		var err error
		rows, err = sortPass(ctx, c.Narrow(step.Index("bit", bit)), rows, col)
		if err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func sortPass[F ff.Field[F]](ctx context.Context, c *protocol.Context,
	rows Rows[F], col int) (Rows[F], error) {

	n := len(rows)
	role := c.Role()

	// ones[i] is the number of ones before row i.
	ones := make([]secret.Replicated[F], n)
	var sum secret.Replicated[F]
	for i, row := range rows {
		ones[i] = sum
		sum = sum.Add(row[col])
	}

	// dest = (i - ones) + b·(n - i - sum + 2·ones)
	var two F
	two = two.FromUint64(2)

	mc := c.Narrow(StepMultiply).SetTotalRecords(n)
	dests := make([]secret.Replicated[F], n)

	err := protocol.ForEach(ctx, mc, n,
		func(ctx context.Context, record protocol.RecordID) error {
			i := int(record)
			var zero F
			t := basics.ShareKnownValue(role, zero.FromUint64(uint64(n-i))).
				Sub(sum).Add(ones[i].MulConst(two))
			bt, err := basics.Multiply(ctx, mc, record, rows[i][col], t)
			if err != nil {
				return err
			}
			dests[i] = basics.ShareKnownValue(role, zero.FromUint64(uint64(i))).
				Sub(ones[i]).Add(bt)
			return nil
		})
	if err != nil {
		return nil, err
	}

	augmented := make(Rows[F], n)
	for i, row := range rows {
		augmented[i] = append(append([]secret.Replicated[F]{}, row...), dests[i])
	}
	shuffled, err := Shuffle(ctx, c.Narrow(StepShuffle), augmented)
	if err != nil {
		return nil, err
	}

	width := len(rows[0])
	var shares []secret.Replicated[F]
	for _, row := range shuffled {
		shares = append(shares, row[width])
	}
	revealed, err := basics.RevealAll(ctx, c.Narrow(StepReveal), shares)
	if err != nil {
		return nil, err
	}
	perm := make([]int, n)
	for i, v := range revealed {
		perm[i] = int(v.Uint64())
	}
	if err := ValidatePermutation(perm, n); err != nil {
		return nil, err
	}
	for i := range shuffled {
		shuffled[i] = shuffled[i][:width]
	}
	return ApplyInv(perm, shuffled), nil
}
