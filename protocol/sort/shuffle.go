//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package sort implements oblivious shuffling and sorting of secret
// shared rows.
package sort

import (
	"context"

	"github.com/cryo28/ipa/ff"
	"github.com/cryo28/ipa/gateway"
	"github.com/cryo28/ipa/mpcerr"
	"github.com/cryo28/ipa/protocol"
	"github.com/cryo28/ipa/protocol/basics"
	"github.com/cryo28/ipa/secret"
	"github.com/cryo28/ipa/step"
)

// Rows holds secret shared records, one row per record.
type Rows[F ff.Field[F]] [][]secret.Replicated[F]

// Width returns the number of columns of the rows.
func (rows Rows[F]) Width() int {
	if len(rows) == 0 {
		return 0
	}
	return len(rows[0])
}

func (rows Rows[F]) validate() error {
	w := rows.Width()
	for i, row := range rows {
		if len(row) != w {
			return mpcerr.Arithmeticf("row %d: width %d, expected %d",
				i, len(row), w)
		}
	}
	return nil
}

// Shuffle permutes the rows with a permutation that no helper knows.
// The shuffle runs in three rounds. In round k the two helpers other
// than Hₖ permute their shares with the permutation they share and
// then reshare the rows to Hₖ, which learns nothing about the
// permutation. Every pair of helpers applies one permutation, so
// each helper misses at least one of them.
func Shuffle[F ff.Field[F]](ctx context.Context, c *protocol.Context,
	rows Rows[F]) (Rows[F], error) {

	if err := rows.validate(); err != nil {
		return nil, err
	}
	role := c.Role()

	for round, to := range gateway.Roles {
		rc := c.Narrow(step.Index("round", round))

		if role != to {
			sr, err := rc.Sequential()
			if err != nil {
				return nil, err
			}
			if role == to.Peer(gateway.Right) {
				rows = Apply(sr.Right.Permutation(len(rows)), rows)
			} else {
				rows = Apply(sr.Left.Permutation(len(rows)), rows)
			}
		}

		var err error
		rows, err = reshareRows(ctx, rc, rows, to)
		if err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// reshareRows reshares all elements to the helper. Element (i, j)
// uses record i·width+j.
func reshareRows[F ff.Field[F]](ctx context.Context, c *protocol.Context,
	rows Rows[F], to gateway.Role) (Rows[F], error) {

	width := rows.Width()
	if width == 0 {
		return rows, nil
	}
	var flat []secret.Replicated[F]
	for _, row := range rows {
		flat = append(flat, row...)
	}
	flat, err := basics.ReshareAll(ctx, c, flat, to)
	if err != nil {
		return nil, err
	}
	result := make(Rows[F], len(rows))
	for i := range result {
		result[i] = flat[i*width : (i+1)*width]
	}
	return result, nil
}

// Apply permutes the values so that result[i] = values[perm[i]].
func Apply[T any](perm []int, values []T) []T {
	result := make([]T, len(values))
	for i, p := range perm {
		result[i] = values[p]
	}
	return result
}

// ApplyInv permutes the values with the inverse permutation so that
// result[perm[i]] = values[i]. The permutation must be valid.
func ApplyInv[T any](perm []int, values []T) []T {
	result := make([]T, len(values))
	for i, p := range perm {
		result[p] = values[i]
	}
	return result
}

// ValidatePermutation checks that perm is a permutation of [0, n).
func ValidatePermutation(perm []int, n int) error {
	if len(perm) != n {
		return mpcerr.Arithmeticf("permutation length %d, expected %d",
			len(perm), n)
	}
	seen := make([]bool, n)
	for i, p := range perm {
		if p < 0 || p >= n || seen[p] {
			return mpcerr.Arithmeticf("invalid permutation: %d at %d", p, i)
		}
		seen[p] = true
	}
	return nil
}
