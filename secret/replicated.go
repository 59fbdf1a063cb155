//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package secret implements three-party replicated secret sharing.
// A secret x is split into x₀+x₁+x₂ = x and helper i holds the pair
// (xᵢ, xᵢ₊₁). Any two helpers can reconstruct the secret and no
// single helper learns anything about it.
package secret

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cryo28/ipa/ff"
	"github.com/cryo28/ipa/mpcerr"
)

// Replicated holds one helper's share of a secret: the left element
// xᵢ and the right element xᵢ₊₁.
type Replicated[F ff.Field[F]] struct {
	left  F
	right F
}

// New creates a replicated share from its elements.
func New[F ff.Field[F]](left, right F) Replicated[F] {
	return Replicated[F]{
		left:  left,
		right: right,
	}
}

// Zero returns the share of zero that requires no randomness.
func Zero[F ff.Field[F]]() Replicated[F] {
	return Replicated[F]{}
}

// Left returns the left element of the share.
func (a Replicated[F]) Left() F {
	return a.left
}

// Right returns the right element of the share.
func (a Replicated[F]) Right() F {
	return a.right
}

// Add adds two shares locally.
func (a Replicated[F]) Add(b Replicated[F]) Replicated[F] {
	return Replicated[F]{
		left:  a.left.Add(b.left),
		right: a.right.Add(b.right),
	}
}

// Sub subtracts two shares locally.
func (a Replicated[F]) Sub(b Replicated[F]) Replicated[F] {
	return Replicated[F]{
		left:  a.left.Sub(b.left),
		right: a.right.Sub(b.right),
	}
}

// Neg negates the share locally.
func (a Replicated[F]) Neg() Replicated[F] {
	return Replicated[F]{
		left:  a.left.Neg(),
		right: a.right.Neg(),
	}
}

// MulConst multiplies the share with a public constant.
func (a Replicated[F]) MulConst(c F) Replicated[F] {
	return Replicated[F]{
		left:  a.left.Mul(c),
		right: a.right.Mul(c),
	}
}

func (a Replicated[F]) String() string {
	return fmt.Sprintf("(%v,%v)", a.left, a.right)
}

// Random returns a uniformly random field element.
func Random[F ff.Field[F]](rand io.Reader) (F, error) {
	var buf [16]byte
	if _, err := io.ReadFull(rand, buf[:]); err != nil {
		return ff.Zero[F](), err
	}
	var zero F
	return zero.FromUint128(binary.BigEndian.Uint64(buf[0:8]),
		binary.BigEndian.Uint64(buf[8:16])), nil
}

// Share splits the secret x into three replicated shares. Share i is
// handed to helper i.
func Share[F ff.Field[F]](x F, rand io.Reader) ([3]Replicated[F], error) {
	var result [3]Replicated[F]

	x0, err := Random[F](rand)
	if err != nil {
		return result, err
	}
	x1, err := Random[F](rand)
	if err != nil {
		return result, err
	}
	x2 := x.Sub(x0).Sub(x1)

	result[0] = New(x0, x1)
	result[1] = New(x1, x2)
	result[2] = New(x2, x0)

	return result, nil
}

// ShareAll splits all values into replicated shares. The result holds
// one vector for each helper.
func ShareAll[F ff.Field[F]](values []F, rand io.Reader) (
	[3][]Replicated[F], error) {

	var result [3][]Replicated[F]
	for i := range result {
		result[i] = make([]Replicated[F], len(values))
	}
	for idx, v := range values {
		shares, err := Share(v, rand)
		if err != nil {
			return result, err
		}
		for i := range result {
			result[i][idx] = shares[i]
		}
	}
	return result, nil
}

// Reconstruct recovers the secret from the shares of all three
// helpers. The element held by two helpers must agree.
func Reconstruct[F ff.Field[F]](shares [3]Replicated[F]) (F, error) {
	for i := 0; i < 3; i++ {
		if shares[i].right != shares[(i+1)%3].left {
			return ff.Zero[F](), mpcerr.Arithmeticf(
				"inconsistent shares: helper %d right %v, helper %d left %v",
				i+1, shares[i].right, (i+1)%3+1, shares[(i+1)%3].left)
		}
	}
	return shares[0].left.Add(shares[1].left).Add(shares[2].left), nil
}

// ReconstructAll recovers a vector of secrets.
func ReconstructAll[F ff.Field[F]](shares [3][]Replicated[F]) ([]F, error) {
	if len(shares[0]) != len(shares[1]) || len(shares[1]) != len(shares[2]) {
		return nil, mpcerr.Arithmeticf("share vector length mismatch: %d/%d/%d",
			len(shares[0]), len(shares[1]), len(shares[2]))
	}
	result := make([]F, len(shares[0]))
	for i := range result {
		v, err := Reconstruct([3]Replicated[F]{
			shares[0][i], shares[1][i], shares[2][i],
		})
		if err != nil {
			return nil, err
		}
		result[i] = v
	}
	return result, nil
}
