//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package secret

import (
	"crypto/rand"
	mrand "math/rand"
	"testing"

	"github.com/cryo28/ipa/ff"
	"github.com/cryo28/ipa/mpcerr"
	"github.com/stretchr/testify/require"
)

func testShareReconstruct[F ff.Field[F]](t *testing.T) {
	rnd := mrand.New(mrand.NewSource(1))
	for i := 0; i < 200; i++ {
		x := ff.New[F](rnd.Uint64())
		shares, err := Share(x, rand.Reader)
		require.NoError(t, err)

		v, err := Reconstruct(shares)
		require.NoError(t, err)
		require.Equal(t, x, v)
	}
}

func TestShareReconstruct(t *testing.T) {
	t.Run("fp31", testShareReconstruct[ff.Fp31])
	t.Run("fp32bitprime", testShareReconstruct[ff.Fp32BitPrime])
	t.Run("fp61bitprime", testShareReconstruct[ff.Fp61BitPrime])
}

func TestHomomorphism(t *testing.T) {
	rnd := mrand.New(mrand.NewSource(2))
	for i := 0; i < 200; i++ {
		x := ff.New[ff.Fp32BitPrime](rnd.Uint64())
		y := ff.New[ff.Fp32BitPrime](rnd.Uint64())
		c := ff.New[ff.Fp32BitPrime](rnd.Uint64())

		xs, err := Share(x, rand.Reader)
		require.NoError(t, err)
		ys, err := Share(y, rand.Reader)
		require.NoError(t, err)

		var sum, diff, neg, scaled [3]Replicated[ff.Fp32BitPrime]
		for j := 0; j < 3; j++ {
			sum[j] = xs[j].Add(ys[j])
			diff[j] = xs[j].Sub(ys[j])
			neg[j] = xs[j].Neg()
			scaled[j] = xs[j].MulConst(c)
		}

		v, err := Reconstruct(sum)
		require.NoError(t, err)
		require.Equal(t, x.Add(y), v)

		v, err = Reconstruct(diff)
		require.NoError(t, err)
		require.Equal(t, x.Sub(y), v)

		v, err = Reconstruct(neg)
		require.NoError(t, err)
		require.Equal(t, x.Neg(), v)

		v, err = Reconstruct(scaled)
		require.NoError(t, err)
		require.Equal(t, x.Mul(c), v)
	}
}

func TestReconstructInconsistent(t *testing.T) {
	shares, err := Share(ff.Fp31(7), rand.Reader)
	require.NoError(t, err)

	shares[1] = New(shares[1].Left().Add(ff.Fp31(1)), shares[1].Right())
	_, err = Reconstruct(shares)
	require.Equal(t, mpcerr.KindArithmetic, mpcerr.KindOf(err))
}

func TestShareAll(t *testing.T) {
	values := []ff.Fp31{3, 5, 7}
	shares, err := ShareAll(values, rand.Reader)
	require.NoError(t, err)

	result, err := ReconstructAll(shares)
	require.NoError(t, err)
	require.Equal(t, values, result)

	shares[2] = shares[2][:2]
	_, err = ReconstructAll(shares)
	require.Error(t, err)
}

func TestEncoding(t *testing.T) {
	shares := []Replicated[ff.Fp32BitPrime]{
		New[ff.Fp32BitPrime](1, 2),
		New[ff.Fp32BitPrime](4294967290, 0),
	}
	data := AppendShares(nil, shares)
	require.Len(t, data, EncodedSize[ff.Fp32BitPrime](len(shares)))

	parsed, err := ParseShares[ff.Fp32BitPrime](data)
	require.NoError(t, err)
	require.Equal(t, shares, parsed)

	_, err = ParseShares[ff.Fp32BitPrime](data[1:])
	require.Equal(t, mpcerr.KindArithmetic, mpcerr.KindOf(err))

	_, err = ParseShares[ff.Fp31]([]byte{1, 31})
	require.Equal(t, mpcerr.KindArithmetic, mpcerr.KindOf(err))
}
