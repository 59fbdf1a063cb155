//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ff

import (
	"math/rand"
	"testing"

	"github.com/cryo28/ipa/mpcerr"
	"github.com/stretchr/testify/require"
)

func testAxioms[F Field[F]](t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	zero := Zero[F]()
	one := One[F]()

	for i := 0; i < 1000; i++ {
		a := New[F](rnd.Uint64())
		b := New[F](rnd.Uint64())
		c := New[F](rnd.Uint64())

		require.Less(t, a.Uint64(), a.Prime())
		require.Equal(t, a.Add(b), b.Add(a))
		require.Equal(t, a.Mul(b), b.Mul(a))
		require.Equal(t, a.Add(b).Add(c), a.Add(b.Add(c)))
		require.Equal(t, a.Mul(b).Mul(c), a.Mul(b.Mul(c)))
		require.Equal(t, a.Mul(b.Add(c)), a.Mul(b).Add(a.Mul(c)))
		require.Equal(t, a, a.Add(zero))
		require.Equal(t, a, a.Mul(one))
		require.Equal(t, zero, a.Add(a.Neg()))
		require.Equal(t, a, a.Sub(b).Add(b))

		if a != zero {
			inv, err := Inv(a)
			require.NoError(t, err)
			require.Equal(t, one, a.Mul(inv))
		}

		sq := a.Mul(a)
		r, ok := Sqrt(sq)
		require.True(t, ok)
		require.Equal(t, sq, r.Mul(r))
	}
}

func TestAxioms(t *testing.T) {
	t.Run("fp31", testAxioms[Fp31])
	t.Run("fp32bitprime", testAxioms[Fp32BitPrime])
	t.Run("fp61bitprime", testAxioms[Fp61BitPrime])
}

func TestWrap(t *testing.T) {
	require.Equal(t, Fp31(1), Fp31(30).Add(Fp31(2)))
	require.Equal(t, Fp31(30), Fp31(0).Sub(Fp31(1)))
	require.Equal(t, Fp31(0), Fp31(0).Neg())
	require.Equal(t, Fp31(4), New[Fp31](35))

	max := New[Fp32BitPrime](fp32BitPrimePrime - 1)
	require.Equal(t, Fp32BitPrime(1), max.Mul(max))

	max61 := New[Fp61BitPrime](fp61BitPrimePrime - 1)
	require.Equal(t, Fp61BitPrime(1), max61.Mul(max61))
	require.Equal(t, Fp61BitPrime(0), max61.Add(New[Fp61BitPrime](1)))
}

func TestInvZero(t *testing.T) {
	_, err := Inv(Zero[Fp32BitPrime]())
	require.Equal(t, mpcerr.KindArithmetic, mpcerr.KindOf(err))
}

func TestSqrtNonResidue(t *testing.T) {
	// 3 is not a quadratic residue modulo 31.
	_, ok := Sqrt(Fp31(3))
	require.False(t, ok)
}

var marshalTests = []uint64{
	0, 1, 30,
}

func TestMarshal(t *testing.T) {
	var buf [8]byte
	for _, v := range marshalTests {
		x := New[Fp31](v)
		Marshal(x, buf[:])
		y, err := Unmarshal[Fp31](buf[:1])
		require.NoError(t, err)
		require.Equal(t, x, y)
	}

	x := New[Fp61BitPrime](0x0102030405060708)
	Marshal(x, buf[:])
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, buf[:])
}

func TestUnmarshalRange(t *testing.T) {
	_, err := Unmarshal[Fp31]([]byte{31})
	require.Equal(t, mpcerr.KindArithmetic, mpcerr.KindOf(err))

	_, err = Unmarshal[Fp32BitPrime]([]byte{0xff, 0xff, 0xff, 0xfb})
	require.Equal(t, mpcerr.KindArithmetic, mpcerr.KindOf(err))

	v, err := Unmarshal[Fp32BitPrime]([]byte{0xff, 0xff, 0xff, 0xfa})
	require.NoError(t, err)
	require.Equal(t, uint64(fp32BitPrimePrime-1), v.Uint64())

	_, err = Unmarshal[Fp32BitPrime]([]byte{0xff})
	require.Equal(t, mpcerr.KindArithmetic, mpcerr.KindOf(err))
}

func TestCheckCapacity(t *testing.T) {
	require.NoError(t, CheckCapacity[Fp31](30, "records"))
	require.Equal(t, mpcerr.KindArithmetic,
		mpcerr.KindOf(CheckCapacity[Fp31](31, "records")))
	require.NoError(t, CheckCapacity[Fp32BitPrime](1<<31, "records"))
}

func TestParseType(t *testing.T) {
	for _, typ := range Types {
		parsed, err := ParseType(string(typ))
		require.NoError(t, err)
		require.Equal(t, typ, parsed)
	}
	parsed, err := ParseType("Fp31")
	require.NoError(t, err)
	require.Equal(t, TypeFp31, parsed)
	require.False(t, parsed.Secure())

	_, err = ParseType("fp7")
	require.Error(t, err)

	require.Equal(t, TypeFp61BitPrime, TypeOf(Fp61BitPrime(1)))
	require.Equal(t, uint64(31), TypeFp31.Prime())
	require.Equal(t, Prime[Fp61BitPrime](), TypeFp61BitPrime.Prime())
}
