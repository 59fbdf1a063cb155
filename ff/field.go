//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package ff implements prime field arithmetic for the secret sharing
// and protocol packages. All protocol code is generic over the
// Field constraint so that the field can be selected when a query is
// loaded.
package ff

import (
	"strings"

	"github.com/cryo28/ipa/mpcerr"
)

// Field defines the operations of a prime field element. Values are
// always canonical in [0, p) so equality is exact equality.
type Field[F any] interface {
	comparable

	Add(o F) F
	Sub(o F) F
	Mul(o F) F
	Neg() F

	// Uint64 returns the canonical integer representation.
	Uint64() uint64

	// Prime returns the field modulus.
	Prime() uint64

	// Bits returns the number of bits needed to represent the
	// field elements.
	Bits() int

	// Size returns the size of the serialized element in bytes.
	Size() int

	// FromUint64 reduces v modulo the field prime.
	FromUint64(v uint64) F

	// FromUint128 reduces the 128-bit value hi:lo modulo the field
	// prime. It is used to map uniformly random bytes into the field
	// with negligible bias.
	FromUint128(hi, lo uint64) F

	String() string
}

// New creates a field element from v, reduced modulo the field prime.
func New[F Field[F]](v uint64) F {
	var zero F
	return zero.FromUint64(v)
}

// Zero returns the additive identity.
func Zero[F Field[F]]() F {
	var zero F
	return zero
}

// One returns the multiplicative identity.
func One[F Field[F]]() F {
	return New[F](1)
}

// Prime returns the modulus of the field F.
func Prime[F Field[F]]() uint64 {
	var zero F
	return zero.Prime()
}

// Size returns the serialized size of the field F elements.
func Size[F Field[F]]() int {
	var zero F
	return zero.Size()
}

// Pow computes x^e.
func Pow[F Field[F]](x F, e uint64) F {
	result := One[F]()
	for e > 0 {
		if e&1 == 1 {
			result = result.Mul(x)
		}
		x = x.Mul(x)
		e >>= 1
	}
	return result
}

// Inv computes the multiplicative inverse of x.
func Inv[F Field[F]](x F) (F, error) {
	if x == Zero[F]() {
		return x, mpcerr.Arithmeticf("inverse of zero")
	}
	return Pow(x, x.Prime()-2), nil
}

// Sqrt computes a square root of x. The function supports primes
// p = 3 mod 4 and returns false if x is not a quadratic residue.
func Sqrt[F Field[F]](x F) (F, bool) {
	p := x.Prime()
	if p%4 != 3 {
		return x, false
	}
	r := Pow(x, (p+1)/4)
	if r.Mul(r) != x {
		return r, false
	}
	return r, true
}

// CheckCapacity verifies that the field F can represent all values
// in [0, bound] without wrapping.
func CheckCapacity[F Field[F]](bound uint64, what string) error {
	p := Prime[F]()
	if bound >= p {
		var zero F
		return mpcerr.Arithmeticf("field %s too small for %s: %d >= %d",
			TypeOf(zero), what, bound, p)
	}
	return nil
}

// Marshal encodes x into buf in big-endian byte order. The buffer
// must have room for Size bytes.
func Marshal[F Field[F]](x F, buf []byte) {
	v := x.Uint64()
	for i := x.Size() - 1; i >= 0; i-- {
		buf[i] = byte(v)
		v >>= 8
	}
}

// Unmarshal decodes a field element from buf. Encodings outside the
// field range are rejected.
func Unmarshal[F Field[F]](buf []byte) (F, error) {
	var zero F
	if len(buf) < zero.Size() {
		return zero, mpcerr.Arithmeticf("truncated %s element: %d bytes",
			TypeOf(zero), len(buf))
	}
	var v uint64
	for i := 0; i < zero.Size(); i++ {
		v <<= 8
		v |= uint64(buf[i])
	}
	if v >= zero.Prime() {
		return zero, mpcerr.Arithmeticf("value %d out of range for %s",
			v, TypeOf(zero))
	}
	return zero.FromUint64(v), nil
}

// Type identifies a field.
type Type string

// Supported fields.
const (
	TypeFp31         Type = "fp31"
	TypeFp32BitPrime Type = "fp32bitprime"
	TypeFp61BitPrime Type = "fp61bitprime"
)

// Types lists all supported fields.
var Types = []Type{
	TypeFp31,
	TypeFp32BitPrime,
	TypeFp61BitPrime,
}

// ParseType parses the field name.
func ParseType(name string) (Type, error) {
	lower := Type(strings.ToLower(name))
	for _, t := range Types {
		if t == lower {
			return t, nil
		}
	}
	return "", mpcerr.Arithmeticf("unknown field type '%s'", name)
}

// Secure reports if the field is large enough for production use.
func (t Type) Secure() bool {
	return t != TypeFp31
}

// Prime returns the prime modulus of the field.
func (t Type) Prime() uint64 {
	switch t {
	case TypeFp31:
		return Prime[Fp31]()
	case TypeFp32BitPrime:
		return Prime[Fp32BitPrime]()
	case TypeFp61BitPrime:
		return Prime[Fp61BitPrime]()
	default:
		return 0
	}
}

// TypeOf returns the type of the field element.
func TypeOf(x interface{}) Type {
	switch x.(type) {
	case Fp31:
		return TypeFp31
	case Fp32BitPrime:
		return TypeFp32BitPrime
	case Fp61BitPrime:
		return TypeFp61BitPrime
	default:
		return ""
	}
}
