//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ff

import (
	"math/bits"
	"strconv"
)

const (
	fp31Prime         = 31
	fp32BitPrimePrime = 4294967291
	fp61BitPrimePrime = (1 << 61) - 1
)

var (
	_ = isField[Fp31]
	_ = isField[Fp32BitPrime]
	_ = isField[Fp61BitPrime]
)

// isField fails to instantiate unless F implements Field.
func isField[F Field[F]]() {}

// Fp31 implements the field of integers modulo 31. It is a toy field
// for tests and examples. It is not secure.
type Fp31 uint8

// Add implements Field.Add.
func (a Fp31) Add(b Fp31) Fp31 {
	return Fp31((uint32(a) + uint32(b)) % fp31Prime)
}

// Sub implements Field.Sub.
func (a Fp31) Sub(b Fp31) Fp31 {
	return Fp31((uint32(a) + fp31Prime - uint32(b)) % fp31Prime)
}

// Mul implements Field.Mul.
func (a Fp31) Mul(b Fp31) Fp31 {
	return Fp31((uint32(a) * uint32(b)) % fp31Prime)
}

// Neg implements Field.Neg.
func (a Fp31) Neg() Fp31 {
	return Fp31((fp31Prime - uint32(a)) % fp31Prime)
}

// Uint64 implements Field.Uint64.
func (a Fp31) Uint64() uint64 {
	return uint64(a)
}

// Prime implements Field.Prime.
func (a Fp31) Prime() uint64 {
	return fp31Prime
}

// Bits implements Field.Bits.
func (a Fp31) Bits() int {
	return 5
}

// Size implements Field.Size.
func (a Fp31) Size() int {
	return 1
}

// FromUint64 implements Field.FromUint64.
func (a Fp31) FromUint64(v uint64) Fp31 {
	return Fp31(v % fp31Prime)
}

// FromUint128 implements Field.FromUint128.
func (a Fp31) FromUint128(hi, lo uint64) Fp31 {
	return Fp31(bits.Rem64(hi, lo, fp31Prime))
}

func (a Fp31) String() string {
	return strconv.FormatUint(uint64(a), 10)
}

// Fp32BitPrime implements the field of integers modulo the largest
// 32-bit prime 2^32-5.
type Fp32BitPrime uint32

// Add implements Field.Add.
func (a Fp32BitPrime) Add(b Fp32BitPrime) Fp32BitPrime {
	return Fp32BitPrime((uint64(a) + uint64(b)) % fp32BitPrimePrime)
}

// Sub implements Field.Sub.
func (a Fp32BitPrime) Sub(b Fp32BitPrime) Fp32BitPrime {
	return Fp32BitPrime(
		(uint64(a) + fp32BitPrimePrime - uint64(b)) % fp32BitPrimePrime)
}

// Mul implements Field.Mul.
func (a Fp32BitPrime) Mul(b Fp32BitPrime) Fp32BitPrime {
	return Fp32BitPrime((uint64(a) * uint64(b)) % fp32BitPrimePrime)
}

// Neg implements Field.Neg.
func (a Fp32BitPrime) Neg() Fp32BitPrime {
	return Fp32BitPrime((fp32BitPrimePrime - uint64(a)) % fp32BitPrimePrime)
}

// Uint64 implements Field.Uint64.
func (a Fp32BitPrime) Uint64() uint64 {
	return uint64(a)
}

// Prime implements Field.Prime.
func (a Fp32BitPrime) Prime() uint64 {
	return fp32BitPrimePrime
}

// Bits implements Field.Bits.
func (a Fp32BitPrime) Bits() int {
	return 32
}

// Size implements Field.Size.
func (a Fp32BitPrime) Size() int {
	return 4
}

// FromUint64 implements Field.FromUint64.
func (a Fp32BitPrime) FromUint64(v uint64) Fp32BitPrime {
	return Fp32BitPrime(v % fp32BitPrimePrime)
}

// FromUint128 implements Field.FromUint128.
func (a Fp32BitPrime) FromUint128(hi, lo uint64) Fp32BitPrime {
	return Fp32BitPrime(bits.Rem64(hi, lo, fp32BitPrimePrime))
}

func (a Fp32BitPrime) String() string {
	return strconv.FormatUint(uint64(a), 10)
}

// Fp61BitPrime implements the field of integers modulo the Mersenne
// prime 2^61-1.
type Fp61BitPrime uint64

// Add implements Field.Add.
func (a Fp61BitPrime) Add(b Fp61BitPrime) Fp61BitPrime {
	return Fp61BitPrime((uint64(a) + uint64(b)) % fp61BitPrimePrime)
}

// Sub implements Field.Sub.
func (a Fp61BitPrime) Sub(b Fp61BitPrime) Fp61BitPrime {
	return Fp61BitPrime(
		(uint64(a) + fp61BitPrimePrime - uint64(b)) % fp61BitPrimePrime)
}

// Mul implements Field.Mul.
func (a Fp61BitPrime) Mul(b Fp61BitPrime) Fp61BitPrime {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	return Fp61BitPrime(bits.Rem64(hi, lo, fp61BitPrimePrime))
}

// Neg implements Field.Neg.
func (a Fp61BitPrime) Neg() Fp61BitPrime {
	return Fp61BitPrime((fp61BitPrimePrime - uint64(a)) % fp61BitPrimePrime)
}

// Uint64 implements Field.Uint64.
func (a Fp61BitPrime) Uint64() uint64 {
	return uint64(a)
}

// Prime implements Field.Prime.
func (a Fp61BitPrime) Prime() uint64 {
	return fp61BitPrimePrime
}

// Bits implements Field.Bits.
func (a Fp61BitPrime) Bits() int {
	return 61
}

// Size implements Field.Size.
func (a Fp61BitPrime) Size() int {
	return 8
}

// FromUint64 implements Field.FromUint64.
func (a Fp61BitPrime) FromUint64(v uint64) Fp61BitPrime {
	return Fp61BitPrime(v % fp61BitPrimePrime)
}

// FromUint128 implements Field.FromUint128.
func (a Fp61BitPrime) FromUint128(hi, lo uint64) Fp61BitPrime {
	return Fp61BitPrime(bits.Rem64(hi, lo, fp61BitPrimePrime))
}

func (a Fp61BitPrime) String() string {
	return strconv.FormatUint(uint64(a), 10)
}
