//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package prss implements pseudo-random secret sharing. Each pair of
// neighbouring helpers shares a key, established with an X25519 key
// exchange at the start of a query. From the shared keys the helpers
// derive correlated randomness without communication: zero sharings
// for multiplication, replicated sharings of unknown random values,
// and permutations known to exactly two helpers.
package prss

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"

	"github.com/cryo28/ipa/ff"
	"github.com/cryo28/ipa/gateway"
	"github.com/cryo28/ipa/mpcerr"
	"github.com/cryo28/ipa/secret"
	"github.com/cryo28/ipa/step"
)

// KeySize is the size of the pairwise shared keys.
const KeySize = chacha20.KeySize

// Key is a key shared between two neighbouring helpers.
type Key [KeySize]byte

// Endpoint holds the keys shared with the left and the right
// neighbour. The left key of helper Hᵢ equals the right key of
// helper Hᵢ₋₁.
type Endpoint struct {
	left  Key
	right Key
}

// NewEndpoint creates an endpoint from the shared keys.
func NewEndpoint(left, right Key) *Endpoint {
	return &Endpoint{
		left:  left,
		right: right,
	}
}

// Exchange establishes the shared keys with both peers of the
// gateway. The helpers exchange X25519 public keys at the argument
// gate and derive the pairwise keys with HKDF-SHA256.
func Exchange(ctx context.Context, gw *gateway.Gateway, gate step.Gate,
	rand io.Reader) (*Endpoint, error) {

	var priv [curve25519.ScalarSize]byte
	if _, err := io.ReadFull(rand, priv[:]); err != nil {
		return nil, err
	}
	pub, err := curve25519.X25519(priv[:], curve25519.Basepoint)
	if err != nil {
		return nil, err
	}

	role := gw.Role()
	for _, peer := range role.Peers() {
		if err := gw.Send(ctx, gate, peer, 0, pub); err != nil {
			return nil, err
		}
	}

	var keys [2]Key
	for i, peer := range role.Peers() {
		peerPub, err := gw.Receive(ctx, gate, peer, 0)
		if err != nil {
			return nil, err
		}
		shared, err := curve25519.X25519(priv[:], peerPub)
		if err != nil {
			return nil, mpcerr.Arithmeticf("invalid public key from %s: %s",
				peer, err)
		}
		keys[i], err = deriveKey(shared, role, peer)
		if err != nil {
			return nil, err
		}
	}
	return NewEndpoint(keys[0], keys[1]), nil
}

func deriveKey(shared []byte, a, b gateway.Role) (Key, error) {
	var key Key

	if a > b {
		a, b = b, a
	}
	info := []byte("prss " + a.String() + "-" + b.String())
	r := hkdf.New(sha256.New, shared, nil, info)
	if _, err := io.ReadFull(r, key[:]); err != nil {
		return key, err
	}
	return key, nil
}

func nonce(label string, gate step.Gate) []byte {
	h := sha256.New()
	h.Write([]byte(label))
	h.Write([]byte{0})
	h.Write([]byte(gate.String()))
	return h.Sum(nil)[:chacha20.NonceSize]
}

func newCipher(key Key, nonce []byte) (*chacha20.Cipher, error) {
	c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce)
	if err != nil {
		return nil, errors.Wrap(err, "prss cipher")
	}
	return c, nil
}

// Indexed returns the randomness generator of the gate, indexed by
// record ID.
func (e *Endpoint) Indexed(gate step.Gate) (*IndexedRandomness, error) {
	n := nonce("indexed", gate)
	left, err := newCipher(e.left, n)
	if err != nil {
		return nil, err
	}
	right, err := newCipher(e.right, n)
	if err != nil {
		return nil, err
	}
	return &IndexedRandomness{
		left:  left,
		right: right,
	}, nil
}

// Sequential returns the randomness streams of the gate.
func (e *Endpoint) Sequential(gate step.Gate) (*SequentialRandomness, error) {
	n := nonce("sequential", gate)
	left, err := newCipher(e.left, n)
	if err != nil {
		return nil, err
	}
	right, err := newCipher(e.right, n)
	if err != nil {
		return nil, err
	}
	return &SequentialRandomness{
		Left:  &Stream{c: left},
		Right: &Stream{c: right},
	}, nil
}

// IndexedRandomness generates randomness for individual records. The
// keyed cipher state is computed once per gate and copied for each
// record. It is safe for concurrent use.
type IndexedRandomness struct {
	left  *chacha20.Cipher
	right *chacha20.Cipher
}

func generate(proto *chacha20.Cipher, record gateway.RecordID) (hi, lo uint64) {
	c := *proto
	c.SetCounter(uint32(record))

	var buf [16]byte
	c.XORKeyStream(buf[:], buf[:])

	return binary.BigEndian.Uint64(buf[0:8]), binary.BigEndian.Uint64(buf[8:16])
}

// Generate returns the 128-bit values shared with the left and the
// right neighbour for the record.
func (ir *IndexedRandomness) Generate(record gateway.RecordID) (
	left, right [2]uint64) {

	left[0], left[1] = generate(ir.left, record)
	right[0], right[1] = generate(ir.right, record)
	return
}

// GenerateFields returns the field elements shared with the left and
// the right neighbour for the record.
func GenerateFields[F ff.Field[F]](ir *IndexedRandomness,
	record gateway.RecordID) (left, right F) {

	l, r := ir.Generate(record)
	var zero F
	return zero.FromUint128(l[0], l[1]), zero.FromUint128(r[0], r[1])
}

// Zero returns this helper's additive share of zero for the record.
// The shares of the three helpers sum to zero.
func Zero[F ff.Field[F]](ir *IndexedRandomness, record gateway.RecordID) F {
	l, r := GenerateFields[F](ir, record)
	return l.Sub(r)
}

// Random returns this helper's replicated share of a random value
// that no helper knows.
func Random[F ff.Field[F]](ir *IndexedRandomness,
	record gateway.RecordID) secret.Replicated[F] {

	l, r := GenerateFields[F](ir, record)
	return secret.New(l, r)
}

// SequentialRandomness holds the randomness streams shared with the
// left and the right neighbour.
type SequentialRandomness struct {
	Left  *Stream
	Right *Stream
}

// Stream implements a deterministic random stream. A Stream is not
// safe for concurrent use.
type Stream struct {
	c *chacha20.Cipher
}

// Uint64 returns the next 64 random bits of the stream.
func (s *Stream) Uint64() uint64 {
	var buf [8]byte
	s.c.XORKeyStream(buf[:], buf[:])
	return binary.BigEndian.Uint64(buf[:])
}

// Uint64n returns a uniformly random value in [0, n).
func (s *Stream) Uint64n(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	limit := (^uint64(0) / n) * n
	for {
		v := s.Uint64()
		if v < limit {
			return v % n
		}
	}
}

// Permutation returns a uniformly random permutation of [0, n).
func (s *Stream) Permutation(n int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := int(s.Uint64n(uint64(i + 1)))
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm
}
