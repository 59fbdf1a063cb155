//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package basics

import (
	"context"
	"crypto/rand"
	mrand "math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cryo28/ipa/ff"
	"github.com/cryo28/ipa/gateway"
	"github.com/cryo28/ipa/mpcerr"
	"github.com/cryo28/ipa/protocol"
	"github.com/cryo28/ipa/secret"
	"github.com/cryo28/ipa/step"
	"github.com/cryo28/ipa/testworld"
)

var modes = []step.Mode{step.ModeDescriptive, step.ModeCompact}

type vector = []secret.Replicated[ff.Fp32BitPrime]

func newWorld(t *testing.T, mode step.Mode) *testworld.World {
	config := testworld.DefaultConfig()
	config.Mode = mode
	w, err := testworld.New(config)
	require.NoError(t, err)
	t.Cleanup(w.Close)
	return w
}

func randomValues(seed int64, n int) []ff.Fp32BitPrime {
	rnd := mrand.New(mrand.NewSource(seed))
	result := make([]ff.Fp32BitPrime, n)
	for i := range result {
		result[i] = ff.New[ff.Fp32BitPrime](rnd.Uint64())
	}
	return result
}

func share(t *testing.T, values []ff.Fp32BitPrime) [3]vector {
	shares, err := secret.ShareAll(values, rand.Reader)
	require.NoError(t, err)
	return shares
}

func reconstruct(t *testing.T, shares [3]vector) []ff.Fp32BitPrime {
	values, err := secret.ReconstructAll(shares)
	require.NoError(t, err)
	return values
}

func TestMultiply(t *testing.T) {
	const n = 100
	a := randomValues(1, n)
	b := randomValues(2, n)
	as := share(t, a)
	bs := share(t, b)

	var results [][]ff.Fp32BitPrime
	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			w := newWorld(t, mode)
			shares, err := testworld.Run(context.Background(), w,
				func(ctx context.Context, c *protocol.Context) (vector, error) {
					r := c.Role()
					return MultiplyAll(ctx, c.Narrow("multiply"), as[r], bs[r])
				})
			require.NoError(t, err)

			values := reconstruct(t, shares)
			for i := range values {
				require.Equal(t, a[i].Mul(b[i]), values[i])
			}
			results = append(results, values)
		})
	}
	require.Len(t, results, 2)
	require.Equal(t, results[0], results[1])
}

func TestMultiplyFp31(t *testing.T) {
	w := newWorld(t, step.ModeCompact)
	var a, b []ff.Fp31
	for i := 0; i < 31; i++ {
		a = append(a, ff.New[ff.Fp31](uint64(i)))
		b = append(b, ff.New[ff.Fp31](uint64(30-i)))
	}
	as, err := secret.ShareAll(a, rand.Reader)
	require.NoError(t, err)
	bs, err := secret.ShareAll(b, rand.Reader)
	require.NoError(t, err)

	shares, err := testworld.Run(context.Background(), w,
		func(ctx context.Context, c *protocol.Context) (
			[]secret.Replicated[ff.Fp31], error) {
			r := c.Role()
			return MultiplyAll(ctx, c.Narrow("multiply"), as[r], bs[r])
		})
	require.NoError(t, err)

	values, err := secret.ReconstructAll(shares)
	require.NoError(t, err)
	for i := range values {
		require.Equal(t, a[i].Mul(b[i]), values[i])
	}
}

func TestReveal(t *testing.T) {
	values := randomValues(3, 50)
	shares := share(t, values)

	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			w := newWorld(t, mode)
			revealed, err := testworld.Run(context.Background(), w,
				func(ctx context.Context, c *protocol.Context) (
					[]ff.Fp32BitPrime, error) {
					return RevealAll(ctx, c.Narrow("sum").Narrow("reveal"),
						shares[c.Role()])
				})
			require.NoError(t, err)
			for _, r := range gateway.Roles {
				require.Equal(t, values, revealed[r])
			}
		})
	}
}

func TestSumOfProducts(t *testing.T) {
	a := randomValues(4, 20)
	b := randomValues(5, 20)
	as := share(t, a)
	bs := share(t, b)

	var expected ff.Fp32BitPrime
	for i := range a {
		expected = expected.Add(a[i].Mul(b[i]))
	}

	w := newWorld(t, step.ModeCompact)
	shares, err := testworld.Run(context.Background(), w,
		func(ctx context.Context, c *protocol.Context) (
			secret.Replicated[ff.Fp32BitPrime], error) {
			r := c.Role()
			sc := c.Narrow("dot_product").Narrow("sum_of_products").
				SetTotalRecords(1)
			return SumOfProducts(ctx, sc, 0, as[r], bs[r])
		})
	require.NoError(t, err)

	v, err := secret.Reconstruct(shares)
	require.NoError(t, err)
	require.Equal(t, expected, v)
}

func TestSumOfProductsLength(t *testing.T) {
	w := newWorld(t, step.ModeDescriptive)
	_, err := testworld.Run(context.Background(), w,
		func(ctx context.Context, c *protocol.Context) (
			secret.Replicated[ff.Fp32BitPrime], error) {
			return SumOfProducts(ctx, c, 0, make(vector, 2), make(vector, 3))
		})
	require.Error(t, err)
	require.Equal(t, mpcerr.KindArithmetic, mpcerr.KindOf(err))
}

func TestReshare(t *testing.T) {
	values := randomValues(6, 30)
	shares := share(t, values)

	for _, to := range gateway.Roles {
		t.Run(to.String(), func(t *testing.T) {
			w := newWorld(t, step.ModeCompact)
			result, err := testworld.Run(context.Background(), w,
				func(ctx context.Context, c *protocol.Context) (vector, error) {
					return ReshareAll(ctx, c.Narrow("reshare"),
						shares[c.Role()], to)
				})
			require.NoError(t, err)
			require.Equal(t, values, reconstruct(t, result))

			for i := range values {
				require.NotEqual(t, shares[to][i], result[to][i])
			}
		})
	}
}

func TestShareKnownValue(t *testing.T) {
	c := ff.New[ff.Fp31](17)
	var shares [3]secret.Replicated[ff.Fp31]
	for _, r := range gateway.Roles {
		shares[r] = ShareKnownValue(r, c)
	}
	v, err := secret.Reconstruct(shares)
	require.NoError(t, err)
	require.Equal(t, c, v)

	x, err := secret.Share(ff.New[ff.Fp31](20), rand.Reader)
	require.NoError(t, err)
	for _, r := range gateway.Roles {
		shares[r] = AddConst(r, x[r], c)
	}
	v, err = secret.Reconstruct(shares)
	require.NoError(t, err)
	require.Equal(t, ff.New[ff.Fp31](6), v)
}

func TestCheckZero(t *testing.T) {
	values := []ff.Fp32BitPrime{0, 1, 0, 12345}
	shares := share(t, values)

	w := newWorld(t, step.ModeCompact)
	result, err := testworld.Run(context.Background(), w,
		func(ctx context.Context, c *protocol.Context) ([]bool, error) {
			cc := c.Narrow("check_zero")
			var zero []bool
			for i, x := range shares[c.Role()] {
				z, err := CheckZero(ctx, cc, protocol.RecordID(i), x)
				if err != nil {
					return nil, err
				}
				zero = append(zero, z)
			}
			return zero, nil
		})
	require.NoError(t, err)
	for _, r := range gateway.Roles {
		require.Equal(t, []bool{true, false, true, false}, result[r])
	}
}

func TestUnknownCompactStep(t *testing.T) {
	values := randomValues(7, 4)
	shares := share(t, values)

	w := newWorld(t, step.ModeCompact)
	_, err := testworld.Run(context.Background(), w,
		func(ctx context.Context, c *protocol.Context) (vector, error) {
			r := c.Role()
			return MultiplyAll(ctx, c.Narrow("no_such_step"),
				shares[r], shares[r])
		})
	require.Error(t, err)
	require.Equal(t, mpcerr.KindAddressing, mpcerr.KindOf(err))
}

func TestUnknownStepReportedByAll(t *testing.T) {
	values := randomValues(8, 4)
	shares := share(t, values)

	// Helpers that learn about the failure from a peer report the
	// peer's error kind.
	w := newWorld(t, step.ModeCompact)
	_, errs := testworld.RunEach(context.Background(), w,
		func(ctx context.Context, c *protocol.Context) (vector, error) {
			r := c.Role()
			return MultiplyAll(ctx, c.Narrow("no_such_step"),
				shares[r], shares[r])
		})
	for r, err := range errs {
		require.Error(t, err, "helper %d", r)
		require.Equal(t, mpcerr.KindAddressing, mpcerr.KindOf(err),
			"helper %d: %v", r, err)
		require.False(t, mpcerr.Retryable(err))
	}
}

func TestConcurrentInstances(t *testing.T) {
	// Many concurrent sub-protocol instances under distinct steps of
	// one query must not cross-talk.
	const instances = 16
	const n = 8

	var inputs [instances][3]vector
	var expected [instances][]ff.Fp32BitPrime
	for i := range inputs {
		a := randomValues(int64(100+i), n)
		inputs[i] = share(t, a)
		for _, v := range a {
			expected[i] = append(expected[i], v.Mul(v))
		}
	}

	w := newWorld(t, step.ModeDescriptive)
	result, err := testworld.Run(context.Background(), w,
		func(ctx context.Context, c *protocol.Context) ([instances]vector, error) {
			var out [instances]vector
			errs := make(chan error, instances)
			for i := 0; i < instances; i++ {
				go func(i int) {
					ic := c.Narrow(step.Index("instance", i)).Narrow("multiply")
					x := inputs[i][c.Role()]
					v, err := MultiplyAll(ctx, ic, x, x)
					out[i] = v
					errs <- err
				}(i)
			}
			for i := 0; i < instances; i++ {
				if err := <-errs; err != nil {
					return out, err
				}
			}
			return out, nil
		})
	require.NoError(t, err)

	for i := range inputs {
		values := reconstruct(t, [3]vector{
			result[0][i], result[1][i], result[2][i],
		})
		require.Equal(t, expected[i], values)
	}
}
