//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package query

import (
	"io"

	"github.com/cryo28/ipa/ff"
	"github.com/cryo28/ipa/mpcerr"
	"github.com/cryo28/ipa/secret"
)

// Result holds the outputs of a query on one helper. Revealing
// queries return the revealed values, which are identical on all
// helpers. Other queries return the helper's output shares; the
// client combines the shares of all three helpers.
type Result struct {
	Field    ff.Type
	Revealed bool
	Width    int
	Values   []uint64
	Shares   [][2]uint64

	// Timing holds the stage timings of the query. It is not
	// transferred to clients.
	Timing *Timing
}

func newResult[F ff.Field[F]](width int) *Result {
	var zero F
	return &Result{
		Field: ff.TypeOf(zero),
		Width: width,
	}
}

func (r *Result) setValues(values []uint64) {
	r.Revealed = true
	r.Values = values
	r.Shares = nil
}

func setShares[F ff.Field[F]](r *Result, shares []secret.Replicated[F]) {
	r.Revealed = false
	r.Values = nil
	r.Shares = make([][2]uint64, len(shares))
	for i, s := range shares {
		r.Shares[i] = [2]uint64{s.Left().Uint64(), s.Right().Uint64()}
	}
}

// Combine combines the results of the three helpers into the query
// outputs.
func Combine(results [3]*Result) ([]uint64, error) {
	for i, r := range results {
		if r == nil {
			return nil, mpcerr.Arithmeticf("missing result from H%d", i+1)
		}
		if r.Field != results[0].Field || r.Revealed != results[0].Revealed {
			return nil, mpcerr.Arithmeticf("H%d: result type mismatch", i+1)
		}
	}
	if results[0].Revealed {
		for i, r := range results[1:] {
			if !equal(r.Values, results[0].Values) {
				return nil, mpcerr.Arithmeticf("H%d: revealed values differ",
					i+2)
			}
		}
		return results[0].Values, nil
	}
	switch results[0].Field {
	case ff.TypeFp31:
		return combine[ff.Fp31](results)
	case ff.TypeFp32BitPrime:
		return combine[ff.Fp32BitPrime](results)
	case ff.TypeFp61BitPrime:
		return combine[ff.Fp61BitPrime](results)
	default:
		return nil, mpcerr.Arithmeticf("unknown field %s", results[0].Field)
	}
}

func combine[F ff.Field[F]](results [3]*Result) ([]uint64, error) {
	var shares [3][]secret.Replicated[F]
	for i, r := range results {
		for _, s := range r.Shares {
			left, err := toField[F](s[0])
			if err != nil {
				return nil, err
			}
			right, err := toField[F](s[1])
			if err != nil {
				return nil, err
			}
			shares[i] = append(shares[i], secret.New(left, right))
		}
	}
	values, err := secret.ReconstructAll(shares)
	if err != nil {
		return nil, err
	}
	result := make([]uint64, len(values))
	for i, v := range values {
		result[i] = v.Uint64()
	}
	return result, nil
}

func toField[F ff.Field[F]](v uint64) (F, error) {
	var zero F
	if v >= zero.Prime() {
		return zero, mpcerr.Arithmeticf("value %d out of range for %s",
			v, ff.TypeOf(zero))
	}
	return zero.FromUint64(v), nil
}

func equal(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ShareInputs secret shares the input values of a query and encodes
// the shares of each helper. The values are in record order, Width
// values per record.
func ShareInputs(config Config, values []uint64, rand io.Reader) (
	[3][]byte, error) {

	var result [3][]byte
	if err := config.Validate(); err != nil {
		return result, err
	}
	if len(values) != config.Records*config.Width() {
		return result, mpcerr.Arithmeticf("expected %d input values, got %d",
			config.Records*config.Width(), len(values))
	}
	switch config.Field {
	case ff.TypeFp31:
		return shareInputs[ff.Fp31](values, rand)
	case ff.TypeFp32BitPrime:
		return shareInputs[ff.Fp32BitPrime](values, rand)
	default:
		return shareInputs[ff.Fp61BitPrime](values, rand)
	}
}

func shareInputs[F ff.Field[F]](values []uint64, rand io.Reader) (
	[3][]byte, error) {

	var result [3][]byte
	elements := make([]F, len(values))
	for i, v := range values {
		e, err := toField[F](v)
		if err != nil {
			return result, err
		}
		elements[i] = e
	}
	shares, err := secret.ShareAll(elements, rand)
	if err != nil {
		return result, err
	}
	for i := range result {
		result[i] = secret.AppendShares(nil, shares[i])
	}
	return result, nil
}
