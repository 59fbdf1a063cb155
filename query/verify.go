//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package query

import (
	"slices"
	gosort "sort"

	"github.com/cockroachdb/errors"

	"github.com/cryo28/ipa/ff"
)

// Expected computes the query outputs in the clear. The outputs of a
// shuffle query are the input values in input order.
func Expected(config Config, values []uint64) ([]uint64, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if len(values) != config.Records*config.Width() {
		return nil, errors.Newf("expected %d input values, got %d",
			config.Records*config.Width(), len(values))
	}
	switch config.Field {
	case ff.TypeFp31:
		return expected[ff.Fp31](config, values)
	case ff.TypeFp32BitPrime:
		return expected[ff.Fp32BitPrime](config, values)
	default:
		return expected[ff.Fp61BitPrime](config, values)
	}
}

func expected[F ff.Field[F]](config Config, values []uint64) (
	[]uint64, error) {

	elements := make([]F, len(values))
	for i, v := range values {
		e, err := toField[F](v)
		if err != nil {
			return nil, err
		}
		elements[i] = e
	}
	width := config.Width()

	switch config.Type {
	case TypeSum:
		sum := ff.Zero[F]()
		for _, e := range elements {
			sum = sum.Add(e)
		}
		return []uint64{sum.Uint64()}, nil

	case TypeMultiply:
		result := make([]uint64, config.Records)
		for i := range result {
			result[i] = elements[i*width].Mul(elements[i*width+1]).Uint64()
		}
		return result, nil

	case TypeDotProduct:
		sum := ff.Zero[F]()
		for i := 0; i < config.Records; i++ {
			sum = sum.Add(elements[i*width].Mul(elements[i*width+1]))
		}
		return []uint64{sum.Uint64()}, nil

	case TypeSort:
		type record struct {
			key   uint64
			value uint64
		}
		records := make([]record, config.Records)
		for i := range records {
			row := values[i*width : (i+1)*width]
			for j, bit := range row[:config.KeyBits] {
				if bit > 1 {
					return nil, errors.Newf("record %d: key bit %d: %d",
						i, j, bit)
				}
				records[i].key |= bit << j
			}
			records[i].value = row[config.KeyBits]
		}
		gosort.SliceStable(records, func(i, j int) bool {
			return records[i].key < records[j].key
		})
		result := make([]uint64, len(records))
		for i, r := range records {
			result[i] = r.value
		}
		return result, nil

	default:
		return slices.Clone(values), nil
	}
}

// Verify checks the combined query outputs against the query computed
// in the clear.
func Verify(config Config, values, outputs []uint64) error {
	want, err := Expected(config, values)
	if err != nil {
		return err
	}
	got := outputs
	if config.Type == TypeShuffle {
		got = slices.Clone(outputs)
		slices.Sort(want)
		slices.Sort(got)
	}
	if !equal(want, got) {
		return errors.Newf("%s: result mismatch: got %v, expected %v",
			config.Type, outputs, want)
	}
	return nil
}
