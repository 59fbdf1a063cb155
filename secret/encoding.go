//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package secret

import (
	"github.com/cryo28/ipa/ff"
	"github.com/cryo28/ipa/mpcerr"
)

// EncodedSize returns the size of count encoded shares in bytes.
func EncodedSize[F ff.Field[F]](count int) int {
	return count * 2 * ff.Size[F]()
}

// AppendShares appends the encoding of shares to buf. Each share is
// encoded as its left element followed by its right element.
func AppendShares[F ff.Field[F]](buf []byte, shares []Replicated[F]) []byte {
	size := ff.Size[F]()
	for _, s := range shares {
		start := len(buf)
		buf = append(buf, make([]byte, 2*size)...)
		ff.Marshal(s.left, buf[start:])
		ff.Marshal(s.right, buf[start+size:])
	}
	return buf
}

// ParseShares decodes shares from data. Every element is validated to
// be in the field range.
func ParseShares[F ff.Field[F]](data []byte) ([]Replicated[F], error) {
	size := ff.Size[F]()
	if len(data)%(2*size) != 0 {
		return nil, mpcerr.Arithmeticf(
			"share data length %d is not a multiple of %d", len(data), 2*size)
	}
	result := make([]Replicated[F], len(data)/(2*size))
	for i := range result {
		ofs := i * 2 * size
		left, err := ff.Unmarshal[F](data[ofs:])
		if err != nil {
			return nil, err
		}
		right, err := ff.Unmarshal[F](data[ofs+size:])
		if err != nil {
			return nil, err
		}
		result[i] = New(left, right)
	}
	return result, nil
}
