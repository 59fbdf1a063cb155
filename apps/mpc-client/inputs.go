//
// inputs.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/cryo28/ipa/query"
)

// readInputs reads whitespace separated input values from the file.
func readInputs(file string) ([]uint64, error) {
	var in io.Reader
	if file == "-" {
		in = os.Stdin
	} else {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in = f
	}

	var values []uint64
	scanner := bufio.NewScanner(in)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		v, err := strconv.ParseUint(scanner.Text(), 0, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: value %d", file, len(values))
		}
		values = append(values, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

func genInputs(qc query.Config, maxValue uint64) []uint64 {
	p := qc.Field.Prime()
	if maxValue == 0 || maxValue > p {
		maxValue = p
	}
	values := make([]uint64, 0, qc.Records*qc.Width())
	for i := 0; i < qc.Records; i++ {
		if qc.Type == query.TypeSort {
			for j := 0; j < qc.KeyBits; j++ {
				values = append(values, rand.Uint64N(2))
			}
			values = append(values, rand.Uint64N(maxValue))
			continue
		}
		for j := 0; j < qc.Width(); j++ {
			values = append(values, rand.Uint64N(maxValue))
		}
	}
	return values
}

func writeInputs(w io.Writer, qc query.Config, values []uint64) error {
	bw := bufio.NewWriter(w)
	width := qc.Width()
	for i, v := range values {
		sep := " "
		if (i+1)%width == 0 {
			sep = "\n"
		}
		if _, err := fmt.Fprintf(bw, "%d%s", v, sep); err != nil {
			return err
		}
	}
	return bw.Flush()
}
