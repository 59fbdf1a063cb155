//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package query implements the query lifecycle on a helper: the
// circuit shape descriptor, the query state machine, the processor
// running the circuit stages, and the client protocol for
// submitting queries.
package query

import (
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/cryo28/ipa/ff"
	"github.com/cryo28/ipa/mpcerr"
	"github.com/cryo28/ipa/protocol/sort"
)

// Type identifies the circuit of a query.
type Type string

// Query types.
const (
	TypeSum        Type = "sum"
	TypeMultiply   Type = "multiply"
	TypeDotProduct Type = "dot-product"
	TypeShuffle    Type = "shuffle"
	TypeSort       Type = "sort"
)

// Types lists all query types.
var Types = []Type{
	TypeSum, TypeMultiply, TypeDotProduct, TypeShuffle, TypeSort,
}

// ParseType parses the query type name.
func ParseType(name string) (Type, error) {
	for _, t := range Types {
		if string(t) == name {
			return t, nil
		}
	}
	return "", errors.Newf("unknown query type '%s'", name)
}

// Config describes the circuit shape of a query. All helpers of a
// query must receive identical configurations.
type Config struct {
	Type    Type    `yaml:"type"`
	Field   ff.Type `yaml:"field"`
	Records int     `yaml:"records"`
	KeyBits int     `yaml:"key_bits,omitempty"`
}

// Width returns the number of shared input values per record.
//
//	sum          value
//	multiply     a, b
//	dot-product  a, b
//	shuffle      value
//	sort         key bits (least significant first), value
func (c Config) Width() int {
	switch c.Type {
	case TypeMultiply, TypeDotProduct:
		return 2
	case TypeSort:
		return c.KeyBits + 1
	default:
		return 1
	}
}

// Reveals reports whether the query reveals its outputs to the
// helpers. Queries that do not reveal return output shares.
func (c Config) Reveals() bool {
	return c.Type == TypeSum || c.Type == TypeDotProduct
}

// Validate checks the configuration and the field capacity for the
// circuit.
func (c Config) Validate() error {
	if _, err := ParseType(string(c.Type)); err != nil {
		return err
	}
	if _, err := ff.ParseType(string(c.Field)); err != nil {
		return err
	}
	if c.Records <= 0 {
		return errors.Newf("invalid number of records: %d", c.Records)
	}
	if c.Type == TypeSort {
		if c.KeyBits <= 0 || c.KeyBits > sort.MaxKeyBits {
			return errors.Newf("invalid key bits %d: expected 1...%d",
				c.KeyBits, sort.MaxKeyBits)
		}
	} else if c.KeyBits != 0 {
		return errors.Newf("key bits not supported for %s queries", c.Type)
	}
	if c.Type == TypeSort {
		p := c.Field.Prime()
		if uint64(c.Records) >= p {
			return mpcerr.Arithmeticf("field %s too small for %d sort records",
				c.Field, c.Records)
		}
	}
	return nil
}

// Marshal encodes the configuration.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// UnmarshalConfig decodes and validates a configuration.
func UnmarshalConfig(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, errors.Wrap(err, "invalid query config")
	}
	return c, c.Validate()
}
