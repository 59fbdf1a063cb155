//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package step

import (
	"fmt"

	"github.com/cryo28/ipa/mpcerr"
)

//go:generate go run ../apps/stepgen -i steps.yaml -o compact_gen.go

// Compact implements gates as indices into the generated step
// table. Narrowing is a table lookup and String returns a
// precomputed path.
type Compact uint16

// CompactRoot is the compact root gate.
const CompactRoot Compact = 0

type compactEdge struct {
	name string
	next Compact
}

// CompactStates returns the number of states in the compact step
// table.
func CompactStates() int {
	return len(compactNames)
}

// Narrow implements Gate.Narrow. Substeps not present in the
// generated table produce an invalid gate.
func (c Compact) Narrow(s Substep) Gate {
	if int(c) >= len(compactNames) {
		return Descriptive{
			path: RootName,
			err:  mpcerr.Addressingf("invalid compact gate %d", c),
		}
	}
	for _, edge := range compactEdges[compactFirst[c]:compactFirst[c+1]] {
		if edge.name == string(s) {
			return edge.next
		}
	}
	return Descriptive{
		path: compactNames[c],
		err: mpcerr.Addressingf("no step '%s' under '%s'",
			s, compactNames[c]),
	}
}

func (c Compact) String() string {
	if int(c) >= len(compactNames) {
		return fmt.Sprintf("{Compact %d}", c)
	}
	return compactNames[c]
}

// Err implements Gate.Err.
func (c Compact) Err() error {
	if int(c) >= len(compactNames) {
		return mpcerr.Addressingf("invalid compact gate %d", c)
	}
	return nil
}

// Substeps returns the substeps of the compact gate in table order.
func (c Compact) Substeps() []Substep {
	if int(c) >= len(compactNames) {
		return nil
	}
	var result []Substep
	for _, edge := range compactEdges[compactFirst[c]:compactFirst[c+1]] {
		result = append(result, Substep(edge.name))
	}
	return result
}

func (s Substep) String() string {
	return string(s)
}
