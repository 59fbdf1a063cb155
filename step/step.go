//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package step implements hierarchical, deterministic addresses for
// the communication and randomness of protocol gates. A step path
// is derived purely from its parent path and a substep name, so all
// helpers arrive at the same path without negotiation.
//
// Two interchangeable representations exist: Descriptive builds the
// path at run time and accepts any substep, while Compact walks a
// table generated ahead of time from steps.yaml. Both produce
// identical paths.
package step

import (
	"strconv"
	"strings"

	"github.com/cryo28/ipa/mpcerr"
)

// Separator separates the segments of a step path.
const Separator = "/"

// RootName is the name of the root step of every query.
const RootName = "protocol"

// Substep names one segment of a step path.
type Substep string

// Index creates an indexed substep, for example bit3.
func Index(prefix string, i int) Substep {
	return Substep(prefix + strconv.Itoa(i))
}

// Validate checks that the substep name is a valid path segment.
func (s Substep) Validate() error {
	if len(s) == 0 {
		return mpcerr.Addressingf("empty substep")
	}
	if strings.Contains(string(s), Separator) {
		return mpcerr.Addressingf("substep '%s' contains separator", s)
	}
	return nil
}

// Gate addresses one protocol gate. Gates are immutable values;
// Narrow returns a new gate for the child step. Narrowing never
// panics: an invalid narrowing returns a gate whose Err is non-nil,
// and the first use of such a gate for communication fails.
type Gate interface {
	Narrow(s Substep) Gate
	String() string
	Err() error
}

// Mode selects the gate representation.
type Mode string

// Gate representations.
const (
	ModeDescriptive Mode = "descriptive"
	ModeCompact     Mode = "compact"
)

// ParseMode parses the gate representation name.
func ParseMode(name string) (Mode, error) {
	switch Mode(strings.ToLower(name)) {
	case ModeDescriptive:
		return ModeDescriptive, nil
	case ModeCompact, "":
		return ModeCompact, nil
	default:
		return "", mpcerr.Addressingf("unknown gate mode '%s'", name)
	}
}

// Root returns the root gate for the representation mode.
func Root(mode Mode) Gate {
	if mode == ModeDescriptive {
		return NewDescriptive()
	}
	return CompactRoot
}

// Descriptive implements gates as run-time built path strings. It
// accepts any valid substep and is intended for prototyping and for
// circuits whose shape is not known ahead of time.
type Descriptive struct {
	path string
	err  error
}

// NewDescriptive creates a new descriptive root gate.
func NewDescriptive() Descriptive {
	return Descriptive{
		path: RootName,
	}
}

// Narrow implements Gate.Narrow.
func (d Descriptive) Narrow(s Substep) Gate {
	if d.err != nil {
		return d
	}
	if err := s.Validate(); err != nil {
		return Descriptive{
			path: d.path,
			err:  err,
		}
	}
	return Descriptive{
		path: d.path + Separator + string(s),
	}
}

func (d Descriptive) String() string {
	return d.path
}

// Err implements Gate.Err.
func (d Descriptive) Err() error {
	return d.err
}
