//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package query

import (
	"fmt"
	"sync"

	"github.com/cryo28/ipa/mpcerr"
)

// State defines the query states.
type State int

// Query states.
const (
	StateCreated State = iota
	StateRunning
	StateCompleted
	StateAborted
)

var stateNames = map[State]string{
	StateCreated:   "created",
	StateRunning:   "running",
	StateCompleted: "completed",
	StateAborted:   "aborted",
}

func (s State) String() string {
	name, ok := stateNames[s]
	if ok {
		return name
	}
	return fmt.Sprintf("{State %d}", s)
}

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateAborted
}

// Status describes the state of a query.
type Status struct {
	State State
	Stage int
	Name  string
	Err   error
}

func (s Status) String() string {
	switch s.State {
	case StateRunning:
		return fmt.Sprintf("%s: stage %d (%s)", s.State, s.Stage, s.Name)
	case StateAborted:
		return fmt.Sprintf("%s: %s", s.State, s.Err)
	default:
		return s.State.String()
	}
}

// Machine implements the query state machine:
//
//	Created → Running(stage 0…n-1) → Completed
//	Created, Running → Aborted
//
// Stages run in order and no stage is entered twice. It is safe for
// concurrent use.
type Machine struct {
	m      sync.Mutex
	stages []string
	status Status
}

// NewMachine creates a new state machine for the stages.
func NewMachine(stages []string) *Machine {
	return &Machine{
		stages: stages,
		status: Status{
			Stage: -1,
		},
	}
}

// Status returns the current status.
func (sm *Machine) Status() Status {
	sm.m.Lock()
	defer sm.m.Unlock()
	return sm.status
}

// Enter moves the machine to the stage.
func (sm *Machine) Enter(stage int) error {
	sm.m.Lock()
	defer sm.m.Unlock()

	switch sm.status.State {
	case StateCreated, StateRunning:
	default:
		return mpcerr.Addressingf("enter stage %d: query %s",
			stage, sm.status.State)
	}
	if stage != sm.status.Stage+1 || stage >= len(sm.stages) {
		return mpcerr.Addressingf("enter stage %d after stage %d",
			stage, sm.status.Stage)
	}
	sm.status.State = StateRunning
	sm.status.Stage = stage
	sm.status.Name = sm.stages[stage]
	return nil
}

// Complete moves the machine to the completed state. All stages must
// have been run.
func (sm *Machine) Complete() error {
	sm.m.Lock()
	defer sm.m.Unlock()

	if sm.status.State != StateRunning ||
		sm.status.Stage != len(sm.stages)-1 {
		return mpcerr.Addressingf("complete query in state %s", sm.status)
	}
	sm.status.State = StateCompleted
	return nil
}

// Abort moves the machine to the aborted state. Aborting a
// terminated query has no effect.
func (sm *Machine) Abort(err error) {
	sm.m.Lock()
	defer sm.m.Unlock()

	if sm.status.State.Terminal() {
		return
	}
	sm.status.State = StateAborted
	sm.status.Err = err
}
