package workflow

import (
	"fmt"
	"sort"
	"sync"
)

var (
	lifecycleOnce sync.Once
	billLifecycle StateMachineBuilder
)

// lifecycle returns the transitions every bill follows:
//
//	pending --accept--> accepted
//	pending --refuse--> refused
func lifecycle() StateMachineBuilder {
	lifecycleOnce.Do(func() {
		b := NewBuilder()
		b.Configure(StatePending).
			Permit(TriggerAccept, StateAccepted).
			Permit(TriggerRefuse, StateRefused)
		b.Configure(StateAccepted)
		b.Configure(StateRefused)
		billLifecycle = b
	})
	return billLifecycle
}

// NewBillMachine returns a machine positioned at the bill's current status.
// An unknown status yields ErrInvalidState.
func NewBillMachine(status string) (StateMachine, error) {
	state := State(status)
	if !state.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidState, status)
	}
	return lifecycle().Build(state), nil
}

// ActionsFor lists the reviewer actions available from status, sorted.
func ActionsFor(status string) []Trigger {
	m, err := NewBillMachine(status)
	if err != nil {
		return nil
	}
	triggers := m.PermittedTriggers()
	sort.Slice(triggers, func(i, j int) bool { return triggers[i] < triggers[j] })
	return triggers
}
