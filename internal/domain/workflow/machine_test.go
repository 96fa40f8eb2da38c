package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StatePending, false},
		{StateAccepted, true},
		{StateRefused, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"pending", StatePending, true},
		{"refused", StateRefused, true},
		{"upper case", State("PENDING"), false},
		{"empty state", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuilder_ConfigureReturnsSameConfig(t *testing.T) {
	builder := NewBuilder()

	config := builder.Configure(StatePending)
	if config == nil {
		t.Fatal("Configure() returned nil")
	}
	if config2 := builder.Configure(StatePending); config != config2 {
		t.Error("Configure() should return same config for same state")
	}
}

func TestBuilder_ConfigurePanicsOnInvalidState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on invalid state")
		}
	}()

	NewBuilder().Configure(State("archived"))
}

func TestBuilder_BuildIsolatesMachines(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePending).Permit(TriggerAccept, StateAccepted)
	machine := builder.Build(StatePending)

	builder.Configure(StatePending).Permit(TriggerRefuse, StateRefused)

	if machine.CanFire(TriggerRefuse) {
		t.Error("machine built earlier should not see later configuration")
	}
}

func TestStateConfiguration_PermitReplacesTarget(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePending).
		Permit(TriggerAccept, StateRefused).
		Permit(TriggerAccept, StateAccepted)

	machine := builder.Build(StatePending)
	if err := machine.Fire(context.Background(), TriggerAccept); err != nil {
		t.Fatalf("Fire() unexpected error = %v", err)
	}
	if machine.State() != StateAccepted {
		t.Errorf("State() = %v, want %v", machine.State(), StateAccepted)
	}
}

func TestStateMachine_FireHonorsCancelledContext(t *testing.T) {
	machine, err := NewBillMachine("pending")
	if err != nil {
		t.Fatalf("NewBillMachine() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := machine.Fire(ctx, TriggerAccept); !errors.Is(err, context.Canceled) {
		t.Errorf("Fire() error = %v, want %v", err, context.Canceled)
	}
	if machine.State() != StatePending {
		t.Errorf("State() = %v, want %v", machine.State(), StatePending)
	}
}

func TestNewBillMachine_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan error, 20)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			machine, err := NewBillMachine("pending")
			if err != nil {
				errs <- err
				return
			}
			if !machine.CanFire(TriggerAccept) || !machine.CanFire(TriggerRefuse) {
				errs <- fmt.Errorf("pending machine permits %v", machine.PermittedTriggers())
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestBillMachine_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		trigger Trigger
		want    State
		wantErr error
	}{
		{"accept pending", "pending", TriggerAccept, StateAccepted, nil},
		{"refuse pending", "pending", TriggerRefuse, StateRefused, nil},
		{"accept accepted", "accepted", TriggerAccept, StateAccepted, ErrInvalidTransition},
		{"refuse accepted", "accepted", TriggerRefuse, StateAccepted, ErrInvalidTransition},
		{"accept refused", "refused", TriggerAccept, StateRefused, ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			machine, err := NewBillMachine(tt.from)
			if err != nil {
				t.Fatalf("NewBillMachine() error = %v", err)
			}

			err = machine.Fire(context.Background(), tt.trigger)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Fire() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Errorf("Fire() unexpected error = %v", err)
			}

			if machine.State() != tt.want {
				t.Errorf("State() = %v, want %v", machine.State(), tt.want)
			}
		})
	}
}

func TestNewBillMachine_UnknownStatus(t *testing.T) {
	_, err := NewBillMachine("archived")
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("NewBillMachine() error = %v, want %v", err, ErrInvalidState)
	}
}

func TestActionsFor(t *testing.T) {
	actions := ActionsFor("pending")
	if len(actions) != 2 || actions[0] != TriggerAccept || actions[1] != TriggerRefuse {
		t.Errorf("ActionsFor(pending) = %v, want [accept refuse]", actions)
	}

	for _, status := range []string{"accepted", "refused", "bogus"} {
		if got := ActionsFor(status); len(got) != 0 {
			t.Errorf("ActionsFor(%s) = %v, want none", status, got)
		}
	}
}
