package workflow

import "github.com/garyjia/billed/internal/domain/entity"

// State is a bill status in the review lifecycle
type State string

const (
	StatePending  State = entity.BillStatusPending
	StateAccepted State = entity.BillStatusAccepted
	StateRefused  State = entity.BillStatusRefused
)

// IsTerminal returns true if no transition leaves the state
func (s State) IsTerminal() bool {
	return s == StateAccepted || s == StateRefused
}

// String returns the stored status code
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a known bill status
func (s State) IsValid() bool {
	switch s {
	case StatePending, StateAccepted, StateRefused:
		return true
	}
	return false
}
