package workflow

// Trigger is a reviewer action that moves a bill between states
type Trigger string

const (
	TriggerAccept Trigger = "accept"
	TriggerRefuse Trigger = "refuse"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
