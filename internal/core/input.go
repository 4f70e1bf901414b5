package core

import "slices"

// Action is a player intent for one tick, independent of the key that
// produced it.
type Action int

const (
	ActionNone  Action = iota
	ActionJump         // flap
	ActionPause        // toggle pause
	ActionQuit         // leave the program
)

var actionNames = [...]string{
	ActionNone:  "None",
	ActionJump:  "Jump",
	ActionPause: "Pause",
	ActionQuit:  "Quit",
}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "Unknown"
	}
	return actionNames[a]
}

// InputFrame collects the actions triggered between two ticks.
// Repeated presses of the same action within a tick count once.
type InputFrame struct {
	Actions []Action
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{Actions: make([]Action, 0, 2)}
}

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	if a == ActionNone || f.Has(a) {
		return
	}
	f.Actions = append(f.Actions, a)
}

// Has reports whether the action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	return slices.Contains(f.Actions, a)
}

// Clear resets the frame for the next tick.
func (f *InputFrame) Clear() {
	f.Actions = f.Actions[:0]
}
