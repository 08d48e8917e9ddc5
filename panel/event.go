// Package panel implements the control-panel runtime: the quadrature
// decoder, the debounced button reader, the background task runner, the
// menu state machine and the dispatch loop that ties them together.
package panel

// Button identifies one of the three logical push buttons.
type Button uint8

const (
	ButtonBack Button = iota
	ButtonConfirm
	ButtonPush
)

func (b Button) String() string {
	switch b {
	case ButtonBack:
		return "back"
	case ButtonConfirm:
		return "confirm"
	case ButtonPush:
		return "push"
	}
	return "unknown"
}

// Event is a logical input consumed by the Machine. Only the four concrete
// types below cross into it; everything rawer stays in the loop.
type Event interface{ isEvent() }

// Rotate reports whole encoder detents. Delta is never zero.
type Rotate struct {
	Delta int
}

// Press reports a debounced press edge on one button.
type Press struct {
	Button Button
}

// Tick marks one dispatch-loop iteration.
type Tick struct{}

// TaskDone is the terminal report of a background task.
type TaskDone struct {
	OK      bool
	Message string
}

func (Rotate) isEvent()   {}
func (Press) isEvent()    {}
func (Tick) isEvent()     {}
func (TaskDone) isEvent() {}
