// Package wizard implements the kiosk's linear step machine.
//
// The machine owns no timers. A transition is started with BeginNext or BeginBack,
// which hands back the delays the caller must wait; the caller then reports the
// expirations through Apply and Settle. Every transition carries a sequence number
// so expirations from a transition that was superseded by Reset are ignored.
//
// Machine is not safe for concurrent use. It expects a single event loop to own it.
package wizard

import (
	"time"

	"github.com/jask/photobooth/internal/session"
)

// Step is one screen of the flow.
type Step int

const (
	StepContact Step = iota
	StepGender
	StepTemplate
	StepCapture
	StepResult
)

// StepCount is the number of steps after the landing screen.
const StepCount = int(StepResult) + 1

// minBackStep is the lowest step backward navigation can reach. Once the contact form
// is left it cannot be revisited.
const minBackStep = StepGender

func (s Step) String() string {
	switch s {
	case StepContact:
		return "contact"
	case StepGender:
		return "gender"
	case StepTemplate:
		return "template"
	case StepCapture:
		return "capture"
	case StepResult:
		return "result"
	default:
		return "unknown"
	}
}

// Direction of the running transition.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// State is the observable wizard state.
type State struct {
	Step          Step
	Started       bool
	Transitioning bool
	Direction     Direction
}

// Timing holds the two fixed waits of each direction.
type Timing struct {
	ForwardDelay   time.Duration
	ForwardSettle  time.Duration
	BackwardDelay  time.Duration
	BackwardSettle time.Duration
}

// DefaultTiming paces forward moves at 300ms+300ms and backward moves at 10ms+10ms.
func DefaultTiming() Timing {
	return Timing{
		ForwardDelay:   300 * time.Millisecond,
		ForwardSettle:  300 * time.Millisecond,
		BackwardDelay:  10 * time.Millisecond,
		BackwardSettle: 10 * time.Millisecond,
	}
}

// Transition is a started step change waiting for its first delay.
type Transition struct {
	Seq       uint64
	Direction Direction
	Delay     time.Duration
}

// Move is the step change applied once the first delay elapsed.
type Move struct {
	Seq       uint64
	From, To  Step
	Direction Direction
	// LeftContact is set on the single move from the contact form to the next step.
	LeftContact bool
	Settle      time.Duration
}

// Machine is the step wizard.
type Machine struct {
	state   State
	seq     uint64
	applied bool
	timing  Timing
}

func New(t Timing) *Machine {
	return &Machine{timing: t}
}

func (m *Machine) State() State { return m.state }

func (m *Machine) Step() Step { return m.state.Step }

// Start leaves the landing screen.
func (m *Machine) Start() {
	if m.state.Started {
		return
	}
	m.state = State{Step: StepContact, Started: true, Direction: Forward}
}

// Reset returns to the landing screen and invalidates pending expirations.
func (m *Machine) Reset() {
	m.seq++
	m.state = State{}
}

// CanAdvance reports whether forward navigation is offered. The contact form requires
// both fields; the result step exposes no forward move.
func (m *Machine) CanAdvance(c session.Contact) bool {
	if !m.state.Started {
		return false
	}
	switch m.state.Step {
	case StepContact:
		return c.Complete()
	case StepResult:
		return false
	default:
		return true
	}
}

// CanGoBack reports whether a backward move would change the step.
func (m *Machine) CanGoBack() bool {
	return m.state.Started && m.state.Step > minBackStep
}

// BeginNext starts a forward transition. It returns false while another one runs.
func (m *Machine) BeginNext() (Transition, bool) {
	return m.begin(Forward, m.timing.ForwardDelay)
}

// BeginBack starts a backward transition. It returns false while another one runs.
func (m *Machine) BeginBack() (Transition, bool) {
	return m.begin(Backward, m.timing.BackwardDelay)
}

func (m *Machine) begin(dir Direction, delay time.Duration) (Transition, bool) {
	if !m.state.Started || m.state.Transitioning {
		return Transition{}, false
	}
	m.seq++
	m.applied = false
	m.state.Transitioning = true
	m.state.Direction = dir
	return Transition{Seq: m.seq, Direction: dir, Delay: delay}, true
}

// Apply performs the step change of transition seq once. Stale, unknown or repeated
// sequences are ignored.
func (m *Machine) Apply(seq uint64) (Move, bool) {
	if seq != m.seq || !m.state.Transitioning || m.applied {
		return Move{}, false
	}
	m.applied = true
	from := m.state.Step
	to := from
	settle := m.timing.ForwardSettle
	if m.state.Direction == Forward {
		if from < StepResult {
			to = from + 1
		}
	} else {
		settle = m.timing.BackwardSettle
		if from > minBackStep {
			to = from - 1
		}
	}
	m.state.Step = to
	return Move{
		Seq:         seq,
		From:        from,
		To:          to,
		Direction:   m.state.Direction,
		LeftContact: from == StepContact && to == StepGender,
		Settle:      settle,
	}, true
}

// Settle clears the transition guard of transition seq.
func (m *Machine) Settle(seq uint64) bool {
	if seq != m.seq || !m.state.Transitioning {
		return false
	}
	m.state.Transitioning = false
	return true
}
