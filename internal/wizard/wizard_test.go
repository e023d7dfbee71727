package wizard

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/photobooth/internal/session"
)

// step runs one full transition and returns the applied move.
func step(t *testing.T, m *Machine, begin func() (Transition, bool)) Move {
	t.Helper()
	tr, ok := begin()
	require.True(t, ok, "transition should start")
	mv, ok := m.Apply(tr.Seq)
	require.True(t, ok)
	require.True(t, m.Settle(mv.Seq))
	return mv
}

func machineAt(t *testing.T, s Step) *Machine {
	t.Helper()
	m := New(DefaultTiming())
	m.Start()
	for m.Step() < s {
		step(t, m, m.BeginNext)
	}
	require.Equal(t, s, m.Step())
	return m
}

func TestStartLeavesLanding(t *testing.T) {
	m := New(DefaultTiming())
	require.False(t, m.State().Started)

	_, ok := m.BeginNext()
	require.False(t, ok, "no transitions before start")

	m.Start()
	st := m.State()
	require.True(t, st.Started)
	require.Equal(t, StepContact, st.Step)
	require.False(t, st.Transitioning)
}

func TestNextNeverPassesLastStep(t *testing.T) {
	for s := StepContact; s <= StepResult; s++ {
		m := machineAt(t, s)
		mv := step(t, m, m.BeginNext)
		require.LessOrEqual(t, int(mv.To), int(StepResult))
		want := s + 1
		if s == StepResult {
			want = StepResult
		}
		require.Equal(t, want, m.Step(), "from %s", s)
	}
}

func TestBackNeverBelowGender(t *testing.T) {
	for s := StepContact; s <= StepResult; s++ {
		m := machineAt(t, s)
		for i := 0; i < StepCount+1; i++ {
			step(t, m, m.BeginBack)
			if s >= StepGender {
				require.GreaterOrEqual(t, int(m.Step()), int(StepGender), "from %s", s)
			}
		}
		switch {
		case s == StepContact:
			require.Equal(t, StepContact, m.Step())
		default:
			require.Equal(t, StepGender, m.Step())
		}
	}
}

func TestReentrantNextIsDropped(t *testing.T) {
	m := machineAt(t, StepGender)

	tr, ok := m.BeginNext()
	require.True(t, ok)
	require.True(t, m.State().Transitioning)
	require.Equal(t, Forward, m.State().Direction)

	_, ok = m.BeginNext()
	require.False(t, ok, "second next inside the window must be dropped")
	_, ok = m.BeginBack()
	require.False(t, ok, "back is blocked as well")

	mv, ok := m.Apply(tr.Seq)
	require.True(t, ok)
	require.Equal(t, StepTemplate, mv.To)

	_, ok = m.BeginNext()
	require.False(t, ok, "guard holds until settle")

	require.True(t, m.Settle(tr.Seq))
	require.Equal(t, StepTemplate, m.Step(), "exactly one advance")
	require.False(t, m.State().Transitioning)
}

func TestApplyIsSingleShot(t *testing.T) {
	m := machineAt(t, StepGender)
	tr, _ := m.BeginNext()
	_, ok := m.Apply(tr.Seq)
	require.True(t, ok)
	// a duplicated expiration must not move twice
	_, ok = m.Apply(tr.Seq)
	require.False(t, ok)
	require.Equal(t, StepTemplate, m.Step())
}

func TestLeftContactOnlyOnFirstMove(t *testing.T) {
	m := New(DefaultTiming())
	m.Start()

	var left int
	for i := 0; i < StepCount+2; i++ {
		if step(t, m, m.BeginNext).LeftContact {
			left++
		}
		step(t, m, m.BeginBack)
		if step(t, m, m.BeginNext).LeftContact {
			left++
		}
	}
	require.Equal(t, 1, left)
}

func TestDirectionAndSettleTiming(t *testing.T) {
	timing := DefaultTiming()
	m := machineAt(t, StepTemplate)

	tr, ok := m.BeginBack()
	require.True(t, ok)
	require.Equal(t, Backward, tr.Direction)
	require.Equal(t, timing.BackwardDelay, tr.Delay)
	mv, _ := m.Apply(tr.Seq)
	require.Equal(t, timing.BackwardSettle, mv.Settle)
	require.True(t, m.Settle(tr.Seq))

	tr, _ = m.BeginNext()
	require.Equal(t, timing.ForwardDelay, tr.Delay)
	mv, _ = m.Apply(tr.Seq)
	require.Equal(t, timing.ForwardSettle, mv.Settle)
}

func TestResetDropsPendingExpirations(t *testing.T) {
	m := machineAt(t, StepCapture)
	tr, ok := m.BeginNext()
	require.True(t, ok)

	m.Reset()
	require.Equal(t, State{}, m.State())

	_, ok = m.Apply(tr.Seq)
	require.False(t, ok)
	require.False(t, m.Settle(tr.Seq))

	m.Start()
	require.Equal(t, StepContact, m.Step())
	mv := step(t, m, m.BeginNext)
	require.True(t, mv.LeftContact, "a new visitor submits contact again")
}

func TestCanAdvance(t *testing.T) {
	m := New(DefaultTiming())
	require.False(t, m.CanAdvance(session.Contact{Name: "Jo", Phone: "555"}), "landing")

	m.Start()
	require.True(t, m.CanAdvance(session.Contact{Name: "Jo", Phone: "555"}))
	require.False(t, m.CanAdvance(session.Contact{Name: "", Phone: "555"}))
	require.False(t, m.CanAdvance(session.Contact{Name: "Jo", Phone: "  "}))

	step(t, m, m.BeginNext)
	require.True(t, m.CanAdvance(session.Contact{}), "contact only guards the form")

	m = machineAt(t, StepResult)
	require.False(t, m.CanAdvance(session.Contact{Name: "Jo", Phone: "555"}))
}

func TestCanGoBack(t *testing.T) {
	require.False(t, machineAt(t, StepContact).CanGoBack())
	require.False(t, machineAt(t, StepGender).CanGoBack())
	require.True(t, machineAt(t, StepTemplate).CanGoBack())
	require.True(t, machineAt(t, StepResult).CanGoBack())
}
