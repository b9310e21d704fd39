// Package signal implements the timed four-state traffic light used at
// signalled intersections.
//
// A light runs Green, Yellow, Red, YellowRed and back to Green. All lights
// of one intersection share a Timing and a phase count; each light is offset
// by its phase index so that exactly one phase is released at a time.
package signal

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
)

var (
	ErrTooFewPhases  = errors.New("signal plan needs at least two phases")
	ErrPhaseRange    = errors.New("phase index out of range")
	ErrInvalidTiming = errors.New("invalid signal timing")
)

// State is the lamp currently shown.
type State int

const (
	Green State = iota
	Yellow
	Red
	YellowRed
)

var stateNames = [...]string{"green", "yellow", "red", "yellow_red"}

func (s State) String() string {
	if s < Green || s > YellowRed {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// MarshalText encodes the state by name for JSON and YAML output.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts the names written by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if string(text) == name {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown signal state %q", text)
}

// next returns the state that follows s in the cycle.
func (s State) next() State {
	return (s + 1) % 4
}

// Timing holds the lamp durations in seconds. The red share each other
// phase takes out of the cycle equals Green.
type Timing struct {
	Green     float64 `yaml:"green_time" json:"green_time"`
	Yellow    float64 `yaml:"yellow_time" json:"yellow_time"`
	YellowRed float64 `yaml:"yellow_red_time" json:"yellow_red_time"`
}

// DefaultTiming is the stock 10s green, 2s yellow, 4s yellow-red plan.
var DefaultTiming = Timing{Green: 10, Yellow: 2, YellowRed: 4}

// Validate rejects timings that cannot drive a cycle forward.
func (t Timing) Validate() error {
	for _, v := range []float64{t.Green, t.Yellow, t.YellowRed} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite duration in %+v", ErrInvalidTiming, t)
		}
	}
	if t.Green <= 0 {
		return fmt.Errorf("%w: green time must be positive, got %v", ErrInvalidTiming, t.Green)
	}
	if t.Yellow < 0 || t.YellowRed < 0 {
		return fmt.Errorf("%w: yellow times must not be negative", ErrInvalidTiming)
	}
	return nil
}

// slot is the time one phase occupies in the cycle.
func (t Timing) slot() float64 {
	return t.Green + t.Yellow + t.YellowRed
}

// RedTime is how long a light stays red while the other phases run.
func (t Timing) RedTime(numPhases int) float64 {
	return float64(numPhases-1) * t.slot()
}

// CycleLength is the time for every phase to be released once.
func (t Timing) CycleLength(numPhases int) float64 {
	return float64(numPhases) * t.slot()
}

// InitialCountdown is the time left in the starting state of the given
// phase. Phase 0 starts green; later phases start red and turn yellow-red
// just as the previous phase finishes its yellow.
func (t Timing) InitialCountdown(phase int) float64 {
	if phase == 0 {
		return t.Green
	}
	return float64(phase)*(t.Green+t.Yellow) + float64(phase-1)*t.YellowRed
}

// Signal is one traffic light. It is shared by the one or two segments of
// a phase at a single intersection.
type Signal struct {
	id        uuid.UUID
	phase     int
	numPhases int
	timing    Timing
	redTime   float64
	state     State
	countdown float64
}

// New creates the light for phase out of numPhases.
func New(numPhases, phase int, timing Timing) (*Signal, error) {
	if numPhases < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewPhases, numPhases)
	}
	if phase < 0 || phase >= numPhases {
		return nil, fmt.Errorf("%w: phase %d of %d", ErrPhaseRange, phase, numPhases)
	}
	if err := timing.Validate(); err != nil {
		return nil, err
	}

	s := &Signal{
		id:        uuid.New(),
		phase:     phase,
		numPhases: numPhases,
		timing:    timing,
		redTime:   timing.RedTime(numPhases),
		state:     Red,
		countdown: timing.InitialCountdown(phase),
	}
	if phase == 0 {
		s.state = Green
	}
	return s, nil
}

// NewPlan creates one light per phase, in phase order.
func NewPlan(numPhases int, timing Timing) ([]*Signal, error) {
	if numPhases < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewPhases, numPhases)
	}
	plan := make([]*Signal, numPhases)
	for i := range numPhases {
		s, err := New(numPhases, i, timing)
		if err != nil {
			return nil, err
		}
		plan[i] = s
	}
	return plan, nil
}

func (s *Signal) ID() uuid.UUID { return s.id }
func (s *Signal) Phase() int { return s.phase }
func (s *Signal) NumPhases() int { return s.numPhases }
func (s *Signal) Timing() Timing { return s.timing }
func (s *Signal) State() State { return s.state }
func (s *Signal) Countdown() float64 { return s.countdown }
func (s *Signal) RedTime() float64 { return s.redTime }

// CycleLength is the period after which the light repeats.
func (s *Signal) CycleLength() float64 {
	return s.timing.CycleLength(s.numPhases)
}

// MustStop reports whether traffic facing this light has to wait.
func (s *Signal) MustStop() bool {
	return s.state == Red || s.state == YellowRed
}

// duration returns how long the light stays in state.
func (s *Signal) duration(state State) float64 {
	switch state {
	case Green:
		return s.timing.Green
	case Yellow:
		return s.timing.Yellow
	case Red:
		return s.redTime
	default:
		return s.timing.YellowRed
	}
}

// Switch moves to the next state and starts its full duration.
func (s *Signal) Switch() {
	s.state = s.state.next()
	s.countdown = s.duration(s.state)
}

// Advance runs the light forward by dt seconds. Time left over after a
// transition is taken off the next state, so advancing by the cycle length
// leaves the light where it was.
func (s *Signal) Advance(dt float64) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return
	}
	if cycle := s.CycleLength(); dt >= cycle {
		dt = math.Mod(dt, cycle)
	}

	s.countdown -= dt
	for s.countdown <= 0 {
		s.state = s.state.next()
		s.countdown += s.duration(s.state)
	}
}

// TimeUntilRed is how long vehicles may still enter: zero while the light
// already demands a stop.
func (s *Signal) TimeUntilRed() float64 {
	switch s.state {
	case Green:
		return s.countdown + s.timing.Yellow
	case Yellow:
		return s.countdown
	default:
		return 0
	}
}

// Snapshot is a point-in-time view of a light for inspection output.
type Snapshot struct {
	ID           string  `json:"id"`
	Phase        int     `json:"phase"`
	State        State   `json:"state"`
	Countdown    float64 `json:"countdown"`
	TimeUntilRed float64 `json:"time_until_red"`
	MustStop     bool    `json:"must_stop"`
}

func (s *Signal) Snapshot() Snapshot {
	return Snapshot{
		ID:           s.id.String(),
		Phase:        s.phase,
		State:        s.state,
		Countdown:    s.countdown,
		TimeUntilRed: s.TimeUntilRed(),
		MustStop:     s.MustStop(),
	}
}
