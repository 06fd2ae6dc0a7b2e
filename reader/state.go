package reader

// StateType identifies where a reading session is in its lifecycle.
type StateType int

const (
	// StateIdle means no session is active.
	StateIdle StateType = iota
	// StateAwaitingFirstChunk means acquisition or first-chunk generation
	// is underway and nothing is audible yet.
	StateAwaitingFirstChunk
	// StatePlaying means a chunk is sounding (prefetch may be in flight).
	StatePlaying
	// StatePaused means playback is frozen mid-chunk.
	StatePaused
	// StateEndOfContent means the last chunk was handed to the device and
	// the silence monitor is waiting for it to audibly finish.
	StateEndOfContent
	// StateTransitioning means auto-continuation is deciding how to reach
	// the next page.
	StateTransitioning
)

// String returns the state name for logs.
func (s StateType) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingFirstChunk:
		return "awaiting-first-chunk"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateEndOfContent:
		return "end-of-content"
	case StateTransitioning:
		return "transitioning"
	default:
		return "unknown"
	}
}

// StateMachine validates lifecycle transitions. Any state may force-reset
// to Idle via Reset, which is how stop() and fatal errors bail out.
type StateMachine struct {
	current     StateType
	transitions map[StateType][]StateType
	// OnChange fires after every state change, including Reset. It runs
	// under whatever lock the caller holds, so it must not call back in.
	OnChange func(from, to StateType)
}

// NewStateMachine starts at Idle.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		current: StateIdle,
		transitions: map[StateType][]StateType{
			StateIdle:               {StateAwaitingFirstChunk},
			StateAwaitingFirstChunk: {StatePlaying, StateIdle},
			StatePlaying:            {StatePlaying, StatePaused, StateEndOfContent, StateIdle},
			StatePaused:             {StatePlaying, StateIdle},
			StateEndOfContent:       {StateTransitioning, StatePlaying, StateIdle},
			StateTransitioning:      {StateAwaitingFirstChunk, StatePlaying, StateIdle},
		},
	}
}

// Transition moves to the target state if the lifecycle allows it.
func (sm *StateMachine) Transition(to StateType) bool {
	for _, valid := range sm.transitions[sm.current] {
		if valid == to {
			from := sm.current
			sm.current = to
			if sm.OnChange != nil && from != to {
				sm.OnChange(from, to)
			}
			return true
		}
	}
	return false
}

// Reset forces the machine back to Idle from anywhere.
func (sm *StateMachine) Reset() {
	from := sm.current
	sm.current = StateIdle
	if sm.OnChange != nil && from != StateIdle {
		sm.OnChange(from, StateIdle)
	}
}

// Current returns the current state.
func (sm *StateMachine) Current() StateType {
	return sm.current
}
