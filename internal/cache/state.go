package cache

// State is the lifecycle state of a [Collection] snapshot.
type State int

const (
	// Uninitialized means the snapshot is empty or partial and the next full read refreshes it.
	Uninitialized State = iota
	// Ready means the snapshot is complete and authoritative until invalidated.
	Ready
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

type event int

const (
	eventRefreshed event = iota
	eventCachingDisabled
	eventCachingEnabled
	eventInvalidated
	eventLocalMutation
	eventLookupExhausted
)

func (e event) String() string {
	return [...]string{"refreshed", "caching-disabled", "caching-enabled", "invalidated", "local-mutation", "lookup-exhausted"}[e]
}

var transitions = map[State]map[event]State{
	Uninitialized: {
		eventRefreshed:       Ready,
		eventCachingDisabled: Uninitialized,
		eventCachingEnabled:  Uninitialized,
		eventInvalidated:     Uninitialized,
		eventLocalMutation:   Uninitialized,
		eventLookupExhausted: Ready,
	},
	Ready: {
		eventRefreshed:       Ready,
		eventCachingDisabled: Uninitialized,
		eventCachingEnabled:  Ready,
		eventInvalidated:     Uninitialized,
		eventLocalMutation:   Ready,
		eventLookupExhausted: Ready,
	},
}

// transition returns the state reached from s on e. Unknown pairs fall back to Uninitialized.
func transition(s State, e event) State {
	if next, ok := transitions[s][e]; ok {
		return next
	}
	return Uninitialized
}
