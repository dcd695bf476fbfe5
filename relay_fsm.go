package hotpotato

import "fmt"

// relayState represents the small finite state machine every role steps
// through as potatoes reach it. It has the following transitions:
// Init      → InFlight, Terminal, Shutdown, Error
// InFlight  → InFlight, Terminal, Shutdown, Error
// Terminal  → Shutdown, Error
// Error     → InFlight, Terminal, Shutdown, Error
// Shutdown  → Shutdown
//
// The meaning of each state is described above the state's definition below.
type relayState string

const (
	// Init is the state before any potato has been seen.
	relayStateInit relayState = "init"
	// InFlight means the last potato seen still had hops left to travel.
	relayStateInFlight relayState = "in-flight"
	// Terminal means the last potato seen had run out of hops and belongs
	// with the coordinator.
	relayStateTerminal relayState = "terminal"
	// Shutdown is the state after the coordinator's end-of-game potato. It is
	// final.
	relayStateShutdown relayState = "shutdown"
	// Error means the last potato seen was invalid and was discarded. The
	// role goes back to waiting.
	relayStateError relayState = "error"
)

var validTransitions = map[relayState][]relayState{
	relayStateInit: {
		relayStateInFlight,
		relayStateTerminal,
		relayStateShutdown,
		relayStateError,
	},
	relayStateInFlight: {
		relayStateInFlight,
		relayStateTerminal,
		relayStateShutdown,
		relayStateError,
	},
	relayStateTerminal: {
		relayStateShutdown,
		relayStateError,
	},
	relayStateError: {
		relayStateInFlight,
		relayStateTerminal,
		relayStateShutdown,
		relayStateError,
	},
	relayStateShutdown: {
		relayStateShutdown,
	},
}

func (r *relayState) canTransitionTo(state relayState) error {
	validTargets := validTransitions[*r]

	for _, target := range validTargets {
		if target == state {
			return nil
		}
	}
	return fmt.Errorf("unable to transition from %s to %s", *r, state)
}

func (r *relayState) transitionTo(state relayState) error {
	if err := r.canTransitionTo(state); err != nil {
		return err
	}
	*r = state
	return nil
}
