package hotpotato

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRelayStateShutdownIsFinal(t *testing.T) {
	s := relayStateInit
	require.NoError(t, s.transitionTo(relayStateShutdown))
	for _, next := range []relayState{relayStateInFlight, relayStateTerminal, relayStateError} {
		require.Error(t, s.transitionTo(next))
		require.Equal(t, relayStateShutdown, s)
	}
	require.NoError(t, s.transitionTo(relayStateShutdown))
}

func TestRelayStateTerminalOnlyEnds(t *testing.T) {
	s := relayStateInFlight
	require.NoError(t, s.transitionTo(relayStateTerminal))
	require.Error(t, s.transitionTo(relayStateInFlight))
	require.Error(t, s.transitionTo(relayStateTerminal))
	require.NoError(t, s.transitionTo(relayStateShutdown))
}

func TestRelayStateRecoversFromError(t *testing.T) {
	s := relayStateInit
	require.NoError(t, s.transitionTo(relayStateError))
	require.NoError(t, s.transitionTo(relayStateError))
	require.NoError(t, s.transitionTo(relayStateInFlight))
	require.NoError(t, s.transitionTo(relayStateInFlight))
	require.NoError(t, s.transitionTo(relayStateTerminal))
}
