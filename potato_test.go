package hotpotato

import (
	"testing"

	"github.com/ngrok/hotpotato/internal/proto"
	"github.com/stretchr/testify/require"
)

func TestPotatoTraceIsBounded(t *testing.T) {
	p := NewPotato(600)
	for i := 0; i < 600; i++ {
		p.AddTrace(i%7 + 1)
	}
	require.Equal(t, proto.MaxTrace, p.TraceLength())
	trace := p.Trace()
	require.Equal(t, 1, trace[0])
	require.Equal(t, (proto.MaxTrace-1)%7+1, trace[proto.MaxTrace-1])
}

func TestPotatoTraceIsCopied(t *testing.T) {
	p := NewPotato(1)
	p.AddTrace(4)
	trace := p.Trace()
	trace[0] = 9
	require.Equal(t, []int{4}, p.Trace())
}

func TestPotatoDecrementStopsAtZero(t *testing.T) {
	p := NewPotato(1)
	p.decrementHops()
	require.Equal(t, 0, p.Hops())
	p.decrementHops()
	require.Equal(t, 0, p.Hops())

	s := shutdownPotato()
	s.decrementHops()
	require.True(t, s.IsShutdown())
}

func TestPotatoState(t *testing.T) {
	for _, tc := range []struct {
		hops  int
		state relayState
		valid bool
	}{
		{hops: 5, state: relayStateInFlight, valid: true},
		{hops: 0, state: relayStateTerminal, valid: true},
		{hops: proto.ShutdownHops, state: relayStateShutdown},
		{hops: proto.InvalidHops, state: relayStateError},
		{hops: -7, state: relayStateError},
	} {
		p := NewPotato(tc.hops)
		require.Equal(t, tc.state, p.state(), "hops %d", tc.hops)
		require.Equal(t, tc.valid, p.IsValid(), "hops %d", tc.hops)
	}
}

func TestPotatoString(t *testing.T) {
	p := NewPotato(3)
	require.Equal(t, "", p.String())
	for _, id := range []int{1, 2, 3, 3} {
		p.AddTrace(id)
	}
	require.Equal(t, "1,2,3,3", p.String())
}

func TestPotatoThroughRecord(t *testing.T) {
	p := NewPotato(12)
	p.AddTrace(3)
	p.AddTrace(1)

	data, err := proto.EncodePotato(p.record())
	require.NoError(t, err)
	rec, err := proto.DecodePotato(data)
	require.NoError(t, err)

	got := potatoFromRecord(rec)
	require.Equal(t, 12, got.Hops())
	require.Equal(t, []int{3, 1}, got.Trace())

	empty := potatoFromRecord(shutdownPotato().record())
	require.True(t, empty.IsShutdown())
	require.Zero(t, empty.TraceLength())
}
