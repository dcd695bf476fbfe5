package hotpotato

import (
	"testing"

	"github.com/ngrok/hotpotato/internal/proto"
	"github.com/stretchr/testify/require"
)

func TestShapeFor(t *testing.T) {
	_, err := ShapeFor(0)
	require.Error(t, err)

	s, err := ShapeFor(1)
	require.NoError(t, err)
	require.Equal(t, Solo{}, s)

	s, err = ShapeFor(2)
	require.NoError(t, err)
	require.Equal(t, Pair{}, s)

	s, err = ShapeFor(5)
	require.NoError(t, err)
	require.Equal(t, Cycle{N: 5}, s)
	require.Equal(t, "cycle(5)", s.String())
}

func TestCycleNeighborsAreInverse(t *testing.T) {
	for n := 3; n <= 12; n++ {
		s := Cycle{N: n}
		for id := 1; id <= n; id++ {
			r, l := s.Right(id), s.Left(id)
			require.True(t, r >= 1 && r <= n, "right of %d in %d", id, n)
			require.True(t, l >= 1 && l <= n, "left of %d in %d", id, n)
			require.Equal(t, id, s.Left(r))
			require.Equal(t, id, s.Right(l))
			require.NotEqual(t, id, r)
			require.NotEqual(t, id, l)
			require.NotEqual(t, r, l)
		}
	}
	require.Equal(t, 1, Cycle{N: 4}.Right(4))
	require.Equal(t, 4, Cycle{N: 4}.Left(1))
}

func TestPairNeighbors(t *testing.T) {
	s := Pair{}
	require.Equal(t, 2, s.Right(1))
	require.Equal(t, 2, s.Left(1))
	require.Equal(t, 1, s.Right(2))
	require.Equal(t, []int{1}, s.Neighbors(2))
}

func TestEveryEdgeHasOneInitiator(t *testing.T) {
	for n := 1; n <= 9; n++ {
		s, err := ShapeFor(n)
		require.NoError(t, err)
		for id := 1; id <= n; id++ {
			dials := 0
			for _, peer := range s.Neighbors(id) {
				require.NotEqual(t, s.Initiates(id, peer), s.Initiates(peer, id), "edge %d-%d in %s", id, peer, s)
				if s.Initiates(id, peer) {
					dials++
				}
			}
			if n > 2 {
				require.Equal(t, 1, dials, "player %d in %s", id, s)
			}
		}
	}
}

func testPlayers(n int) []PlayerInfo {
	ps := make([]PlayerInfo, n)
	for i := range ps {
		ps[i] = PlayerInfo{ID: i + 1, Address: "10.0.0.1", Port: uint16(4000 + i + 1)}
	}
	return ps
}

func TestTopologyAssignment(t *testing.T) {
	topo, err := BuildTopology(testPlayers(3))
	require.NoError(t, err)

	a, err := topo.Assignment(1)
	require.NoError(t, err)
	require.Equal(t, Assignment{
		ID:    1,
		Count: 3,
		Neighbors: []proto.Neighbor{
			{ID: 2, Address: "10.0.0.1", Port: 4002},
			{ID: 3, Address: "10.0.0.1", Port: 4003},
		},
	}, a)

	_, err = topo.Assignment(4)
	require.Error(t, err)
}

func TestTopologySmallRings(t *testing.T) {
	solo, err := BuildTopology(testPlayers(1))
	require.NoError(t, err)
	a, err := solo.Assignment(1)
	require.NoError(t, err)
	require.Empty(t, a.Neighbors)

	pair, err := BuildTopology(testPlayers(2))
	require.NoError(t, err)
	a, err = pair.Assignment(2)
	require.NoError(t, err)
	require.Equal(t, []proto.Neighbor{{ID: 1, Address: "10.0.0.1", Port: 4001}}, a.Neighbors)
}

func TestBuildTopologyRejectsBadIdentities(t *testing.T) {
	_, err := BuildTopology(nil)
	require.Error(t, err)

	ps := testPlayers(3)
	ps[1], ps[2] = ps[2], ps[1]
	_, err = BuildTopology(ps)
	require.Error(t, err)
}
