package hotpotato

import (
	"fmt"

	"github.com/ngrok/hotpotato/internal/proto"
	"github.com/pkg/errors"
)

// Shape is the layout of a ring of a given size. Identities run from 1 to
// Size. A neighbor of 0 means there is none.
//
// Which end of an edge dials the other is part of the shape. Every edge has
// exactly one initiator, and a player dials all the edges it initiates
// before accepting any, so two players never wait on each other.
type Shape interface {
	Size() int
	Right(id int) int
	Left(id int) int
	// Neighbors returns the distinct neighbors of id, right first.
	Neighbors(id int) []int
	// Initiates reports whether self dials the connection to peer.
	Initiates(self, peer int) bool
	String() string
}

// ShapeFor returns the shape of a ring of n players.
func ShapeFor(n int) (Shape, error) {
	switch {
	case n < 1:
		return nil, errors.Errorf("a ring needs at least one player, not %d", n)
	case n == 1:
		return Solo{}, nil
	case n == 2:
		return Pair{}, nil
	default:
		return Cycle{N: n}, nil
	}
}

// Solo is a ring of one player, who has no neighbors.
type Solo struct{}

func (Solo) Size() int { return 1 }

func (Solo) Right(int) int { return 0 }

func (Solo) Left(int) int { return 0 }

func (Solo) Neighbors(int) []int { return nil }

func (Solo) Initiates(self, peer int) bool { return false }

func (Solo) String() string { return "solo" }

// Pair is a ring of two players. Each is both the left and the right
// neighbor of the other, and a single connection joins them, dialed by the
// lower identity.
type Pair struct{}

func (Pair) Size() int { return 2 }

func (Pair) Right(id int) int { return 3 - id }

func (Pair) Left(id int) int { return 3 - id }

func (Pair) Neighbors(id int) []int { return []int{3 - id} }

func (Pair) Initiates(self, peer int) bool { return self < peer }

func (Pair) String() string { return "pair" }

// Cycle is a ring of three or more players. Player i's right neighbor is
// i+1 and its left is i-1, wrapping around. Each player dials its right
// neighbor and accepts from its left.
type Cycle struct {
	N int
}

func (c Cycle) Size() int { return c.N }

func (c Cycle) Right(id int) int { return id%c.N + 1 }

func (c Cycle) Left(id int) int { return (id-2+c.N)%c.N + 1 }

func (c Cycle) Neighbors(id int) []int { return []int{c.Right(id), c.Left(id)} }

func (c Cycle) Initiates(self, peer int) bool { return c.Right(self) == peer }

func (c Cycle) String() string { return fmt.Sprintf("cycle(%d)", c.N) }

// PlayerInfo is what the coordinator learns about a player when it joins.
type PlayerInfo struct {
	ID      int
	Address string
	Port    uint16
}

func (p PlayerInfo) neighbor() proto.Neighbor {
	return proto.Neighbor{ID: p.ID, Address: p.Address, Port: p.Port}
}

// Assignment is everything a single player is told at the start of a game.
type Assignment struct {
	ID    int
	Count int
	// Neighbors holds the right neighbor, then the left one if it is a
	// different player. It is empty for a Solo ring.
	Neighbors []proto.Neighbor
}

// Topology is the ring the coordinator computed for one game. It does not
// change after it is built.
type Topology struct {
	Shape   Shape
	players []PlayerInfo
}

// BuildTopology arranges players into a ring. players must be in join
// order, with identities 1 through len(players).
func BuildTopology(players []PlayerInfo) (*Topology, error) {
	shape, err := ShapeFor(len(players))
	if err != nil {
		return nil, err
	}
	for i, p := range players {
		if p.ID != i+1 {
			return nil, errors.Errorf("player at position %d has identity %d, expected %d", i, p.ID, i+1)
		}
	}
	ps := make([]PlayerInfo, len(players))
	copy(ps, players)
	return &Topology{Shape: shape, players: ps}, nil
}

// Players returns the players in identity order.
func (t *Topology) Players() []PlayerInfo {
	ps := make([]PlayerInfo, len(t.players))
	copy(ps, t.players)
	return ps
}

// Assignment returns what player id must be told.
func (t *Topology) Assignment(id int) (Assignment, error) {
	if id < 1 || id > len(t.players) {
		return Assignment{}, errors.Errorf("no player %d in a ring of %d", id, len(t.players))
	}
	a := Assignment{ID: id, Count: len(t.players)}
	for _, n := range t.Shape.Neighbors(id) {
		a.Neighbors = append(a.Neighbors, t.players[n-1].neighbor())
	}
	return a, nil
}
