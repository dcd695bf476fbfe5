package hotpotato

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithSeedSaltsEachRole(t *testing.T) {
	s := newSettings([]Option{WithSeed(5)})
	require.Equal(t, rand.New(rand.NewSource(6)).Int63(), s.seededRand(1).Int63())
	require.Equal(t, rand.New(rand.NewSource(7)).Int63(), s.seededRand(2).Int63())

	// a fixed source is shared as is
	r := newFixedRand(1)
	s = newSettings([]Option{WithSeed(5), WithRand(r)})
	require.Same(t, r, s.seededRand(1))
	require.Same(t, r, s.seededRand(2))
}
