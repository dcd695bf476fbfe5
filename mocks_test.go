package hotpotato

import "math/rand"

// fixedSource replays values in order, repeating the last one. For small
// values and n, rand.New(src).Intn(n) returns v % n.
type fixedSource struct {
	values []int64
	i      int
}

func newFixedRand(values ...int64) *rand.Rand {
	return rand.New(&fixedSource{values: values})
}

func (f *fixedSource) Int63() int64 {
	v := f.values[f.i]
	if f.i < len(f.values)-1 {
		f.i++
	}
	return v << 32
}

func (f *fixedSource) Seed(int64) {}
