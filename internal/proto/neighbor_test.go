package proto

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestFormatNeighbors(t *testing.T) {
	block := FormatNeighbors([]Neighbor{
		{ID: 2, Address: "10.0.0.2", Port: 4001},
		{ID: 5, Address: "10.0.0.5", Port: 4005},
	})
	require.Equal(t, "2:10.0.0.2:4001\n5:10.0.0.5:4005\n", block)

	single := FormatNeighbors([]Neighbor{{ID: 1, Address: "127.0.0.1", Port: 9}})
	require.Equal(t, "1:127.0.0.1:9\n", single)
}

func TestParseNeighbors(t *testing.T) {
	want := []Neighbor{
		{ID: 2, Address: "10.0.0.2", Port: 4001},
		{ID: 5, Address: "::1", Port: 65535},
	}
	got, err := ParseNeighbors(FormatNeighbors(want), 2)
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, "[::1]:65535", got[1].HostPort())
}

func TestParseNeighborsErrors(t *testing.T) {
	for _, tc := range []struct {
		name  string
		block string
		want  int
	}{
		{"unterminated", "2:10.0.0.2:4001", 1},
		{"too few lines", "2:10.0.0.2:4001\n", 2},
		{"too many lines", "2:a:1\n3:b:2\n", 1},
		{"no colons", "garbage\n", 1},
		{"one colon", "2:4001\n", 1},
		{"bad id", "x:10.0.0.2:4001\n", 1},
		{"zero id", "0:10.0.0.2:4001\n", 1},
		{"port too large", "2:10.0.0.2:65536\n", 1},
		{"negative port", "2:10.0.0.2:-1\n", 1},
		{"empty address", "2::4001\n", 1},
		{"empty", "", 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseNeighbors(tc.block, tc.want)
			require.Error(t, err)
			require.Equal(t, ErrFormat, errors.Cause(err))
		})
	}
}
