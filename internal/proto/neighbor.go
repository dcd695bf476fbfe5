package proto

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// FormatNeighbors renders the body of a NeighborInfoBlock: one
// 'id:address:port' line per neighbor, each followed by '\n'.
func FormatNeighbors(neighbors []Neighbor) string {
	var sb strings.Builder
	for _, n := range neighbors {
		sb.WriteString(n.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ParseNeighbors parses a NeighborInfoBlock body holding exactly want lines.
func ParseNeighbors(block string, want int) ([]Neighbor, error) {
	if !strings.HasSuffix(block, "\n") {
		return nil, errors.Wrapf(ErrFormat, "neighbor block %q is not terminated", block)
	}
	lines := strings.Split(strings.TrimSuffix(block, "\n"), "\n")
	if len(lines) != want {
		return nil, errors.Wrapf(ErrFormat, "expected %d neighbors, got %d in %q", want, len(lines), block)
	}
	neighbors := make([]Neighbor, 0, len(lines))
	for _, line := range lines {
		n, err := ParseNeighbor(line)
		if err != nil {
			return nil, err
		}
		neighbors = append(neighbors, n)
	}
	return neighbors, nil
}

// ParseNeighbor parses one 'id:address:port' line. The address may itself
// contain colons (IPv6), so the id ends at the first colon and the port
// starts after the last.
func ParseNeighbor(line string) (Neighbor, error) {
	first := strings.Index(line, ":")
	last := strings.LastIndex(line, ":")
	if first < 0 || first == last {
		return Neighbor{}, errors.Wrapf(ErrFormat, "neighbor %q is not id:address:port", line)
	}
	id, err := strconv.Atoi(line[:first])
	if err != nil || id < 1 {
		return Neighbor{}, errors.Wrapf(ErrFormat, "invalid player id in neighbor %q", line)
	}
	port, err := strconv.Atoi(line[last+1:])
	if err != nil || port < 0 || port > 65535 {
		return Neighbor{}, errors.Wrapf(ErrFormat, "invalid port in neighbor %q", line)
	}
	addr := line[first+1 : last]
	if addr == "" {
		return Neighbor{}, errors.Wrapf(ErrFormat, "missing address in neighbor %q", line)
	}
	return Neighbor{ID: id, Address: addr, Port: uint16(port)}, nil
}
