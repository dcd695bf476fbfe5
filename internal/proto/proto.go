package proto

import (
	"fmt"
	"net"
	"strconv"
)

// Neighbor describes the far end of one ring edge: who it is and where it
// listens for peer connections.
type Neighbor struct {
	ID      int
	Address string
	Port    uint16
}

func (n Neighbor) String() string {
	return fmt.Sprintf("%d:%s:%d", n.ID, n.Address, n.Port)
}

// HostPort returns the address to dial to reach this neighbor.
func (n Neighbor) HostPort() string {
	return net.JoinHostPort(n.Address, strconv.Itoa(int(n.Port)))
}

// PotatoRecord is the fixed-size wire form of a potato. Entries of Trace at
// or past TraceLength are zero on the wire and ignored on read.
type PotatoRecord struct {
	Hops        int32
	TraceLength int32
	Trace       [MaxTrace]int32
}
