package hotpotato

import (
	"strconv"
	"strings"

	"github.com/ngrok/hotpotato/internal/proto"
)

// Potato is the token relayed around the ring. It carries the number of hops
// it has left and the identities of the players that have held it.
type Potato struct {
	hops  int
	trace []int
}

// NewPotato returns a potato with the given hop budget and an empty trace.
func NewPotato(hops int) *Potato {
	return &Potato{hops: hops}
}

func shutdownPotato() *Potato {
	return &Potato{hops: proto.ShutdownHops}
}

// Hops returns the number of hops left. Negative values are sentinels; see
// IsShutdown and IsValid.
func (p *Potato) Hops() int {
	return p.hops
}

// IsShutdown reports whether this is the coordinator's end-of-game potato.
func (p *Potato) IsShutdown() bool {
	return p.hops == proto.ShutdownHops
}

// IsValid reports whether the potato may be relayed or returned.
func (p *Potato) IsValid() bool {
	return p.hops >= 0
}

// Trace returns a copy of the identities that have held the potato, oldest
// first.
func (p *Potato) Trace() []int {
	trace := make([]int, len(p.trace))
	copy(trace, p.trace)
	return trace
}

// TraceLength returns the number of trace entries, at most proto.MaxTrace.
func (p *Potato) TraceLength() int {
	return len(p.trace)
}

// AddTrace appends id to the trace. Once the trace holds proto.MaxTrace
// entries, further ids are dropped.
func (p *Potato) AddTrace(id int) {
	if len(p.trace) < proto.MaxTrace {
		p.trace = append(p.trace, id)
	}
}

// decrementHops never takes a valid potato below zero.
func (p *Potato) decrementHops() {
	if p.hops > 0 {
		p.hops--
	}
}

// state maps the hop count onto the relay state it puts its holder in.
func (p *Potato) state() relayState {
	switch {
	case p.hops > 0:
		return relayStateInFlight
	case p.hops == 0:
		return relayStateTerminal
	case p.hops == proto.ShutdownHops:
		return relayStateShutdown
	default:
		return relayStateError
	}
}

// String renders the trace as comma separated identities.
func (p *Potato) String() string {
	ids := make([]string, len(p.trace))
	for i, id := range p.trace {
		ids[i] = strconv.Itoa(id)
	}
	return strings.Join(ids, ",")
}

func (p *Potato) record() *proto.PotatoRecord {
	rec := &proto.PotatoRecord{
		Hops:        int32(p.hops),
		TraceLength: int32(len(p.trace)),
	}
	for i, id := range p.trace {
		rec.Trace[i] = int32(id)
	}
	return rec
}

func potatoFromRecord(rec *proto.PotatoRecord) *Potato {
	p := &Potato{hops: int(rec.Hops)}
	if rec.TraceLength > 0 {
		p.trace = make([]int, rec.TraceLength)
		for i := range p.trace {
			p.trace[i] = int(rec.Trace[i])
		}
	}
	return p
}
