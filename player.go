package hotpotato

import (
	"context"
	"math/rand"

	"github.com/inconshreveable/log15"
	"github.com/ngrok/hotpotato/internal/proto"
	"github.com/ngrok/hotpotato/internal/transport"
	"github.com/pkg/errors"
)

// ErrGameOver is returned by PassPotato once the coordinator has ended the
// game. The caller should leave its relay loop and call End.
var ErrGameOver = errors.New("game over")

// Pass describes where PassPotato sent the potato.
type Pass struct {
	// To is the identity of the next holder, when the potato went to a
	// neighbor or, in a ring of one, stayed with this player.
	To int
	// ToCoordinator is set when this player was the final holder and sent
	// the potato back.
	ToCoordinator bool
}

// Player is one member of the ring. Its life is Connect, Join, then Play
// (or ReceivePotato and PassPotato in a loop followed by End).
type Player struct {
	s      *settings
	l      log15.Logger
	rng    *rand.Rand
	poller *transport.Poller

	ln          *transport.Listener
	coordinator *transport.Conn

	id        int
	count     int
	shape     Shape
	neighbors []proto.Neighbor
	right     *transport.Conn
	left      *transport.Conn
	// watch is what ReceivePotato waits on, coordinator first. Neighbors
	// that hang up are set to nil.
	watch []*transport.Conn

	state relayState
}

// NewPlayer returns a player that has not joined a game yet.
func NewPlayer(opts ...Option) *Player {
	s := newSettings(opts)
	return &Player{
		s:      s,
		l:      s.l.New("role", "player"),
		poller: transport.NewPoller(s.clock),
		state:  relayStateInit,
	}
}

// ID returns the identity the coordinator assigned, or 0 before Join.
func (p *Player) ID() int {
	return p.id
}

// Count returns the number of players in the ring, or 0 before Join.
func (p *Player) Count() int {
	return p.count
}

// Neighbors returns the descriptors the coordinator sent, right first.
func (p *Player) Neighbors() []proto.Neighbor {
	ns := make([]proto.Neighbor, len(p.neighbors))
	copy(ns, p.neighbors)
	return ns
}

// Start connects to the coordinator at addr:port and joins the ring.
func (p *Player) Start(ctx context.Context, addr string, port int) error {
	if err := p.Connect(ctx, addr, port); err != nil {
		return err
	}
	return p.Join(ctx)
}

// Connect opens the port neighbors will dial, connects to the coordinator
// and tells it that port. The coordinator assigns identities in the order
// these connections arrive.
func (p *Player) Connect(ctx context.Context, addr string, port int) error {
	ln, err := transport.Listen(ctx, p.s.listenPort)
	if err != nil {
		return err
	}
	p.ln = ln

	conn, err := transport.Dial(ctx, addr, port)
	if err != nil {
		return errors.Wrap(err, "could not connect to coordinator")
	}
	p.coordinator = conn
	p.l.Info("connected to coordinator", "addr", addr, "port", port)

	if err := proto.WriteUint16(conn, uint16(ln.Port())); err != nil {
		return errors.Wrap(err, "could not send listen port to coordinator")
	}
	return nil
}

// Join waits for this player's assignment and connects to its neighbors.
// It returns once every ring edge of this player is established.
func (p *Player) Join(ctx context.Context) error {
	if p.coordinator == nil {
		return errors.New("player is not connected to a coordinator")
	}
	if err := p.receiveAssignment(); err != nil {
		return err
	}
	p.l = p.l.New("player", p.id)
	p.rng = p.s.seededRand(int64(p.id))
	p.l.Info("joined ring", "players", p.count, "shape", p.shape, "neighbors", p.neighbors)

	if err := p.connectNeighbors(ctx); err != nil {
		return err
	}

	p.watch = []*transport.Conn{p.coordinator}
	if p.left != nil {
		p.watch = append(p.watch, p.left)
	}
	if p.right != nil && p.right != p.left {
		p.watch = append(p.watch, p.right)
	}
	return nil
}

func (p *Player) receiveAssignment() error {
	id, err := proto.ReadUint16(p.coordinator)
	if err != nil {
		return errors.Wrap(err, "could not read identity")
	}
	count, err := proto.ReadUint16(p.coordinator)
	if err != nil {
		return errors.Wrap(err, "could not read number of players")
	}
	if count < 1 || id < 1 || id > count {
		return errors.Wrapf(proto.ErrFormat, "identity %d out of range for %d players", id, count)
	}
	shape, err := ShapeFor(int(count))
	if err != nil {
		return err
	}

	p.id, p.count, p.shape = int(id), int(count), shape
	expected := shape.Neighbors(p.id)
	if len(expected) == 0 {
		return nil
	}

	block, err := proto.ReadText(p.coordinator)
	if err != nil {
		return errors.Wrap(err, "could not read neighbor information")
	}
	neighbors, err := proto.ParseNeighbors(block, len(expected))
	if err != nil {
		return err
	}
	for i, n := range neighbors {
		if n.ID != expected[i] {
			return errors.Wrapf(proto.ErrFormat, "neighbor %d of player %d is %d, expected %d", i, p.id, n.ID, expected[i])
		}
	}
	p.neighbors = neighbors
	return nil
}

// connectNeighbors dials every edge this player initiates, then accepts the
// rest. Dials complete against the peer's listen backlog, so this never
// waits on a peer that is itself dialing.
func (p *Player) connectNeighbors(ctx context.Context) error {
	conns := make(map[int]*transport.Conn, len(p.neighbors))
	for _, n := range p.neighbors {
		if !p.shape.Initiates(p.id, n.ID) {
			continue
		}
		conn, err := transport.Dial(ctx, n.Address, int(n.Port))
		if err != nil {
			return errors.Wrapf(err, "could not connect to neighbor %d", n.ID)
		}
		p.l.Debug("connected to neighbor", "neighbor", n.ID, "addr", n.HostPort())
		conns[n.ID] = conn
	}
	for _, n := range p.neighbors {
		if p.shape.Initiates(p.id, n.ID) {
			continue
		}
		conn, addr, err := p.ln.Accept()
		if err != nil {
			return errors.Wrapf(err, "could not accept neighbor %d", n.ID)
		}
		if addr != n.Address {
			// NAT and multi-homed hosts can legitimately change the apparent
			// source, so this is only worth a note.
			p.l.Warn("accepted neighbor from unexpected address", "neighbor", n.ID, "addr", addr, "expected", n.Address)
		}
		p.l.Debug("accepted neighbor", "neighbor", n.ID, "addr", addr)
		conns[n.ID] = conn
	}

	p.right = conns[p.shape.Right(p.id)]
	p.left = conns[p.shape.Left(p.id)]
	return nil
}

// ReceivePotato blocks until a potato arrives from the coordinator or a
// neighbor and records this player in its trace.
//
// The shutdown potato moves the player to its final state and is returned
// as is; PassPotato will then report ErrGameOver. An invalid potato is
// discarded and returned with ErrInvalidPotato, after which the caller
// should simply wait again.
func (p *Player) ReceivePotato() (*Potato, error) {
	if p.watch == nil {
		return nil, errors.New("player has not joined a ring")
	}
	for {
		ready, err := p.poller.Wait(p.watch, p.s.waitTimeout)
		if err != nil {
			return nil, errors.Wrap(err, "waiting for potato")
		}
		// the coordinator is index 0 and wins ties, so the shutdown potato is
		// seen before a neighbor that already shut down hangs up
		idx := ready[0]
		conn := p.watch[idx]
		rec, err := proto.ReadPotato(conn)
		if err != nil {
			if idx != 0 && transport.IsPeerClosed(err) {
				p.l.Info("neighbor hung up", "addr", conn)
				p.watch[idx] = nil
				continue
			}
			return nil, errors.Wrapf(err, "could not read potato from %s", conn)
		}

		pot := potatoFromRecord(rec)
		state := pot.state()
		if state == relayStateShutdown && idx != 0 {
			p.l.Warn("neighbor relayed the shutdown potato", "addr", conn)
			state = relayStateError
		}
		if err := p.state.transitionTo(state); err != nil {
			return nil, errors.Wrapf(err, "potato with hops %d", pot.Hops())
		}

		switch state {
		case relayStateShutdown:
			p.l.Debug("received shutdown")
			return pot, nil
		case relayStateError:
			p.l.Warn("discarding invalid potato", "hops", pot.Hops(), "from", conn)
			return pot, errors.Wrapf(ErrInvalidPotato, "hops %d", pot.Hops())
		}
		pot.AddTrace(p.id)
		return pot, nil
	}
}

// PassPotato sends pot on. With hops left it goes to a neighbor chosen at
// random; with none left it goes back to the coordinator, with this player
// recorded once more as the final holder.
//
// The final holder therefore appears twice at the end of the trace, once
// from ReceivePotato and once from the hand-back.
func (p *Player) PassPotato(pot *Potato) (Pass, error) {
	if p.state == relayStateShutdown {
		return Pass{}, ErrGameOver
	}
	if p.shape == nil {
		return Pass{}, errors.New("player has not joined a ring")
	}
	switch {
	case !pot.IsValid():
		p.l.Error("refusing to pass an invalid potato", "hops", pot.Hops())
		return Pass{}, errors.Wrapf(ErrInvalidPotato, "hops %d", pot.Hops())

	case pot.Hops() == 0:
		pot.AddTrace(p.id)
		if err := proto.WritePotato(p.coordinator, pot.record()); err != nil {
			return Pass{}, errors.Wrap(err, "could not return potato to coordinator")
		}
		p.l.Info("I'm it", "trace", pot.String())
		return Pass{ToCoordinator: true}, nil
	}

	pot.decrementHops()
	next, conn := p.nextHop()
	if conn == nil {
		// a ring of one: the potato stays here for another hop
		pot.AddTrace(p.id)
		return Pass{To: p.id}, nil
	}
	if err := proto.WritePotato(conn, pot.record()); err != nil {
		return Pass{}, errors.Wrapf(err, "could not pass potato to %d", next)
	}
	p.l.Info("sending potato", "to", next, "hops", pot.Hops())
	return Pass{To: next}, nil
}

func (p *Player) nextHop() (int, *transport.Conn) {
	switch p.shape.(type) {
	case Solo:
		return p.id, nil
	case Pair:
		return p.shape.Right(p.id), p.right
	}
	if p.rng.Intn(2) == 0 {
		return p.shape.Right(p.id), p.right
	}
	return p.shape.Left(p.id), p.left
}

// Play relays potatoes until the coordinator ends the game, then runs End
// and returns the game over message.
func (p *Player) Play() (string, error) {
	for {
		pot, err := p.ReceivePotato()
		if errors.Cause(err) == ErrInvalidPotato {
			continue
		}
		if err != nil {
			return "", err
		}

		for {
			pass, err := p.PassPotato(pot)
			if err == ErrGameOver {
				return p.End()
			}
			if errors.Cause(err) == ErrInvalidPotato {
				break
			}
			if err != nil {
				return "", err
			}
			if pass.ToCoordinator || pass.To != p.id {
				break
			}
		}
	}
}

// End reads the game over message, acknowledges it and closes every
// connection. It must follow the shutdown potato.
func (p *Player) End() (string, error) {
	if p.state != relayStateShutdown {
		return "", errors.Errorf("cannot end game in state %s", p.state)
	}
	defer p.Close()

	msg, err := proto.ReadText(p.coordinator)
	if err != nil {
		return "", errors.Wrap(err, "could not read game over message")
	}
	p.l.Info("game over", "msg", msg)
	if err := proto.WriteUint16(p.coordinator, proto.ShutdownAck); err != nil {
		return msg, errors.Wrap(err, "could not acknowledge shutdown")
	}
	return msg, nil
}

// Close releases every connection and the listener.
func (p *Player) Close() error {
	var firstErr error
	closeOnce := func(c interface{ Close() error }) {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if p.right != nil {
		closeOnce(p.right)
	}
	if p.left != nil && p.left != p.right {
		closeOnce(p.left)
	}
	if p.coordinator != nil {
		closeOnce(p.coordinator)
	}
	if p.ln != nil {
		closeOnce(p.ln)
	}
	return firstErr
}
