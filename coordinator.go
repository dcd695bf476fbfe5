package hotpotato

import (
	"context"
	"math"
	"math/rand"

	"github.com/inconshreveable/log15"
	"github.com/ngrok/hotpotato/internal/proto"
	"github.com/ngrok/hotpotato/internal/transport"
	"github.com/pkg/errors"
)

var (
	// ErrNoPlayers indicates the coordinator was asked to release a potato
	// before any player joined.
	ErrNoPlayers = errors.New("no players connected")
	// ErrInvalidPotato indicates a potato with a negative hop count other
	// than the shutdown sentinel. Such a potato is discarded, never relayed.
	ErrInvalidPotato = errors.New("invalid potato")
	// ErrAlreadyShutdown indicates the shutdown handshake was already run.
	ErrAlreadyShutdown = errors.New("game already shut down")
)

// Coordinator runs a single game: it admits the players, tells each one
// where its neighbors are, releases the potato and ends the game once the
// potato comes back.
type Coordinator struct {
	port       int
	numPlayers int

	s      *settings
	l      log15.Logger
	rng    *rand.Rand
	poller *transport.Poller

	ln       *transport.Listener
	players  []*transport.Conn
	topology *Topology
	state    relayState
}

// NewCoordinator returns a coordinator that will listen on port and wait
// for numPlayers players. A port of 0 picks an ephemeral one.
func NewCoordinator(port, numPlayers int, opts ...Option) (*Coordinator, error) {
	if numPlayers < 1 || numPlayers > 65535 {
		return nil, errors.Errorf("number of players must be between 1 and 65535, not %d", numPlayers)
	}
	s := newSettings(opts)
	return &Coordinator{
		port:       port,
		numPlayers: numPlayers,
		s:          s,
		l:          s.l.New("role", "coordinator"),
		rng:        s.seededRand(0),
		poller:     transport.NewPoller(s.clock),
		state:      relayStateInit,
	}, nil
}

// Listen opens the port players connect to.
func (c *Coordinator) Listen(ctx context.Context) error {
	ln, err := transport.Listen(ctx, c.port)
	if err != nil {
		return err
	}
	c.ln = ln
	c.l.Info("listening for players", "port", ln.Port(), "players", c.numPlayers)
	return nil
}

// Port returns the port the coordinator listens on, once Listen has been
// called.
func (c *Coordinator) Port() int {
	if c.ln == nil {
		return c.port
	}
	return c.ln.Port()
}

// AcceptPlayers admits exactly numPlayers players. Identities are handed
// out from 1 in the order the connections are accepted.
func (c *Coordinator) AcceptPlayers() (*Topology, error) {
	if c.ln == nil {
		return nil, errors.New("coordinator is not listening")
	}
	infos := make([]PlayerInfo, 0, c.numPlayers)
	for id := 1; id <= c.numPlayers; id++ {
		c.l.Debug("waiting for player to connect", "player", id)
		conn, addr, err := c.ln.Accept()
		if err != nil {
			return nil, err
		}
		port, err := proto.ReadUint16(conn)
		if err != nil {
			conn.Close()
			return nil, errors.Wrapf(err, "could not read listen port of player %d", id)
		}
		c.players = append(c.players, conn)
		infos = append(infos, PlayerInfo{ID: id, Address: addr, Port: port})
		c.l.Info("player is ready to play", "player", id, "addr", addr, "port", port)
	}

	topology, err := BuildTopology(infos)
	if err != nil {
		return nil, err
	}
	c.topology = topology
	return topology, nil
}

// SendAssignments tells every player its identity, the size of the ring and
// who its neighbors are.
func (c *Coordinator) SendAssignments() error {
	if c.topology == nil {
		return errors.New("players have not been accepted")
	}
	for i, conn := range c.players {
		a, err := c.topology.Assignment(i + 1)
		if err != nil {
			return err
		}
		if err := sendAssignment(conn, a); err != nil {
			return errors.Wrapf(err, "could not send assignment to player %d", a.ID)
		}
		c.l.Debug("sent assignment", "player", a.ID, "neighbors", a.Neighbors)
	}
	return nil
}

func sendAssignment(conn *transport.Conn, a Assignment) error {
	if err := proto.WriteUint16(conn, uint16(a.ID)); err != nil {
		return err
	}
	if err := proto.WriteUint16(conn, uint16(a.Count)); err != nil {
		return err
	}
	if a.Count == 1 {
		return nil
	}
	return proto.WriteText(conn, proto.FormatNeighbors(a.Neighbors))
}

// CreatePotato returns a fresh potato with hops hops left.
func (c *Coordinator) CreatePotato(hops int) *Potato {
	return NewPotato(hops)
}

// SendPotato releases p to a player chosen uniformly at random. Releasing
// counts as a hop. It returns the identity of the chosen player.
func (c *Coordinator) SendPotato(p *Potato) (int, error) {
	p.decrementHops()
	if len(c.players) == 0 {
		return 0, ErrNoPlayers
	}
	if err := c.state.transitionTo(relayStateInFlight); err != nil {
		return 0, err
	}
	idx := c.rng.Intn(len(c.players))
	if err := proto.WritePotato(c.players[idx], p.record()); err != nil {
		return 0, errors.Wrapf(err, "could not send potato to player %d", idx+1)
	}
	c.l.Info("sent potato", "player", idx+1, "hops", p.Hops())
	return idx + 1, nil
}

// WaitForPotato blocks until a player sends the potato back. A potato with
// a negative hop count is returned together with ErrInvalidPotato.
func (c *Coordinator) WaitForPotato() (*Potato, error) {
	ready, err := c.poller.Wait(c.players, c.s.waitTimeout)
	if err != nil {
		return nil, errors.Wrap(err, "waiting for the potato to come back")
	}
	idx := ready[0]
	rec, err := proto.ReadPotato(c.players[idx])
	if err != nil {
		return nil, errors.Wrapf(err, "could not read potato from player %d", idx+1)
	}
	p := potatoFromRecord(rec)
	if !p.IsValid() {
		c.l.Error("received an invalid potato", "player", idx+1, "hops", p.Hops())
		if err := c.state.transitionTo(relayStateError); err != nil {
			return nil, err
		}
		return p, errors.Wrapf(ErrInvalidPotato, "player %d returned hops %d", idx+1, p.Hops())
	}
	if err := c.state.transitionTo(relayStateTerminal); err != nil {
		return nil, err
	}
	c.l.Info("potato came back", "player", idx+1, "hops", p.Hops(), "trace", p.String())
	return p, nil
}

// Shutdown ends the game: every player is sent the shutdown potato and the
// game over message, then Shutdown waits until each player has either
// acknowledged or hung up. It may only be run once.
func (c *Coordinator) Shutdown() error {
	if c.state == relayStateShutdown {
		return ErrAlreadyShutdown
	}
	if err := c.state.transitionTo(relayStateShutdown); err != nil {
		return err
	}

	c.l.Info("shutting down game", "players", len(c.players))
	shutdown := shutdownPotato().record()
	for i, conn := range c.players {
		if err := proto.WritePotato(conn, shutdown); err != nil {
			return errors.Wrapf(err, "could not send shutdown to player %d", i+1)
		}
	}
	for i, conn := range c.players {
		if err := proto.WriteText(conn, c.s.gameOver); err != nil {
			return errors.Wrapf(err, "could not send game over to player %d", i+1)
		}
	}
	return c.awaitAcks()
}

// awaitAcks counts a player as done on the first readiness event on its
// connection, whether that is the ack, some other data or a close.
func (c *Coordinator) awaitAcks() error {
	pending := make([]*transport.Conn, len(c.players))
	copy(pending, c.players)
	remaining := len(pending)

	var buf [2]byte
	for remaining > 0 {
		ready, err := c.poller.Wait(pending, c.s.waitTimeout)
		if err != nil {
			return errors.Wrapf(err, "waiting for %d players to acknowledge shutdown", remaining)
		}
		for _, idx := range ready {
			n, err := pending[idx].RecvSome(buf[:])
			switch {
			case transport.IsPeerClosed(err):
				c.l.Debug("player hung up", "player", idx+1)
			case err != nil:
				c.l.Warn("error reading shutdown acknowledgement", "player", idx+1, "err", err)
			default:
				c.l.Debug("player acknowledged shutdown", "player", idx+1, "bytes", n)
			}
			pending[idx] = nil
			remaining--
		}
	}
	c.l.Info("all players acknowledged shutdown")
	return nil
}

// Run plays a whole game with a budget of hops and returns the potato that
// came back, or nil if hops is 0. The shutdown handshake always runs once
// the players are connected, even when the potato comes back invalid.
func (c *Coordinator) Run(ctx context.Context, hops int) (*Potato, error) {
	if hops < 0 {
		return nil, errors.Errorf("number of hops must be non-negative, not %d", hops)
	}
	if int64(hops) > math.MaxInt32 {
		return nil, errors.Errorf("number of hops must fit the wire format, not %d", hops)
	}
	if c.ln == nil {
		if err := c.Listen(ctx); err != nil {
			return nil, err
		}
	}
	c.l.Info("starting game", "players", c.numPlayers, "hops", hops)
	if _, err := c.AcceptPlayers(); err != nil {
		return nil, err
	}
	if err := c.SendAssignments(); err != nil {
		return nil, err
	}

	if hops == 0 {
		c.l.Info("no hops to play, ending game")
		return nil, c.Shutdown()
	}

	p := c.CreatePotato(hops)
	if _, err := c.SendPotato(p); err != nil {
		return nil, err
	}
	final, err := c.WaitForPotato()
	if errors.Cause(err) == ErrInvalidPotato {
		if shutdownErr := c.Shutdown(); shutdownErr != nil {
			c.l.Error("shutdown after invalid potato failed", "err", shutdownErr)
		}
		return final, err
	}
	if err != nil {
		return nil, err
	}
	return final, c.Shutdown()
}

// Close releases the listener and every player connection.
func (c *Coordinator) Close() error {
	var firstErr error
	for _, conn := range c.players {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.ln != nil {
		if err := c.ln.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
