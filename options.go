package hotpotato

import (
	"math/rand"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/ngrok/hotpotato/internal/proto"
	"github.com/ngrok/hotpotato/internal/transport"
	"k8s.io/utils/clock"
)

type settings struct {
	l           log15.Logger
	rng         *rand.Rand
	seed        *int64
	clock       clock.Clock
	waitTimeout time.Duration
	gameOver    string
	listenPort  int
}

// Option is an option function for Coordinator and Player.
// See Rob Pike's post on the topic for more information on this pattern:
// https://commandcenter.blogspot.com/2014/01/self-referential-functions-and-design.html
type Option func(s *settings)

// WithLogger configures the logger to use.
// By default, nothing will be logged.
func WithLogger(l log15.Logger) Option {
	return func(s *settings) {
		s.l = l
	}
}

// WithRand sets the random source used to pick the first holder of the
// potato (Coordinator) or the next hop (Player). By default each role seeds
// its own source from the current time.
func WithRand(r *rand.Rand) Option {
	return func(s *settings) {
		s.rng = r
	}
}

// WithSeed seeds the random source from seed plus the role's salt instead
// of the clock. A Player salts with its identity, so players started with
// the same seed still choose their hops independently. WithRand takes
// precedence.
func WithSeed(seed int64) Option {
	return func(s *settings) {
		s.seed = &seed
	}
}

// WithWaitTimeout bounds every wait for a readable connection. If a time of
// 0 or less is specified, waits never time out, which is the default.
func WithWaitTimeout(t time.Duration) Option {
	return func(s *settings) {
		s.waitTimeout = t
		if s.waitTimeout <= 0 {
			s.waitTimeout = transport.NoTimeout
		}
	}
}

// WithClock sets the clock used to account for bounded waits.
func WithClock(c clock.Clock) Option {
	return func(s *settings) {
		s.clock = c
	}
}

// WithGameOverMessage sets the text the Coordinator sends to every player
// at shutdown.
func WithGameOverMessage(msg string) Option {
	return func(s *settings) {
		s.gameOver = msg
	}
}

// WithListenPort sets the port a Player accepts neighbor connections on.
// The default of 0 picks an ephemeral port.
func WithListenPort(port int) Option {
	return func(s *settings) {
		s.listenPort = port
	}
}

func newSettings(opts []Option) *settings {
	noopLogger := log15.New()
	noopLogger.SetHandler(log15.DiscardHandler())
	s := &settings{
		l:           noopLogger,
		clock:       clock.RealClock{},
		waitTimeout: transport.NoTimeout,
		gameOver:    proto.GameOverText,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// seededRand returns the configured source, or a new one seeded from the
// configured seed or the clock, plus salt so that processes started
// together still diverge.
func (s *settings) seededRand(salt int64) *rand.Rand {
	if s.rng != nil {
		return s.rng
	}
	if s.seed != nil {
		return rand.New(rand.NewSource(*s.seed + salt))
	}
	return rand.New(rand.NewSource(s.clock.Now().UnixNano() + salt))
}
