package transport

import (
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
	"k8s.io/utils/clock"
)

// ErrTimeout is returned by Poller.Wait when a bounded wait expires with no
// connection readable.
var ErrTimeout = errors.New("timed out waiting for a readable connection")

// NoTimeout makes Poller.Wait block until a connection is readable, however
// long that takes.
const NoTimeout time.Duration = -1

// readyEvents are the poll results that mean a read will not block: data,
// an orderly close, or an error the read will report.
const readyEvents = unix.POLLIN | unix.POLLHUP | unix.POLLERR | unix.POLLNVAL

// Poller waits for readability over a small set of connections.
type Poller struct {
	clock clock.Clock
}

// NewPoller returns a Poller that measures bounded waits with c.
func NewPoller(c clock.Clock) *Poller {
	if c == nil {
		c = clock.RealClock{}
	}
	return &Poller{clock: c}
}

// Wait blocks until at least one of conns is readable and returns the
// indexes of all readable ones, in ascending order. A nil entry in conns is
// skipped, which lets callers keep indexes stable while retiring
// connections.
// A negative timeout waits forever. Otherwise ErrTimeout is returned once
// timeout has passed.
func (p *Poller) Wait(conns []*Conn, timeout time.Duration) ([]int, error) {
	fds := make([]unix.PollFd, len(conns))
	live := 0
	for i, c := range conns {
		fds[i].Fd = -1
		if c == nil {
			continue
		}
		fds[i].Fd = int32(c.fd)
		fds[i].Events = unix.POLLIN
		live++
	}
	if live == 0 {
		return nil, errors.New("no connections to wait on")
	}

	var deadline time.Time
	if timeout >= 0 {
		deadline = p.clock.Now().Add(timeout)
	}
	for {
		waitMs := -1
		if timeout >= 0 {
			remaining := deadline.Sub(p.clock.Now())
			if remaining < 0 {
				remaining = 0
			}
			waitMs = int((remaining + time.Millisecond - 1) / time.Millisecond)
		}

		n, err := unix.Poll(fds, waitMs)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, "poll failed")
		}
		if n == 0 {
			return nil, ErrTimeout
		}

		ready := make([]int, 0, n)
		for i := range fds {
			if fds[i].Fd >= 0 && fds[i].Revents&readyEvents != 0 {
				ready = append(ready, i)
			}
		}
		return ready, nil
	}
}
