package transport

import (
	"context"
	"io"
	"net"
	"strconv"

	"github.com/pkg/errors"
)

// ErrPeerClosed indicates that the remote end closed the connection before
// sending any byte of the message being read.
var ErrPeerClosed = errors.New("peer closed connection")

// IsPeerClosed reports whether err means the peer closed cleanly between
// messages, as opposed to in the middle of one.
func IsPeerClosed(err error) bool {
	cause := errors.Cause(err)
	return cause == ErrPeerClosed || cause == io.EOF
}

// Listener accepts TCP connections on a single port.
type Listener struct {
	ln *net.TCPListener
}

// Listen listens on all interfaces at port. A port of 0 picks an ephemeral
// one; see Port.
func Listen(ctx context.Context, port int) (*Listener, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", net.JoinHostPort("", strconv.Itoa(port)))
	if err != nil {
		return nil, errors.Wrapf(err, "can't listen on port %d", port)
	}
	tcpLn, ok := ln.(*net.TCPListener)
	if !ok {
		ln.Close()
		return nil, errors.Errorf("%T is not a tcp listener", ln)
	}
	return &Listener{ln: tcpLn}, nil
}

// Port returns the port the listener is bound to.
func (l *Listener) Port() int {
	return l.ln.Addr().(*net.TCPAddr).Port
}

// Accept blocks until a peer connects. It returns the connection and the
// peer's IP address as the listener observed it.
func (l *Listener) Accept() (*Conn, string, error) {
	c, err := l.ln.AcceptTCP()
	if err != nil {
		return nil, "", errors.Wrap(err, "accept failed")
	}
	conn, err := newConn(c)
	if err != nil {
		c.Close()
		return nil, "", err
	}
	return conn, conn.RemoteIP(), nil
}

func (l *Listener) Close() error {
	return l.ln.Close()
}

// Conn is a full-duplex TCP stream. It is not safe for concurrent use; each
// Conn belongs to exactly one role.
type Conn struct {
	c  *net.TCPConn
	fd int
}

// Dial connects to addr:port.
func Dial(ctx context.Context, addr string, port int) (*Conn, error) {
	var d net.Dialer
	hostPort := net.JoinHostPort(addr, strconv.Itoa(port))
	c, err := d.DialContext(ctx, "tcp", hostPort)
	if err != nil {
		return nil, errors.Wrapf(err, "can't connect to %s", hostPort)
	}
	tcpConn, ok := c.(*net.TCPConn)
	if !ok {
		c.Close()
		return nil, errors.Errorf("%T is not a tcp connection", c)
	}
	conn, err := newConn(tcpConn)
	if err != nil {
		tcpConn.Close()
		return nil, err
	}
	return conn, nil
}

func newConn(c *net.TCPConn) (*Conn, error) {
	raw, err := c.SyscallConn()
	if err != nil {
		return nil, errors.Wrap(err, "could not get raw connection")
	}
	conn := &Conn{c: c, fd: -1}
	if err := raw.Control(func(fd uintptr) {
		conn.fd = int(fd)
	}); err != nil {
		return nil, errors.Wrap(err, "could not get connection fd")
	}
	return conn, nil
}

// RemoteIP returns the IP address of the peer, without a port.
func (c *Conn) RemoteIP() string {
	if addr, ok := c.c.RemoteAddr().(*net.TCPAddr); ok {
		return addr.IP.String()
	}
	host, _, _ := net.SplitHostPort(c.c.RemoteAddr().String())
	return host
}

func (c *Conn) String() string {
	return c.c.RemoteAddr().String()
}

// Read implements io.Reader on the unbuffered stream.
func (c *Conn) Read(b []byte) (int, error) {
	return c.c.Read(b)
}

// Write implements io.Writer. It is SendAll with a byte count.
func (c *Conn) Write(b []byte) (int, error) {
	if err := c.SendAll(b); err != nil {
		return 0, err
	}
	return len(b), nil
}

// SendAll blocks until every byte of b has been written or an error occurs.
func (c *Conn) SendAll(b []byte) error {
	for len(b) > 0 {
		n, err := c.c.Write(b)
		if err != nil {
			return errors.Wrapf(err, "send to %s failed", c)
		}
		b = b[n:]
	}
	return nil
}

// RecvExact blocks until exactly n bytes have been read. It returns
// ErrPeerClosed if the peer closed before the first byte, and a wrapped
// io.ErrUnexpectedEOF if it closed part way through.
//
// The proto codecs read through Conn.Read with io.ReadFull, which has the
// same contract; RecvExact is for callers that hold a Conn and want the
// closed peer reported as ErrPeerClosed.
func (c *Conn) RecvExact(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(c.c, buf); err != nil {
		if err == io.EOF {
			return nil, ErrPeerClosed
		}
		return nil, errors.Wrapf(err, "receive from %s failed", c)
	}
	return buf, nil
}

// RecvSome reads whatever is available, up to len(b) bytes, blocking only
// until at least one byte or EOF arrives.
func (c *Conn) RecvSome(b []byte) (int, error) {
	n, err := c.c.Read(b)
	if err == io.EOF {
		return n, ErrPeerClosed
	}
	if err != nil {
		return n, errors.Wrapf(err, "receive from %s failed", c)
	}
	return n, nil
}

func (c *Conn) Close() error {
	return c.c.Close()
}
