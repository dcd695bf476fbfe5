package transport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"k8s.io/utils/clock"
)

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

// connPair returns both ends of a loopback connection: the dialed side first.
func connPair(t *testing.T) (*Conn, *Conn) {
	ctx := testCtx(t)
	ln, err := Listen(ctx, 0)
	require.NoError(t, err)
	defer ln.Close()
	require.NotZero(t, ln.Port())

	dialed, err := Dial(ctx, "127.0.0.1", ln.Port())
	require.NoError(t, err)
	accepted, ip, err := ln.Accept()
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1", ip)

	t.Cleanup(func() {
		dialed.Close()
		accepted.Close()
	})
	return dialed, accepted
}

func TestSendAllRecvExact(t *testing.T) {
	a, b := connPair(t)

	payload := make([]byte, 1<<20)
	for i := range payload {
		payload[i] = byte(i)
	}
	errC := make(chan error, 1)
	go func() {
		errC <- a.SendAll(payload)
	}()

	got, err := b.RecvExact(len(payload))
	require.NoError(t, err)
	require.Equal(t, payload, got)
	require.NoError(t, <-errC)
}

func TestRecvExactPeerClosed(t *testing.T) {
	a, b := connPair(t)
	require.NoError(t, a.Close())

	_, err := b.RecvExact(4)
	require.Equal(t, ErrPeerClosed, err)
	require.True(t, IsPeerClosed(err))
}

func TestRecvExactClosedMidMessage(t *testing.T) {
	a, b := connPair(t)
	require.NoError(t, a.SendAll([]byte{1, 2}))
	require.NoError(t, a.Close())

	_, err := b.RecvExact(4)
	require.Error(t, err)
	require.False(t, IsPeerClosed(err))
}

func TestDialRefused(t *testing.T) {
	ctx := testCtx(t)
	ln, err := Listen(ctx, 0)
	require.NoError(t, err)
	port := ln.Port()
	require.NoError(t, ln.Close())

	_, err = Dial(ctx, "127.0.0.1", port)
	require.Error(t, err)
}

func TestPollerWaitReady(t *testing.T) {
	a1, b1 := connPair(t)
	a2, b2 := connPair(t)
	a3, b3 := connPair(t)
	_ = a1
	p := NewPoller(clock.RealClock{})

	require.NoError(t, a2.SendAll([]byte{7}))
	ready, err := p.Wait([]*Conn{b1, b2, b3}, time.Second)
	require.NoError(t, err)
	require.Equal(t, []int{1}, ready)

	buf, err := b2.RecvExact(1)
	require.NoError(t, err)
	require.Equal(t, []byte{7}, buf)

	// a close is a readiness event too
	require.NoError(t, a3.Close())
	ready, err = p.Wait([]*Conn{b1, b2, b3}, time.Second)
	require.NoError(t, err)
	require.Equal(t, []int{2}, ready)
}

func TestPollerSkipsNil(t *testing.T) {
	a1, b1 := connPair(t)
	a2, b2 := connPair(t)
	p := NewPoller(nil)

	require.NoError(t, a1.SendAll([]byte{1}))
	require.NoError(t, a2.SendAll([]byte{2}))
	ready, err := p.Wait([]*Conn{nil, b2}, time.Second)
	require.NoError(t, err)
	require.Equal(t, []int{1}, ready)

	ready, err = p.Wait([]*Conn{b1, b2}, time.Second)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1}, ready)

	_, err = p.Wait([]*Conn{nil, nil}, time.Second)
	require.Error(t, err)
}

func TestPollerTimeout(t *testing.T) {
	_, b := connPair(t)
	p := NewPoller(clock.RealClock{})

	start := time.Now()
	_, err := p.Wait([]*Conn{b}, 50*time.Millisecond)
	require.Equal(t, ErrTimeout, err)
	require.True(t, time.Since(start) >= 40*time.Millisecond)
}
