package realtime

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const fakeOpenPacket = `0{"sid":"s1","upgrades":[],"pingInterval":25000,"pingTimeout":20000,"maxPayload":1000000}`

// fakeConn is the client side of an in-memory transport. The peer goroutine
// plays the server's handshake and records everything the client writes.
type fakeConn struct {
	inbound  chan string
	outbound chan string
	closed   chan struct{}
	once     sync.Once

	mu      sync.Mutex
	sent    []string
	gate    chan struct{}
	stalled chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		inbound:  make(chan string, 64),
		outbound: make(chan string, 64),
		closed:   make(chan struct{}),
	}
}

func (c *fakeConn) Read(ctx context.Context) (string, error) {
	select {
	case packet := <-c.inbound:
		return packet, nil
	case <-c.closed:
		return "", io.EOF
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *fakeConn) Write(ctx context.Context, packet string) error {
	c.mu.Lock()
	gate, stalled := c.gate, c.stalled
	c.mu.Unlock()
	if gate != nil {
		select {
		case stalled <- struct{}{}:
		default:
		}
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	select {
	case <-c.closed:
		return io.ErrClosedPipe
	default:
	}
	c.outbound <- packet
	return nil
}

// holdWrites blocks every later Write until release is called. The
// returned channel receives once a Write is waiting.
func (c *fakeConn) holdWrites() (stalled <-chan struct{}, release func()) {
	gate := make(chan struct{})
	waiting := make(chan struct{}, 1)
	c.mu.Lock()
	c.gate, c.stalled = gate, waiting
	c.mu.Unlock()

	var once sync.Once
	return waiting, func() {
		once.Do(func() {
			c.mu.Lock()
			c.gate, c.stalled = nil, nil
			c.mu.Unlock()
			close(gate)
		})
	}
}

func (c *fakeConn) SetReadDeadline(time.Time) error {
	return nil
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// push delivers a packet from the server.
func (c *fakeConn) push(packet string) {
	c.inbound <- packet
}

func (c *fakeConn) record(packet string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, packet)
}

func (c *fakeConn) Sent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sent...)
}

func (c *fakeConn) waitSent(t *testing.T, packet string) {
	t.Helper()
	require.Eventually(t, func() bool {
		for _, sent := range c.Sent() {
			if sent == packet {
				return true
			}
		}
		return false
	}, time.Second, 2*time.Millisecond, "packet %s never sent; got %v", packet, c.Sent())
}

type fakePeer struct {
	mu       sync.Mutex
	tokens   map[string]bool
	conns    []*fakeConn
	dialErr  error
	targets  []string
	skipOpen bool
}

func newFakePeer(tokens ...string) *fakePeer {
	p := &fakePeer{tokens: map[string]bool{}}
	for _, token := range tokens {
		p.tokens[token] = true
	}
	return p
}

func (p *fakePeer) Dial(_ context.Context, target string) (Conn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.targets = append(p.targets, target)
	if p.dialErr != nil {
		return nil, p.dialErr
	}

	conn := newFakeConn()
	p.conns = append(p.conns, conn)
	if !p.skipOpen {
		conn.push(fakeOpenPacket)
	}
	go p.serve(conn)
	return conn, nil
}

func (p *fakePeer) serve(conn *fakeConn) {
	for {
		select {
		case <-conn.closed:
			return
		case packet := <-conn.outbound:
			conn.record(packet)
			if !strings.HasPrefix(packet, "40") {
				continue
			}
			token := strings.TrimSuffix(strings.TrimPrefix(packet, `40{"token":"`), `"}`)
			p.mu.Lock()
			accepted := p.tokens[token]
			p.mu.Unlock()
			if accepted {
				conn.push(`40{"sid":"abc"}`)
			} else {
				conn.push(`44{"message":"Authentication error"}`)
			}
		}
	}
}

func (p *fakePeer) Conns() []*fakeConn {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*fakeConn(nil), p.conns...)
}

func (p *fakePeer) last(t *testing.T) *fakeConn {
	t.Helper()
	conns := p.Conns()
	require.NotEmpty(t, conns)
	return conns[len(conns)-1]
}

func (p *fakePeer) allow(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokens[token] = true
}

var errDialRefused = errors.New("connection refused")

// hookDialer runs before once, ahead of the first dial, then hands off to peer.
type hookDialer struct {
	peer   *fakePeer
	once   sync.Once
	before func()
}

func (d *hookDialer) Dial(ctx context.Context, target string) (Conn, error) {
	d.once.Do(d.before)
	return d.peer.Dial(ctx, target)
}
