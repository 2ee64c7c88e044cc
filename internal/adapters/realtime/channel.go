package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bnema/skilllink-cli/internal/domain"
	"github.com/bnema/skilllink-cli/internal/logging"
	"github.com/sirupsen/logrus"
)

const (
	eventJoinTask    = "join_task"
	eventLeaveTask   = "leave_task"
	eventSendMessage = "send_message"
	eventNewMessage  = "new_message"

	defaultHandshakeTimeout = 10 * time.Second
)

var ErrConnectRejected = errors.New("socket connection rejected")

type outboundMessage struct {
	TaskID  string `json:"taskId"`
	Content string `json:"content"`
}

// Channel is one socket.io session bound to an access token. Inbound
// messages are dispatched in transport order from a single read goroutine.
type Channel struct {
	endpoint         string
	dialer           Dialer
	logger           logrus.FieldLogger
	handshakeTimeout time.Duration

	mu         sync.Mutex
	state      domain.ChannelState
	conn       Conn
	stopRead   context.CancelFunc
	rooms      map[string]struct{}
	generation uint64

	subsMu       sync.Mutex
	nextSub      uint64
	messageSubs  map[uint64]func(domain.Message)
	stateSubs    map[uint64]func(domain.ChannelState)
	messageOrder []uint64
	stateOrder   []uint64
}

type ChannelOption func(*Channel)

func WithDialer(dialer Dialer) ChannelOption {
	return func(c *Channel) {
		if dialer != nil {
			c.dialer = dialer
		}
	}
}

func WithChannelLogger(logger logrus.FieldLogger) ChannelOption {
	return func(c *Channel) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithHandshakeTimeout(timeout time.Duration) ChannelOption {
	return func(c *Channel) {
		if timeout > 0 {
			c.handshakeTimeout = timeout
		}
	}
}

// NewChannel builds a disconnected channel for the server at baseURL.
func NewChannel(baseURL string, opts ...ChannelOption) (*Channel, error) {
	endpoint, err := EndpointURL(baseURL)
	if err != nil {
		return nil, err
	}

	c := &Channel{
		endpoint:         endpoint,
		dialer:           WebsocketDialer{},
		logger:           logging.Discard(),
		handshakeTimeout: defaultHandshakeTimeout,
		rooms:            map[string]struct{}{},
		messageSubs:      map[uint64]func(domain.Message){},
		stateSubs:        map[uint64]func(domain.ChannelState){},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Subscription detaches a handler registered on a Channel.
type Subscription struct {
	once   sync.Once
	cancel func()
}

func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(s.cancel)
}

// Connect authenticates a new connection with token. A live connection is
// torn down first, so at most one exists at any time.
func (c *Channel) Connect(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrNoSession
	}

	c.mu.Lock()
	previous := c.state
	c.teardownLocked()
	c.generation++
	generation := c.generation
	c.state = domain.ChannelConnecting
	c.mu.Unlock()

	if previous != domain.ChannelDisconnected {
		c.emitState(domain.ChannelDisconnected)
	}
	c.emitState(domain.ChannelConnecting)

	conn, liveness, err := c.handshake(ctx, token)
	if err != nil {
		c.mu.Lock()
		stale := c.generation != generation
		if !stale {
			c.state = domain.ChannelDisconnected
		}
		c.mu.Unlock()
		if !stale {
			c.emitState(domain.ChannelDisconnected)
		}
		return err
	}

	c.mu.Lock()
	if c.generation != generation {
		c.mu.Unlock()
		_ = conn.Close()
		return fmt.Errorf("connect superseded: %w", context.Canceled)
	}
	readCtx, stopRead := context.WithCancel(context.Background())
	c.conn = conn
	c.stopRead = stopRead
	c.state = domain.ChannelConnected
	c.mu.Unlock()

	c.logger.WithField("endpoint", c.endpoint).Debug("socket connected")
	c.emitState(domain.ChannelConnected)

	go c.readLoop(readCtx, conn, generation, liveness)
	return nil
}

func (c *Channel) handshake(ctx context.Context, token string) (Conn, time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, c.handshakeTimeout)
	defer cancel()

	conn, err := c.dialer.Dial(ctx, c.endpoint)
	if err != nil {
		return nil, 0, err
	}

	fail := func(err error) (Conn, time.Duration, error) {
		_ = conn.Close()
		return nil, 0, err
	}

	var h handshake
	opened := false
	for !opened {
		raw, err := conn.Read(ctx)
		if err != nil {
			return fail(fmt.Errorf("read open packet: %w", err))
		}
		p, err := decodePacket(raw)
		if err != nil {
			return fail(err)
		}
		switch p.kind {
		case packetOpen:
			h = p.handshake
			opened = true
		case packetClose:
			return fail(errors.New("server closed transport during handshake"))
		}
	}

	connect, err := encodeConnect(token)
	if err != nil {
		return fail(err)
	}
	if err := conn.Write(ctx, connect); err != nil {
		return fail(fmt.Errorf("send connect packet: %w", err))
	}

	for {
		raw, err := conn.Read(ctx)
		if err != nil {
			return fail(fmt.Errorf("await connect ack: %w", err))
		}
		p, err := decodePacket(raw)
		if err != nil {
			return fail(err)
		}
		switch p.kind {
		case packetConnected:
			return conn, h.liveness(), nil
		case packetConnectError:
			return fail(fmt.Errorf("%w: %s", ErrConnectRejected, p.message))
		case packetPing:
			if err := conn.Write(ctx, pongPacket); err != nil {
				return fail(fmt.Errorf("send pong: %w", err))
			}
		case packetClose, packetDisconnect:
			return fail(errors.New("server closed transport during handshake"))
		}
	}
}

func (c *Channel) readLoop(ctx context.Context, conn Conn, generation uint64, liveness time.Duration) {
	for {
		if err := conn.SetReadDeadline(time.Now().Add(liveness)); err != nil {
			c.dropped(generation, err)
			return
		}
		raw, err := conn.Read(ctx)
		if err != nil {
			c.dropped(generation, err)
			return
		}

		p, err := decodePacket(raw)
		if err != nil {
			c.logger.WithError(err).Debug("skip socket packet")
			continue
		}

		switch p.kind {
		case packetPing:
			if err := conn.Write(ctx, pongPacket); err != nil {
				c.dropped(generation, err)
				return
			}
		case packetClose, packetDisconnect:
			c.dropped(generation, errors.New("server closed the session"))
			return
		case packetEvent:
			if p.event != eventNewMessage || len(p.args) == 0 {
				continue
			}
			var message domain.Message
			if err := json.Unmarshal(p.args[0], &message); err != nil {
				c.logger.WithError(err).Debug("skip malformed new_message")
				continue
			}
			if !c.isCurrent(generation) {
				return
			}
			c.dispatchMessage(message)
		}
	}
}

func (c *Channel) isCurrent(generation uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation == generation && c.state == domain.ChannelConnected
}

// dropped moves a connection that failed on its own to Disconnected. There
// is no automatic reconnect.
func (c *Channel) dropped(generation uint64, cause error) {
	c.mu.Lock()
	if c.generation != generation || c.state == domain.ChannelDisconnected {
		c.mu.Unlock()
		return
	}
	c.generation++
	c.teardownLocked()
	c.state = domain.ChannelDisconnected
	c.mu.Unlock()

	c.logger.WithError(cause).Info("socket disconnected")
	c.emitState(domain.ChannelDisconnected)
}

// teardownLocked closes the live transport and forgets its rooms. Callers
// hold c.mu.
func (c *Channel) teardownLocked() {
	if c.stopRead != nil {
		c.stopRead()
		c.stopRead = nil
	}
	if c.conn != nil {
		if c.state == domain.ChannelConnected {
			_ = c.conn.Write(context.Background(), disconnectPacket)
		}
		_ = c.conn.Close()
		c.conn = nil
	}
	c.rooms = map[string]struct{}{}
	c.state = domain.ChannelDisconnected
}

// Disconnect closes the transport but keeps subscriptions attached.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	if c.state == domain.ChannelDisconnected && c.conn == nil {
		c.mu.Unlock()
		return
	}
	c.generation++
	c.teardownLocked()
	c.mu.Unlock()

	c.emitState(domain.ChannelDisconnected)
}

// Close disconnects, forgets rooms and detaches every subscription.
func (c *Channel) Close() error {
	c.Disconnect()

	c.subsMu.Lock()
	c.messageSubs = map[uint64]func(domain.Message){}
	c.stateSubs = map[uint64]func(domain.ChannelState){}
	c.messageOrder = nil
	c.stateOrder = nil
	c.subsMu.Unlock()

	return nil
}

func (c *Channel) JoinRoom(ctx context.Context, taskID string) error {
	return c.setRoom(ctx, taskID, true)
}

func (c *Channel) LeaveRoom(ctx context.Context, taskID string) error {
	return c.setRoom(ctx, taskID, false)
}

// setRoom is a no-op unless Connected; repeated joins or leaves emit once.
// Membership is recorded once the write went through on the same connection.
func (c *Channel) setRoom(ctx context.Context, taskID string, join bool) error {
	c.mu.Lock()
	if c.state != domain.ChannelConnected || c.conn == nil {
		c.mu.Unlock()
		return nil
	}
	if _, member := c.rooms[taskID]; member == join {
		c.mu.Unlock()
		return nil
	}
	conn, generation := c.conn, c.generation
	c.mu.Unlock()

	event := eventLeaveTask
	if join {
		event = eventJoinTask
	}
	packet, err := encodeEvent(event, taskID)
	if err != nil {
		return err
	}
	if err := conn.Write(ctx, packet); err != nil {
		return fmt.Errorf("%s %s: %w", event, taskID, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != generation {
		return nil
	}
	if join {
		c.rooms[taskID] = struct{}{}
	} else {
		delete(c.rooms, taskID)
	}
	return nil
}

// Send emits a chat message without waiting for an acknowledgement.
func (c *Channel) Send(ctx context.Context, taskID, content string) error {
	c.mu.Lock()
	if c.state != domain.ChannelConnected || c.conn == nil {
		c.mu.Unlock()
		return domain.ErrNotConnected
	}
	conn := c.conn
	c.mu.Unlock()

	packet, err := encodeEvent(eventSendMessage, outboundMessage{TaskID: taskID, Content: content})
	if err != nil {
		return err
	}
	if err := conn.Write(ctx, packet); err != nil {
		return fmt.Errorf("%s: %w", eventSendMessage, err)
	}
	return nil
}

func (c *Channel) State() domain.ChannelState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Channel) Rooms() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	rooms := make([]string, 0, len(c.rooms))
	for room := range c.rooms {
		rooms = append(rooms, room)
	}
	sort.Strings(rooms)
	return rooms
}

// OnMessage registers handler for every inbound new_message.
func (c *Channel) OnMessage(handler func(domain.Message)) *Subscription {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.messageSubs[id] = handler
	c.messageOrder = append(c.messageOrder, id)

	return &Subscription{cancel: func() {
		c.subsMu.Lock()
		defer c.subsMu.Unlock()
		delete(c.messageSubs, id)
		c.messageOrder = without(c.messageOrder, id)
	}}
}

func (c *Channel) OnStateChange(handler func(domain.ChannelState)) *Subscription {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.stateSubs[id] = handler
	c.stateOrder = append(c.stateOrder, id)

	return &Subscription{cancel: func() {
		c.subsMu.Lock()
		defer c.subsMu.Unlock()
		delete(c.stateSubs, id)
		c.stateOrder = without(c.stateOrder, id)
	}}
}

func (c *Channel) dispatchMessage(message domain.Message) {
	c.subsMu.Lock()
	ids := append([]uint64(nil), c.messageOrder...)
	c.subsMu.Unlock()

	for _, id := range ids {
		c.subsMu.Lock()
		handler, ok := c.messageSubs[id]
		c.subsMu.Unlock()
		if ok {
			handler(message)
		}
	}
}

func (c *Channel) emitState(state domain.ChannelState) {
	c.subsMu.Lock()
	ids := append([]uint64(nil), c.stateOrder...)
	c.subsMu.Unlock()

	for _, id := range ids {
		c.subsMu.Lock()
		handler, ok := c.stateSubs[id]
		c.subsMu.Unlock()
		if ok {
			handler(state)
		}
	}
}

func without(ids []uint64, id uint64) []uint64 {
	out := ids[:0:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}
