package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bnema/skilllink-cli/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type messageLog struct {
	mu       sync.Mutex
	messages []domain.Message
}

func (l *messageLog) add(message domain.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, message)
}

func (l *messageLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.messages)
}

func (l *messageLog) All() []domain.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.Message(nil), l.messages...)
}

type stateLog struct {
	mu     sync.Mutex
	states []domain.ChannelState
}

func (l *stateLog) add(state domain.ChannelState) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states = append(l.states, state)
}

func (l *stateLog) All() []domain.ChannelState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.ChannelState(nil), l.states...)
}

func newTestChannel(t *testing.T, peer *fakePeer) *Channel {
	t.Helper()

	channel, err := NewChannel("http://localhost:3001", WithDialer(peer), WithHandshakeTimeout(time.Second))
	require.NoError(t, err)
	t.Cleanup(func() { _ = channel.Close() })
	return channel
}

func TestChannelJoinSendAndReceive(t *testing.T) {
	t.Parallel()

	peer := newFakePeer("t1")
	channel := newTestChannel(t, peer)

	var first, second messageLog
	channel.OnMessage(first.add)
	channel.OnMessage(second.add)

	require.NoError(t, channel.Connect(context.Background(), "t1"))
	assert.Equal(t, domain.ChannelConnected, channel.State())

	conn := peer.last(t)
	conn.waitSent(t, `40{"token":"t1"}`)

	require.NoError(t, channel.JoinRoom(context.Background(), "task-42"))
	require.NoError(t, channel.Send(context.Background(), "task-42", "hi"))
	conn.waitSent(t, `42["join_task","task-42"]`)
	conn.waitSent(t, `42["send_message",{"taskId":"task-42","content":"hi"}]`)
	assert.Equal(t, []string{"task-42"}, channel.Rooms())

	conn.push(`42["new_message",{"id":"m-1","taskId":"task-42","senderId":"u-2","content":"hello back","createdAt":"2026-03-01T10:00:00Z"}]`)

	require.Eventually(t, func() bool { return first.Len() == 1 && second.Len() == 1 }, time.Second, 2*time.Millisecond)
	assert.Equal(t, "hello back", first.All()[0].Content)
	assert.Equal(t, "task-42", second.All()[0].TaskID)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, first.Len())
	assert.Equal(t, 1, second.Len())
}

func TestChannelReceivesWhileWriteIsBlocked(t *testing.T) {
	t.Parallel()

	peer := newFakePeer("t1")
	channel := newTestChannel(t, peer)

	var log messageLog
	channel.OnMessage(log.add)
	require.NoError(t, channel.Connect(context.Background(), "t1"))
	conn := peer.last(t)
	conn.waitSent(t, `40{"token":"t1"}`)

	stalled, release := conn.holdWrites()
	t.Cleanup(release)

	joined := make(chan error, 1)
	go func() { joined <- channel.JoinRoom(context.Background(), "task-7") }()
	<-stalled

	conn.push(`42["new_message",{"id":"m-1","taskId":"task-42","senderId":"u-2","content":"hi"}]`)
	require.Eventually(t, func() bool { return log.Len() == 1 }, time.Second, 2*time.Millisecond)
	assert.Equal(t, domain.ChannelConnected, channel.State())
	assert.NotContains(t, channel.Rooms(), "task-7")

	sent := make(chan error, 1)
	go func() { sent <- channel.Send(context.Background(), "task-42", "queued") }()

	release()
	require.NoError(t, <-joined)
	require.NoError(t, <-sent)
	assert.Equal(t, []string{"task-7"}, channel.Rooms())
	conn.waitSent(t, `42["join_task","task-7"]`)
	conn.waitSent(t, `42["send_message",{"taskId":"task-42","content":"queued"}]`)
}

func TestChannelDeliversInTransportOrder(t *testing.T) {
	t.Parallel()

	peer := newFakePeer("t1")
	channel := newTestChannel(t, peer)

	var log messageLog
	channel.OnMessage(log.add)
	require.NoError(t, channel.Connect(context.Background(), "t1"))

	conn := peer.last(t)
	for _, id := range []string{"m-1", "m-2", "m-3"} {
		conn.push(`42["new_message",{"id":"` + id + `","taskId":"t"}]`)
	}

	require.Eventually(t, func() bool { return log.Len() == 3 }, time.Second, 2*time.Millisecond)
	ids := []string{}
	for _, message := range log.All() {
		ids = append(ids, message.ID)
	}
	assert.Equal(t, []string{"m-1", "m-2", "m-3"}, ids)
}

func TestChannelUnsubscribedHandlerStopsReceiving(t *testing.T) {
	t.Parallel()

	peer := newFakePeer("t1")
	channel := newTestChannel(t, peer)

	var kept, dropped messageLog
	channel.OnMessage(kept.add)
	sub := channel.OnMessage(dropped.add)
	require.NoError(t, channel.Connect(context.Background(), "t1"))
	conn := peer.last(t)

	conn.push(`42["new_message",{"id":"m-1"}]`)
	require.Eventually(t, func() bool { return kept.Len() == 1 && dropped.Len() == 1 }, time.Second, 2*time.Millisecond)

	sub.Unsubscribe()
	sub.Unsubscribe()
	conn.push(`42["new_message",{"id":"m-2"}]`)
	require.Eventually(t, func() bool { return kept.Len() == 2 }, time.Second, 2*time.Millisecond)
	assert.Equal(t, 1, dropped.Len())
}

func TestChannelRoomOperationsAreNoOpsWhileDisconnected(t *testing.T) {
	t.Parallel()

	peer := newFakePeer("t1")
	channel := newTestChannel(t, peer)

	require.NoError(t, channel.JoinRoom(context.Background(), "task-42"))
	require.NoError(t, channel.LeaveRoom(context.Background(), "task-42"))
	assert.ErrorIs(t, channel.Send(context.Background(), "task-42", "hi"), domain.ErrNotConnected)
	assert.Empty(t, channel.Rooms())
	assert.Empty(t, peer.Conns())
}

func TestChannelJoinAndLeaveAreIdempotent(t *testing.T) {
	t.Parallel()

	peer := newFakePeer("t1")
	channel := newTestChannel(t, peer)
	require.NoError(t, channel.Connect(context.Background(), "t1"))
	conn := peer.last(t)

	require.NoError(t, channel.JoinRoom(context.Background(), "task-1"))
	require.NoError(t, channel.JoinRoom(context.Background(), "task-1"))
	require.NoError(t, channel.LeaveRoom(context.Background(), "task-1"))
	require.NoError(t, channel.LeaveRoom(context.Background(), "task-1"))
	conn.waitSent(t, `42["leave_task","task-1"]`)

	joins, leaves := 0, 0
	for _, packet := range conn.Sent() {
		switch packet {
		case `42["join_task","task-1"]`:
			joins++
		case `42["leave_task","task-1"]`:
			leaves++
		}
	}
	assert.Equal(t, 1, joins)
	assert.Equal(t, 1, leaves)
	assert.Empty(t, channel.Rooms())
}

func TestChannelRejectedConnectEndsDisconnected(t *testing.T) {
	t.Parallel()

	peer := newFakePeer("good")
	channel := newTestChannel(t, peer)

	var states stateLog
	channel.OnStateChange(states.add)

	err := channel.Connect(context.Background(), "bad")
	require.ErrorIs(t, err, ErrConnectRejected)
	assert.Contains(t, err.Error(), "Authentication error")
	assert.Equal(t, domain.ChannelDisconnected, channel.State())
	assert.Equal(t, []domain.ChannelState{domain.ChannelConnecting, domain.ChannelDisconnected}, states.All())
	assert.True(t, peer.last(t).isClosed())
}

func TestChannelConnectRequiresToken(t *testing.T) {
	t.Parallel()

	channel := newTestChannel(t, newFakePeer())
	assert.ErrorIs(t, channel.Connect(context.Background(), ""), domain.ErrNoSession)
}

func TestChannelDialFailureEndsDisconnected(t *testing.T) {
	t.Parallel()

	peer := newFakePeer("t1")
	peer.dialErr = errDialRefused
	channel := newTestChannel(t, peer)

	err := channel.Connect(context.Background(), "t1")
	require.ErrorIs(t, err, errDialRefused)
	assert.Equal(t, domain.ChannelDisconnected, channel.State())
}

func TestChannelHandshakeTimesOutWithoutOpenPacket(t *testing.T) {
	t.Parallel()

	peer := newFakePeer("t1")
	peer.skipOpen = true
	channel, err := NewChannel("http://localhost:3001", WithDialer(peer), WithHandshakeTimeout(30*time.Millisecond))
	require.NoError(t, err)

	err = channel.Connect(context.Background(), "t1")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, domain.ChannelDisconnected, channel.State())
}

func TestChannelDropGoesDisconnectedWithoutReconnect(t *testing.T) {
	t.Parallel()

	peer := newFakePeer("t1")
	channel := newTestChannel(t, peer)

	var states stateLog
	channel.OnStateChange(states.add)
	require.NoError(t, channel.Connect(context.Background(), "t1"))
	require.NoError(t, channel.JoinRoom(context.Background(), "task-1"))

	require.NoError(t, peer.last(t).Close())

	require.Eventually(t, func() bool { return channel.State() == domain.ChannelDisconnected }, time.Second, 2*time.Millisecond)
	assert.Empty(t, channel.Rooms())
	assert.ErrorIs(t, channel.Send(context.Background(), "task-1", "hi"), domain.ErrNotConnected)

	time.Sleep(20 * time.Millisecond)
	assert.Len(t, peer.Conns(), 1)
	assert.Equal(t, []domain.ChannelState{
		domain.ChannelConnecting,
		domain.ChannelConnected,
		domain.ChannelDisconnected,
	}, states.All())
}

func TestChannelServerDisconnectPacketDrops(t *testing.T) {
	t.Parallel()

	peer := newFakePeer("t1")
	channel := newTestChannel(t, peer)
	require.NoError(t, channel.Connect(context.Background(), "t1"))

	peer.last(t).push("41")
	require.Eventually(t, func() bool { return channel.State() == domain.ChannelDisconnected }, time.Second, 2*time.Millisecond)
}

func TestChannelAnswersPings(t *testing.T) {
	t.Parallel()

	peer := newFakePeer("t1")
	channel := newTestChannel(t, peer)
	require.NoError(t, channel.Connect(context.Background(), "t1"))

	conn := peer.last(t)
	conn.push("2")
	conn.waitSent(t, "3")
	assert.Equal(t, domain.ChannelConnected, channel.State())
}

func TestChannelReconnectTearsDownPreviousConnection(t *testing.T) {
	t.Parallel()

	peer := newFakePeer("t1", "t2")
	channel := newTestChannel(t, peer)

	var log messageLog
	channel.OnMessage(log.add)

	require.NoError(t, channel.Connect(context.Background(), "t1"))
	first := peer.last(t)
	require.NoError(t, channel.JoinRoom(context.Background(), "task-1"))

	require.NoError(t, channel.Connect(context.Background(), "t2"))
	second := peer.last(t)

	assert.NotSame(t, first, second)
	assert.True(t, first.isClosed())
	assert.False(t, second.isClosed())
	assert.Empty(t, channel.Rooms())
	second.waitSent(t, `40{"token":"t2"}`)

	second.push(`42["new_message",{"id":"m-1"}]`)
	require.Eventually(t, func() bool { return log.Len() == 1 }, time.Second, 2*time.Millisecond)
}

func TestChannelCloseDetachesSubscriptions(t *testing.T) {
	t.Parallel()

	peer := newFakePeer("t1")
	channel := newTestChannel(t, peer)

	var log messageLog
	var states stateLog
	channel.OnMessage(log.add)
	channel.OnStateChange(states.add)

	require.NoError(t, channel.Connect(context.Background(), "t1"))
	require.NoError(t, channel.JoinRoom(context.Background(), "task-1"))
	conn := peer.last(t)

	require.NoError(t, channel.Close())
	assert.True(t, conn.isClosed())
	assert.Equal(t, domain.ChannelDisconnected, channel.State())
	assert.Empty(t, channel.Rooms())
	assert.Equal(t, domain.ChannelDisconnected, states.All()[len(states.All())-1])

	require.NoError(t, channel.Connect(context.Background(), "t1"))
	peer.last(t).push(`42["new_message",{"id":"m-1"}]`)
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, log.Len())
}

func TestEndpointURL(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"http://localhost:3001":        "ws://localhost:3001/socket.io/?EIO=4&transport=websocket",
		"https://api.skilllink.test/":  "wss://api.skilllink.test/socket.io/?EIO=4&transport=websocket",
		"https://example.test/backend": "wss://example.test/backend/socket.io/?EIO=4&transport=websocket",
	}
	for base, expected := range cases {
		got, err := EndpointURL(base)
		require.NoError(t, err, base)
		assert.Equal(t, expected, got)
	}

	_, err := EndpointURL("ftp://example.test")
	require.Error(t, err)
}

func TestChannelOverWebsocket(t *testing.T) {
	t.Parallel()

	upgrader := websocket.Upgrader{}
	received := make(chan string, 8)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/socket.io/" || r.URL.Query().Get("EIO") != "4" {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_ = conn.WriteMessage(websocket.TextMessage, []byte(fakeOpenPacket))
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			packet := string(data)
			received <- packet
			switch {
			case strings.HasPrefix(packet, "40"):
				_ = conn.WriteMessage(websocket.TextMessage, []byte(`40{"sid":"abc"}`))
			case strings.HasPrefix(packet, `42["join_task"`):
				_ = conn.WriteMessage(websocket.TextMessage, []byte(`42["new_message",{"id":"m-1","taskId":"task-42","content":"welcome"}]`))
			}
		}
	}))
	t.Cleanup(server.Close)

	channel, err := NewChannel(server.URL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = channel.Close() })

	var log messageLog
	channel.OnMessage(log.add)

	require.NoError(t, channel.Connect(context.Background(), "t1"))
	assert.Equal(t, `40{"token":"t1"}`, <-received)

	require.NoError(t, channel.JoinRoom(context.Background(), "task-42"))
	assert.Equal(t, `42["join_task","task-42"]`, <-received)

	require.Eventually(t, func() bool { return log.Len() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "welcome", log.All()[0].Content)
}
