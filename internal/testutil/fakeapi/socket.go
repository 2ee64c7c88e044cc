package fakeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/bnema/skilllink-cli/internal/domain"
	"github.com/gorilla/websocket"
)

const socketOpenPacket = `0{"sid":"%s","upgrades":[],"pingInterval":25000,"pingTimeout":20000,"maxPayload":1000000}`

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

type socketClient struct {
	conn   *websocket.Conn
	writeM sync.Mutex
	userID string
	rooms  map[string]struct{}
}

func (c *socketClient) write(packet string) {
	c.writeM.Lock()
	defer c.writeM.Unlock()
	_ = c.conn.WriteMessage(websocket.TextMessage, []byte(packet))
}

type socketHub struct {
	mu      sync.Mutex
	clients map[*socketClient]struct{}
	nextSID int
}

func newSocketHub() *socketHub {
	return &socketHub{clients: map[*socketClient]struct{}{}}
}

func (h *socketHub) add(c *socketClient) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	h.nextSID++
	return fmt.Sprintf("sid-%d", h.nextSID)
}

func (h *socketHub) remove(c *socketClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

func (h *socketHub) join(c *socketClient, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.rooms[room] = struct{}{}
}

func (h *socketHub) leave(c *socketClient, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(c.rooms, room)
}

func (h *socketHub) broadcast(room string, message domain.Message) {
	data, err := json.Marshal([]any{"new_message", message})
	if err != nil {
		return
	}

	h.mu.Lock()
	var targets []*socketClient
	for c := range h.clients {
		if _, ok := c.rooms[room]; ok {
			targets = append(targets, c)
		}
	}
	h.mu.Unlock()

	for _, c := range targets {
		c.write("42" + string(data))
	}
}

func (h *socketHub) closeAll() {
	h.mu.Lock()
	clients := make([]*socketClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		_ = c.conn.Close()
	}
}

// SocketClients reports how many socket connections are open.
func (s *Server) SocketClients() int {
	s.socket.mu.Lock()
	defer s.socket.mu.Unlock()
	return len(s.socket.clients)
}

// RoomMembers reports how many open connections joined room.
func (s *Server) RoomMembers(room string) int {
	s.socket.mu.Lock()
	defer s.socket.mu.Unlock()
	count := 0
	for c := range s.socket.clients {
		if _, ok := c.rooms[room]; ok {
			count++
		}
	}
	return count
}

// DropSockets closes every socket connection without a disconnect packet.
func (s *Server) DropSockets() {
	s.socket.closeAll()
}

// Broadcast pushes message to the sockets that joined its task room.
func (s *Server) Broadcast(message domain.Message) {
	s.socket.broadcast(message.TaskID, message)
}

func (s *Server) serveSocket(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("EIO") != "4" || r.URL.Query().Get("transport") != "websocket" {
		replyError(w, r, http.StatusBadRequest, "Unsupported transport")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := &socketClient{conn: conn, rooms: map[string]struct{}{}}
	sid := s.socket.add(client)
	defer func() {
		s.socket.remove(client)
		_ = conn.Close()
	}()

	client.write(fmt.Sprintf(socketOpenPacket, sid))

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if !s.handleSocketPacket(client, sid, string(data)) {
			return
		}
	}
}

func (s *Server) handleSocketPacket(client *socketClient, sid, packet string) bool {
	switch {
	case packet == "3":
		return true
	case packet == "41":
		return false
	case strings.HasPrefix(packet, "40"):
		var auth struct {
			Token string `json:"token"`
		}
		_ = json.Unmarshal([]byte(strings.TrimPrefix(packet, "40")), &auth)
		user, ok := s.userForToken(auth.Token)
		if !ok || auth.Token == "" {
			client.write(`44{"message":"Authentication error"}`)
			return false
		}
		client.userID = user.ID
		client.write(fmt.Sprintf(`40{"sid":"%s"}`, sid))
		return true
	case strings.HasPrefix(packet, "42"):
		if client.userID == "" {
			return true
		}
		s.handleSocketEvent(client, strings.TrimPrefix(packet, "42"))
		return true
	default:
		return true
	}
}

func (s *Server) handleSocketEvent(client *socketClient, raw string) {
	var args []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &args); err != nil || len(args) == 0 {
		return
	}
	var event string
	if err := json.Unmarshal(args[0], &event); err != nil {
		return
	}

	switch event {
	case "join_task", "leave_task":
		if len(args) < 2 {
			return
		}
		var room string
		if err := json.Unmarshal(args[1], &room); err != nil {
			return
		}
		if event == "join_task" {
			s.socket.join(client, room)
		} else {
			s.socket.leave(client, room)
		}
	case "send_message":
		if len(args) < 2 {
			return
		}
		var payload struct {
			TaskID  string `json:"taskId"`
			Content string `json:"content"`
		}
		if err := json.Unmarshal(args[1], &payload); err != nil || payload.TaskID == "" {
			return
		}
		sender, _ := s.userByID(client.userID)
		message := s.storeMessage(payload.TaskID, sender, payload.Content)
		s.socket.broadcast(payload.TaskID, message)
	}
}

func (s *Server) userByID(id string) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.ID == id {
			return user, true
		}
	}
	return domain.User{}, false
}
