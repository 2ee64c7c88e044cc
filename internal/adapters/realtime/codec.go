package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Engine.IO v4 packet types.
const (
	eioOpen    = '0'
	eioClose   = '1'
	eioPing    = '2'
	eioPong    = '3'
	eioMessage = '4'
	eioNoop    = '6'
)

// Socket.IO v5 packet types, carried inside Engine.IO message packets.
const (
	sioConnect      = '0'
	sioDisconnect   = '1'
	sioEvent        = '2'
	sioAck          = '3'
	sioConnectError = '4'
)

const (
	pongPacket       = "3"
	disconnectPacket = "41"

	defaultPingInterval = 25 * time.Second
	defaultPingTimeout  = 20 * time.Second
)

var errMalformedPacket = errors.New("malformed packet")

type packetKind int

const (
	packetIgnored packetKind = iota
	packetOpen
	packetClose
	packetPing
	packetConnected
	packetConnectError
	packetDisconnect
	packetEvent
)

type handshake struct {
	SID          string `json:"sid"`
	PingInterval int    `json:"pingInterval"`
	PingTimeout  int    `json:"pingTimeout"`
	MaxPayload   int    `json:"maxPayload"`
}

// liveness is how long the connection may stay silent before it counts as
// dropped: the server pings every interval and waits timeout for the pong.
func (h handshake) liveness() time.Duration {
	interval := time.Duration(h.PingInterval) * time.Millisecond
	if interval <= 0 {
		interval = defaultPingInterval
	}
	timeout := time.Duration(h.PingTimeout) * time.Millisecond
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	return interval + timeout
}

type packet struct {
	kind      packetKind
	handshake handshake
	event     string
	args      []json.RawMessage
	message   string
}

func decodePacket(raw string) (packet, error) {
	if raw == "" {
		return packet{}, errMalformedPacket
	}

	switch raw[0] {
	case eioOpen:
		var h handshake
		if err := json.Unmarshal([]byte(raw[1:]), &h); err != nil {
			return packet{}, fmt.Errorf("decode open packet: %w", err)
		}
		return packet{kind: packetOpen, handshake: h}, nil
	case eioClose:
		return packet{kind: packetClose}, nil
	case eioPing:
		return packet{kind: packetPing}, nil
	case eioPong, eioNoop:
		return packet{kind: packetIgnored}, nil
	case eioMessage:
		return decodeSocketPacket(raw[1:])
	default:
		return packet{}, fmt.Errorf("%w: unknown engine packet type %q", errMalformedPacket, raw[0])
	}
}

func decodeSocketPacket(raw string) (packet, error) {
	if raw == "" {
		return packet{}, errMalformedPacket
	}

	kind := raw[0]
	body := skipNamespace(raw[1:])

	switch kind {
	case sioConnect:
		return packet{kind: packetConnected}, nil
	case sioDisconnect:
		return packet{kind: packetDisconnect}, nil
	case sioConnectError:
		var payload struct {
			Message string `json:"message"`
		}
		message := strings.TrimSpace(body)
		if err := json.Unmarshal([]byte(body), &payload); err == nil && payload.Message != "" {
			message = payload.Message
		}
		return packet{kind: packetConnectError, message: message}, nil
	case sioEvent:
		body = strings.TrimLeft(body, "0123456789")
		var args []json.RawMessage
		if err := json.Unmarshal([]byte(body), &args); err != nil || len(args) == 0 {
			return packet{}, fmt.Errorf("%w: event payload %q", errMalformedPacket, body)
		}
		var event string
		if err := json.Unmarshal(args[0], &event); err != nil {
			return packet{}, fmt.Errorf("%w: event name: %v", errMalformedPacket, err)
		}
		return packet{kind: packetEvent, event: event, args: args[1:]}, nil
	case sioAck:
		return packet{kind: packetIgnored}, nil
	default:
		return packet{}, fmt.Errorf("%w: unknown socket packet type %q", errMalformedPacket, kind)
	}
}

// skipNamespace drops a "/nsp," prefix. Only the default namespace is used.
func skipNamespace(body string) string {
	if !strings.HasPrefix(body, "/") {
		return body
	}
	if idx := strings.IndexByte(body, ','); idx >= 0 {
		return body[idx+1:]
	}
	return ""
}

func encodeConnect(token string) (string, error) {
	data, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return "", fmt.Errorf("encode connect packet: %w", err)
	}
	return string([]byte{eioMessage, sioConnect}) + string(data), nil
}

func encodeEvent(event string, args ...any) (string, error) {
	data, err := json.Marshal(append([]any{event}, args...))
	if err != nil {
		return "", fmt.Errorf("encode %s event: %w", event, err)
	}
	return string([]byte{eioMessage, sioEvent}) + string(data), nil
}
