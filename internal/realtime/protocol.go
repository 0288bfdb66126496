package realtime

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Sender delivers an encoded frame to one connection. The Hub implements it
// for live sockets; tests swap in a recording fake.
type Sender interface {
	Send(connectionID string, payload []byte) error
}

// Protocol is the presence/messaging state machine. Each Handle* method is the
// single entry point for one inbound event type: it validates the payload,
// mutates the Registry and fans the resulting frames out through the Sender.
type Protocol struct {
	registry *Registry
	sender   Sender
	logger   *zap.Logger
	now      func() time.Time
}

func NewProtocol(registry *Registry, sender Sender, logger *zap.Logger) *Protocol {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Protocol{
		registry: registry,
		sender:   sender,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the message timestamp source.
func (p *Protocol) WithClock(now func() time.Time) *Protocol {
	if now != nil {
		p.now = now
	}
	return p
}

// HandleFrame decodes a raw inbound frame and dispatches it. Malformed frames
// are answered with an error frame instead of mutating any state.
func (p *Protocol) HandleFrame(connectionID string, data []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		p.replyError(connectionID, "bad_request", "invalid payload")
		return
	}

	switch frame.Type {
	case EventJoinRoom:
		p.HandleJoin(connectionID, frame.RoomID, frame.Username)
	case EventSendMessage:
		p.HandleMessage(connectionID, frame.RoomID, frame.Username, frame.Message)
	case EventTyping:
		p.HandleTyping(connectionID, frame.RoomID, frame.Username)
	default:
		p.replyError(connectionID, "unsupported_type", "unknown frame type")
	}
}

// HandleJoin registers the connection in the room, sends the full roster to
// every member of that room and announces the new user to everyone else.
// A repeated join for the same connection and room is idempotent: the roster
// is re-sent to the joiner alone and nothing is broadcast.
func (p *Protocol) HandleJoin(connectionID, roomID, username string) {
	if roomID == "" || username == "" {
		p.replyError(connectionID, "bad_request", "roomId and username are required")
		return
	}

	added := p.registry.Add(roomID, Participant{ConnectionID: connectionID, Username: username})
	roster := p.rosterFrame(roomID)

	if !added {
		p.send(connectionID, roster)
		return
	}

	p.logger.Debug("participant joined",
		zap.String("room_id", roomID),
		zap.String("connection_id", connectionID))

	p.broadcast(roomID, roster, "")
	p.broadcast(roomID, encode(userJoinedFrame{
		Type:     EventUserJoined,
		RoomID:   roomID,
		Username: username,
	}), connectionID)
}

// HandleMessage broadcasts the message to every member of the room including
// the sender. The timestamp is assigned at receipt so delivery order within a
// room reflects server arrival order.
func (p *Protocol) HandleMessage(connectionID, roomID, username, message string) {
	if roomID == "" || username == "" || message == "" {
		p.replyError(connectionID, "bad_request", "roomId, username and message are required")
		return
	}
	if !p.registry.Contains(roomID, connectionID) {
		p.replyError(connectionID, "not_joined", "join the room before sending messages")
		return
	}

	p.broadcast(roomID, encode(receiveMessageFrame{
		Type:     EventReceiveMessage,
		RoomID:   roomID,
		Username: username,
		Message:  message,
		Time:     p.now(),
	}), "")
}

// HandleTyping announces a typing pulse to every other member of the room.
// The server tracks no typing state; clients clear the indicator themselves.
func (p *Protocol) HandleTyping(connectionID, roomID, username string) {
	if roomID == "" || username == "" {
		p.replyError(connectionID, "bad_request", "roomId and username are required")
		return
	}
	if !p.registry.Contains(roomID, connectionID) {
		p.replyError(connectionID, "not_joined", "join the room before typing")
		return
	}

	p.broadcast(roomID, encode(userTypingFrame{
		Type:     EventUserTyping,
		RoomID:   roomID,
		Username: username,
	}), connectionID)
}

// HandleDisconnect removes the connection from every room and re-broadcasts
// the shrunken roster to each room that actually changed.
func (p *Protocol) HandleDisconnect(connectionID string) {
	affected := p.registry.Remove(connectionID)
	for _, roomID := range affected {
		p.broadcast(roomID, p.rosterFrame(roomID), "")
	}
	if len(affected) > 0 {
		p.logger.Debug("participant disconnected",
			zap.String("connection_id", connectionID),
			zap.Int("rooms", len(affected)))
	}
}

func (p *Protocol) rosterFrame(roomID string) []byte {
	return encode(roomUsersFrame{
		Type:   EventRoomUsers,
		RoomID: roomID,
		Users:  p.registry.List(roomID),
	})
}

func (p *Protocol) broadcast(roomID string, payload []byte, exclude string) {
	for _, member := range p.registry.List(roomID) {
		if exclude != "" && member.ConnectionID == exclude {
			continue
		}
		p.send(member.ConnectionID, payload)
	}
}

func (p *Protocol) replyError(connectionID, code, message string) {
	p.send(connectionID, encode(errorFrame{
		Type:  EventError,
		Code:  code,
		Error: message,
	}))
}

func (p *Protocol) send(connectionID string, payload []byte) {
	if err := p.sender.Send(connectionID, payload); err != nil {
		p.logger.Debug("frame delivery failed",
			zap.String("connection_id", connectionID),
			zap.Error(err))
	}
}

func encode(frame interface{}) []byte {
	payload, _ := json.Marshal(frame)
	return payload
}
