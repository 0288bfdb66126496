package realtime

import "time"

// Inbound event types (client → server).
const (
	EventJoinRoom    = "join-room"
	EventSendMessage = "send-message"
	EventTyping      = "typing"
)

// Outbound event types (server → clients).
const (
	EventRoomUsers      = "room-users"
	EventUserJoined     = "user-joined"
	EventReceiveMessage = "receive-message"
	EventUserTyping     = "user-typing"
	EventError          = "error"
)

type inboundFrame struct {
	Type     string `json:"type"`
	RoomID   string `json:"roomId,omitempty"`
	Username string `json:"username,omitempty"`
	Message  string `json:"message,omitempty"`
}

type roomUsersFrame struct {
	Type   string        `json:"type"`
	RoomID string        `json:"roomId"`
	Users  []Participant `json:"users"`
}

type userJoinedFrame struct {
	Type     string `json:"type"`
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

type receiveMessageFrame struct {
	Type     string    `json:"type"`
	RoomID   string    `json:"roomId"`
	Username string    `json:"username"`
	Message  string    `json:"message"`
	Time     time.Time `json:"time"`
}

type userTypingFrame struct {
	Type     string `json:"type"`
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}
