// Package session implements the live session lifecycle after the upgrade
// handshake (which lives in internal/transport/ws): the
// Upgrading/Active/Closing/Closed state machine, and the reader/writer
// goroutine pair that drains a session's outbound queue and decodes client
// frames.
package session

import (
	"encoding/json"
	"time"

	"github.com/chatgrid/chatgrid/internal/events"
)

// ClientFrame is the tag-on-type union of frames a client may send.
type ClientFrame struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

const (
	ClientFrameSendMessage = "send_message"
	ClientFramePing        = "ping"
)

// ServerFrame is the tag-on-type union of frames the server may send.
// Only the fields that belong to Type are set (new_message sets id,
// user_id, content and timestamp). Timestamp is a struct, so omitempty
// does not drop it: frames without one carry the zero time.
type ServerFrame struct {
	Type      string    `json:"type"`
	ID        string    `json:"id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Content   string    `json:"content,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
	ChannelID string    `json:"channel_id,omitempty"`
	Message   string    `json:"message,omitempty"`
}

const (
	ServerFrameNewMessage = "new_message"
	ServerFrameConnected  = "connected"
	ServerFramePong       = "pong"
	ServerFrameError      = "error"
)

func NewMessageFrame(id, userID, content string, ts time.Time) ServerFrame {
	return ServerFrame{Type: ServerFrameNewMessage, ID: id, UserID: userID, Content: content, Timestamp: ts}
}

func ConnectedFrame(channelID string) ServerFrame {
	return ServerFrame{Type: ServerFrameConnected, ChannelID: channelID}
}

func PongFrame() ServerFrame {
	return ServerFrame{Type: ServerFramePong}
}

func ErrorFrame(message string) ServerFrame {
	return ServerFrame{Type: ServerFrameError, Message: message}
}

func (f ServerFrame) Marshal() ([]byte, error) {
	return json.Marshal(f)
}

// BuildNewMessageFrame turns a MessageSent envelope off the event bus into
// the new_message server frame a session writer sends to its client. This
// is the converter the fan-out consumer uses to stay ignorant of the wire
// frame shape.
func BuildNewMessageFrame(evt events.ChatEventMessage) ([]byte, error) {
	return NewMessageFrame(evt.MessageID, evt.UserID, evt.Content, evt.Timestamp).Marshal()
}
