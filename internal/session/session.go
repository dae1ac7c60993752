package session

import (
	"context"
	"encoding/json"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/rs/zerolog"

	"github.com/chatgrid/chatgrid/internal/domain/channel"
	"github.com/chatgrid/chatgrid/internal/domain/message"
	"github.com/chatgrid/chatgrid/internal/domain/user"
	"github.com/chatgrid/chatgrid/internal/registry"
)

// State is the session's position in the Upgrading -> Active -> Closing ->
// Closed state machine. Only Active accepts client frames.
type State int32

const (
	StateUpgrading State = iota
	StateActive
	StateClosing
	StateClosed
)

const (
	pingPeriod = 30 * time.Second
	writeWait  = 10 * time.Second
)

// MessageSender is the subset of MessageService a session needs to handle
// a send_message client frame.
type MessageSender interface {
	Send(ctx context.Context, channelID channel.ID, userID user.ID, content message.Content) (message.Message, error)
}

// Session is a live bidirectional frame stream between one client and this
// instance. A supervisor (Run) starts the writer and reader as cooperating
// goroutines and tears both down the moment either terminates.
type Session struct {
	ID        registry.ConnectionID
	UserID    user.ID
	ChannelID channel.ID

	conn     net.Conn
	outbound chan []byte
	state    atomic.Int32

	registry *registry.Registry
	messages MessageSender
	logger   zerolog.Logger

	closeOnce sync.Once
}

func New(conn net.Conn, userID user.ID, channelID channel.ID, reg *registry.Registry, messages MessageSender, logger zerolog.Logger) *Session {
	s := &Session{
		ID:        registry.NewConnectionID(),
		UserID:    userID,
		ChannelID: channelID,
		conn:      conn,
		outbound:  make(chan []byte, 256),
		registry:  reg,
		messages:  messages,
		logger:    logger,
	}
	s.state.Store(int32(StateUpgrading))
	return s
}

// Run registers the session, sends the Connected frame, and blocks until
// the session closes. It is meant to be called from the goroutine that
// owns the upgraded connection.
func (s *Session) Run(ctx context.Context) {
	s.registry.Add(s.ID, s.UserID, s.ChannelID, s.outbound)
	s.state.Store(int32(StateActive))

	if frame, err := ConnectedFrame(s.ChannelID.String()).Marshal(); err == nil {
		select {
		case s.outbound <- frame:
		default:
		}
	}

	done := make(chan struct{}, 2)
	stop := make(chan struct{})
	go func() { s.writeLoop(stop); done <- struct{}{} }()
	go func() { s.readLoop(ctx); done <- struct{}{} }()

	// Whichever exits first ends the session: its closeConn unblocks a
	// pending read, and closing stop ends a writer waiting for frames.
	<-done
	close(stop)

	s.state.Store(int32(StateClosing))
	s.registry.Remove(s.ID)
	s.state.Store(int32(StateClosed))
	s.logger.Info().Str("connection_id", s.ID.String()).Str("user_id", s.UserID.String()).Str("channel_id", s.ChannelID.String()).Msg("session closed")
}

func (s *Session) closeConn() {
	s.closeOnce.Do(func() { _ = s.conn.Close() })
}

func (s *Session) writeLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer s.closeConn()

	for {
		select {
		case <-stop:
			return
		case frame, ok := <-s.outbound:
			if !ok {
				return
			}
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsutil.WriteServerMessage(s.conn, ws.OpText, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsutil.WriteServerMessage(s.conn, ws.OpPing, nil); err != nil {
				return
			}
		}
	}
}

func (s *Session) readLoop(ctx context.Context) {
	defer s.closeConn()

	for {
		raw, op, err := wsutil.ReadClientData(s.conn)
		if err != nil {
			return
		}

		switch op {
		case ws.OpClose:
			return
		case ws.OpPing, ws.OpPong:
			continue
		case ws.OpBinary:
			s.sendError("binary messages not supported")
			continue
		case ws.OpText:
			s.handleClientFrame(ctx, raw)
		}
	}
}

func (s *Session) handleClientFrame(ctx context.Context, raw []byte) {
	var frame ClientFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		s.sendError("failed to parse message: " + err.Error())
		return
	}

	switch frame.Type {
	case ClientFramePing:
		if out, err := PongFrame().Marshal(); err == nil {
			s.enqueue(out)
		}

	case ClientFrameSendMessage:
		content, err := message.NewContent(frame.Content)
		if err != nil {
			s.sendError("invalid message content: " + err.Error())
			return
		}
		m, err := s.messages.Send(ctx, s.ChannelID, s.UserID, content)
		if err != nil {
			s.sendError("failed to send message: " + err.Error())
			return
		}
		s.logger.Debug().Str("message_id", m.ID.String()).Str("channel_id", s.ChannelID.String()).Msg("message saved and published")

	default:
		s.sendError("unknown frame type: " + frame.Type)
	}
}

func (s *Session) sendError(message string) {
	if out, err := ErrorFrame(message).Marshal(); err == nil {
		s.enqueue(out)
	}
}

func (s *Session) enqueue(frame []byte) {
	select {
	case s.outbound <- frame:
	default:
		s.logger.Warn().Str("connection_id", s.ID.String()).Msg("outbound queue full, dropping frame to sender")
	}
}
