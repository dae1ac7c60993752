package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chatgrid/chatgrid/internal/credential"
	"github.com/chatgrid/chatgrid/internal/domain/channel"
	"github.com/chatgrid/chatgrid/internal/domain/user"
	"github.com/chatgrid/chatgrid/internal/service"
)

// ChatRouter mounts the chat service's REST surface: channel lifecycle
// and message history. Live send/receive happens over the websocket
// endpoint, not here.
type ChatRouter struct {
	channels *service.ChannelService
	messages *service.MessageService
	users    *service.UserLookupService
	jwt      *credential.JWTHandler
}

func NewChatRouter(channels *service.ChannelService, messages *service.MessageService, users *service.UserLookupService, jwt *credential.JWTHandler) *ChatRouter {
	return &ChatRouter{channels: channels, messages: messages, users: users, jwt: jwt}
}

func (cr *ChatRouter) Mount(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(RequireBearerAuth(cr.jwt))
		r.Post("/api/channels", cr.createChannel)
		r.Get("/api/channels/public", cr.listPublic)
		r.Get("/api/channels/mine", cr.listMine)
		r.Get("/api/channels/{channel_id}", cr.getChannel)
		r.Get("/api/channels/{channel_id}/messages", cr.history)
	})
}

type channelDTO struct {
	ID          string   `json:"id"`
	Kind        string   `json:"kind"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	CreatedBy   string   `json:"created_by"`
	CreatedAt   string   `json:"created_at"`
	Members     []string `json:"members,omitempty"`
}

func toChannelDTO(ch channel.Channel) channelDTO {
	dto := channelDTO{
		ID:        ch.ID().String(),
		Kind:      string(ch.Kind()),
		CreatedBy: ch.CreatedBy().String(),
		CreatedAt: ch.CreatedAt().Format(time.RFC3339),
	}
	if name, ok := ch.Name(); ok {
		dto.Name = name.String()
	}
	if desc, ok := ch.Description(); ok {
		dto.Description = desc
	}
	if priv, ok := ch.(channel.Private); ok {
		dto.Members = make([]string, len(priv.Members))
		for i, m := range priv.Members {
			dto.Members[i] = m.String()
		}
	}
	return dto
}

type createChannelRequest struct {
	Kind          string   `json:"kind"`
	Name          string   `json:"name,omitempty"`
	Description   string   `json:"description,omitempty"`
	Members       []string `json:"members,omitempty"`
	ParticipantID string   `json:"participant_id,omitempty"`
}

func (cr *ChatRouter) createChannel(w http.ResponseWriter, r *http.Request) {
	actor, _ := UserIDFromContext(r.Context())

	var req createChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	cmd := channel.CreateCommand{Kind: channel.Type(req.Kind)}

	switch cmd.Kind {
	case channel.TypePublic, channel.TypePrivate:
		name, err := channel.NewName(req.Name)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		cmd.Name = name
		cmd.Description = req.Description
		cmd.HasDesc = req.Description != ""
		if cmd.Kind == channel.TypePrivate {
			members := make([]user.ID, 0, len(req.Members))
			for _, raw := range req.Members {
				id, err := user.ParseID(raw)
				if err != nil {
					writeDomainError(w, err)
					return
				}
				members = append(members, id)
			}
			cmd.Members = members
		}
	case channel.TypeDirect:
		id, err := user.ParseID(req.ParticipantID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		cmd.ParticipantID = id
	default:
		writeError(w, http.StatusBadRequest, "kind must be one of public, private, direct")
		return
	}

	ch, err := cr.channels.Create(r.Context(), cmd, actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toChannelDTO(ch))
}

func (cr *ChatRouter) getChannel(w http.ResponseWriter, r *http.Request) {
	id, err := channel.ParseID(chi.URLParam(r, "channel_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	ch, err := cr.channels.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toChannelDTO(ch))
}

func (cr *ChatRouter) listPublic(w http.ResponseWriter, r *http.Request) {
	channels, err := cr.channels.ListPublic(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]channelDTO, len(channels))
	for i, ch := range channels {
		dtos[i] = toChannelDTO(ch)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (cr *ChatRouter) listMine(w http.ResponseWriter, r *http.Request) {
	actor, _ := UserIDFromContext(r.Context())
	channels, err := cr.channels.ListForUser(r.Context(), actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]channelDTO, len(channels))
	for i, ch := range channels {
		dtos[i] = toChannelDTO(ch)
	}
	writeJSON(w, http.StatusOK, dtos)
}

type messageDTO struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func (cr *ChatRouter) history(w http.ResponseWriter, r *http.Request) {
	channelID, err := channel.ParseID(chi.URLParam(r, "channel_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
	}

	var before *time.Time
	if raw := r.URL.Query().Get("before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "before must be an RFC3339 timestamp")
			return
		}
		before = &t
	}

	msgs, err := cr.messages.History(r.Context(), channelID, limit, before)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]messageDTO, len(msgs))
	for i, m := range msgs {
		username, err := cr.users.Username(r.Context(), m.UserID)
		if err != nil {
			username = ""
		}
		dtos[i] = messageDTO{
			ID: m.ID.String(), ChannelID: m.ChannelID.String(), UserID: m.UserID.String(),
			Username: username, Content: m.Content.String(), Timestamp: m.Timestamp,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}
