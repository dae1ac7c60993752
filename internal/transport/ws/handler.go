// Package ws implements the live fan-out endpoint: GET
// /ws/channels/:channel_id?token=<bearer>.
package ws

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gobwas/ws"
	"github.com/rs/zerolog"

	"github.com/chatgrid/chatgrid/internal/credential"
	"github.com/chatgrid/chatgrid/internal/domain/channel"
	"github.com/chatgrid/chatgrid/internal/domain/user"
	"github.com/chatgrid/chatgrid/internal/registry"
	"github.com/chatgrid/chatgrid/internal/session"
)

// Handler upgrades authenticated clients to a live session.
type Handler struct {
	jwt      *credential.JWTHandler
	registry *registry.Registry
	messages session.MessageSender
	logger   zerolog.Logger
}

func NewHandler(jwt *credential.JWTHandler, reg *registry.Registry, messages session.MessageSender, logger zerolog.Logger) *Handler {
	return &Handler{jwt: jwt, registry: reg, messages: messages, logger: logger}
}

func (h *Handler) Mount(r chi.Router) {
	r.Get("/ws/channels/{channel_id}", h.Upgrade)
}

// Upgrade implements the handshake in spec §4.5: validate the token,
// parse the channel id, accept the upgrade, and hand off to a Session. Any
// auth failure is a 401 and no upgrade; a malformed channel id is a 400.
func (h *Handler) Upgrade(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.jwt.Decode(token)
	if err != nil {
		http.Error(w, "invalid or expired token", http.StatusUnauthorized)
		return
	}
	if strings.TrimSpace(claims.Subject) == "" {
		http.Error(w, "token missing subject claim", http.StatusUnauthorized)
		return
	}
	userID, err := user.ParseID(claims.Subject)
	if err != nil {
		http.Error(w, "token subject is not a valid user id", http.StatusUnauthorized)
		return
	}

	channelID, err := channel.ParseID(chi.URLParam(r, "channel_id"))
	if err != nil {
		http.Error(w, "invalid channel_id", http.StatusBadRequest)
		return
	}

	conn, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		h.logger.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	sess := session.New(conn, userID, channelID, h.registry, h.messages, h.logger)
	go sess.Run(context.Background())
}
