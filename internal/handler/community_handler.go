package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"skillbridge-api/internal/realtime"
	"skillbridge-api/internal/service"
	"skillbridge-api/pkg/errors"
	"skillbridge-api/pkg/logger"
)

// CommunityHandler handles community channels, messages and the live feed
type CommunityHandler struct {
	community *service.CommunityService
	listener  *realtime.Listener
	logger    *logger.Logger
}

// NewCommunityHandler creates a new community handler
func NewCommunityHandler(community *service.CommunityService, listener *realtime.Listener, logger *logger.Logger) *CommunityHandler {
	return &CommunityHandler{
		community: community,
		listener:  listener,
		logger:    logger,
	}
}

// GeneralChannel handles GET /api/community/channel
func (h *CommunityHandler) GeneralChannel(w http.ResponseWriter, r *http.Request) {
	channel, err := h.community.GeneralChannel(r.Context())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, channel, h.logger)
}

// Messages handles GET /api/community/channels/{id}/messages
func (h *CommunityHandler) Messages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.community.Messages(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, messages, h.logger)
}

// Post handles POST /api/community/channels/{id}/messages
func (h *CommunityHandler) Post(w http.ResponseWriter, r *http.Request) {
	user, err := requireUser(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	msg, err := h.community.Post(r.Context(), user.ID, chi.URLParam(r, "id"), req.Content)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusCreated, msg, h.logger)
}

// Stream handles GET /api/community/channels/{id}/stream, a server-sent
// events feed of new messages. The connection stays open until the client
// disconnects.
func (h *CommunityHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, errors.NewInternalError("streaming unsupported", nil), h.logger)
		return
	}

	channelID := chi.URLParam(r, "id")
	messages, cancel := h.listener.Subscribe(channelID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	h.logger.WithField("channel_id", channelID).Debug("Stream subscriber connected")

	for {
		select {
		case msg := <-messages:
			data, err := json.Marshal(msg)
			if err != nil {
				h.logger.WithError(err).Error("Failed to marshal stream message")
				continue
			}
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", data)
			flusher.Flush()

		case <-r.Context().Done():
			h.logger.WithField("channel_id", channelID).Debug("Stream subscriber disconnected")
			return
		}
	}
}
