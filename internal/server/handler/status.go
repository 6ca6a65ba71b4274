package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/ocobot/internal/domain"
)

// StatusHandler serves the mode, symbol and live bot snapshot.
type StatusHandler struct {
	mode   string
	symbol string
	state  domain.StateCache
	logger *slog.Logger
}

// NewStatusHandler creates a StatusHandler. state may be nil when no state
// cache is configured; the snapshot is then reported as null.
func NewStatusHandler(mode, symbol string, state domain.StateCache, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{
		mode:   mode,
		symbol: symbol,
		state:  state,
		logger: logHandler(logger, "status"),
	}
}

type statusResponse struct {
	Mode   string           `json:"mode"`
	Symbol string           `json:"symbol"`
	Bot    *domain.BotState `json:"bot"`
}

// GetStatus responds with the backend mode, the traded symbol and the last
// published bot snapshot.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Mode: h.mode, Symbol: h.symbol}

	if h.state != nil {
		state, err := h.state.GetState(r.Context(), h.symbol)
		switch {
		case err == nil:
			resp.Bot = &state
		case errors.Is(err, domain.ErrNotFound):
		default:
			h.logger.ErrorContext(r.Context(), "get bot state failed", slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "failed to read bot state")
			return
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
