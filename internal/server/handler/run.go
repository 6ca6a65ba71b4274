package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/alanyoungcy/ocobot/internal/domain"
)

// RunHandler serves the run history.
type RunHandler struct {
	runs   domain.RunStore
	logger *slog.Logger
}

// NewRunHandler creates a RunHandler backed by the given store.
func NewRunHandler(runs domain.RunStore, logger *slog.Logger) *RunHandler {
	return &RunHandler{runs: runs, logger: logHandler(logger, "runs")}
}

type runJSON struct {
	ID         string    `json:"id"`
	Number     int64     `json:"number"`
	Strategy   string    `json:"strategy"`
	Symbol     string    `json:"symbol"`
	Quantity   string    `json:"quantity"`
	Status     string    `json:"status"`
	Filled     int64     `json:"filled"`
	Expired    int64     `json:"expired"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

type listRunsResponse struct {
	Runs   []runJSON `json:"runs"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
}

// ListRuns returns runs newest first.
// GET /api/runs?limit=50&offset=0
func (h *RunHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)

	runs, err := h.runs.ListRecent(r.Context(), opts)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list runs failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	resp := listRunsResponse{Runs: make([]runJSON, 0, len(runs)), Limit: opts.Limit, Offset: opts.Offset}
	for _, run := range runs {
		resp.Runs = append(resp.Runs, runJSON(run))
	}
	writeJSON(w, http.StatusOK, resp)
}
