package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"tictac/agent"
	"tictac/config"
	"tictac/game"
	"tictac/searcher"

	"github.com/rs/zerolog/log"
)

type MoveRequest struct {
	Board       []string `json:"board"`
	WinLength   int      `json:"win_length"`
	Iterations  int      `json:"iterations,omitempty"`
	Exploration float64  `json:"exploration,omitempty"`
}

type MoveResponse struct {
	Row        int    `json:"row"`
	Col        int    `json:"col"`
	Player     string `json:"player"`
	Fallback   bool   `json:"fallback"`
	Iterations int    `json:"iterations"`
}

type PlayRequest struct {
	Board     []string `json:"board"`
	WinLength int      `json:"win_length"`
	Row       int      `json:"row"`
	Col       int      `json:"col"`
}

type PlayResponse struct {
	Board  []string `json:"board"`
	Result string   `json:"result"`
	Next   string   `json:"next,omitempty"`
}

type Handler struct {
	cfg config.Config
}

func NewHandler(cfg config.Config) *Handler {
	return &Handler{cfg: cfg}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SuggestMove runs a search on the posted board and returns the chosen move.
func (h *Handler) SuggestMove(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	state, err := h.parse(req.Board, req.WinLength)
	if err != nil {
		writeError(w, err)
		return
	}

	iterations := req.Iterations
	if iterations == 0 {
		iterations = h.cfg.Search.Iterations
	}
	exploration := req.Exploration
	if exploration == 0 {
		exploration = h.cfg.Search.Exploration
	}
	if iterations < 0 || iterations > h.cfg.Server.MaxIterations {
		writeError(w, fmt.Errorf("%w: iterations must be within [1, %d], got %d", searcher.ErrInvalidBudget, h.cfg.Server.MaxIterations, iterations))
		return
	}
	if exploration < 0 {
		writeError(w, fmt.Errorf("%w: exploration constant %v", searcher.ErrInvalidBudget, exploration))
		return
	}

	mcts := searcher.NewMCTS(
		searcher.WithIterations(iterations),
		searcher.WithExplorationConstant(exploration),
		searcher.WithGoroutines(h.cfg.Search.Goroutines),
		searcher.WithSeed(h.cfg.Search.Seed),
		searcher.WithMetrics(),
	)
	move, metric, err := agent.NewEvaluationAgent(mcts, h.cfg.Search.Seed).FindMove(state)
	if err != nil {
		writeError(w, err)
		return
	}

	log.Debug().Msgf("suggested %s for %s after %d episodes in %s", move, state.Player(), metric.Episodes, metric.Duration)
	writeJSON(w, http.StatusOK, MoveResponse{
		Row:        move.Row,
		Col:        move.Col,
		Player:     state.Player().String(),
		Fallback:   metric.Fallback,
		Iterations: iterations,
	})
}

// PlayMove applies a move to the posted board and returns the new position.
func (h *Handler) PlayMove(w http.ResponseWriter, r *http.Request) {
	var req PlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	state, err := h.parse(req.Board, req.WinLength)
	if err != nil {
		writeError(w, err)
		return
	}

	next, err := state.Apply(game.Move{Row: req.Row, Col: req.Col})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := PlayResponse{Board: next.Rows(), Result: next.Winner().String()}
	if !next.IsTerminal() {
		resp.Next = next.Player().String()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) parse(board []string, winLength int) (*game.Grid, error) {
	if winLength == 0 {
		winLength = h.cfg.Board.WinLength
		if len(board) < winLength {
			winLength = len(board)
		}
	}
	return game.Parse(winLength, board...)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrInvalidBoard),
		errors.Is(err, game.ErrInvalidDimensions),
		errors.Is(err, game.ErrIllegalMove),
		errors.Is(err, searcher.ErrInvalidBudget):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, searcher.ErrTerminalRoot):
		writeJSONError(w, http.StatusConflict, err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
	log.Debug().Msgf("request error: %s", msg)
}
