package agent

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tictac/experiments/metrics"
	"tictac/game"
)

var ErrRemote = errors.New("remote agent failed")

type remoteAgent struct {
	url        string
	iterations int
	client     *http.Client
}

type moveRequest struct {
	Board      []string `json:"board"`
	WinLength  int      `json:"win_length"`
	Iterations int      `json:"iterations,omitempty"`
}

type moveResponse struct {
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	Fallback bool   `json:"fallback"`
	Error    string `json:"error"`
}

// NewRemoteAgent returns an agent that asks a move server at baseURL for its moves.
// iterations of 0 leaves the budget to the server.
func NewRemoteAgent(baseURL string, iterations int, timeout time.Duration) Agent {
	return &remoteAgent{
		url:        strings.TrimRight(baseURL, "/") + "/move",
		iterations: iterations,
		client:     &http.Client{Timeout: timeout},
	}
}

func (a *remoteAgent) FindMove(state *game.Grid) (game.Move, metrics.SearchMetric, error) {
	body, err := json.Marshal(moveRequest{
		Board:      state.Rows(),
		WinLength:  state.WinLength(),
		Iterations: a.iterations,
	})
	if err != nil {
		return game.Move{}, metrics.SearchMetric{}, err
	}

	start := time.Now()
	resp, err := a.client.Post(a.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return game.Move{}, metrics.SearchMetric{}, fmt.Errorf("%w: %w", ErrRemote, err)
	}
	defer resp.Body.Close()

	var out moveResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return game.Move{}, metrics.SearchMetric{}, fmt.Errorf("%w: status %d: %w", ErrRemote, resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return game.Move{}, metrics.SearchMetric{}, fmt.Errorf("%w: status %d: %s", ErrRemote, resp.StatusCode, out.Error)
	}

	metric := metrics.SearchMetric{
		Iterations: a.iterations,
		Duration:   time.Since(start),
		Fallback:   out.Fallback,
	}
	return game.Move{Row: out.Row, Col: out.Col}, metric, nil
}
