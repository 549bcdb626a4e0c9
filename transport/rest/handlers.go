package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-qlearning/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-qlearning/internal/entity"
	"github.com/rocketscienceinc/tictactoe-qlearning/internal/service"
)

const banner = "Tic-Tac-Toe AI server is running"

type Handlers interface {
	Home(w http.ResponseWriter, r *http.Request)
	Ping(w http.ResponseWriter, r *http.Request)
	Reset(w http.ResponseWriter, r *http.Request)
	Move(w http.ResponseWriter, r *http.Request)
}

type gamePlayService interface {
	Reset(ctx context.Context) entity.State
	MakeTurn(ctx context.Context, cell int) (*service.TurnResult, error)
}

type handlers struct {
	logger   *slog.Logger
	gamePlay gamePlayService
}

func NewHandlers(logger *slog.Logger, gamePlay gamePlayService) Handlers {
	return &handlers{
		logger:   logger.With("component", "rest"),
		gamePlay: gamePlay,
	}
}

type boardResponse struct {
	Board entity.State `json:"board"`
}

type moveRequest struct {
	Action *int `json:"action"`
}

type moveResponse struct {
	Board    entity.State `json:"board"`
	Done     bool         `json:"done"`
	Winner   entity.Cell  `json:"winner"`
	AIAction *int         `json:"ai_action,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *handlers) Home(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, banner)
}

func (that *handlers) Ping(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "pong")
}

func (that *handlers) Reset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, boardResponse{Board: that.gamePlay.Reset(r.Context())})
}

func (that *handlers) Move(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "Move")

	var payload moveRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Action == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid payload"})
		return
	}

	result, err := that.gamePlay.MakeTurn(r.Context(), *payload.Action)
	if isIllegalMove(err) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if err != nil {
		log.Error("failed to make turn", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, moveResponse{
		Board:    result.Board,
		Done:     result.Done,
		Winner:   result.Winner,
		AIAction: result.AIAction,
	})
}

func isIllegalMove(err error) bool {
	return errors.Is(err, apperror.ErrInvalidCell) ||
		errors.Is(err, apperror.ErrCellOccupied) ||
		errors.Is(err, apperror.ErrGameFinished)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(text)); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}
