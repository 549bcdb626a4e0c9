package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rocketscienceinc/tictactoe-qlearning/internal/entity"
	"github.com/rocketscienceinc/tictactoe-qlearning/internal/service"
	"github.com/rocketscienceinc/tictactoe-qlearning/internal/tictactoe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lastFreeAgent answers with the highest free cell.
type lastFreeAgent struct{}

func (lastFreeAgent) ChooseAction(_ entity.State, valid []int, _ bool) (int, bool) {
	if len(valid) == 0 {
		return 0, false
	}

	return valid[len(valid)-1], true
}

func (lastFreeAgent) RecordMove(entity.State, int) {}

func (lastFreeAgent) Learn(float64) {}

// brokenService fails every turn with an unexpected error.
type brokenService struct{}

func (brokenService) Reset(context.Context) entity.State { return entity.State{} }

func (brokenService) MakeTurn(context.Context, int) (*service.TurnResult, error) {
	return nil, errors.New("storage is on fire")
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestRouter() http.Handler {
	gamePlay := service.NewGamePlayService(newTestLogger(), tictactoe.NewEnvironment(), lastFreeAgent{})

	return NewRouter(NewHandlers(newTestLogger(), gamePlay))
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

	return out
}

func TestHandlers_HomeAndPing(t *testing.T) {
	router := newTestRouter()

	// When: the banner and ping endpoints are called
	home := do(t, router, http.MethodGet, "/", "")
	ping := do(t, router, http.MethodGet, "/ping", "")

	// Then: both answer with plain text
	assert.Equal(t, http.StatusOK, home.Code)
	assert.Equal(t, banner, home.Body.String())
	assert.Equal(t, http.StatusOK, ping.Code)
	assert.Equal(t, "pong", ping.Body.String())
}

func TestHandlers_Reset(t *testing.T) {
	router := newTestRouter()

	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/move", `{"action": 0}`).Code)

	// When: the game is reset
	rec := do(t, router, http.MethodPost, "/reset", "")

	// Then: an empty board of nine zeros is returned
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"board":[0,0,0,0,0,0,0,0,0]}`, rec.Body.String())
}

func TestHandlers_Move(t *testing.T) {
	t.Run("Move_Success", func(t *testing.T) {
		router := newTestRouter()

		// When: the human plays the top-left corner
		rec := do(t, router, http.MethodPost, "/move", `{"action": 0}`)

		// Then: the agent replies in the last free cell
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t,
			`{"board":[1,0,0,0,0,0,0,0,-1],"done":false,"winner":0,"ai_action":8}`,
			rec.Body.String(),
		)
	})

	t.Run("Move_HumanWins", func(t *testing.T) {
		router := newTestRouter()

		// Given: X on 0 and 1, O on 8 and 7
		do(t, router, http.MethodPost, "/move", `{"action": 0}`)
		do(t, router, http.MethodPost, "/move", `{"action": 1}`)

		// When: the human completes the top row
		rec := do(t, router, http.MethodPost, "/move", `{"action": 2}`)

		// Then: the game is over, X won and the agent did not move
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[map[string]any](t, rec)
		assert.Equal(t, true, resp["done"])
		assert.InDelta(t, 1, resp["winner"], 0)
		assert.NotContains(t, resp, "ai_action")
	})

	t.Run("Move_IllegalCell", func(t *testing.T) {
		router := newTestRouter()

		do(t, router, http.MethodPost, "/move", `{"action": 0}`)

		for _, body := range []string{`{"action": 0}`, `{"action": 8}`, `{"action": 9}`, `{"action": -1}`} {
			// When: an occupied or out-of-range cell is sent
			rec := do(t, router, http.MethodPost, "/move", body)

			// Then: the request is rejected with 400 and an error message
			require.Equal(t, http.StatusBadRequest, rec.Code, body)
			assert.NotEmpty(t, decode[map[string]string](t, rec)["error"], body)
		}

		// And the game goes on
		assert.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/move", `{"action": 4}`).Code)
	})

	t.Run("Move_InvalidPayload", func(t *testing.T) {
		router := newTestRouter()

		for _, body := range []string{``, `not json`, `{}`, `{"action": "two"}`} {
			rec := do(t, router, http.MethodPost, "/move", body)

			assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		}
	})

	t.Run("Move_InternalError", func(t *testing.T) {
		router := NewRouter(NewHandlers(newTestLogger(), brokenService{}))

		// When: the service fails unexpectedly
		rec := do(t, router, http.MethodPost, "/move", `{"action": 0}`)

		// Then: 500 is returned with the error
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "storage is on fire", decode[map[string]string](t, rec)["error"])
	})
}

func TestRouter_CORS(t *testing.T) {
	router := newTestRouter()

	// When: the browser sends a preflight request
	rec := do(t, router, http.MethodOptions, "/move", "")

	// Then: it is answered without reaching the handlers
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStart_Shutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- Start(ctx, "0", newTestRouter())
	}()

	// When: the context is cancelled
	cancel()

	// Then: the server stops without error
	require.NoError(t, <-errCh)
}
