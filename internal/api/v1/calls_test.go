package v1_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/DevanshMistry890/hotel-voice-agent/internal/api/v1"
	"github.com/DevanshMistry890/hotel-voice-agent/internal/concierge"
	"github.com/DevanshMistry890/hotel-voice-agent/internal/domain"
)

// ---------------------------------------------------------------------------
// mocks
// ---------------------------------------------------------------------------

type mockConcierge struct {
	greetFunc      func(ctx context.Context) (*concierge.GreetResult, error)
	handleTurnFunc func(ctx context.Context, sessionID uuid.UUID, text string) (*concierge.TurnResult, error)
	endCallFunc    func(ctx context.Context, sessionID uuid.UUID) (domain.CallSummary, error)
}

func (m *mockConcierge) Greet(ctx context.Context) (*concierge.GreetResult, error) {
	return m.greetFunc(ctx)
}

func (m *mockConcierge) HandleTurn(ctx context.Context, sessionID uuid.UUID, text string) (*concierge.TurnResult, error) {
	return m.handleTurnFunc(ctx, sessionID, text)
}

func (m *mockConcierge) EndCall(ctx context.Context, sessionID uuid.UUID) (domain.CallSummary, error) {
	return m.endCallFunc(ctx, sessionID)
}

type chatBody struct {
	Text     string `json:"text"`
	Route    string `json:"route"`
	AudioURL string `json:"audio_url"`
}

// ---------------------------------------------------------------------------
// TestGreet
// ---------------------------------------------------------------------------

func TestGreet(t *testing.T) {
	t.Parallel()

	sessionID := uuid.New()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterCallRoutes(api, &mockConcierge{
			greetFunc: func(context.Context) (*concierge.GreetResult, error) {
				return &concierge.GreetResult{
					SessionID: sessionID,
					Text:      "Good morning, The Grand Hotel.",
					AudioID:   "abc123",
				}, nil
			},
		})

		resp := api.Post("/greet", map[string]any{})
		require.Equal(t, http.StatusOK, resp.Code)

		var body struct {
			SessionID uuid.UUID `json:"session_id"`
			Text      string    `json:"text"`
			AudioURL  string    `json:"audio_url"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, sessionID, body.SessionID)
		assert.Equal(t, "Good morning, The Grand Hotel.", body.Text)
		assert.Equal(t, "/api/v1/audio/abc123", body.AudioURL)
	})

	t.Run("synthesis_failure_returns_text_only", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterCallRoutes(api, &mockConcierge{
			greetFunc: func(context.Context) (*concierge.GreetResult, error) {
				res := &concierge.GreetResult{SessionID: sessionID, Text: "Good morning."}
				return res, fmt.Errorf("tts: %w", domain.ErrSynthesis)
			},
		})

		resp := api.Post("/greet", map[string]any{})
		require.Equal(t, http.StatusOK, resp.Code)

		var body struct {
			Text     string `json:"text"`
			AudioURL string `json:"audio_url"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "Good morning.", body.Text)
		assert.Empty(t, body.AudioURL)
	})

	t.Run("session_failure_is_503", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterCallRoutes(api, &mockConcierge{
			greetFunc: func(context.Context) (*concierge.GreetResult, error) {
				return nil, assert.AnError
			},
		})

		resp := api.Post("/greet", map[string]any{})
		assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// TestChat
// ---------------------------------------------------------------------------

func TestChat(t *testing.T) {
	t.Parallel()

	sessionID := uuid.New()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterCallRoutes(api, &mockConcierge{
			handleTurnFunc: func(_ context.Context, id uuid.UUID, text string) (*concierge.TurnResult, error) {
				assert.Equal(t, sessionID, id)
				assert.Equal(t, "what time is breakfast?", text)
				return &concierge.TurnResult{
					Text:    "Breakfast runs from 7 to 10.",
					Route:   domain.RouteRAG,
					AudioID: "turn-audio",
				}, nil
			},
		})

		resp := api.Post("/chat", map[string]any{
			"session_id": sessionID.String(),
			"text":       "what time is breakfast?",
		})
		require.Equal(t, http.StatusOK, resp.Code)

		var body chatBody
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "Breakfast runs from 7 to 10.", body.Text)
		assert.Equal(t, "RAG", body.Route)
		assert.Equal(t, "/api/v1/audio/turn-audio", body.AudioURL)
	})

	t.Run("unknown_session_is_404", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterCallRoutes(api, &mockConcierge{
			handleTurnFunc: func(context.Context, uuid.UUID, string) (*concierge.TurnResult, error) {
				return nil, fmt.Errorf("store: %w", domain.ErrSessionNotFound)
			},
		})

		resp := api.Post("/chat", map[string]any{
			"session_id": sessionID.String(),
			"text":       "hello?",
		})
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("synthesis_failure_returns_text_only", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterCallRoutes(api, &mockConcierge{
			handleTurnFunc: func(context.Context, uuid.UUID, string) (*concierge.TurnResult, error) {
				res := &concierge.TurnResult{Text: "Certainly.", Route: domain.RouteChat}
				return res, fmt.Errorf("tts: %w", domain.ErrSynthesis)
			},
		})

		resp := api.Post("/chat", map[string]any{
			"session_id": sessionID.String(),
			"text":       "tell me more",
		})
		require.Equal(t, http.StatusOK, resp.Code)

		var body chatBody
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "Certainly.", body.Text)
		assert.Equal(t, "CHAT", body.Route)
		assert.Empty(t, body.AudioURL)
	})

	t.Run("generation_failure_is_503", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterCallRoutes(api, &mockConcierge{
			handleTurnFunc: func(context.Context, uuid.UUID, string) (*concierge.TurnResult, error) {
				return nil, assert.AnError
			},
		})

		resp := api.Post("/chat", map[string]any{
			"session_id": sessionID.String(),
			"text":       "hello",
		})
		assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	})

	t.Run("empty_text_is_rejected", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterCallRoutes(api, &mockConcierge{
			handleTurnFunc: func(context.Context, uuid.UUID, string) (*concierge.TurnResult, error) {
				t.Fatal("handler must not be reached on validation failure")
				return nil, nil
			},
		})

		resp := api.Post("/chat", map[string]any{
			"session_id": sessionID.String(),
			"text":       "",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// TestEndCall
// ---------------------------------------------------------------------------

func TestEndCall(t *testing.T) {
	t.Parallel()

	sessionID := uuid.New()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterCallRoutes(api, &mockConcierge{
			endCallFunc: func(_ context.Context, id uuid.UUID) (domain.CallSummary, error) {
				assert.Equal(t, sessionID, id)
				return domain.CallSummary{SessionID: id, Intent: "Booking"}, nil
			},
		})

		resp := api.Post("/end_call", map[string]any{
			"session_id": sessionID.String(),
		})
		require.Equal(t, http.StatusOK, resp.Code)

		var body struct {
			Status string `json:"status"`
			Intent string `json:"intent"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "ok", body.Status)
		assert.Equal(t, "Booking", body.Intent)
	})

	t.Run("unknown_session_is_404", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterCallRoutes(api, &mockConcierge{
			endCallFunc: func(context.Context, uuid.UUID) (domain.CallSummary, error) {
				return domain.CallSummary{}, fmt.Errorf("store: %w", domain.ErrSessionNotFound)
			},
		})

		resp := api.Post("/end_call", map[string]any{
			"session_id": sessionID.String(),
		})
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("crm_write_failure_is_502", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterCallRoutes(api, &mockConcierge{
			endCallFunc: func(context.Context, uuid.UUID) (domain.CallSummary, error) {
				return domain.CallSummary{}, fmt.Errorf("sheets: %w", domain.ErrCRMWrite)
			},
		})

		resp := api.Post("/end_call", map[string]any{
			"session_id": sessionID.String(),
		})
		assert.Equal(t, http.StatusBadGateway, resp.Code)
	})
}
