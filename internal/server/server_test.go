package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevanshMistry890/hotel-voice-agent/internal/audio"
	"github.com/DevanshMistry890/hotel-voice-agent/internal/concierge"
	"github.com/DevanshMistry890/hotel-voice-agent/internal/config"
	"github.com/DevanshMistry890/hotel-voice-agent/internal/domain"
	"github.com/DevanshMistry890/hotel-voice-agent/internal/server"
)

type stubConcierge struct{}

func (stubConcierge) Greet(context.Context) (*concierge.GreetResult, error) {
	return &concierge.GreetResult{SessionID: uuid.New(), Text: "Good morning."}, nil
}

func (stubConcierge) HandleTurn(context.Context, uuid.UUID, string) (*concierge.TurnResult, error) {
	return &concierge.TurnResult{Text: "Certainly.", Route: domain.RouteChat}, nil
}

func (stubConcierge) EndCall(context.Context, uuid.UUID) (domain.CallSummary, error) {
	return domain.CallSummary{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Addr:         ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
			CORSOrigins:  []string{"*"},
			RateLimit:    100,
			RateBurst:    100,
		},
	}
}

func newTestServer(t *testing.T, artifacts audio.Store) http.Handler {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return server.New(ctx, testConfig(), stubConcierge{}, artifacts).Handler()
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	handler := newTestServer(t, audio.NewMemory(time.Minute))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServeAudio(t *testing.T) {
	t.Parallel()

	artifacts := audio.NewMemory(time.Minute)
	require.NoError(t, artifacts.Put(context.Background(), "clip1", []byte("mp3-bytes")))

	handler := newTestServer(t, artifacts)

	t.Run("known_artifact", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/audio/clip1", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
		assert.Equal(t, "mp3-bytes", rec.Body.String())
	})

	t.Run("unknown_artifact", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/audio/nope", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
