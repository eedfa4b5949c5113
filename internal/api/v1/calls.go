// Package v1 exposes the voice concierge HTTP API.
package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/DevanshMistry890/hotel-voice-agent/internal/domain"
)

type GreetOutput struct {
	Body struct {
		SessionID uuid.UUID `json:"session_id" doc:"New call session ID"`
		Text      string    `json:"text" doc:"Greeting reply text"`
		AudioURL  string    `json:"audio_url,omitempty" doc:"Retrievable audio artifact URL"`
	}
}

type ChatInput struct {
	Body struct {
		SessionID uuid.UUID `json:"session_id" doc:"Call session ID"`
		Text      string    `json:"text" minLength:"1" maxLength:"2000" doc:"Transcribed guest utterance"`
	}
}

type ChatOutput struct {
	Body struct {
		Text     string `json:"text" doc:"Agent reply text"`
		Route    string `json:"route" doc:"Classification path that produced the reply"`
		AudioURL string `json:"audio_url,omitempty" doc:"Empty when synthesis failed; text is still valid"`
	}
}

type EndCallInput struct {
	Body struct {
		SessionID uuid.UUID `json:"session_id" doc:"Call session ID"`
	}
}

type EndCallOutput struct {
	Body struct {
		Status string `json:"status" doc:"ok once the CRM write is confirmed"`
		Intent string `json:"intent" doc:"Summarized guest intent"`
	}
}

// RegisterCallRoutes wires greet/chat/end_call onto the API.
func RegisterCallRoutes(api huma.API, con Concierge) {
	huma.Register(api, huma.Operation{
		OperationID: "greet",
		Method:      http.MethodPost,
		Path:        "/greet",
		Summary:     "Start a call session",
		Tags:        []string{"Calls"},
	}, func(ctx context.Context, _ *struct{}) (*GreetOutput, error) {
		res, err := con.Greet(ctx)
		if err != nil && !errors.Is(err, domain.ErrSynthesis) {
			return nil, huma.Error503ServiceUnavailable("could not start call, please retry")
		}
		if err != nil {
			log.Warn().Err(err).Msg("greeting synthesized without audio")
		}

		out := &GreetOutput{}
		out.Body.SessionID = res.SessionID
		out.Body.Text = res.Text
		out.Body.AudioURL = audioURL(res.AudioID)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "chat",
		Method:      http.MethodPost,
		Path:        "/chat",
		Summary:     "Handle one guest utterance",
		Tags:        []string{"Calls"},
	}, func(ctx context.Context, input *ChatInput) (*ChatOutput, error) {
		res, err := con.HandleTurn(ctx, input.Body.SessionID, input.Body.Text)

		switch {
		case err == nil:
		case errors.Is(err, domain.ErrSessionNotFound):
			return nil, huma.Error404NotFound("session expired, please restart the conversation")
		case errors.Is(err, domain.ErrSynthesis):
			// The reply text is valid; only the audio is missing.
			log.Warn().Err(err).Msg("turn delivered text-only")
		default:
			return nil, huma.Error503ServiceUnavailable("could not generate a reply, please retry")
		}

		out := &ChatOutput{}
		out.Body.Text = res.Text
		out.Body.Route = string(res.Route)
		out.Body.AudioURL = audioURL(res.AudioID)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "end-call",
		Method:      http.MethodPost,
		Path:        "/end_call",
		Summary:     "End a call and persist its summary to the CRM",
		Tags:        []string{"Calls"},
	}, func(ctx context.Context, input *EndCallInput) (*EndCallOutput, error) {
		summary, err := con.EndCall(ctx, input.Body.SessionID)

		switch {
		case err == nil:
		case errors.Is(err, domain.ErrSessionNotFound):
			return nil, huma.Error404NotFound("session expired, please restart the conversation")
		case errors.Is(err, domain.ErrCRMWrite):
			return nil, huma.Error502BadGateway("call ended but the summary could not be saved")
		default:
			return nil, huma.Error500InternalServerError("failed to end call")
		}

		out := &EndCallOutput{}
		out.Body.Status = "ok"
		out.Body.Intent = summary.Intent
		return out, nil
	})
}

func audioURL(id string) string {
	if id == "" {
		return ""
	}
	return "/api/v1/audio/" + id
}
