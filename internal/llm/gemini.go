// Package llm wraps the Gemini API behind the small surfaces the rest of the
// service consumes: chat generation, one-shot summarization, and embeddings.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/DevanshMistry890/hotel-voice-agent/internal/domain"
)

// Gemini is the Response Generator and Embedder for the concierge.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
	embed  *genai.EmbeddingModel
}

// New connects to the Gemini API.
func New(ctx context.Context, apiKey, model, embedModel string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("llm.New: %w", err)
	}

	gm := client.GenerativeModel(model)
	gm.SafetySettings = safetySettings()

	return &Gemini{
		client: client,
		model:  gm,
		embed:  client.EmbeddingModel(embedModel),
	}, nil
}

// Close releases the underlying API client.
func (g *Gemini) Close() error {
	if err := g.client.Close(); err != nil {
		return fmt.Errorf("llm.Gemini.Close: %w", err)
	}
	return nil
}

// Generate sends one chat turn with the system prompt and prior transcript as
// context. A prompt or candidate blocked by the safety filter returns
// domain.ErrSafetyBlocked.
func (g *Gemini) Generate(ctx context.Context, system string, history []domain.Turn, msg string) (string, error) {
	cs := g.model.StartChat()
	cs.History = chatHistory(system, history)

	resp, err := cs.SendMessage(ctx, genai.Text(msg))
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			return "", fmt.Errorf("llm.Gemini.Generate: %w", domain.ErrSafetyBlocked)
		}
		return "", fmt.Errorf("llm.Gemini.Generate: %w", err)
	}

	return textFromResponse(resp)
}

// Summarize runs a single-shot generation without chat history, used by the
// CRM pipeline.
func (g *Gemini) Summarize(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			return "", fmt.Errorf("llm.Gemini.Summarize: %w", domain.ErrSafetyBlocked)
		}
		return "", fmt.Errorf("llm.Gemini.Summarize: %w", err)
	}

	return textFromResponse(resp)
}

// Embed returns the embedding vector for the given text.
func (g *Gemini) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := g.embed.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("llm.Gemini.Embed: %w", err)
	}
	if resp.Embedding == nil {
		return nil, errors.New("llm.Gemini.Embed: empty embedding response")
	}
	return resp.Embedding.Values, nil
}

// chatHistory maps the system prompt plus transcript turns onto Gemini chat
// contents. The model has no system role in this API version, so the prompt
// rides as a primed user/model exchange.
func chatHistory(system string, history []domain.Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+2)
	contents = append(contents,
		&genai.Content{Role: "user", Parts: []genai.Part{genai.Text(system)}},
		&genai.Content{Role: "model", Parts: []genai.Part{genai.Text("Understood. I will be concise.")}},
	)

	for _, t := range history {
		role := "user"
		if t.Speaker == domain.SpeakerAgent {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(t.Text)},
		})
	}
	return contents
}

func textFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", fmt.Errorf("llm: prompt blocked (%v): %w", resp.PromptFeedback.BlockReason, domain.ErrSafetyBlocked)
	}

	if len(resp.Candidates) == 0 {
		return "", errors.New("llm: no candidates in response")
	}

	cand := resp.Candidates[0]
	if cand.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("llm: candidate stopped for safety: %w", domain.ErrSafetyBlocked)
	}
	if cand.Content == nil {
		return "", errors.New("llm: candidate has no content")
	}

	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", errors.New("llm: empty text in response")
	}
	return text, nil
}

func safetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	}

	settings := make([]*genai.SafetySetting, 0, len(categories))
	for _, c := range categories {
		settings = append(settings, &genai.SafetySetting{
			Category:  c,
			Threshold: genai.HarmBlockMediumAndAbove,
		})
	}
	return settings
}
