package model

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/robalobadob/connections-bot/internal/game"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.5-flash"

// GeminiConfig configures the Gemini proposer.
type GeminiConfig struct {
	APIKey          string
	Model           string
	Temperature     float32
	MaxOutputTokens int32
}

// generateFunc matches genai's Models.GenerateContent.
type generateFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Gemini proposes groups with Google's Gemini API. Each proposal is two
// calls in one conversation: a free-text answer, then a request to restate
// that answer as JSON.
type Gemini struct {
	model       string
	temperature float32
	maxTokens   int32
	generate    generateFunc
	log         zerolog.Logger
}

// NewGemini creates a Gemini proposer.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newGemini(cfg, client.Models.GenerateContent), nil
}

func newGemini(cfg GeminiConfig, gen generateFunc) *Gemini {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &Gemini{
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxOutputTokens,
		generate:    gen,
		log:         log.Logger,
	}
}

// WithLogger returns a copy of g logging to l.
func (g *Gemini) WithLogger(l zerolog.Logger) *Gemini {
	cp := *g
	cp.log = l
	return &cp
}

// Name identifies the backing model.
func (g *Gemini) Name() string { return "genai:" + g.model }

// ProposeGroups implements Proposer.
func (g *Gemini) ProposeGroups(ctx context.Context, words game.WordSet, hint *Correction) ([]Guess, error) {
	conv := BuildConversation(words, hint)
	answer, err := g.complete(ctx, conv, "text/plain")
	if err != nil {
		return nil, err
	}
	g.log.Debug().Str("model", g.model).Str("answer", answer).Msg("model answer")

	conv = conv.Assistant(answer).User(ConvertToJSONPrompt())
	raw, err := g.complete(ctx, conv, "application/json")
	if err != nil {
		return nil, err
	}
	parsed, err := ParseGroups(raw)
	if err != nil {
		return nil, err
	}
	return parsed, nil
}

// complete sends the conversation and returns the reply text.
func (g *Gemini) complete(ctx context.Context, conv Conversation, mime string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(g.temperature),
		ResponseMIMEType: mime,
	}
	if g.maxTokens > 0 {
		cfg.MaxOutputTokens = g.maxTokens
	}
	if sys := conv.SystemText(); sys != "" {
		cfg.SystemInstruction = genai.NewContentFromText(sys, genai.RoleUser)
	}
	resp, err := g.generate(ctx, g.model, toContents(conv), cfg)
	if err != nil {
		return "", fmt.Errorf("genai generate: %w", err)
	}
	if resp == nil {
		return "", &MalformedResponseError{Reason: "empty response"}
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &MalformedResponseError{Reason: "empty response"}
	}
	return text, nil
}

// toContents maps chat turns onto genai roles; assistant turns are "model".
func toContents(conv Conversation) []*genai.Content {
	turns := conv.Turns()
	out := make([]*genai.Content, 0, len(turns))
	for _, m := range turns {
		role := genai.Role(genai.RoleUser)
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(m.Content, role))
	}
	return out
}
