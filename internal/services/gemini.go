package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"alfredoptarigan/resume-matcher/internal/logger"
)

// JSONRequest asks the model for a single JSON document matching Schema.
type JSONRequest struct {
	SystemInstruction string
	Prompt            string
	Schema            *genai.Schema
}

type GeminiSettings struct {
	APIKey          string
	Model           string
	Temperature     float32
	MaxOutputTokens int32
}

type GeminiService interface {
	GenerateJSON(ctx context.Context, req JSONRequest) (string, error)
}

type geminiService struct {
	client          *genai.Client
	modelName       string
	temperature     float32
	maxOutputTokens int32
	log             *zap.Logger
}

func NewGeminiService(ctx context.Context, settings GeminiSettings, log *zap.Logger) (GeminiService, error) {
	apiKey := strings.TrimSpace(settings.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := strings.TrimSpace(settings.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &geminiService{
		client:          client,
		modelName:       model,
		temperature:     settings.Temperature,
		maxOutputTokens: settings.MaxOutputTokens,
		log:             log.Named("gemini"),
	}, nil
}

// GenerateJSON implements GeminiService.
func (g *geminiService) GenerateJSON(ctx context.Context, req JSONRequest) (string, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	temperature := g.temperature
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  g.maxOutputTokens,
		ResponseMIMEType: "application/json",
		ResponseSchema:   req.Schema,
	}
	if req.SystemInstruction != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemInstruction}},
		}
	}

	g.log.Debug("generate content request",
		zap.String("model", g.modelName),
		zap.Int("prompt_length", len(prompt)),
	)

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if resp == nil {
		return "", errors.New("no response generated (nil response)")
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("no text content in response")
	}

	g.log.Debug("generate content response",
		zap.Int("response_length", len(text)),
		zap.String("response_preview", logger.TruncateForLog(text, 200)),
	)

	return text, nil
}
