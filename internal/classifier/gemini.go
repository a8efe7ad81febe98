package classifier

import (
	"context"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiClient wraps the Gemini API client
type GeminiClient struct {
	client     *genai.Client
	model      *genai.GenerativeModel
	logger     *zap.Logger
	maxRetries int
	retryDelay time.Duration
}

// GeminiConfig for the Gemini client
type GeminiConfig struct {
	APIKey     string
	ModelName  string // Default: "gemini-1.5-flash"
	MaxRetries int
	RetryDelay time.Duration
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, cfg GeminiConfig, logger *zap.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errNoAPIKey
	}

	if cfg.ModelName == "" {
		cfg.ModelName = "gemini-1.5-flash"
	}

	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 2
	}

	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.ModelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(SystemInstruction)},
	}
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:      genai.Ptr[float32](0.2),
		TopP:             genai.Ptr[float32](0.9),
		MaxOutputTokens:  genai.Ptr[int32](600),
		ResponseMIMEType: "application/json",
	}

	logger.Info("Gemini client initialized",
		zap.String("model", cfg.ModelName),
		zap.Int("max_retries", cfg.MaxRetries))

	return &GeminiClient{
		client:     client,
		model:      model,
		logger:     logger,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}, nil
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// Classify asks Gemini for a verdict, retrying transient failures.
func (c *GeminiClient) Classify(ctx context.Context, req Request) (*Result, error) {
	prompt := BuildPrompt(req)

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("Retrying Gemini request",
				zap.Int("attempt", attempt+1),
				zap.Int("max_retries", c.maxRetries))

			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return nil, fmt.Errorf("gemini request cancelled: %w", ctx.Err())
			}
		}

		resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			lastErr = fmt.Errorf("gemini API error: %w", err)
			c.logger.Error("Gemini API error", zap.Error(err), zap.Int("attempt", attempt+1))
			continue
		}

		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			lastErr = fmt.Errorf("empty response from gemini")
			c.logger.Error("Empty response from Gemini", zap.Int("attempt", attempt+1))
			continue
		}

		textPart, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
		if !ok {
			lastErr = fmt.Errorf("unexpected response type from gemini")
			c.logger.Error("Unexpected response type", zap.Int("attempt", attempt+1))
			continue
		}

		result, err := parseResponse(string(textPart))
		if err != nil {
			lastErr = err
			c.logger.Error("Failed to parse Gemini response",
				zap.Error(err),
				zap.String("original_response", string(textPart)),
				zap.Int("attempt", attempt+1))
			continue
		}

		c.logger.Debug("Gemini classified text",
			zap.Bool("is_scam", result.IsScam),
			zap.Float64("confidence", result.Confidence),
			zap.String("scam_type", result.ScamType))

		return result, nil
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", c.maxRetries, lastErr)
}
