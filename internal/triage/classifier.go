package triage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"log/slog"
)

// Classifier abstracts the external text-completion service used for triage.
// Implementations return the raw model output; callers own all parsing,
// validation and fallback behavior.
type Classifier interface {
	Classify(ctx context.Context, prompt, systemPrompt string) (string, error)
}

// ClassifierConfig holds settings for the OpenAI-backed classifier.
type ClassifierConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// DefaultClassifierConfig returns sensible defaults for triage calls. The
// timeout is deliberately short: a slow answer is worth less than a fast
// heuristic fallback during a crisis.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		Model:       openai.GPT4oMini,
		Temperature: 0.2,
		MaxTokens:   50,
		Timeout:     4 * time.Second,
	}
}

// OpenAIClassifier calls the OpenAI chat completion API for triage judgments.
type OpenAIClassifier struct {
	client *openai.Client
	config ClassifierConfig
	logger *slog.Logger
}

// NewOpenAIClassifier creates an OpenAI-backed classifier.
func NewOpenAIClassifier(config ClassifierConfig, logger *slog.Logger) *OpenAIClassifier {
	return &OpenAIClassifier{
		client: openai.NewClient(config.APIKey),
		config: config,
		logger: logger,
	}
}

// Classify sends a single prompt and returns the trimmed model output.
// One retry is attempted on rate limiting; every call is bounded by the
// configured timeout so a hung upstream never stalls a submission.
func (c *OpenAIClassifier) Classify(ctx context.Context, prompt, systemPrompt string) (string, error) {
	const maxAttempts = 2

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		callStart := time.Now()
		apiCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)

		resp, err := c.client.CreateChatCompletion(apiCtx, openai.ChatCompletionRequest{
			Model:               c.config.Model,
			Temperature:         c.config.Temperature,
			MaxCompletionTokens: c.config.MaxTokens,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		})
		cancel()

		c.logger.Debug("[CLASSIFY CALL]",
			"attempt", attempt,
			"duration_ms", time.Since(callStart).Milliseconds(),
			"success", err == nil)

		if err == nil {
			if len(resp.Choices) == 0 {
				return "", fmt.Errorf("no completion choices returned from model %s", c.config.Model)
			}
			return strings.TrimSpace(resp.Choices[0].Message.Content), nil
		}

		lastErr = err

		// Only rate limiting earns a retry; timeouts and auth failures go
		// straight to the caller's fallback path.
		if attempt < maxAttempts && isRateLimited(err) {
			c.logger.Warn("classifier rate limited, retrying", "attempt", attempt, "error", err)
			time.Sleep(time.Duration(attempt) * 500 * time.Millisecond)
			continue
		}
		break
	}

	return "", fmt.Errorf("classifier call failed: %w", lastErr)
}

func isRateLimited(err error) bool {
	var apiErr *openai.APIError
	return errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests
}
