package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/inforens/chat-backend/internal/config"
)

// ErrNoAnswer is returned when the model responds without any choices.
var ErrNoAnswer = errors.New("no answer returned by the model")

const referencePromptPrefix = "You are a helpful assistant for Inforens, a platform guiding international students. " +
	"Answer questions using the reference content below. " +
	"If the reference content does not cover the question, say so instead of guessing.\n\nReference content:\n"

// AnswerService wraps the Perplexity chat-completions API behind a single
// ask(question) -> answer operation.
type AnswerService struct {
	apiKey  string
	apiURL  string
	model   string
	content string
	client  *http.Client
}

// NewAnswerService builds the service, loading the reference content file
// best-effort: a missing file only degrades answer quality, not availability.
func NewAnswerService(cfg *config.Config) *AnswerService {
	var content string
	if cfg.ContentFile != "" {
		data, err := os.ReadFile(cfg.ContentFile)
		if err != nil {
			slog.Warn("could not read content file, answering without reference content",
				"path", cfg.ContentFile, "error", err)
		} else {
			content = string(data)
		}
	}

	return &AnswerService{
		apiKey:  cfg.PerplexityAPIKey,
		apiURL:  cfg.PerplexityAPIURL,
		model:   cfg.PerplexityModel,
		content: content,
		client:  &http.Client{Timeout: cfg.AITimeout},
	}
}

// ModelTag identifies which downstream model produced an answer; recorded
// with every ledger row.
func (s *AnswerService) ModelTag() string {
	return "perplexity-" + s.model
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Ask sends the question to the chat-completions endpoint and returns the
// model's answer. Any network, status, or decode failure is returned as an
// error; there are no retries.
func (s *AnswerService) Ask(ctx context.Context, question string) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if s.content != "" {
		messages = append(messages, chatMessage{Role: "system", Content: referencePromptPrefix + s.content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: question})

	body, err := json.Marshal(chatRequest{Model: s.model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat request returned status %d", resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", ErrNoAnswer
	}

	slog.Debug("chat completion received", "model", s.model, "latency_ms", time.Since(start).Milliseconds())
	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}
