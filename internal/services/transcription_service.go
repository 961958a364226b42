package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/inforens/chat-backend/internal/config"
)

// TranscriptionService proxies audio uploads to the Perplexity transcription
// endpoint. Pure passthrough: no retries, no persistence.
type TranscriptionService struct {
	apiKey string
	apiURL string
	client *http.Client
}

func NewTranscriptionService(cfg *config.Config) *TranscriptionService {
	return &TranscriptionService{
		apiKey: cfg.PerplexityAPIKey,
		apiURL: cfg.PerplexityTranscribeURL,
		client: &http.Client{Timeout: cfg.AITimeout},
	}
}

// Transcribe uploads the audio bytes and returns the provider's JSON response
// verbatim.
func (s *TranscriptionService) Transcribe(ctx context.Context, data []byte, filename, mimeType string) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", mimeType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write audio payload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to build transcription request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcription response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcription request returned status %d", resp.StatusCode)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("transcription provider returned non-JSON response")
	}

	return body, nil
}
