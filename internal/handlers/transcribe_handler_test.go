package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTranscriber struct {
	out      []byte
	err      error
	filename string
	data     []byte
}

func (s *stubTranscriber) Transcribe(_ context.Context, data []byte, filename, _ string) ([]byte, error) {
	s.data = data
	s.filename = filename
	if s.err != nil {
		return nil, s.err
	}
	return s.out, nil
}

func newTranscribeApp(transcriber Transcriber) *fiber.App {
	app := fiber.New()
	app.Post("/api/transcribe", NewTranscribeHandler(transcriber).Transcribe)
	return app
}

func audioRequest(t *testing.T, field, filename string, data []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestTranscribeHandler_Success(t *testing.T) {
	transcriber := &stubTranscriber{out: []byte(`{"text":"hello world"}`)}
	app := newTranscribeApp(transcriber)

	resp, err := app.Test(audioRequest(t, "file", "clip.webm", []byte("audio-bytes")))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"text":"hello world"}`, string(body), "provider JSON is relayed verbatim")

	assert.Equal(t, "clip.webm", transcriber.filename)
	assert.Equal(t, []byte("audio-bytes"), transcriber.data)
}

func TestTranscribeHandler_MissingFile(t *testing.T) {
	app := newTranscribeApp(&stubTranscriber{})

	resp, err := app.Test(audioRequest(t, "wrong-field", "clip.webm", []byte("audio-bytes")))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTranscribeHandler_ProviderFailure(t *testing.T) {
	app := newTranscribeApp(&stubTranscriber{err: errors.New("status 401")})

	resp, err := app.Test(audioRequest(t, "file", "clip.webm", []byte("audio-bytes")))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
