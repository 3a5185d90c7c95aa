package scoring

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the public Speechace API host.
const DefaultBaseURL = "https://api.speechace.co"

const scorePath = "/api/scoring/text/v9/json"

// SpeechaceClient scores recordings with the Speechace text endpoint.
type SpeechaceClient struct {
	config     *Config
	httpClient *http.Client
	log        *slog.Logger
	retryDelay time.Duration
}

// NewSpeechaceClient creates a client for the configured Speechace host.
func NewSpeechaceClient(config *Config, logger *slog.Logger) (*SpeechaceClient, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("Speechace API key is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Dialect == "" {
		config.Dialect = "en-us"
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SpeechaceClient{
		config:     config,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        logger.With("adapter", "speechace"),
		retryDelay: 500 * time.Millisecond,
	}, nil
}

// NewSpeechaceClientWithURL creates a client against a custom base URL (for testing).
func NewSpeechaceClientWithURL(baseURL, apiKey string, logger *slog.Logger) (*SpeechaceClient, error) {
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.APIKey = apiKey
	c, err := NewSpeechaceClient(cfg, logger)
	if err != nil {
		return nil, err
	}
	c.retryDelay = 0
	return c, nil
}

// Name returns the provider name
func (c *SpeechaceClient) Name() string {
	return "speechace"
}

// IsAvailable checks that an API key is configured
func (c *SpeechaceClient) IsAvailable() error {
	if c.config.APIKey == "" {
		return fmt.Errorf("Speechace API key not configured")
	}
	return nil
}

// Score uploads the recording as multipart form data and decodes the result.
func (c *SpeechaceClient) Score(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("speechace: text is required")
	}
	if req.Audio == nil {
		return nil, fmt.Errorf("speechace: audio is required")
	}

	body, contentType, err := encodeForm(req)
	if err != nil {
		return nil, fmt.Errorf("speechace: encode form: %w", err)
	}

	c.log.DebugContext(ctx, "speechace request",
		slog.String("text", req.Text),
		slog.Int("bytes", len(body)),
	)

	resp, err := c.doWithRetry(ctx, body, contentType)
	if err != nil {
		c.log.ErrorContext(ctx, "speechace request failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("speechace: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("speechace: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: truncate(string(data), 200)}
	}

	result, err := parseResult(data)
	if err != nil {
		return nil, fmt.Errorf("speechace: %w", err)
	}

	c.log.DebugContext(ctx, "speechace response",
		slog.String("status", result.Status),
		slog.Int("words", len(result.Words())),
	)

	if err := result.Err(); err != nil {
		return result, err
	}
	return result, nil
}

func (c *SpeechaceClient) endpoint() string {
	q := url.Values{}
	q.Set("key", c.config.APIKey)
	q.Set("dialect", c.config.Dialect)
	if c.config.UserID != "" {
		q.Set("user_id", c.config.UserID)
	}
	return strings.TrimRight(c.config.BaseURL, "/") + scorePath + "?" + q.Encode()
}

// doWithRetry executes the upload with a single retry on 5xx or network errors.
func (c *SpeechaceClient) doWithRetry(ctx context.Context, body []byte, contentType string) (*http.Response, error) {
	resp, err := c.do(ctx, body, contentType)

	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry || ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	c.log.WarnContext(ctx, "speechace retry", slog.String("reason", reason))

	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(c.retryDelay):
	}

	return c.do(ctx, body, contentType)
}

func (c *SpeechaceClient) do(ctx context.Context, body []byte, contentType string) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", contentType)
	return c.httpClient.Do(httpReq)
}

// encodeForm buffers the multipart body so a retry can resend it.
func encodeForm(req Request) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("text", req.Text); err != nil {
		return nil, "", err
	}

	fileName := req.FileName
	if fileName == "" {
		fileName = "recording.wav"
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="user_audio_file"; filename=%q`, fileName))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, req.Audio); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
