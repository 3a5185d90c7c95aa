package scoring

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRequest() Request {
	return Request{
		Text:        "I like apps",
		Audio:       strings.NewReader("RIFF....WAVE"),
		FileName:    "take1.wav",
		ContentType: "audio/wav",
	}
}

func TestNewSpeechaceClient_RequiresKey(t *testing.T) {
	t.Parallel()

	_, err := NewSpeechaceClient(&Config{}, newTestLogger())
	require.Error(t, err)
	assert.Equal(t, "Speechace API key is required", err.Error())
}

func TestNewSpeechaceClient_NilLogger(t *testing.T) {
	t.Parallel()

	c, err := NewSpeechaceClient(&Config{APIKey: "secret"}, nil)
	require.NoError(t, err)
	assert.NotNil(t, c.log)
	assert.Equal(t, DefaultBaseURL, c.config.BaseURL)
}

func TestSpeechaceClient_Score_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, scorePath, r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		assert.Equal(t, "en-us", r.URL.Query().Get("dialect"))
		assert.Equal(t, "accentcoach", r.URL.Query().Get("user_id"))

		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "I like apps", r.FormValue("text"))

		f, hdr, err := r.FormFile("user_audio_file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "RIFF....WAVE", string(data))
		assert.Equal(t, "take1.wav", hdr.Filename)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleResult))
	}))
	defer srv.Close()

	c, err := NewSpeechaceClientWithURL(srv.URL, "secret", newTestLogger())
	require.NoError(t, err)

	res, err := c.Score(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Len(t, res.Words(), 2)
}

func TestSpeechaceClient_Score_ProviderError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","short_message":"error_no_speech"}`))
	}))
	defer srv.Close()

	c, err := NewSpeechaceClientWithURL(srv.URL, "secret", newTestLogger())
	require.NoError(t, err)

	res, err := c.Score(context.Background(), testRequest())
	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "error_no_speech", pe.Short)
	require.NotNil(t, res, "error document is returned alongside the error")
	assert.Equal(t, "error", res.Status)
}

func TestSpeechaceClient_Score_RetriesOn5xx(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			assert.Equal(t, "I like apps", r.FormValue("text"), "retry must resend the full body")
		}
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(sampleResult))
	}))
	defer srv.Close()

	c, err := NewSpeechaceClientWithURL(srv.URL, "secret", newTestLogger())
	require.NoError(t, err)

	_, err = c.Score(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSpeechaceClient_Score_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("bad key"))
	}))
	defer srv.Close()

	c, err := NewSpeechaceClientWithURL(srv.URL, "secret", newTestLogger())
	require.NoError(t, err)

	_, err = c.Score(context.Background(), testRequest())
	var he *HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusUnauthorized, he.StatusCode)
	assert.Equal(t, "bad key", he.Body)
}

func TestSpeechaceClient_Score_Validation(t *testing.T) {
	t.Parallel()

	c, err := NewSpeechaceClientWithURL("http://127.0.0.1:0", "secret", newTestLogger())
	require.NoError(t, err)

	_, err = c.Score(context.Background(), Request{Audio: strings.NewReader("x")})
	assert.ErrorContains(t, err, "text is required")

	_, err = c.Score(context.Background(), Request{Text: "hi"})
	assert.ErrorContains(t, err, "audio is required")
}

func TestSpeechaceClient_NameAndAvailability(t *testing.T) {
	t.Parallel()

	c, err := NewSpeechaceClientWithURL("http://example.invalid", "secret", newTestLogger())
	require.NoError(t, err)
	assert.Equal(t, "speechace", c.Name())
	assert.NoError(t, c.IsAvailable())
}
