package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// LikeAppsResult scores "I like apps": "like" is badly pronounced with weak
// stress, "apps" is fine and "I" carries no phone scores.
const LikeAppsResult = `{
  "status": "success",
  "quota_remaining": 42,
  "text_score": {
    "text": "I like apps",
    "word_score_list": [
      {"word": "I", "quality_score": 95},
      {"word": "like", "quality_score": 50, "phone_score_list": [
        {"phone": "l", "quality_score": 70, "stress_score": 60, "sound_most_like": "l"},
        {"phone": "ay", "quality_score": 40},
        {"phone": "k", "quality_score": 40, "stress_score": 70}
      ]},
      {"word": "apps", "quality_score": 90, "phone_score_list": [
        {"phone": "ae", "quality_score": 90, "stress_score": 95},
        {"phone": "p", "quality_score": 88},
        {"phone": "s", "quality_score": 92}
      ]}
    ],
    "speechace_score": {"pronunciation": 78}
  }
}`

// ErrorResult is a scoring service error document
const ErrorResult = `{"status":"error","short_message":"error_no_speech","detail_message":"No speech was detected in the audio."}`

// SpeechaceRequest is one request received by FakeSpeechace
type SpeechaceRequest struct {
	Path     string
	Key      string
	Dialect  string
	Text     string
	FileName string
}

// FakeSpeechace is an httptest server answering scoring requests with a
// fixed status and body.
type FakeSpeechace struct {
	*httptest.Server

	mu       sync.Mutex
	status   int
	body     string
	requests []SpeechaceRequest
}

// NewFakeSpeechace starts a fake scoring service closed at test cleanup
func NewFakeSpeechace(t *testing.T, status int, body string) *FakeSpeechace {
	t.Helper()

	f := &FakeSpeechace{status: status, body: body}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Close)
	return f
}

func (f *FakeSpeechace) handle(w http.ResponseWriter, r *http.Request) {
	req := SpeechaceRequest{
		Path:    r.URL.Path,
		Key:     r.URL.Query().Get("key"),
		Dialect: r.URL.Query().Get("dialect"),
	}
	if err := r.ParseMultipartForm(1 << 20); err == nil {
		req.Text = r.FormValue("text")
		if file, header, err := r.FormFile("user_audio_file"); err == nil {
			req.FileName = header.Filename
			_, _ = io.Copy(io.Discard, file)
			file.Close()
		}
	}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	status, body := f.status, f.body
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// Requests returns a copy of the requests received so far
func (f *FakeSpeechace) Requests() []SpeechaceRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SpeechaceRequest(nil), f.requests...)
}
