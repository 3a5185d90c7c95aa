package scoring

import (
	"encoding/json"
	"fmt"
	"io"
)

// Result is the document returned by the scoring service. Either TextScore
// is set or Status is "error" and the message fields describe the failure.
type Result struct {
	Status         string     `json:"status"`
	ShortMessage   string     `json:"short_message,omitempty"`
	DetailMessage  string     `json:"detail_message,omitempty"`
	QuotaRemaining *int       `json:"quota_remaining,omitempty"`
	TextScore      *TextScore `json:"text_score,omitempty"`

	// Raw is the document exactly as received, when it came off the wire
	Raw json.RawMessage `json:"-"`
}

// TextScore holds the per-word scores for the spoken text.
type TextScore struct {
	Text           string        `json:"text"`
	WordScoreList  []Word        `json:"word_score_list"`
	SpeechaceScore *OverallScore `json:"speechace_score,omitempty"`
}

// OverallScore is the sentence-level summary.
type OverallScore struct {
	Pronunciation float64 `json:"pronunciation"`
}

// Word is one scored word. PhoneScoreList may be absent.
type Word struct {
	Word           string  `json:"word"`
	QualityScore   float64 `json:"quality_score"`
	PhoneScoreList []Phone `json:"phone_score_list,omitempty"`
}

// Phone is one scored phone. StressScore is nil for phones where stress is
// not meaningful; nil is not the same as a score of 0.
type Phone struct {
	Phone         string   `json:"phone"`
	QualityScore  float64  `json:"quality_score"`
	StressScore   *float64 `json:"stress_score,omitempty"`
	SoundMostLike string   `json:"sound_most_like,omitempty"`
}

// Words returns the scored words, or nil when the result carries none.
func (r *Result) Words() []Word {
	if r == nil || r.TextScore == nil {
		return nil
	}
	return r.TextScore.WordScoreList
}

// Err returns a *ProviderError when the service reported an error instead
// of scores.
func (r *Result) Err() error {
	if r == nil || r.Status != "error" {
		return nil
	}
	return &ProviderError{Short: r.ShortMessage, Detail: r.DetailMessage}
}

// Document returns the result as JSON, preferring the received bytes so
// fields this package does not model are relayed unchanged.
func (r *Result) Document() json.RawMessage {
	if r == nil {
		return json.RawMessage("null")
	}
	if len(r.Raw) > 0 {
		return r.Raw
	}
	data, err := json.Marshal(r)
	if err != nil {
		return json.RawMessage("null")
	}
	return data
}

// DecodeResult reads a result document, e.g. one saved from an earlier run.
func DecodeResult(rd io.Reader) (*Result, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("decode scoring result: %w", err)
	}
	return parseResult(data)
}

func parseResult(data []byte) (*Result, error) {
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode scoring result: %w", err)
	}
	res.Raw = json.RawMessage(data)
	return &res, nil
}
