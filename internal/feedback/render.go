package feedback

import (
	"encoding/json"
	"fmt"
	"strings"

	"codeberg.org/snonux/accentcoach/internal/annotation"
	"codeberg.org/snonux/accentcoach/internal/scoring"
)

// Labels used by the line and summary renderers.
const (
	LabelMispronounced    = "Mispronounced"
	LabelNeedsImprovement = "Needs improvement"
	LabelWrongStress      = "Wrong stress"
	LabelStressImprove    = "Stress needs improvement"

	MessageNormalOK   = "All words pronounced well!"
	MessageStressedOK = "Stress placement is good!"
)

const wordSeparator = ", "

// Renderer projects a report into text for display.
type Renderer interface {
	Render(r Report) string
}

// Render returns the two feedback lines: one for ordinary words, one for
// stress-marked words. A line with nothing to report carries an
// affirmative message instead.
func Render(r Report) (normalLine, stressedLine string) {
	normalLine = renderBucket(r.Normal, LabelMispronounced, LabelNeedsImprovement, MessageNormalOK)
	stressedLine = renderBucket(r.Stressed, LabelWrongStress, LabelStressImprove, MessageStressedOK)
	return normalLine, stressedLine
}

func renderBucket(b Bucket, incorrectLabel, improveLabel, okMessage string) string {
	var parts []string
	if len(b.Incorrect) > 0 {
		parts = append(parts, incorrectLabel+": "+strings.Join(b.Incorrect, wordSeparator))
	}
	if len(b.Improvement) > 0 {
		parts = append(parts, improveLabel+": "+strings.Join(b.Improvement, wordSeparator))
	}
	if len(parts) == 0 {
		return okMessage
	}
	return strings.Join(parts, "; ")
}

// LineRenderer prints the two feedback lines.
type LineRenderer struct{}

func (LineRenderer) Render(r Report) string {
	normal, stressed := Render(r)
	return normal + "\n" + stressed
}

// SummaryRenderer prints one plain-text paragraph.
type SummaryRenderer struct{}

func (SummaryRenderer) Render(r Report) string {
	if r.IsEmpty() {
		return "Great job! Every word and every stressed syllable sounded right."
	}

	var sentences []string
	if n := len(r.Normal.Incorrect); n > 0 {
		sentences = append(sentences, fmt.Sprintf("%d %s mispronounced (%s).",
			n, plural(n, "word was", "words were"), strings.Join(r.Normal.Incorrect, wordSeparator)))
	}
	if n := len(r.Normal.Improvement); n > 0 {
		sentences = append(sentences, fmt.Sprintf("%d %s improvement (%s).",
			n, plural(n, "word needs", "words need"), strings.Join(r.Normal.Improvement, wordSeparator)))
	}
	if n := len(r.Stressed.Incorrect); n > 0 {
		sentences = append(sentences, fmt.Sprintf("Stress was misplaced on %s.",
			strings.Join(r.Stressed.Incorrect, wordSeparator)))
	}
	if n := len(r.Stressed.Improvement); n > 0 {
		sentences = append(sentences, fmt.Sprintf("Stress could be stronger on %s.",
			strings.Join(r.Stressed.Improvement, wordSeparator)))
	}
	return strings.Join(sentences, " ")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// DetailRenderer itemizes each flagged occurrence with its phone scores.
// Every scored word is tiered on its own, so a word repeated in the
// sentence is listed once per flagged occurrence with that occurrence's
// label.
type DetailRenderer struct {
	words      []scoring.Word
	set        annotation.WordSet
	thresholds Thresholds
}

// NewDetailRenderer creates a DetailRenderer over the scored words, the
// parsed reference and the thresholds the report was built from.
func NewDetailRenderer(words []scoring.Word, set annotation.WordSet, th Thresholds) *DetailRenderer {
	return &DetailRenderer{words: words, set: set, thresholds: th}
}

func (d *DetailRenderer) Render(r Report) string {
	if r.IsEmpty() {
		normal, stressed := Render(r)
		return normal + "\n" + stressed
	}

	var b strings.Builder
	for _, w := range d.words {
		tier, marked, ok := classifyWord(w, d.set, d.thresholds)
		if !ok || tier == TierAcceptable {
			continue
		}
		label := detailLabel(tier, marked)
		fmt.Fprintf(&b, "%s [%s] quality %.0f", w.Word, label, w.QualityScore)
		if marked {
			fmt.Fprintf(&b, ", stress %.0f", AverageStress(w.PhoneScoreList))
		}
		b.WriteString("\n")
		for _, p := range w.PhoneScoreList {
			fmt.Fprintf(&b, "  /%s/ quality %.0f", p.Phone, p.QualityScore)
			if p.StressScore != nil {
				fmt.Fprintf(&b, " stress %.0f", *p.StressScore)
			}
			if p.SoundMostLike != "" && p.SoundMostLike != p.Phone {
				fmt.Fprintf(&b, " (sounded like /%s/)", p.SoundMostLike)
			}
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func detailLabel(tier Tier, marked bool) string {
	switch {
	case marked && tier == TierIncorrect:
		return LabelWrongStress
	case marked:
		return LabelStressImprove
	case tier == TierIncorrect:
		return LabelMispronounced
	default:
		return LabelNeedsImprovement
	}
}

// JSONRenderer prints the report as indented JSON.
type JSONRenderer struct{}

func (JSONRenderer) Render(r Report) string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Formats lists the renderer names accepted by NewRenderer.
var Formats = []string{"lines", "summary", "detail", "json"}

// ValidateFormat checks that format names a renderer. "" selects lines.
func ValidateFormat(format string) error {
	switch strings.ToLower(format) {
	case "", "lines", "summary", "detail", "json":
		return nil
	default:
		return fmt.Errorf("unknown output format: %s (expected one of %s)", format, strings.Join(Formats, ", "))
	}
}

// NewRenderer returns the renderer registered under format. The detail
// renderer needs the scored words, the parsed reference and the thresholds;
// the others ignore them.
func NewRenderer(format string, words []scoring.Word, set annotation.WordSet, th Thresholds) (Renderer, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	switch strings.ToLower(format) {
	case "summary":
		return SummaryRenderer{}, nil
	case "detail":
		return NewDetailRenderer(words, set, th), nil
	case "json":
		return JSONRenderer{}, nil
	default:
		return LineRenderer{}, nil
	}
}
