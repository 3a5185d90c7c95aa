package coach

import (
	"fmt"
	"strings"

	"codeberg.org/snonux/accentcoach/internal/annotation"
	"codeberg.org/snonux/accentcoach/internal/feedback"
)

const systemPrompt = "You are an English pronunciation coach for language learners. " +
	"Give short, concrete advice a learner can apply on the next attempt. " +
	"Use simple IPA only when it helps and compare sounds to common English words."

const maxTipTokens = 400

// buildPrompt describes the flagged words of report. Words whose stress was
// checked are listed separately from words judged on overall quality.
func buildPrompt(report feedback.Report, reference string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The learner read the sentence: %q\n", annotation.Strip(reference))

	if marked := annotation.Parse(reference).MarkedWords(); len(marked) > 0 {
		fmt.Fprintf(&b, "Words practicing stress placement: %s\n", strings.Join(marked, ", "))
	}

	writeList(&b, "Mispronounced", report.Normal.Incorrect)
	writeList(&b, "Pronunciation needs improvement", report.Normal.Improvement)
	writeList(&b, "Stress misplaced", report.Stressed.Incorrect)
	writeList(&b, "Stress too weak", report.Stressed.Improvement)

	b.WriteString("\nFor each listed word give one tip of at most two sentences. ")
	b.WriteString("For stress problems name the syllable that should be stressed. ")
	b.WriteString("Reply as a plain list with one line per word, no introduction.")
	return b.String()
}

func writeList(b *strings.Builder, label string, words []string) {
	if len(words) == 0 {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", label, strings.Join(words, ", "))
}

// cleanOutput trims whitespace and a surrounding code fence
func cleanOutput(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```text")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
