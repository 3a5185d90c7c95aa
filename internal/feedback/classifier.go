package feedback

import (
	"codeberg.org/snonux/accentcoach/internal/annotation"
	"codeberg.org/snonux/accentcoach/internal/scoring"
)

// MaxStressScore is used as the average stress of a marked word none of
// whose phones carries a stress score.
const MaxStressScore = 100.0

// Classify sorts the scored words into the report buckets. Words absent from
// both sets of the reference sentence are ignored.
func Classify(words []scoring.Word, set annotation.WordSet, th Thresholds) Report {
	report := NewReport()

	for _, w := range words {
		tier, marked, ok := classifyWord(w, set, th)
		if !ok {
			continue
		}
		if marked {
			report.Stressed.add(tier, w.Word)
		} else {
			report.Normal.add(tier, w.Word)
		}
	}

	return report
}

// classifyWord tiers one scored word. ok is false when the word is not part
// of the reference sentence.
func classifyWord(w scoring.Word, set annotation.WordSet, th Thresholds) (tier Tier, marked, ok bool) {
	key := annotation.Normalize(w.Word)
	switch {
	case set.HasNormal(key):
		return tierFor(w.QualityScore, th.QualityIncorrect, th.QualityImprove), false, true
	case set.HasMarked(key):
		return tierFor(AverageStress(w.PhoneScoreList), th.StressIncorrect, th.StressImprove), true, true
	default:
		return TierAcceptable, false, false
	}
}

// Evaluate parses the reference sentence and classifies words against it.
func Evaluate(reference string, words []scoring.Word, th Thresholds) Report {
	return Classify(words, annotation.Parse(reference), th)
}

// ClassifyResult classifies a whole result document. A missing result or
// one without a text score yields an empty report.
func ClassifyResult(res *scoring.Result, set annotation.WordSet, th Thresholds) Report {
	return Classify(res.Words(), set, th)
}

// AverageStress returns the mean stress score of the phones that carry one,
// or MaxStressScore when none does.
func AverageStress(phones []scoring.Phone) float64 {
	var sum float64
	var n int
	for _, p := range phones {
		if p.StressScore == nil {
			continue
		}
		sum += *p.StressScore
		n++
	}
	if n == 0 {
		return MaxStressScore
	}
	return sum / float64(n)
}
