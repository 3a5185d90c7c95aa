package feedback

// Tier is the outcome of comparing a score with two thresholds.
type Tier int

const (
	TierAcceptable Tier = iota
	TierImprovement
	TierIncorrect
)

func (t Tier) String() string {
	switch t {
	case TierIncorrect:
		return "incorrect"
	case TierImprovement:
		return "improvement"
	default:
		return "acceptable"
	}
}

func tierFor(score, incorrect, improve float64) Tier {
	switch {
	case score < incorrect:
		return TierIncorrect
	case score < improve:
		return TierImprovement
	default:
		return TierAcceptable
	}
}

// Bucket holds the words of one category, in the order the scoring service
// returned them.
type Bucket struct {
	Incorrect   []string `json:"incorrect"`
	Improvement []string `json:"improvement"`
}

// IsEmpty reports whether neither tier holds a word.
func (b Bucket) IsEmpty() bool {
	return len(b.Incorrect) == 0 && len(b.Improvement) == 0
}

func (b *Bucket) add(tier Tier, word string) {
	switch tier {
	case TierIncorrect:
		b.Incorrect = append(b.Incorrect, word)
	case TierImprovement:
		b.Improvement = append(b.Improvement, word)
	}
}

// Report is the classifier output: ordinary words and stress-marked words
// are tiered independently.
type Report struct {
	Normal   Bucket `json:"normal"`
	Stressed Bucket `json:"stressed"`
}

// NewReport returns a report whose buckets are empty but non-nil.
func NewReport() Report {
	return Report{
		Normal:   Bucket{Incorrect: []string{}, Improvement: []string{}},
		Stressed: Bucket{Incorrect: []string{}, Improvement: []string{}},
	}
}

// IsEmpty reports whether no word was flagged.
func (r Report) IsEmpty() bool {
	return r.Normal.IsEmpty() && r.Stressed.IsEmpty()
}

// Flagged returns every flagged word, most severe first: mispronounced,
// wrong stress, then the two improvement tiers.
func (r Report) Flagged() []string {
	var out []string
	out = append(out, r.Normal.Incorrect...)
	out = append(out, r.Stressed.Incorrect...)
	out = append(out, r.Normal.Improvement...)
	out = append(out, r.Stressed.Improvement...)
	return out
}
