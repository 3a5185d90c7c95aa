package feedback

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/accentcoach/internal/annotation"
	"codeberg.org/snonux/accentcoach/internal/scoring"
)

func TestRender(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		report       func() Report
		wantNormal   string
		wantStressed string
	}{
		{
			name:         "empty report",
			report:       NewReport,
			wantNormal:   MessageNormalOK,
			wantStressed: MessageStressedOK,
		},
		{
			name: "incorrect only",
			report: func() Report {
				r := NewReport()
				r.Normal.Incorrect = []string{"We", "it"}
				return r
			},
			wantNormal:   "Mispronounced: We, it",
			wantStressed: MessageStressedOK,
		},
		{
			name: "both tiers on both lines",
			report: func() Report {
				r := NewReport()
				r.Normal.Incorrect = []string{"We"}
				r.Normal.Improvement = []string{"finish"}
				r.Stressed.Incorrect = []string{"like"}
				r.Stressed.Improvement = []string{"apps", "banana"}
				return r
			},
			wantNormal:   "Mispronounced: We; Needs improvement: finish",
			wantStressed: "Wrong stress: like; Stress needs improvement: apps, banana",
		},
		{
			name: "nil buckets",
			report: func() Report {
				return Report{Stressed: Bucket{Improvement: []string{"apps"}}}
			},
			wantNormal:   MessageNormalOK,
			wantStressed: "Stress needs improvement: apps",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			normal, stressed := Render(tt.report())
			assert.Equal(t, tt.wantNormal, normal)
			assert.Equal(t, tt.wantStressed, stressed)
		})
	}
}

func TestLineRenderer(t *testing.T) {
	t.Parallel()

	r := NewReport()
	r.Stressed.Incorrect = []string{"like"}
	assert.Equal(t, MessageNormalOK+"\nWrong stress: like", LineRenderer{}.Render(r))
}

func TestSummaryRenderer(t *testing.T) {
	t.Parallel()

	assert.Contains(t, SummaryRenderer{}.Render(NewReport()), "Great job")

	r := NewReport()
	r.Normal.Incorrect = []string{"We"}
	r.Normal.Improvement = []string{"finish", "it"}
	r.Stressed.Incorrect = []string{"like"}
	got := SummaryRenderer{}.Render(r)
	assert.Equal(t, "1 word was mispronounced (We). 2 words need improvement (finish, it). Stress was misplaced on like.", got)
}

func TestDetailRenderer(t *testing.T) {
	t.Parallel()

	words := []scoring.Word{
		word("I", 95),
		word("like", 50, phone("l", stress(60)), scoring.Phone{Phone: "ay", QualityScore: 40, SoundMostLike: "ey"}),
		word("pears", 70),
	}
	set := annotation.Parse("I ‘like pears")
	r := Classify(words, set, DefaultThresholds())

	got := NewDetailRenderer(words, set, DefaultThresholds()).Render(r)
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "like [Wrong stress] quality 50, stress 60", lines[0])
	assert.Equal(t, "  /l/ quality 90 stress 60", lines[1])
	assert.Equal(t, "  /ay/ quality 40 (sounded like /ey/)", lines[2])
	assert.Equal(t, "pears [Needs improvement] quality 70", lines[3])

	assert.Equal(t, MessageNormalOK+"\n"+MessageStressedOK, NewDetailRenderer(nil, annotation.WordSet{}, DefaultThresholds()).Render(NewReport()))
}

func TestDetailRenderer_RepeatedWordInTwoTiers(t *testing.T) {
	t.Parallel()

	words := []scoring.Word{word("it", 50), word("is", 95), word("it", 70)}
	set := annotation.Parse("it is it")
	r := Classify(words, set, DefaultThresholds())
	require.Equal(t, []string{"it"}, r.Normal.Incorrect)
	require.Equal(t, []string{"it"}, r.Normal.Improvement)

	got := NewDetailRenderer(words, set, DefaultThresholds()).Render(r)
	assert.Equal(t, "it [Mispronounced] quality 50\nit [Needs improvement] quality 70", got)
}

func TestDetailRenderer_RepeatedMarkedWord(t *testing.T) {
	t.Parallel()

	words := []scoring.Word{
		word("like", 90, phone("l", stress(50))),
		word("like", 90, phone("l", stress(95))),
		word("like", 90, phone("l", stress(85))),
	}
	set := annotation.Parse("‘like ‘like ‘like")
	r := Classify(words, set, DefaultThresholds())

	got := NewDetailRenderer(words, set, DefaultThresholds()).Render(r)
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "like [Wrong stress] quality 90, stress 50", lines[0])
	assert.Equal(t, "like [Stress needs improvement] quality 90, stress 85", lines[2])
}

func TestJSONRenderer(t *testing.T) {
	t.Parallel()

	r := NewReport()
	r.Normal.Incorrect = []string{"We"}

	var decoded Report
	require.NoError(t, json.Unmarshal([]byte(JSONRenderer{}.Render(r)), &decoded))
	assert.Equal(t, r, decoded)
	assert.Contains(t, JSONRenderer{}.Render(NewReport()), `"improvement": []`)
}

func TestNewRenderer(t *testing.T) {
	t.Parallel()

	for _, f := range append(Formats, "") {
		r, err := NewRenderer(f, nil, annotation.WordSet{}, DefaultThresholds())
		require.NoErrorf(t, err, "format %q", f)
		assert.NotNil(t, r)
	}

	_, err := NewRenderer("xml", nil, annotation.WordSet{}, DefaultThresholds())
	assert.ErrorContains(t, err, "unknown output format: xml")
	assert.NoError(t, ValidateFormat("Detail"))
	assert.ErrorContains(t, ValidateFormat("yaml"), "unknown output format: yaml")
}
