package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		sentence   string
		wantMarked []string
		wantNormal []string
	}{
		{
			name:       "curly quotes mark words",
			sentence:   "I ‘like ‘apps",
			wantMarked: []string{"apps", "like"},
			wantNormal: []string{"i"},
		},
		{
			name:       "no indicators",
			sentence:   "We finish it",
			wantMarked: []string{},
			wantNormal: []string{"finish", "it", "we"},
		},
		{
			name:       "right quote and straight apostrophe",
			sentence:   "the ba’nana and 'apple",
			wantMarked: []string{"apple", "banana"},
			wantNormal: []string{"and", "the"},
		},
		{
			name:       "empty sentence",
			sentence:   "",
			wantMarked: []string{},
			wantNormal: []string{},
		},
		{
			name:       "whitespace only",
			sentence:   " \t\n ",
			wantMarked: []string{},
			wantNormal: []string{},
		},
		{
			name:       "lone glyph token is discarded",
			sentence:   "go ’ home",
			wantMarked: []string{},
			wantNormal: []string{"go", "home"},
		},
		{
			name:       "marked occurrence wins",
			sentence:   "Record the ‘record",
			wantMarked: []string{"record"},
			wantNormal: []string{"the"},
		},
		{
			name:       "terminal punctuation trimmed",
			sentence:   "We ‘finish it.",
			wantMarked: []string{"finish"},
			wantNormal: []string{"it", "we"},
		},
		{
			name:       "interior hyphen kept",
			sentence:   "a ‘well-known fact!",
			wantMarked: []string{"well-known"},
			wantNormal: []string{"a", "fact"},
		},
		{
			name:       "case folded",
			sentence:   "HELLO ‘World",
			wantMarked: []string{"world"},
			wantNormal: []string{"hello"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			set := Parse(tt.sentence)
			assert.Equal(t, tt.wantMarked, set.MarkedWords())
			assert.Equal(t, tt.wantNormal, set.NormalWords())
		})
	}
}

func TestParse_Disjoint(t *testing.T) {
	t.Parallel()

	sentences := []string{
		"I ‘like ‘apps",
		"like ‘like like",
		"‘a a ’a 'a A",
		"The ‘present is a present, ‘present it.",
		"",
	}

	for _, s := range sentences {
		set := Parse(s)
		for key := range set.Marked {
			assert.Falsef(t, set.HasNormal(key), "key %q in both sets for %q", key, s)
		}
	}
}

func TestParse_HasLookups(t *testing.T) {
	t.Parallel()

	set := Parse("I ‘like ‘apps")
	assert.True(t, set.HasMarked("like"))
	assert.True(t, set.HasNormal("i"))
	assert.False(t, set.HasMarked("i"))
	assert.False(t, set.HasNormal("oranges"))
	assert.Equal(t, 3, set.Len())
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"‘Like", "like"},
		{"it.", "it"},
		{"(hello),", "hello"},
		{"ba’nana", "banana"},
		{"don't", "dont"},
		{"well-known", "well-known"},
		{"’", ""},
		{"...", ""},
		{"Café", "café"},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestStrip_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		reference string
		spoken    string
	}{
		{"I ‘like ‘apps", "I like apps"},
		{"We finish it.", "We finish it."},
		{"  the   ba’nana  ", "the banana"},
		{"go ’ home", "go home"},
		{"", ""},
	}
	for _, tt := range tests {
		got := Strip(tt.reference)
		assert.Equal(t, tt.spoken, got)
		assert.False(t, HasIndicator(got))
	}
}

func TestConflicts(t *testing.T) {
	t.Parallel()

	require.Empty(t, Conflicts("I ‘like ‘apps"))
	assert.Equal(t, []string{"present"}, Conflicts("The ‘present is a present."))
	assert.Equal(t, []string{"a", "b"}, Conflicts("b ‘b ‘a a"))
}
