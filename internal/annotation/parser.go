package annotation

import (
	"sort"
	"strings"
	"unicode"
)

// Indicators lists the glyphs accepted as stress indicators. Authored
// content mixes them freely, so all three are treated the same.
var Indicators = []rune{'’', '‘', '\''}

// WordSet holds the canonical keys of a reference sentence, split into
// stress-marked and ordinary words. The two sets never overlap.
type WordSet struct {
	Marked map[string]struct{}
	Normal map[string]struct{}
}

// HasMarked reports whether key is a stress-marked word.
func (s WordSet) HasMarked(key string) bool {
	_, ok := s.Marked[key]
	return ok
}

// HasNormal reports whether key is an ordinary word.
func (s WordSet) HasNormal(key string) bool {
	_, ok := s.Normal[key]
	return ok
}

// MarkedWords returns the stress-marked keys in sorted order
func (s WordSet) MarkedWords() []string {
	return sortedKeys(s.Marked)
}

// NormalWords returns the ordinary keys in sorted order
func (s WordSet) NormalWords() []string {
	return sortedKeys(s.Normal)
}

// Len returns the number of distinct keys in both sets
func (s WordSet) Len() int {
	return len(s.Marked) + len(s.Normal)
}

// Parse splits sentence on whitespace and sorts every token into the marked
// or the normal set. A word that is marked anywhere in the sentence only
// appears in the marked set.
func Parse(sentence string) WordSet {
	set := WordSet{
		Marked: make(map[string]struct{}),
		Normal: make(map[string]struct{}),
	}

	for _, token := range strings.Fields(sentence) {
		key := Normalize(token)
		if key == "" {
			continue
		}
		if HasIndicator(token) {
			set.Marked[key] = struct{}{}
		} else {
			set.Normal[key] = struct{}{}
		}
	}

	for key := range set.Marked {
		delete(set.Normal, key)
	}

	return set
}

// Conflicts returns the keys that occur both with and without an indicator
// in sentence. Parse resolves them as marked; callers use this list to warn
// content authors.
func Conflicts(sentence string) []string {
	marked := make(map[string]struct{})
	normal := make(map[string]struct{})
	for _, token := range strings.Fields(sentence) {
		key := Normalize(token)
		if key == "" {
			continue
		}
		if HasIndicator(token) {
			marked[key] = struct{}{}
		} else {
			normal[key] = struct{}{}
		}
	}

	both := make(map[string]struct{})
	for key := range marked {
		if _, ok := normal[key]; ok {
			both[key] = struct{}{}
		}
	}
	return sortedKeys(both)
}

// Normalize returns the matching key for a token: indicator glyphs removed,
// leading and trailing punctuation trimmed, lowercased. Interior punctuation
// such as hyphens is kept.
func Normalize(token string) string {
	key := stripIndicators(token)
	key = strings.TrimFunc(key, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})
	return strings.ToLower(key)
}

// HasIndicator reports whether token contains any stress indicator glyph.
func HasIndicator(token string) bool {
	return strings.ContainsFunc(token, isIndicator)
}

// Strip removes every indicator glyph from sentence and re-joins the words
// with single spaces. The result is the text sent to the scoring service.
func Strip(sentence string) string {
	var words []string
	for _, token := range strings.Fields(sentence) {
		if w := stripIndicators(token); w != "" {
			words = append(words, w)
		}
	}
	return strings.Join(words, " ")
}

func stripIndicators(s string) string {
	return strings.Map(func(r rune) rune {
		if isIndicator(r) {
			return -1
		}
		return r
	}, s)
}

func isIndicator(r rune) bool {
	for _, ind := range Indicators {
		if r == ind {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
