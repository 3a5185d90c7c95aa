// Package annotation parses reference sentences whose stressed words carry an
// apostrophe-like indicator glyph. It splits a sentence into the set of
// stress-marked words and the set of ordinary words, both normalized so they
// can be matched against the words returned by the scoring service.
package annotation
