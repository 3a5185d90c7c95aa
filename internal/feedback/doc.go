// Package feedback turns a scoring result into a categorized feedback
// report. Ordinary words are tiered by their quality score; stress-marked
// words are tiered by the average stress score of their phones. The package
// is pure: every function depends only on its arguments.
package feedback
