// Package practice stores named practice sets: ordered lists of annotated
// reference sentences a learner reads aloud. Sets live in a SQLite database
// and are authored as plain text files, one sentence per line.
package practice
