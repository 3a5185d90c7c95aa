// Package coach turns a feedback report into short pronunciation tips using
// a chat model. It supports OpenAI and Gemini backends, optionally chained
// with a fallback. Tips are advisory: a coach never alters the report.
package coach
