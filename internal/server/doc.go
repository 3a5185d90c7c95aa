// Package server exposes evaluation over HTTP. A client posts a learner
// recording together with the annotated reference sentence and receives the
// feedback report, its two rendered lines and the raw scoring result.
package server
