// Package audio handles the audio side of a practice attempt: validating
// learner recordings before they are scored, and rendering model readings
// of reference sentences with OpenAI TTS or a local espeak-ng install.
package audio
