package audio

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

// DefaultMaxUploadBytes caps a learner recording
const DefaultMaxUploadBytes = 10 << 20

// ErrInvalidUpload is wrapped by every upload validation error
var ErrInvalidUpload = errors.New("invalid audio upload")

// uploadTypes maps accepted file extensions to their MIME types. A few
// browsers report alternative names, listed in uploadAliases.
var uploadTypes = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".ogg":  "audio/ogg",
	".webm": "audio/webm",
	".m4a":  "audio/mp4",
	".flac": "audio/flac",
}

var uploadAliases = map[string]string{
	"audio/x-wav":    "audio/wav",
	"audio/wave":     "audio/wav",
	"audio/vnd.wave": "audio/wav",
	"audio/mp3":      "audio/mpeg",
	"audio/x-m4a":    "audio/mp4",
	"audio/x-flac":   "audio/flac",
	"video/webm":     "audio/webm",
}

// ValidateUpload checks a learner recording before it is forwarded for
// scoring. The extension of name must be a supported audio format and, when
// given, contentType must agree with it. size must be positive and at most
// max bytes; max <= 0 selects DefaultMaxUploadBytes.
func ValidateUpload(name, contentType string, size, max int64) error {
	if max <= 0 {
		max = DefaultMaxUploadBytes
	}
	if size <= 0 {
		return fmt.Errorf("%w: audio file is empty", ErrInvalidUpload)
	}
	if size > max {
		return fmt.Errorf("%w: audio file is %d bytes, limit is %d", ErrInvalidUpload, size, max)
	}

	ext := strings.ToLower(filepath.Ext(name))
	want, ok := uploadTypes[ext]
	if !ok {
		return fmt.Errorf("%w: unsupported file type %q (expected one of %s)", ErrInvalidUpload, ext, strings.Join(UploadExtensions(), ", "))
	}

	if contentType == "" || contentType == "application/octet-stream" {
		return nil
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return fmt.Errorf("%w: malformed content type %q", ErrInvalidUpload, contentType)
	}
	if alias, ok := uploadAliases[mediaType]; ok {
		mediaType = alias
	}
	if mediaType != want {
		return fmt.Errorf("%w: content type %s does not match %s", ErrInvalidUpload, mediaType, ext)
	}
	return nil
}

// UploadExtensions lists the accepted file extensions
func UploadExtensions() []string {
	return []string{".wav", ".mp3", ".ogg", ".webm", ".m4a", ".flac"}
}

// ContentTypeFor returns the MIME type for a supported file name, or
// application/octet-stream.
func ContentTypeFor(name string) string {
	if t, ok := uploadTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return t
	}
	return "application/octet-stream"
}
