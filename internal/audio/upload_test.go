package audio

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name        string
		fileName    string
		contentType string
		size        int64
		max         int64
		errMsg      string
	}{
		{name: "wav", fileName: "take1.wav", contentType: "audio/wav", size: 1024},
		{name: "upper case extension", fileName: "TAKE1.MP3", contentType: "audio/mpeg", size: 1024},
		{name: "alias content type", fileName: "take.wav", contentType: "audio/x-wav", size: 1024},
		{name: "content type with params", fileName: "take.webm", contentType: "audio/webm;codecs=opus", size: 1024},
		{name: "browser webm", fileName: "take.webm", contentType: "video/webm", size: 1024},
		{name: "no content type", fileName: "take.flac", size: 1024},
		{name: "octet stream", fileName: "take.m4a", contentType: "application/octet-stream", size: 1024},
		{name: "default limit", fileName: "take.ogg", contentType: "audio/ogg", size: DefaultMaxUploadBytes},
		{name: "empty file", fileName: "take.wav", size: 0, errMsg: "audio file is empty"},
		{name: "too large", fileName: "take.wav", size: 2048, max: 1024, errMsg: "limit is 1024"},
		{name: "over default limit", fileName: "take.wav", size: DefaultMaxUploadBytes + 1, errMsg: "limit is"},
		{name: "unsupported extension", fileName: "notes.txt", size: 10, errMsg: `unsupported file type ".txt"`},
		{name: "no extension", fileName: "recording", size: 10, errMsg: "unsupported file type"},
		{name: "mismatched content type", fileName: "take.wav", contentType: "audio/mpeg", size: 10, errMsg: "does not match .wav"},
		{name: "malformed content type", fileName: "take.wav", contentType: "audio/;;", size: 10, errMsg: "malformed content type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload(tt.fileName, tt.contentType, tt.size, tt.max)
			if tt.errMsg == "" {
				if err != nil {
					t.Errorf("ValidateUpload() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateUpload() expected error containing %q", tt.errMsg)
			}
			if !errors.Is(err, ErrInvalidUpload) {
				t.Errorf("error %v does not wrap ErrInvalidUpload", err)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("ValidateUpload() error = %q, want it to contain %q", err.Error(), tt.errMsg)
			}
		})
	}
}

func TestContentTypeFor(t *testing.T) {
	if got := ContentTypeFor("a.MP3"); got != "audio/mpeg" {
		t.Errorf("ContentTypeFor() = %q", got)
	}
	if got := ContentTypeFor("a.bin"); got != "application/octet-stream" {
		t.Errorf("ContentTypeFor() = %q", got)
	}
}
