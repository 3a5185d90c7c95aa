package audio

import (
	"fmt"
	"strings"

	"codeberg.org/snonux/accentcoach/internal/annotation"
)

// SpokenText returns the sentence a provider should read: the reference with
// stress indicators removed.
func SpokenText(reference string) (string, error) {
	spoken := strings.TrimSpace(annotation.Strip(reference))
	if spoken == "" {
		return "", fmt.Errorf("text cannot be empty")
	}
	return spoken, nil
}
