package practice

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadSetFile reads reference sentences from a text file, one per line.
// Blank lines and lines starting with '#' are skipped. Stress indicators
// are kept as written.
func ReadSetFile(filename string) ([]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read set file: %w", err)
	}
	defer f.Close()

	var sentences []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimSuffix(scanner.Text(), "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sentences = append(sentences, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read set file: %w", err)
	}

	return sentences, nil
}
