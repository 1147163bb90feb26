package moderation

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadLexiconFile reads a newline-separated toxicity lexicon. Blank lines
// and '#' comments are skipped.
func LoadLexiconFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("lexicon file %s contains no words", path)
	}
	return words, nil
}
