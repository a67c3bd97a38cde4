package dictionary

import (
	"bufio"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var ErrEmptyWordList = errors.New("word list is empty")

//go:embed words.txt
var embeddedWords string

// WordList is an in-memory set of allowed words.
type WordList struct {
	words map[string]struct{}
}

// NewWordList loads one word per line from path, or the embedded list when path is empty.
func NewWordList(path string) (*WordList, error) {
	if path == "" {
		return parseWordList(strings.NewReader(embeddedWords))
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open word list: %w", err)
	}
	defer file.Close()

	return parseWordList(file)
}

func parseWordList(r io.Reader) (*WordList, error) {
	list := &WordList{words: make(map[string]struct{})}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if len(word) >= 2 && isAlpha(word) {
			list.words[word] = struct{}{}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}

	if len(list.words) == 0 {
		return nil, ErrEmptyWordList
	}

	return list, nil
}

func (that *WordList) Lookup(_ context.Context, word string) (bool, error) {
	_, ok := that.words[word]
	return ok, nil
}

func (that *WordList) Len() int {
	return len(that.words)
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}

	return true
}
