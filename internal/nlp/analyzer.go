package nlp

import (
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
)

// Token is one analyzed word of a message
type Token struct {
	Text    string
	Lemma   string
	IsStop  bool
	IsPunct bool
}

// Analyzer performs linguistic analysis on lower-cased text
type Analyzer interface {
	Analyze(text string) []Token
}

// segmentWords splits text on UAX #29 word boundaries, dropping whitespace
func segmentWords(text string) []string {
	var words []string
	state := -1
	for len(text) > 0 {
		var word string
		word, text, state = uniseg.FirstWordInString(text, state)
		if strings.TrimSpace(word) == "" {
			continue
		}
		words = append(words, word)
	}
	return words
}

// isPunct reports whether word carries no letter or digit
func isPunct(word string) bool {
	for _, r := range word {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return false
		}
	}
	return true
}
