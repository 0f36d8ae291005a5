package nlp

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/kljensen/snowball"
	"gopkg.in/yaml.v3"
)

//go:embed lexicon_pt.yaml
var defaultLexiconYAML []byte

// LexiconFile is the on-disk shape of a lexicon
type LexiconFile struct {
	Language  string            `yaml:"language"`
	Stopwords []string          `yaml:"stopwords"`
	Lemmas    map[string]string `yaml:"lemmas"`
}

// Lexicon is a dictionary-based Analyzer. Tokens missing from the lemma
// table are optionally reduced with a Snowball stemmer.
type Lexicon struct {
	stopwords    map[string]struct{}
	lemmas       map[string]string
	stemLanguage string
}

// DefaultLexicon returns the embedded Portuguese lexicon
func DefaultLexicon() (*Lexicon, error) {
	return ParseLexicon(defaultLexiconYAML)
}

// LoadLexicon reads a lexicon YAML file from disk
func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon: %w", err)
	}
	return ParseLexicon(data)
}

// ParseLexicon builds a Lexicon from YAML
func ParseLexicon(data []byte) (*Lexicon, error) {
	var file LexiconFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon: %w", err)
	}

	lex := &Lexicon{
		stopwords: make(map[string]struct{}, len(file.Stopwords)),
		lemmas:    make(map[string]string, len(file.Lemmas)),
	}
	for _, w := range file.Stopwords {
		lex.stopwords[Lower(w)] = struct{}{}
	}
	for form, lemma := range file.Lemmas {
		lex.lemmas[Lower(form)] = Lower(lemma)
	}
	return lex, nil
}

// EnableStemming turns on Snowball stemming for tokens with no lemma entry.
// It fails if the stemmer does not support language.
func (l *Lexicon) EnableStemming(language string) error {
	if _, err := snowball.Stem("chamados", language, true); err != nil {
		return fmt.Errorf("stemmer unavailable for %q: %w", language, err)
	}
	l.stemLanguage = language
	return nil
}

// Analyze implements Analyzer
func (l *Lexicon) Analyze(text string) []Token {
	words := segmentWords(text)
	tokens := make([]Token, 0, len(words))
	for _, w := range words {
		tok := Token{Text: w, Lemma: w}
		switch {
		case isPunct(w):
			tok.IsPunct = true
		case l.isStop(w):
			tok.IsStop = true
		default:
			tok.Lemma = l.lemma(w)
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func (l *Lexicon) isStop(word string) bool {
	_, ok := l.stopwords[word]
	return ok
}

func (l *Lexicon) lemma(word string) string {
	if lemma, ok := l.lemmas[word]; ok {
		return lemma
	}
	if l.stemLanguage == "" {
		return word
	}
	stemmed, err := snowball.Stem(word, l.stemLanguage, false)
	if err != nil || stemmed == "" {
		return word
	}
	return stemmed
}
