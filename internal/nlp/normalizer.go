package nlp

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var lowerCaser = cases.Lower(language.BrazilianPortuguese)

// Lower composes accents (NFC) and lower-cases text with Portuguese casing
// rules, so "é" typed as e + U+0301 matches the precomposed form.
func Lower(text string) string {
	return lowerCaser.String(norm.NFC.String(text))
}

// Normalizer prepares raw message text for classification
type Normalizer struct {
	analyzer Analyzer
}

// NewNormalizer creates a normalizer. A nil analyzer means lowercasing only.
func NewNormalizer(analyzer Analyzer) *Normalizer {
	return &Normalizer{analyzer: analyzer}
}

// HasAnalyzer reports whether linguistic analysis is configured
func (n *Normalizer) HasAnalyzer() bool {
	return n != nil && n.analyzer != nil
}

// Normalize lower-cases text and, when an analyzer is present, keeps the
// lemmas of content tokens. Never returns "" for non-empty input.
func (n *Normalizer) Normalize(text string) string {
	lowered := Lower(text)
	if !n.HasAnalyzer() {
		return lowered
	}

	tokens := n.analyzer.Analyze(lowered)
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok.IsStop || tok.IsPunct {
			continue
		}
		lemma := tok.Lemma
		if lemma == "" {
			lemma = tok.Text
		}
		kept = append(kept, lemma)
	}

	if len(kept) == 0 {
		return lowered
	}
	return strings.Join(kept, " ")
}
