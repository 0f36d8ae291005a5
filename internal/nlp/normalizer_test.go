package nlp

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizer_LowercaseOnly(t *testing.T) {
	n := NewNormalizer(nil)
	if n.HasAnalyzer() {
		t.Fatal("normalizer without analyzer reports one")
	}

	tests := []struct {
		input string
		want  string
	}{
		{input: "Preciso Abrir um CHAMADO", want: "preciso abrir um chamado"},
		{input: "SITUAÇÃO do chamado", want: "situação do chamado"},
		{input: "  Oi!  ", want: "  oi!  "},
		{input: "Ve\u0301rtice", want: "vértice"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := n.Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizer_WithLexicon(t *testing.T) {
	lex, err := DefaultLexicon()
	if err != nil {
		t.Fatalf("DefaultLexicon: %v", err)
	}
	n := NewNormalizer(lex)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "stopwords and punctuation dropped, verbs lemmatized",
			input: "Preciso abrir um chamado!",
			want:  "precisar abrir chamado",
		},
		{
			name:  "plural reduced",
			input: "As impressoras pararam? Problemas na rede",
			want:  "impressora pararam problema rede",
		},
		{
			name:  "unknown words kept",
			input: "bom dia",
			want:  "bom dia",
		},
		{
			name:  "only stopwords falls back to lowercased input",
			input: "E O A",
			want:  "e o a",
		},
		{
			name:  "only punctuation falls back to lowercased input",
			input: "?!...",
			want:  "?!...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizer_NeverEmptyForNonEmptyInput(t *testing.T) {
	lex, err := DefaultLexicon()
	if err != nil {
		t.Fatal(err)
	}
	inputs := []string{"a", "de", " ", ".", "o a os as", "😀", "123", "oi"}
	for _, n := range []*Normalizer{NewNormalizer(nil), NewNormalizer(lex)} {
		for _, in := range inputs {
			if got := n.Normalize(in); got == "" {
				t.Errorf("Normalize(%q) returned empty string (analyzer=%v)", in, n.HasAnalyzer())
			}
		}
	}
}

func TestLexicon_Analyze(t *testing.T) {
	lex, err := DefaultLexicon()
	if err != nil {
		t.Fatal(err)
	}

	tokens := lex.Analyze("o sistema está dando erro, socorro")
	want := []Token{
		{Text: "o", Lemma: "o", IsStop: true},
		{Text: "sistema", Lemma: "sistema"},
		{Text: "está", Lemma: "estar"},
		{Text: "dando", Lemma: "dar"},
		{Text: "erro", Lemma: "erro"},
		{Text: ",", Lemma: ",", IsPunct: true},
		{Text: "socorro", Lemma: "socorro"},
	}
	if len(tokens) != len(want) {
		t.Fatalf("Analyze returned %d tokens, want %d: %+v", len(tokens), len(want), tokens)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Errorf("token %d = %+v, want %+v", i, tokens[i], want[i])
		}
	}
}

func TestLexicon_Stemming(t *testing.T) {
	lex, err := DefaultLexicon()
	if err != nil {
		t.Fatal(err)
	}

	if err := lex.EnableStemming("klingon"); err == nil {
		t.Fatal("expected unsupported stemmer language to fail")
	}
	if got := lex.Analyze("running")[0].Lemma; got != "running" {
		t.Errorf("stemming should stay disabled after failure, got %q", got)
	}

	if err := lex.EnableStemming("english"); err != nil {
		t.Fatalf("EnableStemming(english): %v", err)
	}
	if got := lex.Analyze("running")[0].Lemma; got != "run" {
		t.Errorf("stemmed lemma = %q, want %q", got, "run")
	}
	if got := lex.Analyze("preciso")[0].Lemma; got != "precisar" {
		t.Errorf("lemma table should win over stemmer, got %q", got)
	}
}

func TestLoadLexicon(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexicon.yaml")
	content := "language: pt\nstopwords: [o, a]\nlemmas:\n  Quebrou: quebrar\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	lex, err := LoadLexicon(path)
	if err != nil {
		t.Fatalf("LoadLexicon: %v", err)
	}
	if got := NewNormalizer(lex).Normalize("O monitor QUEBROU"); got != "monitor quebrar" {
		t.Errorf("Normalize = %q, want %q", got, "monitor quebrar")
	}

	if _, err := LoadLexicon(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing lexicon")
	}
	if _, err := ParseLexicon([]byte("stopwords: [unterminated")); err == nil {
		t.Error("expected error for malformed lexicon")
	}
}
