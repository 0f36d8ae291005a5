package intent

import (
	"fmt"
	"sort"
	"strings"
)

// Corpus maps each intent to its example utterances.
// It is not safe for concurrent use; owners serialize access.
type Corpus struct {
	examples map[Intent][]string
}

// NewCorpus creates an empty corpus
func NewCorpus() *Corpus {
	return &Corpus{examples: make(map[Intent][]string)}
}

// DefaultCorpus returns the curated Portuguese help-desk corpus
func DefaultCorpus() *Corpus {
	c := NewCorpus()
	for label, texts := range defaultExamples {
		c.examples[label] = append([]string(nil), texts...)
	}
	return c
}

// Add appends an example under an existing intent
func (c *Corpus) Add(text string, label Intent) error {
	if !label.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownIntent, string(label))
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("%w: empty example text", ErrInvalidInput)
	}
	c.examples[label] = append(c.examples[label], text)
	return nil
}

// Examples returns a copy of the utterances stored for label
func (c *Corpus) Examples(label Intent) []string {
	return append([]string(nil), c.examples[label]...)
}

// Labels returns the intents that have at least one example, sorted alphabetically
func (c *Corpus) Labels() []Intent {
	labels := make([]Intent, 0, len(c.examples))
	for label, texts := range c.examples {
		if len(texts) > 0 {
			labels = append(labels, label)
		}
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
	return labels
}

// Len returns the total number of examples across all intents
func (c *Corpus) Len() int {
	n := 0
	for _, texts := range c.examples {
		n += len(texts)
	}
	return n
}

// Clone returns a deep copy
func (c *Corpus) Clone() *Corpus {
	out := NewCorpus()
	for label, texts := range c.examples {
		out.examples[label] = append([]string(nil), texts...)
	}
	return out
}

// Validate checks that the corpus can train a classifier: every known
// intent has examples and at least two intents are present.
func (c *Corpus) Validate() error {
	for _, label := range all {
		if len(c.examples[label]) == 0 {
			return fmt.Errorf("%w: intent %q has no examples", ErrInsufficientTrainingData, label)
		}
	}
	if len(c.Labels()) < 2 {
		return fmt.Errorf("%w: need at least 2 intents", ErrInsufficientTrainingData)
	}
	return nil
}

// Flatten returns parallel slices of texts and labels, labels in
// alphabetical order and texts in insertion order within a label.
func (c *Corpus) Flatten() ([]string, []Intent) {
	texts := make([]string, 0, c.Len())
	labels := make([]Intent, 0, c.Len())
	for _, label := range c.Labels() {
		for _, text := range c.examples[label] {
			texts = append(texts, text)
			labels = append(labels, label)
		}
	}
	return texts, labels
}

var defaultExamples = map[Intent][]string{
	NewTicket: {
		"preciso abrir um chamado",
		"quero registrar um problema",
		"tenho um problema para reportar",
		"preciso de suporte técnico",
		"meu computador não funciona",
		"a impressora parou de funcionar",
		"não consigo acessar o sistema",
		"internet não está funcionando",
		"rede caiu",
		"preciso de ajuda com o sistema",
		"sistema dando erro",
		"problema no email",
		"não consigo logar",
		"luz não está funcionando",
		"tomada queimou",
		"ar condicionado parou",
		"quero abrir chamado",
		"preciso de um técnico",
		"tem como me ajudar",
		"estou com problema",
	},
	ChatWithTech: {
		"oi está aí",
		"olá tudo bem",
		"ainda está funcionando",
		"o técnico vai demorar",
		"quando vão resolver",
		"vocês receberam minha mensagem",
		"já estão vindo",
		"obrigado pela ajuda",
		"ok entendi",
		"beleza",
		"certo",
		"sim",
		"não",
		"isso mesmo",
		"pode fazer isso",
		"perfeito",
		"valeu",
		"blz",
		"vlw",
		"entao ta bom",
	},
	StatusQuery: {
		"qual o status do meu chamado",
		"meu chamado já foi atendido",
		"como está o andamento",
		"tem previsão",
		"quanto tempo vai demorar",
		"status",
		"consultar chamado",
		"ver meu chamado",
		"acompanhar chamado",
		"situação do chamado",
	},
	Greeting: {
		"oi",
		"olá",
		"ola",
		"bom dia",
		"boa tarde",
		"boa noite",
		"eae",
		"ei",
		"hello",
		"hi",
	},
}
