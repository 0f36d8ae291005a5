package classifier

import (
	"fmt"
	"time"

	"github.com/themobileprof/helpdesk-intent/internal/intent"
	"github.com/themobileprof/helpdesk-intent/internal/nlp"
)

// Model is a trained TF-IDF + Naive Bayes pipeline. It is immutable once
// trained and safe for concurrent Predict calls.
type Model struct {
	Vectorizer    *Vectorizer `json:"vectorizer"`
	Bayes         *NaiveBayes `json:"bayes"`
	ExamplesCount int         `json:"examples_count"`
	TrainedAt     time.Time   `json:"trained_at"`
}

// Prediction is the classifier output for one text
type Prediction struct {
	Intent        intent.Intent
	Confidence    float64
	Probabilities map[intent.Intent]float64
}

// Train fits a new model on the corpus. Training texts are lower-cased only;
// they do not go through the full normalizer used at inference time.
func Train(corpus *intent.Corpus) (*Model, error) {
	if corpus == nil {
		return nil, fmt.Errorf("%w: no corpus", intent.ErrInsufficientTrainingData)
	}
	if err := corpus.Validate(); err != nil {
		return nil, err
	}

	texts, labels := corpus.Flatten()
	for i := range texts {
		texts[i] = nlp.Lower(texts[i])
	}

	vec := fitVectorizer(texts, DefaultMaxFeatures)
	if vec.NumFeatures() == 0 {
		return nil, fmt.Errorf("%w: corpus produced no features", intent.ErrInsufficientTrainingData)
	}

	x := make([]sparseVector, len(texts))
	for i, text := range texts {
		x[i] = vec.transform(text)
	}

	return &Model{
		Vectorizer:    vec,
		Bayes:         fitNaiveBayes(x, labels, corpus.Labels(), vec.NumFeatures(), DefaultAlpha),
		ExamplesCount: len(texts),
		TrainedAt:     time.Now().UTC(),
	}, nil
}

// Predict classifies already-normalized text
func (m *Model) Predict(text string) (Prediction, error) {
	if m == nil || m.Vectorizer == nil || m.Bayes == nil {
		return Prediction{}, intent.ErrModelUnavailable
	}

	proba := m.Bayes.predictProba(m.Vectorizer.transform(text))

	best := 0
	for k := 1; k < len(proba); k++ {
		if proba[k] > proba[best] {
			best = k
		}
	}

	probs := make(map[intent.Intent]float64, len(proba))
	for k, p := range proba {
		probs[m.Bayes.Classes[k]] = clamp01(p)
	}

	return Prediction{
		Intent:        m.Bayes.Classes[best],
		Confidence:    clamp01(proba[best]),
		Probabilities: probs,
	}, nil
}

// Classes returns the model's labels in tie-breaking order
func (m *Model) Classes() []intent.Intent {
	if m == nil || m.Bayes == nil {
		return nil
	}
	return append([]intent.Intent(nil), m.Bayes.Classes...)
}

// check verifies that a decoded model is internally consistent
func (m *Model) check() error {
	if m.Vectorizer == nil || m.Bayes == nil {
		return fmt.Errorf("model is incomplete")
	}
	n := len(m.Vectorizer.Features)
	if n == 0 || len(m.Vectorizer.IDF) != n {
		return fmt.Errorf("vocabulary has %d features and %d idf weights", n, len(m.Vectorizer.IDF))
	}
	k := len(m.Bayes.Classes)
	if k < 2 || len(m.Bayes.ClassLogPrior) != k || len(m.Bayes.FeatureLogProb) != k {
		return fmt.Errorf("inconsistent class parameters")
	}
	for _, c := range m.Bayes.Classes {
		if !c.Valid() {
			return fmt.Errorf("unknown class %q", c)
		}
	}
	for _, row := range m.Bayes.FeatureLogProb {
		if len(row) != n {
			return fmt.Errorf("likelihood row has %d entries, want %d", len(row), n)
		}
	}
	m.Vectorizer.buildIndex()
	return nil
}

func clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
