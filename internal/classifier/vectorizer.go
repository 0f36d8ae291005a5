package classifier

import (
	"math"
	"regexp"
	"sort"
	"unicode/utf8"
)

// DefaultMaxFeatures caps the vocabulary size
const DefaultMaxFeatures = 1000

// wordRe matches runs of word characters; runs shorter than two runes are
// discarded by tokenize.
var wordRe = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+`)

// Vectorizer turns text into L2-normalised TF-IDF vectors over unigrams and bigrams
type Vectorizer struct {
	Features []string       `json:"features"`
	IDF      []float64      `json:"idf"`
	index    map[string]int
}

// sparseVector holds the non-zero entries of a feature vector
type sparseVector struct {
	idx []int
	val []float64
}

func tokenize(text string) []string {
	words := wordRe.FindAllString(text, -1)
	out := words[:0]
	for _, w := range words {
		if utf8.RuneCountInString(w) >= 2 {
			out = append(out, w)
		}
	}
	return out
}

// ngrams returns unigrams followed by space-joined bigrams
func ngrams(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	out := make([]string, 0, len(tokens)*2-1)
	out = append(out, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		out = append(out, tokens[i]+" "+tokens[i+1])
	}
	return out
}

// fitVectorizer learns the vocabulary and idf weights. The vocabulary keeps
// the maxFeatures terms with the highest corpus frequency, ties broken
// alphabetically, and is then sorted alphabetically.
func fitVectorizer(texts []string, maxFeatures int) *Vectorizer {
	termFreq := make(map[string]int)
	docFreq := make(map[string]int)
	for _, text := range texts {
		seen := make(map[string]bool)
		for _, term := range ngrams(tokenize(text)) {
			termFreq[term]++
			if !seen[term] {
				docFreq[term]++
				seen[term] = true
			}
		}
	}

	terms := make([]string, 0, len(termFreq))
	for term := range termFreq {
		terms = append(terms, term)
	}
	if maxFeatures > 0 && len(terms) > maxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if termFreq[terms[i]] != termFreq[terms[j]] {
				return termFreq[terms[i]] > termFreq[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(texts))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	v := &Vectorizer{Features: terms, IDF: idf}
	v.buildIndex()
	return v
}

func (v *Vectorizer) buildIndex() {
	v.index = make(map[string]int, len(v.Features))
	for i, term := range v.Features {
		v.index[term] = i
	}
}

// NumFeatures returns the vocabulary size
func (v *Vectorizer) NumFeatures() int {
	return len(v.Features)
}

// transform maps text to its TF-IDF vector. Out-of-vocabulary terms are ignored.
func (v *Vectorizer) transform(text string) sparseVector {
	counts := make(map[int]float64)
	for _, term := range ngrams(tokenize(text)) {
		if j, ok := v.index[term]; ok {
			counts[j]++
		}
	}
	if len(counts) == 0 {
		return sparseVector{}
	}

	idx := make([]int, 0, len(counts))
	for j := range counts {
		idx = append(idx, j)
	}
	sort.Ints(idx)

	val := make([]float64, len(idx))
	var norm float64
	for k, j := range idx {
		val[k] = counts[j] * v.IDF[j]
		norm += val[k] * val[k]
	}
	norm = math.Sqrt(norm)
	for k := range val {
		val[k] /= norm
	}
	return sparseVector{idx: idx, val: val}
}

// Terms returns the in-vocabulary n-grams of text, for diagnostics
func (v *Vectorizer) Terms(text string) []string {
	vec := v.transform(text)
	out := make([]string, len(vec.idx))
	for k, j := range vec.idx {
		out[k] = v.Features[j]
	}
	return out
}
