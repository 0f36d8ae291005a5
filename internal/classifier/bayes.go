package classifier

import (
	"math"

	"github.com/themobileprof/helpdesk-intent/internal/intent"
)

// DefaultAlpha is the additive (Laplace) smoothing parameter
const DefaultAlpha = 1.0

// NaiveBayes is a multinomial Naive Bayes classifier over TF-IDF features.
// Classes are kept in alphabetical order, which also decides ties.
type NaiveBayes struct {
	Classes        []intent.Intent `json:"classes"`
	ClassLogPrior  []float64       `json:"class_log_prior"`
	FeatureLogProb [][]float64     `json:"feature_log_prob"`
	Alpha          float64         `json:"alpha"`
}

// fitNaiveBayes estimates priors from class frequencies and feature
// likelihoods from the summed feature weights of each class.
func fitNaiveBayes(x []sparseVector, y []intent.Intent, classes []intent.Intent, nFeatures int, alpha float64) *NaiveBayes {
	pos := make(map[intent.Intent]int, len(classes))
	for k, c := range classes {
		pos[c] = k
	}

	classCount := make([]float64, len(classes))
	featureCount := make([][]float64, len(classes))
	for k := range featureCount {
		featureCount[k] = make([]float64, nFeatures)
	}
	for i, vec := range x {
		k := pos[y[i]]
		classCount[k]++
		for n, j := range vec.idx {
			featureCount[k][j] += vec.val[n]
		}
	}

	total := float64(len(y))
	nb := &NaiveBayes{
		Classes:        append([]intent.Intent(nil), classes...),
		ClassLogPrior:  make([]float64, len(classes)),
		FeatureLogProb: make([][]float64, len(classes)),
		Alpha:          alpha,
	}
	for k := range classes {
		nb.ClassLogPrior[k] = math.Log(classCount[k] / total)

		var sum float64
		for _, fc := range featureCount[k] {
			sum += fc + alpha
		}
		logSum := math.Log(sum)
		nb.FeatureLogProb[k] = make([]float64, nFeatures)
		for j, fc := range featureCount[k] {
			nb.FeatureLogProb[k][j] = math.Log(fc+alpha) - logSum
		}
	}
	return nb
}

// predictProba returns the posterior probability of every class, in class order
func (nb *NaiveBayes) predictProba(x sparseVector) []float64 {
	jll := make([]float64, len(nb.Classes))
	for k := range nb.Classes {
		score := nb.ClassLogPrior[k]
		for n, j := range x.idx {
			score += x.val[n] * nb.FeatureLogProb[k][j]
		}
		jll[k] = score
	}

	maxLL := math.Inf(-1)
	for _, v := range jll {
		if v > maxLL {
			maxLL = v
		}
	}
	var sum float64
	for _, v := range jll {
		sum += math.Exp(v - maxLL)
	}
	logNorm := maxLL + math.Log(sum)

	proba := make([]float64, len(jll))
	for k, v := range jll {
		proba[k] = math.Exp(v - logNorm)
	}
	return proba
}
