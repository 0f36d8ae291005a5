package classifier

import (
	"strings"

	"github.com/themobileprof/helpdesk-intent/internal/intent"
)

// RuleResult is the keyword classifier's verdict
type RuleResult struct {
	Intent            intent.Intent `json:"intent"`
	Confidence        float64       `json:"confidence"`
	ShouldRouteToTech bool          `json:"should_route_to_tech"`
}

type keywordRule struct {
	intent   intent.Intent
	keywords []string
}

// RuleClassifier performs keyword intent classification. It is the fallback
// used by clients when the statistical service cannot be reached.
type RuleClassifier struct {
	rules []keywordRule
}

// NewRuleClassifier creates a keyword classifier. Rules are checked in order.
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{
		rules: []keywordRule{
			{
				intent:   intent.Greeting,
				keywords: []string{"oi", "olá", "ola", "bom dia", "boa tarde", "boa noite", "eae", "hello", "hi"},
			},
			{
				intent:   intent.StatusQuery,
				keywords: []string{"status", "andamento", "chamado", "consultar", "acompanhar", "previsão"},
			},
			{
				intent:   intent.NewTicket,
				keywords: []string{"problema", "preciso", "ajuda", "não funciona", "erro", "parou", "quebrou", "chamado de ti", "chamado de elétrica"},
			},
		},
	}
}

// Classify matches keywords as substrings of the lower-cased message
func (c *RuleClassifier) Classify(text string, hasActiveTicket bool) RuleResult {
	normalized := strings.TrimSpace(strings.ToLower(text))

	for _, rule := range c.rules {
		if !containsAny(normalized, rule.keywords) {
			continue
		}
		// Greeting while a ticket is open continues the conversation
		if hasActiveTicket && rule.intent == intent.Greeting {
			return RuleResult{
				Intent:            intent.ChatWithTech,
				Confidence:        0.7,
				ShouldRouteToTech: true,
			}
		}
		return RuleResult{
			Intent:            rule.intent,
			Confidence:        0.6,
			ShouldRouteToTech: hasActiveTicket && rule.intent != intent.NewTicket,
		}
	}

	if hasActiveTicket {
		return RuleResult{
			Intent:            intent.ChatWithTech,
			Confidence:        0.5,
			ShouldRouteToTech: true,
		}
	}

	return RuleResult{
		Intent:     intent.Unknown,
		Confidence: 0.3,
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
