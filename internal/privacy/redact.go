package privacy

import (
	"regexp"
	"unicode/utf8"
)

// MaxLogRunes is how much of a message may appear in logs
const MaxLogRunes = 50

var (
	emailRegex = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	// CNPJ: 12.345.678/0001-90 or 12345678000190
	cnpjRegex = regexp.MustCompile(`\b\d{2}\.?\d{3}\.?\d{3}/?\d{4}-?\d{2}\b`)

	// CPF: 123.456.789-09 or 12345678909
	cpfRegex = regexp.MustCompile(`\b\d{3}\.?\d{3}\.?\d{3}-?\d{2}\b`)

	// Credit card (basic) - must have 4 groups
	creditCardRegex = regexp.MustCompile(`\b\d{4}[-\s]\d{4}[-\s]\d{4}[-\s]\d{4}\b`)

	// Brazilian phones: (11) 91234-5678, +55 11 3456-7890, 11 98765 4321
	phoneRegex = regexp.MustCompile(`(\+55\s?)?\(?\b\d{2}\)?[\s-]?9?\d{4}[-\s]\d{4}\b`)
)

// RedactSensitiveData removes PII from text
func RedactSensitiveData(text string) string {
	text = emailRegex.ReplaceAllString(text, "[EMAIL]")
	text = cnpjRegex.ReplaceAllString(text, "[CNPJ]")
	text = cpfRegex.ReplaceAllString(text, "[CPF]")
	text = creditCardRegex.ReplaceAllString(text, "[CARD]")
	text = phoneRegex.ReplaceAllString(text, "[PHONE]")
	return text
}

// SanitizeForLogging redacts PII and truncates a message for log output
func SanitizeForLogging(text string) string {
	redacted := RedactSensitiveData(text)
	if utf8.RuneCountInString(redacted) <= MaxLogRunes {
		return redacted
	}

	runes := []rune(redacted)
	return string(runes[:MaxLogRunes]) + "..."
}

// ContainsPII checks if text contains potential PII
func ContainsPII(text string) bool {
	return emailRegex.MatchString(text) ||
		cnpjRegex.MatchString(text) ||
		cpfRegex.MatchString(text) ||
		creditCardRegex.MatchString(text) ||
		phoneRegex.MatchString(text)
}
