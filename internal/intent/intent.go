package intent

import (
	"fmt"
	"strings"
)

// Intent is the purpose category assigned to a user message
type Intent string

const (
	NewTicket    Intent = "new_ticket"
	ChatWithTech Intent = "chat_with_tech"
	StatusQuery  Intent = "status_query"
	Greeting     Intent = "greeting"

	// Unknown is only produced by the keyword fallback. It is never a
	// training label.
	Unknown Intent = "unknown"
)

var all = []Intent{NewTicket, ChatWithTech, StatusQuery, Greeting}

// All returns the closed set of trainable intents in declaration order
func All() []Intent {
	out := make([]Intent, len(all))
	copy(out, all)
	return out
}

// Valid reports whether i belongs to the closed set of intents
func (i Intent) Valid() bool {
	for _, known := range all {
		if i == known {
			return true
		}
	}
	return false
}

func (i Intent) String() string {
	return string(i)
}

// Parse converts a raw label into an Intent
func Parse(raw string) (Intent, error) {
	i := Intent(strings.TrimSpace(raw))
	if !i.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownIntent, raw)
	}
	return i, nil
}

// Example is a single labeled training utterance
type Example struct {
	Text   string `json:"text"`
	Intent Intent `json:"intent"`
}
