package routing

import "github.com/themobileprof/helpdesk-intent/internal/intent"

// NewTicketThreshold is the confidence above which a new_ticket prediction
// is trusted even though the user already has an open ticket.
const NewTicketThreshold = 0.7

// Decision is the final intent and whether a technician should take over
type Decision struct {
	Intent      intent.Intent
	RouteToTech bool
}

// Route adjusts a predicted intent for users with an active ticket.
// Checks run in a fixed order: confident new ticket, greeting, then the
// catch-all.
func Route(predicted intent.Intent, confidence float64, hasActiveTicket bool) Decision {
	if !hasActiveTicket {
		return Decision{Intent: predicted}
	}

	switch {
	case predicted == intent.NewTicket && confidence > NewTicketThreshold:
		return Decision{Intent: predicted}
	case predicted == intent.Greeting:
		return Decision{Intent: intent.ChatWithTech, RouteToTech: true}
	}

	if predicted == intent.StatusQuery || predicted == intent.NewTicket {
		return Decision{Intent: predicted, RouteToTech: true}
	}
	return Decision{Intent: intent.ChatWithTech, RouteToTech: true}
}
