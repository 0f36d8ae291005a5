package intentclient

import "github.com/themobileprof/helpdesk-intent/internal/intent"

// Source tells where a classification came from
type Source string

const (
	SourceService Source = "service"
	SourceRules   Source = "rules"
)

// Classification is the verdict returned to callers
type Classification struct {
	Intent            intent.Intent `json:"intent"`
	Confidence        float64       `json:"confidence"`
	ShouldRouteToTech bool          `json:"should_route_to_tech"`
	Source            Source        `json:"-"`
}

type classifyRequest struct {
	Text            string `json:"text"`
	HasActiveTicket bool   `json:"has_active_ticket"`
}

type healthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

type trainRequest struct {
	Examples []intent.Example `json:"examples"`
}

// TrainResult is the service's answer to a retrain
type TrainResult struct {
	Status        string `json:"status"`
	ExamplesCount int    `json:"examples_count"`
	Added         int    `json:"added"`
	Skipped       int    `json:"skipped"`
}

type errorResponse struct {
	Error string `json:"error"`
}
