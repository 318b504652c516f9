package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/ashwath129/DayMap/internal/config"
)

// PlanRequest carries the answers collected by the trip-planning dialogue.
type PlanRequest struct {
	Destination string
	People      string
	Days        int
	Occasion    string
	Other       string
}

// Planner generates a trip plan for the request and returns the model's
// answer as raw JSON bytes. Callers coerce the payload into the document
// shape; the planner only guarantees syntactically extractable JSON.
type Planner interface {
	GeneratePlan(ctx context.Context, req PlanRequest) ([]byte, error)
}

// New selects the provider configured under planner.provider.
func New(cfg *config.Config) (Planner, error) {
	switch cfg.Planner.Provider {
	case "", "openai":
		return NewOpenAI(cfg), nil
	case "anthropic":
		return NewAnthropic(cfg), nil
	default:
		return nil, fmt.Errorf("unknown planner provider %q", cfg.Planner.Provider)
	}
}

func buildPrompt(req PlanRequest) string {
	var b strings.Builder
	b.WriteString("You are a travel planner. Create a quick day-by-day trip plan.\n\n")
	fmt.Fprintf(&b, "Destination: %s\n", req.Destination)
	fmt.Fprintf(&b, "Number of people: %s\n", req.People)
	fmt.Fprintf(&b, "Number of days: %d\n", req.Days)
	if req.Occasion != "" {
		fmt.Fprintf(&b, "Occasion: %s\n", req.Occasion)
	}
	if req.Other != "" {
		fmt.Fprintf(&b, "Other details: %s\n", req.Other)
	}
	b.WriteString(`
Respond with ONLY a JSON array, one object per day, in this exact shape:
[
  {
    "id": "day-1",
    "dayNumber": 1,
    "accommodation": "...",
    "transportation": "...",
    "budget": "...",
    "activities": ["...", "..."],
    "meals": {"breakfast": "...", "lunch": "...", "dinner": "..."}
  }
]
All field values must be plain strings. Do not include any text outside the JSON.`)
	return b.String()
}

// extractJSON strips markdown code fences the model may wrap its answer in
// and trims to the outermost JSON value.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	// Tolerate prose around the payload.
	start := strings.IndexAny(s, "[{")
	if start < 0 {
		return s
	}
	var end int
	if s[start] == '[' {
		end = strings.LastIndex(s, "]")
	} else {
		end = strings.LastIndex(s, "}")
	}
	if end <= start {
		return s[start:]
	}
	return s[start : end+1]
}
