package live

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ashwath129/DayMap/internal/infra/planner"
)

// DialogueStep indexes the scripted question sequence.
type DialogueStep int

const (
	StepDestination DialogueStep = iota
	StepPeople
	StepDays
	StepOccasion
	StepOther
	StepConfirm
	StepDone
)

const maxDialogueDays = 30

// PlanDialogue walks a user through the fixed question script that gathers a
// plan request. Occasion and other-details accept a skip; confirm restarts
// from the top on "no". The dialogue holds no external state and is safe to
// drop at any step.
type PlanDialogue struct {
	step DialogueStep
	req  planner.PlanRequest
}

func NewPlanDialogue() *PlanDialogue {
	return &PlanDialogue{step: StepDestination}
}

func (d *PlanDialogue) Step() DialogueStep { return d.step }

func (d *PlanDialogue) Done() bool { return d.step == StepDone }

// Request returns the collected answers. Only meaningful once Done.
func (d *PlanDialogue) Request() planner.PlanRequest { return d.req }

// Prompt is the question for the current step.
func (d *PlanDialogue) Prompt() string {
	switch d.step {
	case StepDestination:
		return "Where would you like to go?"
	case StepPeople:
		return "How many people are travelling?"
	case StepDays:
		return "How many days is the trip?"
	case StepOccasion:
		return "Is there a special occasion? (or say \"skip\")"
	case StepOther:
		return "Anything else I should know? (or say \"skip\")"
	case StepConfirm:
		return fmt.Sprintf(
			"Here's what I have: %s, %s people, %d days%s%s. Shall I generate the plan? (yes/no)",
			d.req.Destination, d.req.People, d.req.Days,
			optional(", occasion: ", d.req.Occasion),
			optional(", notes: ", d.req.Other))
	default:
		return ""
	}
}

func optional(prefix, v string) string {
	if v == "" {
		return ""
	}
	return prefix + v
}

func isSkip(s string) bool {
	switch strings.ToLower(s) {
	case "skip", "none", "no", "nothing", "n/a", "-":
		return true
	}
	return false
}

// Answer consumes one user reply and advances the script. The returned reply
// is the next prompt, or a validation nudge when the answer is rejected.
func (d *PlanDialogue) Answer(text string) (string, error) {
	text = strings.TrimSpace(text)

	switch d.step {
	case StepDestination:
		if text == "" {
			return d.Prompt(), nil
		}
		d.req.Destination = text
		d.step = StepPeople

	case StepPeople:
		if text == "" {
			return d.Prompt(), nil
		}
		d.req.People = text
		d.step = StepDays

	case StepDays:
		n, err := strconv.Atoi(text)
		if err != nil || n < 1 || n > maxDialogueDays {
			return fmt.Sprintf("Please give a number of days between 1 and %d.", maxDialogueDays), nil
		}
		d.req.Days = n
		d.step = StepOccasion

	case StepOccasion:
		if !isSkip(text) {
			d.req.Occasion = text
		}
		d.step = StepOther

	case StepOther:
		if !isSkip(text) {
			d.req.Other = text
		}
		d.step = StepConfirm

	case StepConfirm:
		switch strings.ToLower(text) {
		case "yes", "y", "sure", "ok", "okay":
			d.step = StepDone
			return "Generating your trip plan now.", nil
		case "no", "n":
			// Start over with a clean slate.
			*d = PlanDialogue{step: StepDestination}
			return "No problem, let's start again. " + d.Prompt(), nil
		default:
			return "Please answer yes or no.", nil
		}

	case StepDone:
		return "", fmt.Errorf("dialogue already complete")
	}

	return d.Prompt(), nil
}
