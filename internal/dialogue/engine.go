// Package dialogue implements the slot-filling engine behind the travel
// assistant: lexical extraction of trip attributes, yes/no confirmation
// classification, and selection of the next system utterance. It is the
// single engine shared by every front end; none of them carry their own
// conversation logic.
package dialogue

import (
	"fmt"
	"math/rand"
	"time"

	log "log/slog"
)

// Engine walks a conversation through the question tiers:
// destination -> travelers -> budget -> confirmation. The tier is never
// stored; it is re-derived each turn from which TripRequest fields are
// set, so a single utterance can answer several tiers at once.
type Engine struct {
	rng *rand.Rand
}

// NewEngine builds an engine using rng for phrasing selection. A nil
// rng gets a time-seeded one; tests pass a fixed seed instead.
func NewEngine(rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{rng: rng}
}

// StepResult is the outcome of one user turn.
type StepResult struct {
	Trip     TripRequest
	Reply    string
	Terminal bool
}

// Greeting returns the opening system utterance.
func (e *Engine) Greeting() string {
	return e.pick(greetingPool)
}

// Step consumes one user utterance and produces the next system reply.
// It is total: any string, including the empty one, yields a valid
// result. Extraction always runs first so an answer to the current
// question can also pre-fill later tiers.
func (e *Engine) Step(trip TripRequest, utterance string) StepResult {
	trip = Extract(utterance, trip)

	if trip.Destination != "" && trip.Travelers != "" && trip.Confirmed == ConfirmPending {
		switch ClassifyConfirmation(utterance) {
		case IntentYes:
			trip.Confirmed = ConfirmAccepted
			log.Info("booking accepted", "destination", trip.Destination)
			return StepResult{
				Trip:     trip,
				Reply:    fmt.Sprintf(e.pick(acceptPool), trip.Destination),
				Terminal: true,
			}
		case IntentNo:
			trip.Confirmed = ConfirmDeclined
			log.Info("booking declined")
			return StepResult{
				Trip:     trip,
				Reply:    e.pick(declinePool),
				Terminal: true,
			}
		}
		// Neither: fall through and re-derive the question, which
		// re-presents the confirmation prompt.
	}

	var reply string
	switch {
	case trip.Destination == "":
		reply = e.pick(destinationPool)
	case trip.Travelers == "":
		reply = fmt.Sprintf(e.pick(travelersPool), trip.Destination)
	case trip.Budget == "":
		reply = fmt.Sprintf(e.pick(budgetPool), trip.Destination, trip.Travelers)
	case trip.Confirmed == ConfirmPending:
		reply = fmt.Sprintf(e.pick(confirmPool), trip.Destination, trip.Travelers, trip.Budget)
	default:
		// Unreachable through the normal priority chain.
		reply = e.pick(followUpPool)
	}

	return StepResult{Trip: trip, Reply: reply}
}

// MissHeard returns a re-prompt for speech that was detected but could
// not be decoded. retries counts consecutive misses; after two gentle
// asks the phrasing turns firm.
func (e *Engine) MissHeard(retries int) string {
	if retries > 2 {
		return misheardFirm
	}
	return e.pick(misheardPool)
}

// Silence returns a re-prompt for a listening window with no speech.
func (e *Engine) Silence(retries int) string {
	if retries > 2 {
		return silenceFirm
	}
	return e.pick(silencePool)
}

func (e *Engine) pick(pool []string) string {
	return pool[e.rng.Intn(len(pool))]
}
