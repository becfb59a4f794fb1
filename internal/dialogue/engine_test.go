package dialogue

import (
	"math/rand"
	"strings"
	"testing"
)

func newTestEngine() *Engine {
	return NewEngine(rand.New(rand.NewSource(1)))
}

func TestEngine_FullAcceptScenario(t *testing.T) {
	e := newTestEngine()
	var trip TripRequest

	steps := []struct {
		utterance    string
		wantTerminal bool
	}{
		{"I want to go to Tokyo", false},
		{"just me", false},
		{"keep it cheap", false},
		{"yes", true},
	}

	var last StepResult
	for i, s := range steps {
		last = e.Step(trip, s.utterance)
		trip = last.Trip
		if last.Terminal != s.wantTerminal {
			t.Fatalf("step %d (%q): Terminal = %v, want %v", i, s.utterance, last.Terminal, s.wantTerminal)
		}
		if last.Reply == "" {
			t.Fatalf("step %d (%q): empty reply", i, s.utterance)
		}
	}

	if trip.Destination != "Tokyo" {
		t.Errorf("Destination = %q, want Tokyo", trip.Destination)
	}
	if trip.Travelers != "1 person (Solo)" {
		t.Errorf("Travelers = %q, want 1 person (Solo)", trip.Travelers)
	}
	if trip.Budget != BudgetFriendly {
		t.Errorf("Budget = %q, want %q", trip.Budget, BudgetFriendly)
	}
	if trip.Confirmed != ConfirmAccepted {
		t.Errorf("Confirmed = %v, want accepted", trip.Confirmed)
	}
	if !strings.Contains(last.Reply, "Tokyo") {
		t.Errorf("acceptance reply should mention the destination, got %q", last.Reply)
	}
}

func TestEngine_DeclinePath(t *testing.T) {
	e := newTestEngine()
	var trip TripRequest

	for _, u := range []string{"I want to go to Tokyo", "just me", "keep it cheap"} {
		trip = e.Step(trip, u).Trip
	}

	res := e.Step(trip, "no thanks")
	if !res.Terminal {
		t.Fatal("decline should be terminal")
	}
	if res.Trip.Confirmed != ConfirmDeclined {
		t.Fatalf("Confirmed = %v, want declined", res.Trip.Confirmed)
	}
	for _, accept := range acceptPool {
		if res.Reply == accept || strings.Contains(res.Reply, "Tokyo") {
			t.Fatalf("decline reply looks like an acceptance: %q", res.Reply)
		}
	}
}

func TestEngine_AmbiguousConfirmationReasks(t *testing.T) {
	e := newTestEngine()
	trip := TripRequest{
		Destination: "Paris",
		Travelers:   "2 people (Couple)",
		Budget:      BudgetModerate,
	}

	res := e.Step(trip, "hmm tell me about the hotels")
	if res.Terminal {
		t.Fatal("ambiguous confirmation must not terminate")
	}
	if res.Trip.Confirmed != ConfirmPending {
		t.Fatalf("Confirmed = %v, want pending", res.Trip.Confirmed)
	}
	if !strings.Contains(res.Reply, "Paris") || !strings.Contains(res.Reply, "2 people (Couple)") {
		t.Fatalf("expected a summary re-ask, got %q", res.Reply)
	}
}

func TestEngine_EmptyInputReasksCurrentTier(t *testing.T) {
	e := newTestEngine()

	res := e.Step(TripRequest{}, "")
	if res.Terminal {
		t.Fatal("empty input must not terminate")
	}
	if res.Trip != (TripRequest{}) {
		t.Fatalf("empty input changed the trip: %+v", res.Trip)
	}
	if !inPool(res.Reply, destinationPool) {
		t.Fatalf("expected a destination question, got %q", res.Reply)
	}

	trip := TripRequest{Destination: "Bali"}
	res = e.Step(trip, "")
	if res.Trip != trip {
		t.Fatalf("empty input changed the trip: %+v", res.Trip)
	}
	if !strings.Contains(res.Reply, "Bali") {
		t.Fatalf("expected a travelers question mentioning Bali, got %q", res.Reply)
	}
}

func TestEngine_ConfirmationWithoutBudget(t *testing.T) {
	// Destination and travelers alone arm the confirmation classifier:
	// a clear yes at the budget question still closes the deal.
	e := newTestEngine()
	trip := TripRequest{Destination: "Dubai", Travelers: "4 people"}

	res := e.Step(trip, "yes")
	if !res.Terminal || res.Trip.Confirmed != ConfirmAccepted {
		t.Fatalf("expected acceptance, got %+v", res)
	}
}

func TestEngine_SkipsAnsweredTiers(t *testing.T) {
	e := newTestEngine()

	res := e.Step(TripRequest{}, "luxury trip to Paris for 2 people")
	if res.Terminal {
		t.Fatal("unexpected terminal result")
	}
	// All three slots filled in one utterance: next prompt is the summary.
	if !inPoolFilled(res.Reply, confirmPool) {
		t.Fatalf("expected a confirmation summary, got %q", res.Reply)
	}
	if !strings.Contains(res.Reply, "Paris") || !strings.Contains(res.Reply, "Luxury") {
		t.Fatalf("summary should interpolate known fields, got %q", res.Reply)
	}
}

func TestEngine_RePromptEscalation(t *testing.T) {
	e := newTestEngine()

	if got := e.MissHeard(1); !inPool(got, misheardPool) {
		t.Errorf("MissHeard(1) = %q, not from the gentle pool", got)
	}
	if got := e.MissHeard(3); got != misheardFirm {
		t.Errorf("MissHeard(3) = %q, want firm prompt", got)
	}
	if got := e.Silence(2); !inPool(got, silencePool) {
		t.Errorf("Silence(2) = %q, not from the gentle pool", got)
	}
	if got := e.Silence(3); got != silenceFirm {
		t.Errorf("Silence(3) = %q, want firm prompt", got)
	}
}

func TestEngine_GreetingFromPool(t *testing.T) {
	e := newTestEngine()
	if !inPool(e.Greeting(), greetingPool) {
		t.Fatal("greeting not drawn from the greeting pool")
	}
}

func inPool(s string, pool []string) bool {
	for _, p := range pool {
		if s == p {
			return true
		}
	}
	return false
}

// inPoolFilled matches a reply against templates whose slots have been
// interpolated, using the static prefix before the first verb.
func inPoolFilled(s string, pool []string) bool {
	for _, p := range pool {
		prefix := p
		if i := strings.Index(p, "%"); i >= 0 {
			prefix = p[:i]
		}
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
