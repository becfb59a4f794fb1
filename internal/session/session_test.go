package session

import (
	"math/rand"
	"testing"

	"triptalk/internal/dialogue"
)

func newTestSession() *Session {
	return New(dialogue.NewEngine(rand.New(rand.NewSource(1))))
}

func TestSession_StartEmitsGreeting(t *testing.T) {
	s := newTestSession()

	turn, ok := s.Start()
	if !ok {
		t.Fatal("Start on a fresh session must succeed")
	}
	if turn.Role != RoleSystem || turn.Text == "" {
		t.Fatalf("unexpected greeting turn: %+v", turn)
	}

	st := s.State()
	if !st.Active || st.Ended || !st.AwaitingInput {
		t.Fatalf("unexpected state after start: %+v", st)
	}
	if len(st.Transcript) != 1 {
		t.Fatalf("transcript length = %d, want 1", len(st.Transcript))
	}

	if _, ok := s.Start(); ok {
		t.Fatal("second Start must be a no-op")
	}
}

func TestSession_FullConversation(t *testing.T) {
	s := newTestSession()
	s.Start()

	inputs := []string{"I want to go to Tokyo", "just me", "keep it cheap", "yes"}
	for _, in := range inputs {
		turn := s.Submit(in)
		if turn.Role != RoleSystem || turn.Text == "" {
			t.Fatalf("Submit(%q) returned bad turn: %+v", in, turn)
		}
	}

	st := s.State()
	if !st.Ended || st.Active || st.AwaitingInput {
		t.Fatalf("unexpected terminal state: %+v", st)
	}
	if st.Trip.Confirmed != dialogue.ConfirmAccepted {
		t.Fatalf("Confirmed = %v, want accepted", st.Trip.Confirmed)
	}
	// greeting + 4 user/system pairs
	if len(st.Transcript) != 9 {
		t.Fatalf("transcript length = %d, want 9", len(st.Transcript))
	}

	// roles must alternate system/user in display order after the greeting
	for i, turn := range st.Transcript {
		wantUser := i%2 == 1
		if wantUser && turn.Role != RoleUser || !wantUser && turn.Role != RoleSystem {
			t.Fatalf("transcript[%d] role = %q", i, turn.Role)
		}
	}

	if turn := s.Submit("hello again"); turn != (Turn{}) {
		t.Fatalf("Submit after end must be a no-op, got %+v", turn)
	}
}

func TestSession_StopAtAnyState(t *testing.T) {
	s := newTestSession()
	s.Stop()
	st := s.State()
	if !st.Ended || st.Active {
		t.Fatalf("Stop on fresh session: %+v", st)
	}
	if st.Trip.Confirmed != dialogue.ConfirmPending {
		t.Fatalf("Stop must leave confirmation undecided, got %v", st.Trip.Confirmed)
	}

	s = newTestSession()
	s.Start()
	s.Submit("Paris please")
	s.Stop()
	s.Stop() // idempotent
	st = s.State()
	if !st.Ended || st.Active || st.AwaitingInput {
		t.Fatalf("Stop mid-conversation: %+v", st)
	}
	if st.Trip.Destination != "Paris" {
		t.Fatalf("Stop must not discard collected fields, got %+v", st.Trip)
	}
}

func TestSession_ResetIdempotent(t *testing.T) {
	s := newTestSession()
	s.Reset() // initial state: no-op

	s.Start()
	s.Submit("off to Bali")
	s.Reset()

	st := s.State()
	if st.Active || st.Ended || st.AwaitingInput || len(st.Transcript) != 0 {
		t.Fatalf("state after reset: %+v", st)
	}
	if st.Trip != (dialogue.TripRequest{}) {
		t.Fatalf("trip after reset: %+v", st.Trip)
	}

	// a reset session can run a fresh conversation
	if _, ok := s.Start(); !ok {
		t.Fatal("Start after Reset must succeed")
	}
}

func TestSession_RepromptEscalation(t *testing.T) {
	s := newTestSession()
	s.Start()

	first := s.MissHeard()
	second := s.MissHeard()
	third := s.MissHeard()
	if first.Text == "" || second.Text == "" {
		t.Fatal("gentle re-prompts must not be empty")
	}
	if third.Text != "Please speak louder and clearer. I'm listening!" {
		t.Fatalf("third consecutive miss should be firm, got %q", third.Text)
	}

	// counter reset: the next miss is gentle again
	fourth := s.MissHeard()
	if fourth.Text == third.Text {
		t.Fatalf("counter should reset after the firm prompt, got %q", fourth.Text)
	}

	// a successful turn also resets the counter
	s.Submit("Tokyo")
	s.Silence()
	s.Silence()
	firm := s.Silence()
	if firm.Text != "Still here! Speak clearly when ready!" {
		t.Fatalf("third consecutive silence should be firm, got %q", firm.Text)
	}

	st := s.State()
	if !st.AwaitingInput {
		t.Fatal("re-prompts must keep the session awaiting input")
	}
}
