// Package session owns one conversation lifecycle: transcript, status
// flags, and the retry bookkeeping shared by every front end. The
// session performs no I/O; drivers capture input, call Submit (or the
// MissHeard/Silence helpers), and speak or render whatever comes back.
package session

import (
	log "log/slog"

	"github.com/google/uuid"

	"triptalk/internal/dialogue"
)

type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Turn is one utterance in transcript order.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// State is a snapshot of the conversation. Transcript is append-only;
// Ended flips at most once (confirmation or explicit stop).
type State struct {
	Active        bool                 `json:"active"`
	Ended         bool                 `json:"ended"`
	AwaitingInput bool                 `json:"awaitingInput"`
	Transcript    []Turn               `json:"transcript"`
	Trip          dialogue.TripRequest `json:"trip"`
}

// Session sequences turns for a single caller. It is not safe for
// concurrent use; a driver that shares one across goroutines must
// serialize access itself.
type Session struct {
	id      string
	engine  *dialogue.Engine
	state   State
	retries int
}

func New(engine *dialogue.Engine) *Session {
	return &Session{
		id:     uuid.NewString(),
		engine: engine,
	}
}

func (s *Session) ID() string { return s.id }

// Start activates the session and emits the greeting turn. Starting an
// already active or ended session is a no-op returning false.
func (s *Session) Start() (Turn, bool) {
	if s.state.Active || s.state.Ended {
		return Turn{}, false
	}

	s.state.Active = true
	s.state.AwaitingInput = true

	turn := s.appendSystem(s.engine.Greeting())
	log.Info("session started", "session", s.id)
	return turn, true
}

// Submit records the user turn, advances the engine, and records the
// reply. On a terminal step the session ends and stops awaiting input.
func (s *Session) Submit(utterance string) Turn {
	if s.state.Ended || !s.state.Active {
		return Turn{}
	}

	s.retries = 0
	s.state.Transcript = append(s.state.Transcript, Turn{Role: RoleUser, Text: utterance})
	s.state.AwaitingInput = false

	res := s.engine.Step(s.state.Trip, utterance)
	s.state.Trip = res.Trip

	turn := s.appendSystem(res.Reply)

	if res.Terminal {
		s.state.Ended = true
		s.state.Active = false
		log.Info("session ended", "session", s.id, "confirmed", res.Trip.Confirmed)
	} else {
		s.state.AwaitingInput = true
	}
	return turn
}

// MissHeard records a re-prompt for speech that could not be decoded.
// Consecutive misses escalate to a firmer phrasing, then the counter
// resets.
func (s *Session) MissHeard() Turn {
	return s.reprompt(s.engine.MissHeard)
}

// Silence records a re-prompt for a listening window with no speech.
func (s *Session) Silence() Turn {
	return s.reprompt(s.engine.Silence)
}

func (s *Session) reprompt(pick func(int) string) Turn {
	if s.state.Ended || !s.state.Active {
		return Turn{}
	}
	s.retries++
	text := pick(s.retries)
	if s.retries > 2 {
		s.retries = 0
	}
	s.state.AwaitingInput = true
	return s.appendSystem(text)
}

// Stop force-ends the session regardless of trip completeness. The
// confirmation stays undecided. Safe to call repeatedly.
func (s *Session) Stop() {
	if s.state.Ended {
		return
	}
	s.state.Ended = true
	s.state.Active = false
	s.state.AwaitingInput = false
	log.Info("session stopped", "session", s.id)
}

// Reset returns the session to its construction-time state. Resetting
// an untouched session is a no-op.
func (s *Session) Reset() {
	if !s.state.Active && !s.state.Ended && len(s.state.Transcript) == 0 {
		return
	}
	s.state = State{}
	s.retries = 0
	log.Info("session reset", "session", s.id)
}

// State returns a copy of the current state. The transcript slice is
// cloned so callers cannot mutate session internals.
func (s *Session) State() State {
	out := s.state
	out.Transcript = append([]Turn(nil), s.state.Transcript...)
	return out
}

func (s *Session) Trip() dialogue.TripRequest { return s.state.Trip }

func (s *Session) Ended() bool { return s.state.Ended }

func (s *Session) AwaitingInput() bool { return s.state.AwaitingInput }

func (s *Session) appendSystem(text string) Turn {
	turn := Turn{Role: RoleSystem, Text: text}
	s.state.Transcript = append(s.state.Transcript, turn)
	return turn
}
