// Package server is the hosted front end: the same dialogue engine as
// the microphone daemon, driven over HTTP. Text turns serve the cloud
// fallback and browser-speech clients (the browser runs its own
// recognition and posts text); audio turns accept an uploaded recording
// and transcribe it server-side.
package server

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	log "log/slog"

	"triptalk/internal/dialogue"
	"triptalk/internal/session"
	"triptalk/internal/speech"
	"triptalk/pkg/audioconv"
)

// uploads beyond this are rejected before decoding
const maxAudioBytes = 25 << 20

// feedLimit caps how much transcript history a new feed subscriber is
// sent; matches the transcript panel depth of the hosted UI.
const feedLimit = 200

type Options struct {
	// NewEngine builds the engine for each new session. nil means a
	// time-seeded engine; tests inject a fixed seed.
	NewEngine func() *dialogue.Engine

	// Transcriber handles audio turns. nil disables the audio route.
	Transcriber speech.Transcriber
}

type Server struct {
	mu       sync.RWMutex
	sessions map[string]*managedSession

	newEngine func() *dialogue.Engine
	stt       speech.Transcriber
}

// managedSession serializes all access to one session; the session
// itself is single-owner by contract.
type managedSession struct {
	mu   sync.Mutex
	sess *session.Session
	feed *feed
}

func New(opt Options) *Server {
	newEngine := opt.NewEngine
	if newEngine == nil {
		newEngine = func() *dialogue.Engine { return dialogue.NewEngine(nil) }
	}
	return &Server{
		sessions:  make(map[string]*managedSession),
		newEngine: newEngine,
		stt:       opt.Transcriber,
	}
}

// Router builds the gin handler. gin.SetMode is the caller's business.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	{
		api.POST("/sessions", s.createSession)
		api.GET("/sessions/:id", s.getSession)
		api.POST("/sessions/:id/turns", s.submitText)
		api.POST("/sessions/:id/audio", s.submitAudio)
		api.POST("/sessions/:id/stop", s.stopSession)
		api.POST("/sessions/:id/reset", s.resetSession)
		api.GET("/sessions/:id/feed", s.attachFeed)
	}
	return r
}

type turnResponse struct {
	Reply session.Turn  `json:"reply"`
	State session.State `json:"state"`
}

func (s *Server) createSession(c *gin.Context) {
	sess := session.New(s.newEngine())
	ms := &managedSession{sess: sess, feed: newFeed()}

	s.mu.Lock()
	s.sessions[sess.ID()] = ms
	s.mu.Unlock()

	ms.mu.Lock()
	greeting, _ := sess.Start()
	state := sess.State()
	ms.mu.Unlock()

	ms.feed.turn(greeting)
	ms.feed.status(state)

	log.Info("session created", "session", sess.ID())
	c.JSON(http.StatusCreated, gin.H{
		"id":    sess.ID(),
		"reply": greeting,
		"state": state,
	})
}

func (s *Server) getSession(c *gin.Context) {
	ms, ok := s.lookup(c)
	if !ok {
		return
	}
	ms.mu.Lock()
	state := ms.sess.State()
	ms.mu.Unlock()
	c.JSON(http.StatusOK, state)
}

func (s *Server) submitText(c *gin.Context) {
	ms, ok := s.lookup(c)
	if !ok {
		return
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}

	s.advance(c, ms, body.Text)
}

func (s *Server) submitAudio(c *gin.Context) {
	if s.stt == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "transcription not configured"})
		return
	}

	ms, ok := s.lookup(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing audio file"})
		return
	}
	if fh.Size > maxAudioBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "audio too large"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return
	}

	pcm, err := audioconv.Decode(data, extOf(fh.Filename), audioconv.Limits{
		MaxSamples: audioconv.TargetRate * 60,
	})
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "undecodable audio: " + err.Error()})
		return
	}

	text, err := s.stt.Transcribe(c.Request.Context(), pcm)
	switch {
	case errors.Is(err, speech.ErrNoSpeech):
		s.reprompt(c, ms, (*session.Session).Silence)
		return
	case errors.Is(err, speech.ErrUnclear):
		s.reprompt(c, ms, (*session.Session).MissHeard)
		return
	case err != nil:
		log.Error("transcription failed", "session", ms.sess.ID(), "err", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "transcription failed"})
		return
	}

	s.advance(c, ms, text)
}

func (s *Server) stopSession(c *gin.Context) {
	ms, ok := s.lookup(c)
	if !ok {
		return
	}
	ms.mu.Lock()
	ms.sess.Stop()
	state := ms.sess.State()
	ms.mu.Unlock()

	ms.feed.status(state)
	c.JSON(http.StatusOK, state)
}

func (s *Server) resetSession(c *gin.Context) {
	ms, ok := s.lookup(c)
	if !ok {
		return
	}
	ms.mu.Lock()
	ms.sess.Reset()
	greeting, _ := ms.sess.Start()
	state := ms.sess.State()
	ms.mu.Unlock()

	ms.feed.turn(greeting)
	ms.feed.status(state)

	c.JSON(http.StatusOK, gin.H{
		"reply": greeting,
		"state": state,
	})
}

// advance runs one user turn and replies with the resulting state.
func (s *Server) advance(c *gin.Context, ms *managedSession, text string) {
	ms.mu.Lock()
	if ms.sess.Ended() {
		state := ms.sess.State()
		ms.mu.Unlock()
		c.JSON(http.StatusConflict, gin.H{"error": "session ended", "state": state})
		return
	}
	reply := ms.sess.Submit(text)
	state := ms.sess.State()
	ms.mu.Unlock()

	ms.feed.turn(session.Turn{Role: session.RoleUser, Text: text})
	ms.feed.speaking()
	ms.feed.turn(reply)
	ms.feed.status(state)

	c.JSON(http.StatusOK, turnResponse{Reply: reply, State: state})
}

// reprompt emits a silence/misheard re-ask without a user turn.
func (s *Server) reprompt(c *gin.Context, ms *managedSession, pick func(*session.Session) session.Turn) {
	ms.mu.Lock()
	reply := pick(ms.sess)
	state := ms.sess.State()
	ms.mu.Unlock()

	ms.feed.speaking()
	ms.feed.turn(reply)
	ms.feed.status(state)

	c.JSON(http.StatusOK, turnResponse{Reply: reply, State: state})
}

func (s *Server) lookup(c *gin.Context) (*managedSession, bool) {
	s.mu.RLock()
	ms, ok := s.sessions[c.Param("id")]
	s.mu.RUnlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
	}
	return ms, ok
}

func extOf(name string) string {
	return strings.ToLower(filepath.Ext(name))
}
