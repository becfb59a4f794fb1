package server

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "log/slog"

	"triptalk/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the hosted UI is served from elsewhere during development
	CheckOrigin: func(*http.Request) bool { return true },
}

// Event is one frame on the live feed. Kind is "turn" for transcript
// entries and "status" for lifecycle changes.
type Event struct {
	Kind    string       `json:"kind"`
	Role    session.Role `json:"role,omitempty"`
	Content string       `json:"content,omitempty"`
	Status  string       `json:"status,omitempty"`
}

// feed fans session events out to websocket subscribers. Slow or dead
// connections are dropped on the first failed write.
type feed struct {
	mu      sync.Mutex
	conns   map[*websocket.Conn]struct{}
	backlog []Event
}

func newFeed() *feed {
	return &feed{conns: make(map[*websocket.Conn]struct{})}
}

func (f *feed) turn(t session.Turn) {
	if t == (session.Turn{}) {
		return
	}
	f.broadcast(Event{Kind: "turn", Role: t.Role, Content: t.Text})
}

func (f *feed) status(st session.State) {
	f.broadcast(Event{Kind: "status", Status: statusOf(st)})
}

// speaking marks the window between a received user turn and the reply
// frame. State snapshots are taken after the engine has stepped, when
// the session already awaits input again, so this frame is emitted
// explicitly rather than derived from a snapshot.
func (f *feed) speaking() {
	f.broadcast(Event{Kind: "status", Status: "speaking"})
}

func statusOf(st session.State) string {
	switch {
	case st.Ended:
		return "ended"
	case st.AwaitingInput:
		return "listening"
	default:
		return "idle"
	}
}

func (f *feed) broadcast(ev Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.backlog = append(f.backlog, ev)
	if len(f.backlog) > feedLimit {
		f.backlog = f.backlog[len(f.backlog)-feedLimit:]
	}

	for conn := range f.conns {
		if err := conn.WriteJSON(ev); err != nil {
			log.Debug("feed write failed, dropping subscriber", "err", err)
			conn.Close()
			delete(f.conns, conn)
		}
	}
}

func (f *feed) attach(conn *websocket.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, ev := range f.backlog {
		if err := conn.WriteJSON(ev); err != nil {
			conn.Close()
			return
		}
	}
	f.conns[conn] = struct{}{}
}

func (s *Server) attachFeed(c *gin.Context) {
	ms, ok := s.lookup(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "err", err)
		return
	}

	ms.feed.attach(conn)

	// Reads are discarded; the socket exists so clients get pushes and
	// so closure is noticed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				ms.feed.mu.Lock()
				delete(ms.feed.conns, conn)
				ms.feed.mu.Unlock()
				conn.Close()
				return
			}
		}
	}()
}
