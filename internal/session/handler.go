package session

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"rickdex/internal/browse"
)

const ctxSessionKey = "session"

const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // OK for demo; restrict in production
	},
}

type Handler struct {
	Registry *Registry
	Tokens   TokenService
	Details  browse.CharacterFetcher
}

func NewHandler(registry *Registry, tokens TokenService, details browse.CharacterFetcher) *Handler {
	return &Handler{Registry: registry, Tokens: tokens, Details: details}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.create)
	rg.DELETE("", h.RequireSession(), h.remove)
	rg.GET("/state", h.RequireSession(), h.state)
	rg.GET("/ws", h.RequireSession(), h.serveWS)
}

func (h *Handler) create(c *gin.Context) {
	s := h.Registry.Create()
	token, exp, err := h.Tokens.Sign(s.ID)
	if err != nil {
		h.Registry.Remove(s.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"session_id": s.ID,
		"token":      token,
		"expires_at": exp.UTC(),
	})
}

func (h *Handler) remove(c *gin.Context) {
	s := MustGetSession(c)
	h.Registry.Remove(s.ID)
	c.JSON(http.StatusOK, gin.H{"status": "closed", "session_id": s.ID})
}

func (h *Handler) state(c *gin.Context) {
	s := MustGetSession(c)
	s.Touch(time.Now())
	c.JSON(http.StatusOK, NewStateFrame(s.Controller.State()))
}

// RequireSession resolves the bearer token (header, or ?token= for
// WebSocket clients that cannot set headers) to a live session.
func (h *Handler) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Query("token")
		if hdr := c.GetHeader("Authorization"); strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
			raw = strings.TrimSpace(hdr[len("Bearer "):])
		}
		if raw == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session token"})
			c.Abort()
			return
		}

		claims, err := h.Tokens.Parse(raw)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		s, ok := h.Registry.Get(claims.SessionID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			c.Abort()
			return
		}

		c.Set(ctxSessionKey, s)
		c.Next()
	}
}

func MustGetSession(c *gin.Context) *Session {
	v, ok := c.Get(ctxSessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*Session)
	return s
}

// wsConn serializes writes; gorilla allows one concurrent writer.
type wsConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (w *wsConn) writeJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return w.ws.WriteJSON(v)
}

func (h *Handler) serveWS(c *gin.Context) {
	s := MustGetSession(c)
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	conn := &wsConn{ws: ws}
	defer ws.Close()

	h.Registry.attach(s)
	defer h.Registry.detach(s)
	log.Printf("[session] %s: client connected", s.ID)

	ctx, cancel := context.WithCancel(context.Background())
	details := &detailLoader{
		fetcher: h.Details,
		send:    func(f DetailFrame) { _ = conn.writeJSON(f) },
	}
	defer func() {
		cancel()
		details.wait()
		log.Printf("[session] %s: client disconnected", s.ID)
	}()

	unsubscribe := s.Controller.Subscribe(func(st browse.State) {
		_ = conn.writeJSON(NewStateFrame(st))
	})
	defer unsubscribe()

	if err := conn.writeJSON(NewStateFrame(s.Controller.State())); err != nil {
		return
	}

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		s.Touch(time.Now())

		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			_ = conn.writeJSON(ErrorFrame{Type: "error", Error: "invalid json"})
			continue
		}
		if msg := h.dispatch(ctx, s, cmd, details); msg != "" {
			_ = conn.writeJSON(ErrorFrame{Type: "error", Error: msg})
		}
	}
}

// dispatch applies one client command and returns a non-empty message when
// the command was rejected.
func (h *Handler) dispatch(ctx context.Context, s *Session, cmd Command, details *detailLoader) string {
	ctrl := s.Controller
	switch cmd.Type {
	case "search":
		ctrl.SetSearchText(cmd.Text)
	case "page":
		if !ctrl.GoToPage(cmd.Page) {
			return "page out of range"
		}
	case "refresh":
		ctrl.Refresh()
	case "select":
		if !ctrl.Select(cmd.ID) {
			return "character not in current results"
		}
		if h.Details != nil {
			details.start(ctx, cmd.ID)
		}
	default:
		return "unknown command type"
	}
	return ""
}

// detailLoader runs at most one live detail load per connection. Starting a
// new one cancels the previous load and silences its remaining frames.
type detailLoader struct {
	fetcher browse.CharacterFetcher
	send    func(DetailFrame)

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func (l *detailLoader) start(parent context.Context, id int) {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	gen := l.gen
	ctx, cancel := context.WithCancel(parent)
	l.cancel = cancel
	l.mu.Unlock()

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer cancel()
		browse.LoadDetail(ctx, l.fetcher, id, func(d browse.Detail) {
			l.mu.Lock()
			defer l.mu.Unlock()
			if gen != l.gen {
				return
			}
			l.send(NewDetailFrame(d))
		})
	}()
}

func (l *detailLoader) wait() {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.mu.Unlock()
	l.wg.Wait()
}
