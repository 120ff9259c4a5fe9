package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/pageza/macrolog/backend/internal/logger"
	"github.com/pageza/macrolog/backend/internal/model"
	"github.com/pageza/macrolog/backend/internal/service"
	"github.com/pageza/macrolog/backend/internal/types"
)

const (
	liveWriteWait  = 10 * time.Second
	livePongWait   = 60 * time.Second
	livePingPeriod = 25 * time.Second
	liveMaxMessage = 4096
)

// FoodHandler serves remote food search, both one-shot and live
type FoodHandler struct {
	searcher  service.Searcher
	scheduler service.SchedulerConfig
	upgrader  websocket.Upgrader
	log       *logger.Logger
}

func NewFoodHandler(searcher service.Searcher, cfg service.SchedulerConfig, allowedOrigins []string, log *logger.Logger) *FoodHandler {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}
	return &FoodHandler{
		searcher:  searcher,
		scheduler: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := origins[origin]
				return ok
			},
		},
		log: log.WithComponent("foods"),
	}
}

// RegisterRoutes expects router to carry auth; limit guards the one-shot search
func (h *FoodHandler) RegisterRoutes(router *gin.RouterGroup, limit gin.HandlerFunc) {
	foods := router.Group("/foods")
	{
		foods.GET("/search", limit, h.Search)
		foods.GET("/search/live", h.LiveSearch)
	}
}

// Search answers one query. Search is best-effort: failures produce an
// empty candidate list, never an error status.
func (h *FoodHandler) Search(c *gin.Context) {
	query, ok := service.NormalizeQuery(c.Query("q"))
	if !ok {
		c.JSON(http.StatusOK, service.SearchResult{Query: query, Candidates: []model.MacroRecord{}})
		return
	}

	candidates, err := h.searcher.Search(c.Request.Context(), query)
	if err != nil {
		h.log.Warn("food search unavailable", "query", query, "error", err)
		candidates = nil
	}
	if candidates == nil {
		candidates = []model.MacroRecord{}
	}

	c.JSON(http.StatusOK, service.SearchResult{Query: query, Candidates: candidates})
}

// LiveSearch upgrades to a websocket and runs one SearchScheduler for the
// connection. Each client frame is a query change; the server pushes a
// SearchResult whenever a cycle settles.
func (h *FoodHandler) LiveSearch(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already written the error response
		h.log.Debug("websocket upgrade failed", "error", err)
		return
	}

	session := &liveSession{conn: conn, done: make(chan struct{}), log: h.log.With("owner_id", owner)}
	scheduler := service.NewSearchScheduler(h.searcher, h.scheduler, session.send, h.log)
	defer func() {
		scheduler.Close()
		session.close()
	}()

	go session.keepAlive()

	conn.SetReadLimit(liveMaxMessage)
	conn.SetReadDeadline(time.Now().Add(livePongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(livePongWait))
	})

	for {
		var msg types.LiveSearchMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				session.log.Debug("live search connection closed", "error", err)
			}
			return
		}
		scheduler.OnQueryChange(msg.Query)
	}
}

// liveSession serializes writes to one websocket connection
type liveSession struct {
	conn *websocket.Conn
	mu   sync.Mutex
	done chan struct{}
	once sync.Once
	log  *logger.Logger
}

func (s *liveSession) send(res service.SearchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
	if err := s.conn.WriteJSON(res); err != nil {
		s.log.Debug("live search write failed", "error", err)
	}
}

func (s *liveSession) keepAlive() {
	ticker := time.NewTicker(livePingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteWait))
			s.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (s *liveSession) close() {
	s.once.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}
