package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/macrolog/backend/internal/logger"
	"github.com/pageza/macrolog/backend/internal/middleware"
	"github.com/pageza/macrolog/backend/internal/model"
	"github.com/pageza/macrolog/backend/internal/service"
	"github.com/pageza/macrolog/backend/internal/testhelpers"
)

// stubSearcher answers from a table and can be made to fail
type stubSearcher struct {
	mu      sync.Mutex
	results map[string][]model.MacroRecord
	err     error
	calls   []string
}

func (s *stubSearcher) Search(ctx context.Context, query string) ([]model.MacroRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, query)
	if s.err != nil {
		return nil, s.err
	}
	return s.results[query], nil
}

func (s *stubSearcher) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

var banana = model.MacroRecord{
	Name:        "Banana",
	Macros:      model.Macros{Calories: 89, Protein: 1.1, Carbs: 22.8, Fat: 0.3},
	ServingSize: "1 medium (118g)",
}

type testEnv struct {
	router   *gin.Engine
	db       *gorm.DB
	auth     *service.AuthService
	searcher *stubSearcher
	token    string
	ownerID  uuid.UUID
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupSQLiteDB(t)
	auth := service.NewAuthService(db, "test-secret").WithBcryptCost(bcrypt.MinCost)
	searcher := &stubSearcher{results: map[string][]model.MacroRecord{"banana": {banana}}}
	templates := service.NewTemplateService(db, nil)
	entries := service.NewEntryService(db)
	log := logger.Discard()

	router := gin.New()
	router.Use(middleware.ErrorHandler(log))
	v1 := router.Group("/api/v1")
	v1.GET("/health", HealthCheck(db))
	NewAuthHandler(auth).RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(auth))
	NewFoodHandler(searcher, service.SchedulerConfig{Debounce: 50 * time.Millisecond, Timeout: time.Second}, nil, log).
		RegisterRoutes(protected, middleware.NewSearchRateLimiter(nil, 10).RateLimitMiddleware())
	NewTemplateHandler(templates).RegisterRoutes(protected)
	NewEntryHandler(service.NewEntryComposer(entries, templates, log), entries, templates, log).RegisterRoutes(protected)

	user := testhelpers.CreateTestUser(t, db)
	token, err := auth.GenerateToken(user)
	require.NoError(t, err)

	return &testEnv{
		router:   router,
		db:       db,
		auth:     auth,
		searcher: searcher,
		token:    token,
		ownerID:  user.ID,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func asAnonymous(e *testEnv) *testEnv {
	anon := *e
	anon.token = ""
	return &anon
}
