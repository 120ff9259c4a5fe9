package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/macrolog/backend/config"
	"github.com/pageza/macrolog/backend/internal/logger"
	"github.com/pageza/macrolog/backend/internal/testhelpers"
)

const foodDatabasePayload = `{"count":1,"page":1,"page_size":20,"products":[
	{"code":"4011","product_name":"Banana","serving_size":"1 medium (118g)",
	 "nutriments":{"energy-kcal_100g":89,"proteins_100g":1.1,"carbohydrates_100g":22.8,"fat_100g":0.3}}
]}`

func testConfig(foodURL string) *config.Config {
	return &config.Config{
		ServerHost:          "127.0.0.1",
		ServerPort:          "0",
		CORSAllowedOrigins:  []string{"http://localhost:5173"},
		JWTSecret:           "test-secret",
		FoodSearchURL:       foodURL,
		FoodSearchUserAgent: "macrolog-test",
		SearchPageSize:      config.DefaultSearchPageSize,
		SearchDebounce:      10 * time.Millisecond,
		SearchTimeout:       time.Second,
		SearchRatePerMinute: 600,
		SearchCacheTTL:      time.Minute,
		SearchUserLimit:     60,
	}
}

func call(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestServerEndToEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)
	foods := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(foodDatabasePayload))
	}))
	defer foods.Close()

	db := testhelpers.SetupSQLiteDB(t)
	srv := New(testConfig(foods.URL), db, nil, logger.Discard())
	h := srv.Handler()

	w := call(t, h, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = call(t, h, http.MethodPost, "/api/v1/auth/register", "",
		`{"name":"Lin","email":"lin@example.com","password":"long-enough-pw"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var auth struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &auth))

	w = call(t, h, http.MethodGet, "/api/v1/foods/search?q=banana", auth.Token, "")
	require.Equal(t, http.StatusOK, w.Code)
	var search struct {
		Candidates []json.RawMessage `json:"candidates"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &search))
	require.Len(t, search.Candidates, 1)

	w = call(t, h, http.MethodPost, "/api/v1/entries", auth.Token,
		`{"source":"search","candidate":`+string(search.Candidates[0])+`,"save_as_template":true}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"template_outcome":"template_saved"`)

	w = call(t, h, http.MethodGet, "/api/v1/templates", auth.Token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Banana"`)

	w = call(t, h, http.MethodGet, "/api/v1/entries", auth.Token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"calories":89`)
}

func TestServerRunStopsOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupSQLiteDB(t)
	srv := New(testConfig("http://127.0.0.1:1"), db, nil, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
