package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bananaPayload = `{
	"count": 2,
	"page": 1,
	"page_size": 20,
	"products": [
		{
			"code": "4011",
			"product_name": "Banana",
			"nutriments": {"energy-kcal_100g": 89, "proteins_100g": 1.1, "carbohydrates_100g": 22.8, "fat_100g": 0.3},
			"serving_size": "1 medium (118g)"
		},
		{"product_name": "Banana flavour water", "nutriments": {"energy-kcal_100g": 0}}
	]
}`

func newTestSearchClient(url string, timeout time.Duration) *FoodSearchClient {
	return NewFoodSearchClient(FoodSearchConfig{
		BaseURL:   url,
		UserAgent: "macrolog-test/1.0",
		PageSize:  20,
		Timeout:   timeout,
	}, nil)
}

func TestFoodSearchClientSearch(t *testing.T) {
	var gotQuery, gotPageSize, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_terms")
		gotPageSize = r.URL.Query().Get("page_size")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(bananaPayload))
	}))
	defer srv.Close()

	client := newTestSearchClient(srv.URL, time.Second)
	records, err := client.Search(context.Background(), "  banana ")

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Banana", records[0].Name)
	assert.Equal(t, 89, records[0].Calories)
	assert.Equal(t, "4011", records[0].SourceID)
	assert.Equal(t, "banana", gotQuery)
	assert.Equal(t, "20", gotPageSize)
	assert.Equal(t, "macrolog-test/1.0", gotUA)
}

func TestFoodSearchClientShortQuery(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	client := newTestSearchClient(srv.URL, time.Second)
	for _, q := range []string{"", " ", "a", " b  "} {
		records, err := client.Search(context.Background(), q)
		require.NoError(t, err)
		assert.Empty(t, records)
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestFoodSearchClientFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"products": [`))
			},
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := newTestSearchClient(srv.URL, 100*time.Millisecond)
			records, err := client.Search(context.Background(), "banana")

			assert.Nil(t, records)
			assert.True(t, errors.Is(err, ErrSearchUnavailable), "got %v", err)
		})
	}
}

func TestFoodSearchClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := newTestSearchClient(url, time.Second)
	_, err := client.Search(context.Background(), "banana")
	assert.ErrorIs(t, err, ErrSearchUnavailable)
}

func TestFoodSearchClientRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(bananaPayload))
	}))
	defer srv.Close()

	client := NewFoodSearchClient(FoodSearchConfig{
		BaseURL:       srv.URL,
		PageSize:      20,
		Timeout:       50 * time.Millisecond,
		RatePerMinute: 1,
	}, nil)

	_, err := client.Search(context.Background(), "banana")
	require.NoError(t, err)

	// The bucket is empty and the next token is a minute away.
	_, err = client.Search(context.Background(), "banana")
	assert.ErrorIs(t, err, ErrSearchUnavailable)
}
