package idempotency

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheusmosca/sales-orders/internal/platform/auth"
	"github.com/matheusmosca/sales-orders/internal/sales"
)

type memoryStore struct {
	mu      sync.Mutex
	records map[string]Record
	err     error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: map[string]Record{}}
}

func (s *memoryStore) Begin(_ context.Context, key string) (*Record, bool, error) {
	if s.err != nil {
		return nil, false, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.records[key]; ok {
		return &r, false, nil
	}
	s.records[key] = Record{State: StatePending}
	return nil, true, nil
}

func (s *memoryStore) Complete(_ context.Context, key string, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record.State = StateDone
	s.records[key] = record
	return nil
}

func (s *memoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

func (s *memoryStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func setupRouter(store Store, status *int, calls *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		auth.SetActor(c, sales.Actor{SellerID: 1020, Role: sales.RoleSeller})
		c.Next()
	})
	router.POST("/api/orders", Middleware(store), func(c *gin.Context) {
		*calls++
		c.JSON(*status, gin.H{"call": *calls})
	})
	return router
}

func post(router *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
	if key != "" {
		req.Header.Set(Header, key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestMiddleware(t *testing.T) {
	t.Run("replays the first response", func(t *testing.T) {
		// Arrange
		status, calls := http.StatusCreated, 0
		router := setupRouter(newMemoryStore(), &status, &calls)

		// Act
		first := post(router, "abc")
		second := post(router, "abc")

		// Assert
		assert.Equal(t, 1, calls)
		assert.Equal(t, http.StatusCreated, second.Code)
		assert.JSONEq(t, first.Body.String(), second.Body.String())
		assert.Equal(t, "true", second.Header().Get(ReplayHeader))
		assert.Empty(t, first.Header().Get(ReplayHeader))
	})

	t.Run("different keys run independently", func(t *testing.T) {
		status, calls := http.StatusCreated, 0
		router := setupRouter(newMemoryStore(), &status, &calls)

		post(router, "a")
		post(router, "b")

		assert.Equal(t, 2, calls)
	})

	t.Run("without header every request runs", func(t *testing.T) {
		status, calls := http.StatusCreated, 0
		store := newMemoryStore()
		router := setupRouter(store, &status, &calls)

		post(router, "")
		post(router, "")

		assert.Equal(t, 2, calls)
		assert.Equal(t, 0, store.len())
	})

	t.Run("client errors are replayed too", func(t *testing.T) {
		status, calls := http.StatusConflict, 0
		router := setupRouter(newMemoryStore(), &status, &calls)

		post(router, "k")
		second := post(router, "k")

		assert.Equal(t, 1, calls)
		assert.Equal(t, http.StatusConflict, second.Code)
	})

	t.Run("server errors release the key", func(t *testing.T) {
		status, calls := http.StatusInternalServerError, 0
		store := newMemoryStore()
		router := setupRouter(store, &status, &calls)

		post(router, "k")
		status = http.StatusCreated
		second := post(router, "k")

		assert.Equal(t, 2, calls)
		assert.Equal(t, http.StatusCreated, second.Code)
	})

	t.Run("duplicate in flight is a conflict", func(t *testing.T) {
		status, calls := http.StatusCreated, 0
		store := newMemoryStore()
		store.records["idem:1020:/api/orders:k"] = Record{State: StatePending}
		router := setupRouter(store, &status, &calls)

		w := post(router, "k")

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), string(sales.KindConflict))
		assert.Equal(t, 0, calls)
	})

	t.Run("store failure does not block the request", func(t *testing.T) {
		status, calls := http.StatusCreated, 0
		store := newMemoryStore()
		store.err = errors.New("connection refused")
		router := setupRouter(store, &status, &calls)

		w := post(router, "k")

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 1, calls)
	})
}
