package session

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/bindassticks/storefront/internal/cart"
	"github.com/bindassticks/storefront/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, id string) (Snapshot, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Snapshot), args.Error(1)
}

func (m *mockStore) Set(ctx context.Context, id string, snap Snapshot, ttl time.Duration) error {
	return m.Called(ctx, id, snap, ttl).Error(0)
}

func (m *mockStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func TestManager_LoadSaveDestroy(t *testing.T) {
	store := NewMemoryStore(time.Hour, 0)
	defer store.Close()
	m := NewManager(store, time.Hour, discardLogger())
	ctx := context.Background()

	s, err := m.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 0, s.Cart.TotalItems())

	s.Cart.Add(cart.Product{ID: "p1", Price: 100})
	require.NoError(t, m.Save(ctx, s))

	again, err := m.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Cart.TotalItems())

	require.NoError(t, m.Destroy(ctx, "sess-1"))
	fresh, err := m.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 0, fresh.Cart.TotalItems())
}

func TestManager_LoadStoreFailure(t *testing.T) {
	store := new(mockStore)
	store.On("Get", mock.Anything, "sess-1").Return(Snapshot{}, errors.New("connection reset"))
	m := NewManager(store, time.Hour, discardLogger())

	_, err := m.Load(context.Background(), "sess-1")

	require.Error(t, err)
	store.AssertExpectations(t)
}

func TestManager_SaveUsesTTL(t *testing.T) {
	store := new(mockStore)
	store.On("Set", mock.Anything, "sess-1", mock.AnythingOfType("session.Snapshot"), 42*time.Minute).Return(nil)
	m := NewManager(store, 42*time.Minute, discardLogger())

	err := m.Save(context.Background(), New("sess-1"))

	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(time.Hour, 0)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "short", Snapshot{}, 10*time.Millisecond))
	require.NoError(t, store.Set(ctx, "long", Snapshot{}, time.Hour))

	time.Sleep(30 * time.Millisecond)

	_, err := store.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = store.Get(ctx, "long")
	assert.NoError(t, err)
}

func TestMiddleware(t *testing.T) {
	store := NewMemoryStore(time.Hour, 0)
	defer store.Close()
	m := NewManager(store, time.Hour, discardLogger())
	opts := CookieOptions{Name: "sid", SameSite: http.SameSiteLaxMode}

	var seen *Session
	handler := Middleware(m, opts, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := FromContext(r.Context())
		require.NoError(t, err)
		seen = s
		s.Cart.Add(cart.Product{ID: "p1", Price: 1})
		require.NoError(t, m.Save(r.Context(), s))
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("new shopper gets a cookie", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		cookies := rr.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "sid", cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
		_, err := uuid.Parse(cookies[0].Value)
		assert.NoError(t, err)
		assert.Equal(t, cookies[0].Value, seen.ID)
	})

	t.Run("returning shopper keeps the session", func(t *testing.T) {
		id := uuid.NewString()
		for range 2 {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: "sid", Value: id})
			handler.ServeHTTP(httptest.NewRecorder(), req)
		}

		assert.Equal(t, id, seen.ID)
		assert.Equal(t, 2, seen.Cart.TotalItems())
	})

	t.Run("malformed cookie starts over", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: "../../etc/passwd"})
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		assert.NotEqual(t, "../../etc/passwd", seen.ID)
		assert.Equal(t, 1, seen.Cart.TotalItems())
	})
}

func TestMiddleware_StoreUnavailable(t *testing.T) {
	store := new(mockStore)
	store.On("Get", mock.Anything, mock.Anything).Return(Snapshot{}, errors.New("redis down"))
	m := NewManager(store, time.Hour, discardLogger())
	called := false
	handler := Middleware(m, CookieOptions{Name: "sid"}, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestManager_LockSerializesSameID(t *testing.T) {
	store := NewMemoryStore(time.Hour, 0)
	defer store.Close()
	m := NewManager(store, time.Hour, discardLogger())
	ctx := context.Background()

	unlock, err := m.Lock(ctx, "sess-1")
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		release, err := m.Lock(ctx, "sess-1")
		if err == nil {
			close(acquired)
			release()
		}
	}()

	otherUnlock, err := m.Lock(ctx, "sess-2")
	require.NoError(t, err, "a different session must not wait")
	otherUnlock()

	select {
	case <-acquired:
		t.Fatal("second caller acquired a held lock")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second caller never acquired the released lock")
	}

	assert.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return len(m.locks) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestManager_LockHonoursContext(t *testing.T) {
	store := NewMemoryStore(time.Hour, 0)
	defer store.Close()
	m := NewManager(store, time.Hour, discardLogger())
	unlock, err := m.Lock(context.Background(), "sess-1")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = m.Lock(ctx, "sess-1")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	m.mu.Lock()
	assert.Equal(t, 1, m.locks["sess-1"].refs)
	m.mu.Unlock()
}

func TestMiddleware_ConcurrentRequestsKeepEveryUpdate(t *testing.T) {
	store := NewMemoryStore(time.Hour, 0)
	defer store.Close()
	m := NewManager(store, time.Hour, discardLogger())
	handler := Middleware(m, CookieOptions{Name: "sid"}, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, _ := FromContext(r.Context())
		s.Cart.Add(cart.Product{ID: "p1", Price: 1})
		_ = m.Save(r.Context(), s)
		w.WriteHeader(http.StatusNoContent)
	}))
	id := uuid.NewString()

	const n = 500
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req.AddCookie(&http.Cookie{Name: "sid", Value: id})
			handler.ServeHTTP(httptest.NewRecorder(), req)
		}()
	}
	wg.Wait()

	s, err := m.Load(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, n, s.Cart.TotalItems())
}

func TestDestroyHandler(t *testing.T) {
	store := NewMemoryStore(time.Hour, 0)
	defer store.Close()
	m := NewManager(store, time.Hour, discardLogger())
	opts := CookieOptions{Name: "sid"}
	ctx := context.Background()
	id := uuid.NewString()

	s := New(id)
	s.Cart.Add(cart.Product{ID: "p1", Price: 1})
	require.NoError(t, m.Save(ctx, s))

	t.Run("removes the session and expires the cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/", nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: id})
		rr := httptest.NewRecorder()

		DestroyHandler(m, opts, discardLogger()).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		cookies := rr.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, -1, cookies[0].MaxAge)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("no cookie is still a success", func(t *testing.T) {
		rr := httptest.NewRecorder()
		DestroyHandler(m, opts, discardLogger()).ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/", nil))
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		failing := new(mockStore)
		failing.On("Delete", mock.Anything, id).Return(errors.New("redis down"))
		req := httptest.NewRequest(http.MethodDelete, "/", nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: id})
		rr := httptest.NewRecorder()

		DestroyHandler(NewManager(failing, time.Hour, discardLogger()), opts, discardLogger()).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		failing.AssertExpectations(t)
	})
}

func TestMiddleware_LogsCarrySessionID(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(logger.NewContextHandler(slog.NewJSONHandler(&buf, nil)))
	store := NewMemoryStore(time.Hour, 0)
	defer store.Close()
	m := NewManager(store, time.Hour, discardLogger())
	id := uuid.NewString()
	handler := Middleware(m, CookieOptions{Name: "sid"}, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.InfoContext(r.Context(), "handled")
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: id})

	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, buf.String(), `"session_id":"`+id+`"`)
}
