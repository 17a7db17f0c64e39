package middleware

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/tillpoint/tillpoint-backend/pkg/logger"
)

type fakeStore struct {
	mu      sync.Mutex
	entries map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: map[string]string{}}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.entries[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[key]; ok {
		return false, nil
	}
	f.entries[key] = fmt.Sprint(value)
	return true, nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return "tillpoint:idempotency:" + scope + ":" + id
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.entries, key)
	}
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func checkoutHandler(hits *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		*hits++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"order_number":"ORD-%04d"}`, *hits)
	})
}

func postCheckout(handler http.Handler, key, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	if key != "" {
		r.Header.Set("Idempotency-Key", key)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	return w
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	hits := 0
	handler := Idempotency(newFakeStore(), testLogger(), time.Hour)(checkoutHandler(&hits))

	first := postCheckout(handler, "key-1", `{"items":[]}`)
	second := postCheckout(handler, "key-1", `{"items":[]}`)

	if hits != 1 {
		t.Fatalf("handler hits = %d, want 1", hits)
	}
	if first.Code != http.StatusCreated || second.Code != http.StatusCreated {
		t.Fatalf("status = %d / %d", first.Code, second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("bodies differ: %q vs %q", first.Body.String(), second.Body.String())
	}
	if got := second.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("content type = %q", got)
	}
}

func TestIdempotencyRejectsReusedKeyWithDifferentBody(t *testing.T) {
	hits := 0
	handler := Idempotency(newFakeStore(), testLogger(), time.Hour)(checkoutHandler(&hits))

	postCheckout(handler, "key-1", `{"items":[1]}`)
	conflict := postCheckout(handler, "key-1", `{"items":[2]}`)

	if hits != 1 {
		t.Fatalf("handler hits = %d, want 1", hits)
	}
	if conflict.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", conflict.Code, http.StatusConflict)
	}
}

func TestIdempotencyRequiresHeader(t *testing.T) {
	hits := 0
	handler := Idempotency(newFakeStore(), testLogger(), time.Hour)(checkoutHandler(&hits))

	resp := postCheckout(handler, "", `{"items":[]}`)
	if hits != 0 {
		t.Fatalf("handler hits = %d, want 0", hits)
	}
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.Code, http.StatusBadRequest)
	}
}

func TestIdempotencyDistinctKeysRunSeparately(t *testing.T) {
	hits := 0
	handler := Idempotency(newFakeStore(), testLogger(), time.Hour)(checkoutHandler(&hits))

	postCheckout(handler, "key-1", `{"items":[]}`)
	postCheckout(handler, "key-2", `{"items":[]}`)

	if hits != 2 {
		t.Fatalf("handler hits = %d, want 2", hits)
	}
}

// Mounts the middleware on a subrouter exactly the way the service router
// does, so the rules are exercised against chi's mid-routing state rather
// than a bare handler.
func TestIdempotencyEngagesInsideSubrouter(t *testing.T) {
	hits := 0
	store := newFakeStore()

	root := chi.NewRouter()
	root.Route("/api/v1", func(r chi.Router) {
		r.Use(Idempotency(store, testLogger(), time.Hour))
		r.Post("/checkout", func(w http.ResponseWriter, _ *http.Request) {
			hits++
			w.WriteHeader(http.StatusCreated)
			fmt.Fprintf(w, `{"order_number":"ORD-%04d"}`, hits)
		})
		r.Get("/products", func(w http.ResponseWriter, _ *http.Request) {
			hits++
			w.WriteHeader(http.StatusOK)
		})
	})

	noKey := postCheckout(root, "", `{"items":[]}`)
	if noKey.Code != http.StatusBadRequest {
		t.Fatalf("missing header status = %d, want %d", noKey.Code, http.StatusBadRequest)
	}
	if hits != 0 {
		t.Fatalf("handler hits = %d, want 0 without a key", hits)
	}

	first := postCheckout(root, "key-1", `{"items":[]}`)
	second := postCheckout(root, "key-1", `{"items":[]}`)
	if hits != 1 {
		t.Fatalf("handler hits = %d, want a single execution with a replay", hits)
	}
	if first.Code != http.StatusCreated || second.Code != http.StatusCreated {
		t.Fatalf("status = %d / %d", first.Code, second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("bodies differ: %q vs %q", first.Body.String(), second.Body.String())
	}
	if len(store.entries) != 1 {
		t.Fatalf("stored records = %d, want 1", len(store.entries))
	}

	r := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	w := httptest.NewRecorder()
	root.ServeHTTP(w, r)
	if hits != 2 {
		t.Fatalf("handler hits = %d, uncovered GET must pass through", hits)
	}
}

func TestIdempotencySkipsUncoveredRoutes(t *testing.T) {
	hits := 0
	handler := Idempotency(newFakeStore(), testLogger(), time.Hour)(checkoutHandler(&hits))

	r := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	r = httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if hits != 2 {
		t.Fatalf("handler hits = %d, want both requests through", hits)
	}
}
