package cache

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBadger(t *testing.T) *Badger {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewBadger(db)
}

// stores returns every backend reachable from this machine. Redis joins
// when REDIS_ADDR is set.
func stores(t *testing.T) map[string]Store {
	out := map[string]Store{"badger": newBadger(t)}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		client, err := DialRedis(context.Background(), addr, os.Getenv("REDIS_PASSWORD"), 0)
		require.NoError(t, err)
		t.Cleanup(func() { client.Close() })
		out["redis"] = NewRedis(client, "yatube-test:"+uuid.NewString()+":")
	}
	return out
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := store.Get(ctx, "index_page:0:/")
			require.NoError(t, err)
			assert.False(t, ok)

			want := &Entry{ContentType: "text/html; charset=utf-8", Body: []byte("<p>hi</p>")}
			require.NoError(t, store.Set(ctx, "index_page:0:/", want, time.Minute))

			got, ok, err := store.Get(ctx, "index_page:0:/")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, want, got)

			require.NoError(t, store.Clear(ctx))
			_, ok, err = store.Get(ctx, "index_page:0:/")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestBadgerClearKeepsOtherKeys(t *testing.T) {
	b := newBadger(t)
	require.NoError(t, b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("post:1"), []byte("{}"))
	}))
	require.NoError(t, b.Set(context.Background(), "k", &Entry{Body: []byte("x")}, time.Minute))

	require.NoError(t, b.Clear(context.Background()))

	err := b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte("post:1"))
		return err
	})
	assert.NoError(t, err)
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	var n Noop
	require.NoError(t, n.Set(ctx, "k", &Entry{}, time.Minute))
	_, ok, err := n.Get(ctx, "k")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, n.Clear(ctx))
}

func TestPageMiddleware(t *testing.T) {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("fail") != "" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "render %d", calls)
	})
	key := func(r *http.Request) string { return "index_page:" + r.URL.RequestURI() }
	cached := Page(newBadger(t), time.Minute, key)(handler)

	get := func(target string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		cached.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
		return rr
	}

	first := get("/")
	assert.Equal(t, "render 1", first.Body.String())
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := get("/")
	assert.Equal(t, "render 1", second.Body.String())
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, "text/html; charset=utf-8", second.Header().Get("Content-Type"))

	other := get("/?page=2")
	assert.Equal(t, "render 2", other.Body.String())

	get("/?fail=1")
	failed := get("/?fail=1")
	assert.Equal(t, http.StatusInternalServerError, failed.Code)
	assert.Equal(t, 4, calls, "error responses are not cached")

	rr := httptest.NewRecorder()
	cached.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, 5, calls, "only GET is cached")
}

func TestPageMiddlewareZeroTTL(t *testing.T) {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	})
	cached := Page(newBadger(t), 0, func(r *http.Request) string { return "k" })(handler)
	for i := 0; i < 3; i++ {
		cached.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}
	assert.Equal(t, 3, calls)
}
