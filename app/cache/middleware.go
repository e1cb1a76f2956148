package cache

import (
	"bytes"
	"net/http"
	"time"

	"yatube/app/log"
)

// KeyFunc names the cache slot for a request.
type KeyFunc func(r *http.Request) string

// recorder passes the response through while keeping a copy of it.
type recorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (rec *recorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *recorder) Write(p []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	rec.body.Write(p)
	return rec.ResponseWriter.Write(p)
}

// Page serves GET requests from store while the entry lives and stores
// fresh 200 responses for ttl. Store failures are logged and the request
// falls through to next.
func Page(store Store, ttl time.Duration, key KeyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || ttl <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			k := key(r)

			entry, ok, err := store.Get(r.Context(), k)
			if err != nil {
				log.Log.WithError(err).WithField("key", k).Warn("page cache read failed")
			}
			if ok {
				w.Header().Set("Content-Type", entry.ContentType)
				w.Header().Set("X-Cache", "HIT")
				w.Write(entry.Body)
				return
			}

			w.Header().Set("X-Cache", "MISS")
			rec := &recorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			if rec.status != http.StatusOK {
				return
			}
			fresh := &Entry{ContentType: rec.Header().Get("Content-Type"), Body: rec.body.Bytes()}
			if err := store.Set(r.Context(), k, fresh, ttl); err != nil {
				log.Log.WithError(err).WithField("key", k).Warn("page cache write failed")
			}
		})
	}
}
