// Package cache holds short-lived rendered pages.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Entry is a cached response body with its content type.
type Entry struct {
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

// Store is a TTL keyed page store. Get reports a miss with ok false and a
// nil error.
type Store interface {
	Get(ctx context.Context, key string) (entry *Entry, ok bool, err error)
	Set(ctx context.Context, key string, entry *Entry, ttl time.Duration) error
	Clear(ctx context.Context) error
}

func encode(entry *Entry) ([]byte, error) {
	return json.Marshal(entry)
}

func decode(data []byte) (*Entry, error) {
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) (*Entry, bool, error) {
	return nil, false, nil
}

func (Noop) Set(context.Context, string, *Entry, time.Duration) error {
	return nil
}

func (Noop) Clear(context.Context) error {
	return nil
}
