// Package stream issues short-lived stream handles and proxies their
// upstream bytes to clients.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ytstream.api/internal/resolver"
	"ytstream.api/pkg/cache"
)

// ErrHandleNotFound is returned for unknown and expired handles.
var ErrHandleNotFound = errors.New("stream handle not found or expired")

const keyPrefix = "stream:"

// Handle maps an opaque ID to an upstream URL until Expires. A handle may be
// fetched any number of times before it expires.
type Handle struct {
	ID      string        `json:"id"`
	URL     string        `json:"url"`
	Mode    resolver.Mode `json:"mode"`
	Expires time.Time     `json:"expires"`
}

// Registry stores handles in a Cache. Expired handles are never returned,
// whether or not the backend has dropped them yet.
type Registry struct {
	cache    cache.Cache
	ttl      time.Duration
	now      func() time.Time
	onCreate func()
}

type RegistryOption func(*Registry)

// WithNow overrides the registry clock.
func WithNow(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

// OnCreate registers a hook run after every successful Create.
func OnCreate(fn func()) RegistryOption {
	return func(r *Registry) { r.onCreate = fn }
}

func NewRegistry(c cache.Cache, ttl time.Duration, opts ...RegistryOption) *Registry {
	if ttl <= 0 {
		ttl = time.Hour
	}
	r := &Registry{cache: c, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create mints a fresh random handle for url.
func (r *Registry) Create(ctx context.Context, url string, mode resolver.Mode) (*Handle, error) {
	h := &Handle{
		ID:      uuid.New().String(),
		URL:     url,
		Mode:    mode,
		Expires: r.now().Add(r.ttl),
	}
	data, err := json.Marshal(h)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, keyPrefix+h.ID, data, r.ttl); err != nil {
		return nil, fmt.Errorf("store stream handle: %w", err)
	}
	if r.onCreate != nil {
		r.onCreate()
	}
	return h, nil
}

// Lookup returns the handle for id or ErrHandleNotFound.
func (r *Registry) Lookup(ctx context.Context, id string) (*Handle, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrHandleNotFound
	}
	s, err := r.cache.Get(ctx, keyPrefix+id)
	if err != nil {
		if cache.IsMiss(err) {
			return nil, ErrHandleNotFound
		}
		return nil, fmt.Errorf("load stream handle: %w", err)
	}

	var h Handle
	if err := json.Unmarshal([]byte(s), &h); err != nil {
		return nil, ErrHandleNotFound
	}
	if !r.now().Before(h.Expires) {
		return nil, ErrHandleNotFound
	}
	return &h, nil
}

// URLFor builds the absolute URL a client uses to fetch the handle.
func URLFor(base, id string) string {
	return strings.TrimRight(base, "/") + "/stream/" + id
}
