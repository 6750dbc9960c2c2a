package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

// Key derives a stable cache key from an operation name and its arguments.
// Positional args are order sensitive; kwargs are encoded with sorted keys.
func Key(op string, args []interface{}, kwargs map[string]interface{}) string {
	a, _ := json.Marshal(args)
	kw, _ := json.Marshal(kwargs) // encoding/json sorts map keys
	sum := md5.Sum([]byte(op + ":" + string(a) + ":" + string(kw)))
	return "memo:" + op + ":" + hex.EncodeToString(sum[:])
}

// entry is what Memo stores: the encoded result plus the insertion time.
type entry struct {
	StoredAt int64           `json:"at"`
	Value    json.RawMessage `json:"v"`
}

// computeTimeout bounds a shared computation, which no longer follows any
// single caller's context.
const computeTimeout = 5 * time.Minute

// Observer is notified of every lookup outcome.
type Observer func(op string, hit bool)

// Memo memoizes computations on top of a Cache. Concurrent misses for the
// same key share one computation.
type Memo struct {
	cache    Cache
	group    singleflight.Group
	now      func() time.Time
	observer Observer
}

// NewMemo wraps c. now may be nil.
func NewMemo(c Cache, now func() time.Time, observer Observer) *Memo {
	if now == nil {
		now = time.Now
	}
	return &Memo{cache: c, now: now, observer: observer}
}

// GetOrCompute decodes the cached value for key into out when it is younger
// than ttl. Otherwise it runs fn, stores the result and decodes it into out.
// Cache failures degrade to a recompute; errors from fn are not cached.
// A caller whose ctx ends stops waiting without failing the others sharing
// the computation.
func (m *Memo) GetOrCompute(ctx context.Context, op, key string, ttl time.Duration, out interface{}, fn func(context.Context) (interface{}, error)) error {
	if raw, ok := m.lookup(ctx, key, ttl); ok {
		if err := json.Unmarshal(raw, out); err == nil {
			m.observe(op, true)
			return nil
		}
	}
	m.observe(op, false)

	ch := m.group.DoChan(key, func() (interface{}, error) {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), computeTimeout)
		defer cancel()
		result, err := fn(cctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("memo encode %s: %w", op, err)
		}
		e, _ := json.Marshal(entry{StoredAt: m.now().UnixNano(), Value: raw})
		// best effort; a failed write is just a future miss
		_ = m.cache.Set(cctx, key, e, ttl)
		return json.RawMessage(raw), nil
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.(json.RawMessage), out)
	}
}

func (m *Memo) lookup(ctx context.Context, key string, ttl time.Duration) (json.RawMessage, bool) {
	s, err := m.cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	var e entry
	if err := json.Unmarshal([]byte(s), &e); err != nil {
		return nil, false
	}
	if m.now().Sub(time.Unix(0, e.StoredAt)) >= ttl {
		return nil, false
	}
	return e.Value, true
}

func (m *Memo) observe(op string, hit bool) {
	if m.observer != nil {
		m.observer(op, hit)
	}
}

// IsMiss reports whether err is a cache miss.
func IsMiss(err error) bool {
	return errors.Is(err, ErrMiss)
}
