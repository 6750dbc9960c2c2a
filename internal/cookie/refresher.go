package cookie

import (
	"context"
	"errors"
	"sync"
	"time"

	"ytstream.api/pkg/logger"
	"ytstream.api/pkg/storage"
)

// Source supplies fresh cookie artifacts. version identifies the content so
// an unchanged artifact is not rewritten.
type Source interface {
	Fetch(ctx context.Context) (data []byte, version string, err error)
}

// ObjectGetter is satisfied by storage.Provider.
type ObjectGetter interface {
	Get(ctx context.Context, key string) (*storage.Object, error)
}

type objectSource struct {
	store ObjectGetter
	key   string
}

// NewObjectSource reads the artifact from an object store key.
func NewObjectSource(store ObjectGetter, key string) Source {
	return &objectSource{store: store, key: key}
}

func (s *objectSource) Fetch(ctx context.Context) ([]byte, string, error) {
	obj, err := s.store.Get(ctx, s.key)
	if err != nil {
		return nil, "", err
	}
	version := obj.ETag
	if version == "" && !obj.LastModified.IsZero() {
		version = obj.LastModified.UTC().Format(time.RFC3339Nano)
	}
	return obj.Body, version, nil
}

// RefresherStatus is reported by /admin/auth_status.
type RefresherStatus struct {
	State       string     `json:"daemon_status"`
	LastAttempt *time.Time `json:"last_attempt,omitempty"`
	LastSuccess *time.Time `json:"last_success,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
	Version     string     `json:"version,omitempty"`
}

const (
	StateDisabled = "disabled"
	StateIdle     = "not_running"
	StateRunning  = "running"
)

type RefresherConfig struct {
	Interval time.Duration
	Backups  int
	Logger   logger.Logger
	// OnResult is called after every attempt with "ok", "skipped" or "error".
	OnResult func(result string)
}

// Refresher periodically pulls the artifact from a Source and installs it.
// It runs only between Start and Stop.
type Refresher struct {
	artifact *Artifact
	source   Source
	interval time.Duration
	backups  int
	l        logger.Logger
	onResult func(string)
	now      func() time.Time

	mu      sync.Mutex
	status  RefresherStatus
	cancel  context.CancelFunc
	done    chan struct{}
	refresh sync.Mutex
}

// NewRefresher creates a refresher. A nil source leaves it disabled.
func NewRefresher(a *Artifact, src Source, cfg RefresherConfig) *Refresher {
	if cfg.Interval <= 0 {
		cfg.Interval = 12 * time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	state := StateIdle
	if src == nil {
		state = StateDisabled
	}
	return &Refresher{
		artifact: a,
		source:   src,
		interval: cfg.Interval,
		backups:  cfg.Backups,
		l:        cfg.Logger,
		onResult: cfg.OnResult,
		now:      time.Now,
		status:   RefresherStatus{State: state},
	}
}

// Start refreshes once immediately and then every interval until Stop or
// ctx is done. Calling Start on a running or disabled refresher is a no-op.
func (r *Refresher) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.source == nil || r.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.status.State = StateRunning

	go r.loop(ctx, r.done)
}

func (r *Refresher) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	_ = r.RefreshNow(ctx)
	for {
		select {
		case <-ticker.C:
			_ = r.RefreshNow(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Stop halts the loop and waits for an in-flight refresh to finish.
func (r *Refresher) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	if r.source != nil {
		r.status.State = StateIdle
	}
	r.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// RefreshNow runs one fetch-validate-install cycle.
func (r *Refresher) RefreshNow(ctx context.Context) error {
	if r.source == nil {
		return errors.New("cookie refresher has no source")
	}
	r.refresh.Lock()
	defer r.refresh.Unlock()

	now := r.now()
	r.mu.Lock()
	r.status.LastAttempt = &now
	lastVersion := r.status.Version
	r.mu.Unlock()

	data, version, err := r.source.Fetch(ctx)
	if err == nil && version != "" && version == lastVersion && r.artifact.Path() != "" {
		r.report("skipped", nil, version)
		return nil
	}
	if err == nil {
		err = r.artifact.Replace(data, r.backups)
	}
	if err != nil {
		r.l.Warn("Cookie refresh failed", "error", err)
		r.report("error", err, "")
		return err
	}

	r.l.Info("Cookie artifact refreshed", "version", version)
	r.report("ok", nil, version)
	return nil
}

func (r *Refresher) report(result string, err error, version string) {
	r.mu.Lock()
	switch result {
	case "ok":
		t := r.now()
		r.status.LastSuccess = &t
		r.status.LastError = ""
		r.status.Version = version
	case "error":
		r.status.LastError = err.Error()
	}
	r.mu.Unlock()

	if r.onResult != nil {
		r.onResult(result)
	}
}

// Status returns a snapshot of the refresher state.
func (r *Refresher) Status() RefresherStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}
