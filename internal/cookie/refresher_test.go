package cookie

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"

	"ytstream.api/pkg/storage"
)

type fakeSource struct {
	mu      sync.Mutex
	data    string
	version string
	err     error
	calls   int
}

func (f *fakeSource) Fetch(ctx context.Context) ([]byte, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, "", f.err
	}
	return []byte(f.data), f.version, nil
}

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestRefresher_RefreshNow(t *testing.T) {
	fs := afero.NewMemMapFs()
	a := NewArtifact(fs, "/data/cookies.txt", 24*time.Hour)
	src := &fakeSource{data: validCookies, version: "v1"}
	var results []string
	r := NewRefresher(a, src, RefresherConfig{Backups: 1, OnResult: func(s string) { results = append(results, s) }})

	if err := r.RefreshNow(context.Background()); err != nil {
		t.Fatalf("RefreshNow() error = %v", err)
	}
	if a.Path() == "" {
		t.Fatal("artifact not installed")
	}
	// unchanged version is not rewritten
	if err := r.RefreshNow(context.Background()); err != nil {
		t.Fatal(err)
	}
	if backups, _ := a.Backups(); len(backups) != 0 {
		t.Errorf("unchanged artifact was backed up: %v", backups)
	}

	src.err = errors.New("access denied")
	if err := r.RefreshNow(context.Background()); err == nil {
		t.Fatal("RefreshNow() succeeded with failing source")
	}

	want := []string{"ok", "skipped", "error"}
	if len(results) != len(want) {
		t.Fatalf("results = %v, want %v", results, want)
	}
	for i := range want {
		if results[i] != want[i] {
			t.Errorf("results = %v, want %v", results, want)
			break
		}
	}

	st := r.Status()
	if st.LastError != "access denied" || st.LastSuccess == nil || st.Version != "v1" {
		t.Errorf("Status() = %+v", st)
	}
	// a failed refresh keeps the old artifact usable
	if a.Path() == "" {
		t.Error("artifact removed after failed refresh")
	}
}

func TestRefresher_StartStop(t *testing.T) {
	a := NewArtifact(afero.NewMemMapFs(), "/data/cookies.txt", 24*time.Hour)
	src := &fakeSource{data: validCookies, version: "v1"}
	r := NewRefresher(a, src, RefresherConfig{Interval: 5 * time.Millisecond})

	r.Start(context.Background())
	r.Start(context.Background())
	if r.Status().State != StateRunning {
		t.Errorf("State = %q, want running", r.Status().State)
	}

	deadline := time.Now().Add(time.Second)
	for src.Calls() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if src.Calls() < 3 {
		t.Fatalf("calls = %d, want >= 3", src.Calls())
	}

	r.Stop()
	if r.Status().State != StateIdle {
		t.Errorf("State after Stop = %q", r.Status().State)
	}
	n := src.Calls()
	time.Sleep(20 * time.Millisecond)
	if src.Calls() != n {
		t.Error("refresher kept running after Stop")
	}
	r.Stop()
}

func TestRefresher_Disabled(t *testing.T) {
	a := NewArtifact(afero.NewMemMapFs(), "/data/cookies.txt", 24*time.Hour)
	r := NewRefresher(a, nil, RefresherConfig{})
	r.Start(context.Background())
	defer r.Stop()

	if r.Status().State != StateDisabled {
		t.Errorf("State = %q, want disabled", r.Status().State)
	}
	if err := r.RefreshNow(context.Background()); err == nil {
		t.Error("RefreshNow() without a source succeeded")
	}
}

type fakeObjects map[string]*storage.Object

func (f fakeObjects) Get(ctx context.Context, key string) (*storage.Object, error) {
	if o, ok := f[key]; ok {
		return o, nil
	}
	return nil, storage.ErrNoSuchObject
}

func TestObjectSource(t *testing.T) {
	modified := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	src := NewObjectSource(fakeObjects{
		"cookies.txt": {Body: []byte(validCookies), LastModified: modified},
	}, "cookies.txt")

	data, version, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != validCookies || version != modified.Format(time.RFC3339Nano) {
		t.Errorf("Fetch() = %q, %q", data, version)
	}

	_, _, err = NewObjectSource(fakeObjects{}, "cookies.txt").Fetch(context.Background())
	if !errors.Is(err, storage.ErrNoSuchObject) {
		t.Errorf("Fetch(missing) error = %v", err)
	}
}
