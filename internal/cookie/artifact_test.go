package cookie

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
)

const validCookies = "# Netscape HTTP Cookie File\n" +
	".youtube.com\tTRUE\t/\tTRUE\t1999999999\tSID\tabc\n" +
	"#HttpOnly_.youtube.com\tTRUE\t/\tTRUE\t0\tHSID\tdef\n"

func TestArtifact_Path(t *testing.T) {
	fs := afero.NewMemMapFs()
	a := NewArtifact(fs, "/data/cookies.txt", 24*time.Hour)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }

	if got := a.Path(); got != "" {
		t.Fatalf("Path() with no file = %q, want empty", got)
	}

	if err := afero.WriteFile(fs, "/data/cookies.txt", []byte(validCookies), 0o600); err != nil {
		t.Fatal(err)
	}
	fs.Chtimes("/data/cookies.txt", now, now.Add(-23*time.Hour))
	if got := a.Path(); got != "/data/cookies.txt" {
		t.Errorf("Path() fresh = %q", got)
	}

	fs.Chtimes("/data/cookies.txt", now, now.Add(-25*time.Hour))
	if got := a.Path(); got != "" {
		t.Errorf("Path() stale = %q, want empty", got)
	}
}

func TestArtifact_Status(t *testing.T) {
	fs := afero.NewMemMapFs()
	a := NewArtifact(fs, "/data/cookies.txt", 24*time.Hour)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }

	s := a.Status()
	if s.Exists || s.AgeSeconds != nil || s.Path != "/data/cookies.txt" {
		t.Errorf("Status() missing = %+v", s)
	}

	afero.WriteFile(fs, "/data/cookies.txt", []byte(validCookies), 0o600)
	fs.Chtimes("/data/cookies.txt", now, now.Add(-time.Hour))
	s = a.Status()
	if !s.Exists || !s.Fresh || s.SizeBytes != int64(len(validCookies)) {
		t.Errorf("Status() = %+v", s)
	}
	if s.AgeSeconds == nil || *s.AgeSeconds != 3600 {
		t.Errorf("AgeSeconds = %v, want 3600", s.AgeSeconds)
	}
}

func TestValidate(t *testing.T) {
	if n, err := Validate([]byte(validCookies)); err != nil || n != 2 {
		t.Errorf("Validate(valid) = %d, %v", n, err)
	}
	for _, bad := range []string{"", "# only a comment\n", "<html>login</html>"} {
		if _, err := Validate([]byte(bad)); !errors.Is(err, ErrNoCookies) {
			t.Errorf("Validate(%q) error = %v, want ErrNoCookies", bad, err)
		}
	}
}

func TestArtifact_ReplaceKeepsBackups(t *testing.T) {
	fs := afero.NewMemMapFs()
	a := NewArtifact(fs, "/data/cookies.txt", 24*time.Hour)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		if err := a.Replace([]byte(validCookies), 2); err != nil {
			t.Fatalf("Replace() #%d error = %v", i, err)
		}
		now = now.Add(time.Second)
	}

	backups, err := a.Backups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 2 {
		t.Fatalf("backups = %v, want 2", backups)
	}
	if exists, _ := afero.Exists(fs, "/data/cookies.txt.tmp"); exists {
		t.Error("temporary file left behind")
	}
	got, _ := afero.ReadFile(fs, "/data/cookies.txt")
	if string(got) != validCookies {
		t.Errorf("artifact content = %q", got)
	}
}

func TestArtifact_ReplaceRejectsInvalid(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/data/cookies.txt", []byte(validCookies), 0o600)
	a := NewArtifact(fs, "/data/cookies.txt", 24*time.Hour)

	if err := a.Replace([]byte("not cookies"), 3); !errors.Is(err, ErrNoCookies) {
		t.Fatalf("Replace() error = %v, want ErrNoCookies", err)
	}
	got, _ := afero.ReadFile(fs, "/data/cookies.txt")
	if string(got) != validCookies {
		t.Error("invalid data replaced the artifact")
	}
	if backups, _ := a.Backups(); len(backups) != 0 {
		t.Errorf("backups = %v, want none", backups)
	}
}
