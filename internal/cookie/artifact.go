package cookie

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// ErrNoCookies is returned when data does not hold a single usable cookie.
var ErrNoCookies = errors.New("no cookies in artifact")

// Artifact is the cookies.txt file handed to the extraction capability.
// Its absence is never an error; it only reduces what upstream will serve.
type Artifact struct {
	fs     afero.Fs
	path   string
	maxAge time.Duration
	now    func() time.Time
}

func NewArtifact(fs afero.Fs, path string, maxAge time.Duration) *Artifact {
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	return &Artifact{fs: fs, path: path, maxAge: maxAge, now: time.Now}
}

// Path returns the artifact path when it exists and is younger than maxAge,
// "" otherwise.
func (a *Artifact) Path() string {
	info, err := a.fs.Stat(a.path)
	if err != nil || info.IsDir() {
		return ""
	}
	if a.now().Sub(info.ModTime()) >= a.maxAge {
		return ""
	}
	return a.path
}

// Status describes the artifact on disk.
type Status struct {
	Exists     bool     `json:"cookie_file_exists"`
	Path       string   `json:"cookie_file_path"`
	AgeSeconds *float64 `json:"cookie_age_seconds"`
	SizeBytes  int64    `json:"cookie_size_bytes"`
	Fresh      bool     `json:"cookie_fresh"`
}

func (a *Artifact) Status() Status {
	s := Status{Path: a.path}
	info, err := a.fs.Stat(a.path)
	if err != nil || info.IsDir() {
		return s
	}
	age := a.now().Sub(info.ModTime()).Seconds()
	s.Exists = true
	s.AgeSeconds = &age
	s.SizeBytes = info.Size()
	s.Fresh = age < a.maxAge.Seconds()
	return s
}

// Validate checks that data parses as Netscape cookies.txt with at least
// one cookie.
func Validate(data []byte) (int, error) {
	cookies, err := ParseNetscape(bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	if len(cookies) == 0 {
		return 0, ErrNoCookies
	}
	return len(cookies), nil
}

// Replace validates data, backs up the current file keeping at most backups
// copies, then swaps the new content in with a rename.
func (a *Artifact) Replace(data []byte, backups int) error {
	if _, err := Validate(data); err != nil {
		return err
	}

	dir := filepath.Dir(a.path)
	if err := a.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cookie dir: %w", err)
	}

	if backups > 0 {
		if err := a.backup(backups); err != nil {
			return err
		}
	}

	tmp := a.path + ".tmp"
	if err := afero.WriteFile(a.fs, tmp, data, 0o600); err != nil {
		return fmt.Errorf("write cookie artifact: %w", err)
	}
	if err := a.fs.Rename(tmp, a.path); err != nil {
		_ = a.fs.Remove(tmp)
		return fmt.Errorf("install cookie artifact: %w", err)
	}
	return nil
}

func (a *Artifact) backupPrefix() string {
	return filepath.Base(a.path) + ".bak."
}

func (a *Artifact) backup(keep int) error {
	current, err := afero.ReadFile(a.fs, a.path)
	if err != nil {
		// nothing to back up yet
		return nil
	}
	name := a.path + ".bak." + strconv.FormatInt(a.now().UnixNano(), 10)
	if err := afero.WriteFile(a.fs, name, current, 0o600); err != nil {
		return fmt.Errorf("back up cookie artifact: %w", err)
	}
	return a.pruneBackups(keep)
}

// Backups lists backup files, oldest first.
func (a *Artifact) Backups() ([]string, error) {
	dir := filepath.Dir(a.path)
	entries, err := afero.ReadDir(a.fs, dir)
	if err != nil {
		return nil, err
	}
	prefix := a.backupPrefix()
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), prefix) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return backupStamp(out[i], prefix) < backupStamp(out[j], prefix)
	})
	return out, nil
}

func backupStamp(path, prefix string) int64 {
	n, _ := strconv.ParseInt(strings.TrimPrefix(filepath.Base(path), prefix), 10, 64)
	return n
}

func (a *Artifact) pruneBackups(keep int) error {
	all, err := a.Backups()
	if err != nil {
		return err
	}
	for len(all) > keep {
		if err := a.fs.Remove(all[0]); err != nil {
			return fmt.Errorf("prune cookie backup: %w", err)
		}
		all = all[1:]
	}
	return nil
}
