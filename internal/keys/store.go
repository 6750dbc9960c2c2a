// Package keys stores API keys, their daily quotas and the request log.
package keys

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrKeyMissing    = errors.New("api key is required")
	ErrKeyInvalid    = errors.New("invalid api key")
	ErrKeyExpired    = errors.New("api key has expired")
	ErrQuotaExceeded = errors.New("daily limit exceeded")
	ErrNotAdmin      = errors.New("not an admin api key")
	ErrNotFound      = errors.New("api key not found")
	ErrAdminKey      = errors.New("admin keys cannot be revoked")
	ErrNameRequired  = errors.New("name is required")
)

const (
	quotaWindow       = 24 * time.Hour
	defaultDaysValid  = 30
	defaultDailyLimit = 100
)

// Store is the gorm backed key store. It is safe for concurrent use.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

type StoreOption func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

func NewStore(db *gorm.DB, opts ...StoreOption) *Store {
	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&APIKey{}, &APILog{})
}

func (s *Store) find(ctx context.Context, key string) (*APIKey, error) {
	var k APIKey
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&k).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrKeyInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("lookup api key: %w", err)
	}
	return &k, nil
}

// Authorize checks that key exists, has not expired and has quota left.
func (s *Store) Authorize(ctx context.Context, key string) (*APIKey, error) {
	if key == "" {
		return nil, ErrKeyMissing
	}
	k, err := s.find(ctx, key)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if k.IsExpired(now) {
		return nil, ErrKeyExpired
	}
	if k.Remaining(now) <= 0 {
		return nil, ErrQuotaExceeded
	}
	return k, nil
}

// AuthorizeAdmin checks that key exists, is an admin key and has not expired.
// Admin requests do not consume quota.
func (s *Store) AuthorizeAdmin(ctx context.Context, key string) (*APIKey, error) {
	if key == "" {
		return nil, ErrKeyMissing
	}
	k, err := s.find(ctx, key)
	if errors.Is(err, ErrKeyInvalid) {
		return nil, ErrNotAdmin
	}
	if err != nil {
		return nil, err
	}
	if !k.IsAdmin {
		return nil, ErrNotAdmin
	}
	if k.IsExpired(s.now()) {
		return nil, ErrKeyExpired
	}
	return k, nil
}

// RecordUsage consumes one unit of the key's quota, opening a new window
// when the previous one has elapsed. The check and the increment are one
// statement, so concurrent requests can neither lose a unit nor overrun the
// limit; a key with nothing left yields ErrQuotaExceeded.
func (s *Store) RecordUsage(ctx context.Context, id uint) error {
	now := s.now()
	res := s.db.WithContext(ctx).Model(&APIKey{}).
		Where("id = ? AND (reset_at <= ? OR count < daily_limit)", id, now).
		Updates(map[string]interface{}{
			"count":    gorm.Expr("CASE WHEN reset_at <= ? THEN 1 ELSE count + 1 END", now),
			"reset_at": gorm.Expr("CASE WHEN reset_at <= ? THEN ? ELSE reset_at END", now, now.Add(quotaWindow)),
		})
	if res.Error != nil {
		return fmt.Errorf("record api key usage: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&APIKey{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("record api key usage: %w", err)
	}
	if n == 0 {
		return ErrKeyInvalid
	}
	return ErrQuotaExceeded
}

// Log appends one request log row.
func (s *Store) Log(ctx context.Context, entry *APILog) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(entry).Error
}

// CreateParams describes a new key. Zero values take the defaults of 30
// days and 100 requests per day.
type CreateParams struct {
	Name       string
	DaysValid  int
	DailyLimit int
	IsAdmin    bool
	CreatedBy  *uint
	// Key is generated when empty.
	Key string
}

func (s *Store) Create(ctx context.Context, p CreateParams) (*APIKey, error) {
	if p.Name == "" {
		return nil, ErrNameRequired
	}
	if p.DaysValid <= 0 {
		p.DaysValid = defaultDaysValid
	}
	if p.DailyLimit <= 0 {
		p.DailyLimit = defaultDailyLimit
	}
	if p.Key == "" {
		key, err := GenerateKey()
		if err != nil {
			return nil, err
		}
		p.Key = key
	}

	now := s.now()
	k := &APIKey{
		Key:        p.Key,
		Name:       p.Name,
		IsAdmin:    p.IsAdmin,
		CreatedAt:  now,
		ValidUntil: now.AddDate(0, 0, p.DaysValid),
		DailyLimit: p.DailyLimit,
		ResetAt:    now.Add(quotaWindow),
		CreatedBy:  p.CreatedBy,
	}
	if err := s.db.WithContext(ctx).Create(k).Error; err != nil {
		return nil, fmt.Errorf("create api key: %w", err)
	}
	return k, nil
}

func (s *Store) List(ctx context.Context) ([]APIKey, error) {
	var out []APIKey
	err := s.db.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

// Revoke deletes a non-admin key.
func (s *Store) Revoke(ctx context.Context, id uint) error {
	var k APIKey
	err := s.db.WithContext(ctx).First(&k, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if k.IsAdmin {
		return ErrAdminKey
	}
	return s.db.WithContext(ctx).Delete(&k).Error
}

// Metrics summarises the request log.
type Metrics struct {
	TotalRequests int64   `json:"total_requests"`
	TodayRequests int64   `json:"today_requests"`
	ActiveKeys    int64   `json:"active_keys"`
	ErrorRate     float64 `json:"error_rate"`
}

func (s *Store) Metrics(ctx context.Context) (*Metrics, error) {
	db := s.db.WithContext(ctx)
	now := s.now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var m Metrics
	var errorsCount int64
	if err := db.Model(&APILog{}).Count(&m.TotalRequests).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&APILog{}).Where("timestamp >= ?", todayStart).Count(&m.TodayRequests).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&APIKey{}).Where("valid_until >= ?", now).Count(&m.ActiveKeys).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&APILog{}).Where("response_status >= ?", 400).Count(&errorsCount).Error; err != nil {
		return nil, err
	}
	if m.TotalRequests > 0 {
		m.ErrorRate = math.Round(float64(errorsCount)/float64(m.TotalRequests)*10000) / 100
	}
	return &m, nil
}

// LogView is a log row joined with its key name.
type LogView struct {
	ID         uint      `json:"id"`
	APIKeyName string    `json:"api_key_name"`
	Endpoint   string    `json:"endpoint"`
	Query      string    `json:"query"`
	IPAddress  string    `json:"ip_address"`
	Timestamp  time.Time `json:"timestamp"`
	Status     int       `json:"status"`
}

// RecentLogs returns the newest limit log rows.
func (s *Store) RecentLogs(ctx context.Context, limit int) ([]LogView, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []APILog
	err := s.db.WithContext(ctx).
		Preload("APIKey").
		Order("timestamp desc, id desc").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}

	out := make([]LogView, 0, len(logs))
	for _, l := range logs {
		name := l.APIKey.Name
		if name == "" {
			name = "Unknown"
		}
		out = append(out, LogView{
			ID:         l.ID,
			APIKeyName: name,
			Endpoint:   l.Endpoint,
			Query:      l.Query,
			IPAddress:  l.IPAddress,
			Timestamp:  l.Timestamp,
			Status:     l.ResponseStatus,
		})
	}
	return out, nil
}

// EnsureAdmin seeds an admin key when none exists. key is generated when
// empty. created reports whether a key was inserted.
func (s *Store) EnsureAdmin(ctx context.Context, key string) (admin *APIKey, created bool, err error) {
	var existing APIKey
	err = s.db.WithContext(ctx).Where("is_admin = ?", true).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	admin, err = s.Create(ctx, CreateParams{
		Name:       "Default Admin",
		Key:        key,
		IsAdmin:    true,
		DaysValid:  365 * 10,
		DailyLimit: 10000,
	})
	if err != nil {
		return nil, false, err
	}
	return admin, true, nil
}

// GenerateKey returns 32 random bytes as unpadded URL-safe base64.
func GenerateKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
