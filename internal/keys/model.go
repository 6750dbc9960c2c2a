package keys

import "time"

// APIKey is a caller credential with a rolling daily quota.
type APIKey struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Key        string    `gorm:"uniqueIndex;size:64;not null" json:"key"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	IsAdmin    bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt  time.Time `json:"created_at"`
	ValidUntil time.Time `gorm:"not null" json:"valid_until"`
	DailyLimit int       `gorm:"not null;default:100" json:"daily_limit"`
	ResetAt    time.Time `gorm:"not null" json:"reset_at"`
	Count      int       `gorm:"not null;default:0" json:"count"`
	CreatedBy  *uint     `json:"created_by,omitempty"`
}

func (APIKey) TableName() string { return "api_keys" }

// IsExpired reports whether the key is past its validity window.
func (k *APIKey) IsExpired(now time.Time) bool {
	return now.After(k.ValidUntil)
}

// Remaining is the number of requests left in the current window. A window
// that has already rolled over counts as fresh.
func (k *APIKey) Remaining(now time.Time) int {
	if !now.Before(k.ResetAt) {
		return k.DailyLimit
	}
	return max(k.DailyLimit-k.Count, 0)
}

// APILog is one authenticated request.
type APILog struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	APIKeyID       uint      `gorm:"index;not null" json:"api_key_id"`
	APIKey         APIKey    `gorm:"foreignKey:APIKeyID" json:"-"`
	Endpoint       string    `gorm:"size:255;not null" json:"endpoint"`
	Query          string    `gorm:"size:500" json:"query"`
	IPAddress      string    `gorm:"size:50" json:"ip_address"`
	Timestamp      time.Time `gorm:"index;not null" json:"timestamp"`
	ResponseStatus int       `json:"response_status"`
}

func (APILog) TableName() string { return "api_logs" }
