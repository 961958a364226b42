package models

import "time"

// Query is one logged ask attempt, plus any thumbs feedback attached later.
// Failed downstream calls are logged too (success=false, error set) so the
// audit trail covers every attempt, not just the happy path.
type Query struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AskedAt    time.Time `gorm:"not null;index" json:"asked_at"`
	SessionID  *string   `gorm:"type:text" json:"session_id"`
	UserID     *string   `gorm:"type:text" json:"user_id"`
	Question   string    `gorm:"type:text;not null" json:"question"`
	Answer     *string   `gorm:"type:text" json:"answer"`
	Model      string    `gorm:"type:text" json:"model"`
	LatencyMs  int       `json:"latency_ms"`
	Success    bool      `json:"success"`
	Error      *string   `gorm:"type:text" json:"error"`
	IPAddress  *string   `gorm:"type:text" json:"ip_address"`
	UserAgent  *string   `gorm:"type:text" json:"user_agent"`
	ThumbsUp   bool      `json:"thumbs_up"`
	ThumbsDown bool      `json:"thumbs_down"`
}

func (Query) TableName() string {
	return "queries"
}
