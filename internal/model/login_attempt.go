package model

import (
	"time"
)

// LoginAttempt is an append-only audit record. AccountID is nil when the
// attempt did not resolve to a known account. Note carries extra audit
// context such as external id reissues.
type LoginAttempt struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID *int      `gorm:"index" json:"account_id"`
	Email     string    `gorm:"type:varchar(255);index" json:"email"`
	Success   bool      `json:"success"`
	IP        string    `gorm:"type:varchar(64)" json:"ip"`
	Note      string    `gorm:"type:varchar(255)" json:"note"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for LoginAttempt model
func (LoginAttempt) TableName() string {
	return "login_attempts"
}
