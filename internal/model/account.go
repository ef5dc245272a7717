package model

import (
	"time"
)

// Account represents a local account created after a successful identity
// validation. Email is the stable identity key; the external id can be
// reissued by the embedding host. PinHash is empty until the user sets a
// PIN and is never serialized.
type Account struct {
	BaseModel
	Email       string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	ExternalID  string     `gorm:"type:varchar(128);uniqueIndex;not null" json:"external_id"`
	Name        string     `gorm:"type:varchar(255);not null" json:"name"`
	PinHash     string     `gorm:"type:varchar(255)" json:"-"`
	IsAdmin     bool       `gorm:"default:false" json:"is_admin"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

// TableName specifies the table name for Account model
func (Account) TableName() string {
	return "accounts"
}

// HasPin reports whether a PIN has ever been set on this account
func (a *Account) HasPin() bool {
	return a.PinHash != ""
}
