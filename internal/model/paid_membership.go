package model

import (
	"time"
)

// PaidMembership marks that a payment was received for an email. At most
// one record per normalized email; created by the payment webhook or by
// manual admin entry.
type PaidMembership struct {
	BaseModel
	Email  string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PaidAt time.Time `json:"paid_at"`
	Plan   string    `gorm:"type:varchar(128)" json:"plan"`
	Amount string    `gorm:"type:varchar(32)" json:"amount"`
	Coupon string    `gorm:"type:varchar(64)" json:"coupon"`
}

// TableName specifies the table name for PaidMembership model
func (PaidMembership) TableName() string {
	return "paid_memberships"
}
