// Package paywall manages paid-membership entitlements keyed by
// normalized email.
package paywall

import (
	"errors"
	"time"

	"pairtalk/internal/accounts"
	"pairtalk/internal/model"

	"gorm.io/gorm"
)

// Service wraps paid-membership persistence
type Service struct {
	db *gorm.DB
}

// NewService creates a new paywall service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// HasMembership reports whether a paid membership exists for the email
func (s *Service) HasMembership(email string) (bool, error) {
	var count int64
	err := s.db.Model(&model.PaidMembership{}).
		Where("email = ?", accounts.NormalizeEmail(email)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Register creates a membership for the email. Returns created=false
// without error when the email is already registered, so the payment
// webhook stays idempotent.
func (s *Service) Register(email, plan, amount, coupon string, paidAt time.Time) (bool, error) {
	email = accounts.NormalizeEmail(email)

	var existing model.PaidMembership
	err := s.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	m := model.PaidMembership{
		Email:  email,
		PaidAt: paidAt,
		Plan:   plan,
		Amount: amount,
		Coupon: coupon,
	}
	if err := s.db.Create(&m).Error; err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes the membership for an email
func (s *Service) Delete(email string) error {
	return s.db.Where("email = ?", accounts.NormalizeEmail(email)).
		Delete(&model.PaidMembership{}).Error
}

// List returns memberships with pagination
func (s *Service) List(page, pageSize int) ([]model.PaidMembership, int64, error) {
	var total int64
	if err := s.db.Model(&model.PaidMembership{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var members []model.PaidMembership
	err := s.db.Order("id").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&members).Error
	if err != nil {
		return nil, 0, err
	}
	return members, total, nil
}
