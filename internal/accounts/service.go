// Package accounts is the credential store service: local account CRUD,
// login audit, and the small set of mutations the auth flow performs.
package accounts

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"pairtalk/internal/model"

	"gorm.io/gorm"
)

// Service wraps account persistence
type Service struct {
	db *gorm.DB
}

// NewService creates a new account service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// NormalizeEmail lowercases and trims an email. Email is the stable,
// case-insensitive identity key across all accounts.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FindByEmail looks up an account by normalized email. Returns (nil, nil)
// when no account exists.
func (s *Service) FindByEmail(email string) (*model.Account, error) {
	var acct model.Account
	err := s.db.Where("email = ?", NormalizeEmail(email)).First(&acct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// FindByID looks up an account by internal id. Returns (nil, nil) when no
// account exists.
func (s *Service) FindByID(id int) (*model.Account, error) {
	var acct model.Account
	err := s.db.First(&acct, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// Create inserts a new account. The admin flag must come from an attested
// identity, never from a request body.
func (s *Service) Create(email, externalID, name string, isAdmin bool) (*model.Account, error) {
	acct := model.Account{
		Email:      NormalizeEmail(email),
		ExternalID: externalID,
		Name:       name,
		IsAdmin:    isAdmin,
	}
	if err := s.db.Create(&acct).Error; err != nil {
		return nil, err
	}
	return &acct, nil
}

// ReissueExternalID updates the stored external id when the embedding
// host reissues a different one for the same email. Safe to repeat.
// Identity-key changes get their own audit record.
func (s *Service) ReissueExternalID(acct *model.Account, externalID, ip string) error {
	old := acct.ExternalID
	if err := s.db.Model(acct).Update("external_id", externalID).Error; err != nil {
		return err
	}
	acct.ExternalID = externalID

	note := fmt.Sprintf("external id reissued (%s -> %s)", old, externalID)
	return s.RecordAttempt(&acct.ID, acct.Email, true, ip, note)
}

// PromoteAdmin persists an asserted admin promotion. The flag is only
// ever promoted here; demotion is an explicit admin action elsewhere.
func (s *Service) PromoteAdmin(acct *model.Account) error {
	if acct.IsAdmin {
		return nil
	}
	if err := s.db.Model(acct).Update("is_admin", true).Error; err != nil {
		return err
	}
	acct.IsAdmin = true
	return nil
}

// AttachPinHash sets the PIN hash on an account that has none
func (s *Service) AttachPinHash(acct *model.Account, hash string) error {
	if err := s.db.Model(acct).Update("pin_hash", hash).Error; err != nil {
		return err
	}
	acct.PinHash = hash
	return nil
}

// TouchLastLogin updates the last-login timestamp
func (s *Service) TouchLastLogin(acct *model.Account) error {
	now := time.Now()
	if err := s.db.Model(acct).Update("last_login_at", now).Error; err != nil {
		return err
	}
	acct.LastLoginAt = &now
	return nil
}

// RecordAttempt appends a login audit record
func (s *Service) RecordAttempt(accountID *int, email string, success bool, ip, note string) error {
	attempt := model.LoginAttempt{
		AccountID: accountID,
		Email:     NormalizeEmail(email),
		Success:   success,
		IP:        ip,
		Note:      note,
	}
	return s.db.Create(&attempt).Error
}

// List returns accounts with pagination
func (s *Service) List(page, pageSize int) ([]model.Account, int64, error) {
	var total int64
	if err := s.db.Model(&model.Account{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var accts []model.Account
	err := s.db.Order("id").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&accts).Error
	if err != nil {
		return nil, 0, err
	}
	return accts, total, nil
}

// ListAttempts returns login attempts, newest first, with pagination
func (s *Service) ListAttempts(page, pageSize int) ([]model.LoginAttempt, int64, error) {
	var total int64
	if err := s.db.Model(&model.LoginAttempt{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var attempts []model.LoginAttempt
	err := s.db.Order("id desc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&attempts).Error
	if err != nil {
		return nil, 0, err
	}
	return attempts, total, nil
}

// DeleteCascade removes an account together with the paid membership and
// login history tied to its email/id. The only hard-delete path.
func (s *Service) DeleteCascade(acct *model.Account) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", acct.Email).Delete(&model.PaidMembership{}).Error; err != nil {
			return err
		}
		if err := tx.Where("account_id = ? OR email = ?", acct.ID, acct.Email).Delete(&model.LoginAttempt{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Account{}, acct.ID).Error
	})
}
