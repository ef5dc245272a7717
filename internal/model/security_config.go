package model

import (
	"gorm.io/datatypes"
)

// Environment values for SecurityConfig
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// SecurityConfig is the single global record controlling the four access
// gates. Gates 2-4 depend on earlier gates; writes go through
// gate.Normalize so prerequisites are force-enabled rather than the write
// being rejected.
type SecurityConfig struct {
	BaseModel
	RequireOrigin    bool `gorm:"default:false" json:"require_origin"`
	RequireHostLogin bool `gorm:"default:false" json:"require_host_login"`
	RequirePaywall   bool `gorm:"default:false" json:"require_paywall"`
	RequirePin       bool `gorm:"default:false" json:"require_pin"`

	AllowedOrigin  string         `gorm:"type:varchar(255)" json:"allowed_origin"`
	PaywallTitle   string         `gorm:"type:varchar(255)" json:"paywall_title"`
	PaywallMessage string         `gorm:"type:text" json:"paywall_message"`
	PaywallLinks   datatypes.JSON `gorm:"type:json" json:"paywall_links"`
	WebhookURL     string         `gorm:"type:varchar(512)" json:"webhook_url"`
	Environment    string         `gorm:"type:varchar(32);default:'production'" json:"environment"`
}

// TableName specifies the table name for SecurityConfig model
func (SecurityConfig) TableName() string {
	return "security_configs"
}
