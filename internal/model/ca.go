package model

import (
	"time"

	"cadash/internal/names"
)

// Ca is a capture agent: one physical encoder/recorder device.
type Ca struct {
	ID            int64     `gorm:"primaryKey"`
	Name          string    `gorm:"uniqueIndex;size:80;not null"`
	Address       string    `gorm:"uniqueIndex;size:128;not null"`
	SerialNumber  string    `gorm:"size:80;not null"`
	CaptureCardID string    `gorm:"size:64;not null;default:''"`
	VendorID      int64     `gorm:"index;not null"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`

	// Associations
	Vendor Vendor `gorm:"foreignKey:VendorID"`
	Role   *Role  `gorm:"foreignKey:CaID;constraint:OnDelete:CASCADE"`
}

// NameID returns the cleaned identifier for the capture agent.
func (c *Ca) NameID() string {
	return names.Clean(c.Name)
}

// RoleName returns the role assigned to the capture agent, or "" when the
// device is not deployed anywhere.
func (c *Ca) RoleName() string {
	if c.Role == nil {
		return ""
	}
	return c.Role.Name
}
