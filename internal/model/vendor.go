package model

import (
	"fmt"
	"time"

	"cadash/internal/names"
)

// Vendor represents a capture agent manufacturer and model line.
type Vendor struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"size:64;not null"`
	Model     string    `gorm:"size:64;not null"`
	NameID    string    `gorm:"uniqueIndex;size:128;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	// Associations
	Config        *VendorConfig `gorm:"foreignKey:VendorID;constraint:OnDelete:CASCADE"`
	CaptureAgents []Ca          `gorm:"foreignKey:VendorID"`
}

// ComputedNameID derives the unique vendor identifier from name and model.
func ComputedNameID(name, model string) string {
	return fmt.Sprintf("%s_%s", names.Clean(name), names.Clean(model))
}

// VendorConfig holds device defaults shared by every capture agent of a
// vendor. One per vendor, created alongside it.
type VendorConfig struct {
	ID       int64 `gorm:"primaryKey"`
	VendorID int64 `gorm:"uniqueIndex;not null"`

	NTPServer       string `gorm:"size:128;not null;default:'0.pool.ntp.org'"`
	Timezone        string `gorm:"size:64;not null;default:'US/Eastern'"`
	FirmwareVersion string `gorm:"size:64;not null;default:''"`

	SourceDeinterlacing       bool `gorm:"not null;default:true"`
	MaintenancePermanentLogs  bool `gorm:"not null;default:true"`
	TouchscreenTimeoutSecs    int  `gorm:"not null;default:600"`
	TouchscreenAllowRecording bool `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
