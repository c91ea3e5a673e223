package model

import (
	"time"

	"cadash/internal/names"
)

// Location represents a room where capture agents are installed.
type Location struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"uniqueIndex;size:80;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	// Associations
	Config *LocationConfig `gorm:"foreignKey:LocationID;constraint:OnDelete:CASCADE"`
	Roles  []Role          `gorm:"foreignKey:LocationID"`
}

// NameID returns the cleaned identifier for the location.
func (l *Location) NameID() string {
	return names.Clean(l.Name)
}

// LocationConfig records the physical wiring of a room: which connector
// and input group feeds the presenter (pr) and presentation (pn) signals
// for the primary and secondary device, respectively. One per location,
// created alongside it.
//
// Connector values are sdi|hdmi|vga; input values are a|b.
type LocationConfig struct {
	ID         int64 `gorm:"primaryKey"`
	LocationID int64 `gorm:"uniqueIndex;not null"`

	PrimaryPrVconnector string `gorm:"size:8;not null;default:'sdi'"`
	PrimaryPrVinput     string `gorm:"size:2;not null;default:'a'"`
	PrimaryPnVconnector string `gorm:"size:8;not null;default:'sdi'"`
	PrimaryPnVinput     string `gorm:"size:2;not null;default:'b'"`

	SecondaryPrVconnector string `gorm:"size:8;not null;default:'sdi'"`
	SecondaryPrVinput     string `gorm:"size:2;not null;default:'a'"`
	SecondaryPnVconnector string `gorm:"size:8;not null;default:'sdi'"`
	SecondaryPnVinput     string `gorm:"size:2;not null;default:'b'"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
