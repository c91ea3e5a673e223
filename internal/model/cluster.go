package model

import (
	"time"

	"cadash/internal/names"
)

// MhCluster is a streaming/scheduling cluster that capture agents pull
// their recording schedule from.
type MhCluster struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"uniqueIndex;size:80;not null"`
	AdminHost string    `gorm:"uniqueIndex;size:128;not null"`
	Env       string    `gorm:"size:16;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	// Associations
	Roles []Role `gorm:"foreignKey:ClusterID"`
}

// NameID returns the cleaned identifier for the cluster.
func (m *MhCluster) NameID() string {
	return names.Clean(m.Name)
}
