package model

import "time"

// Role names a capture agent's duty in a room.
const (
	RolePrimary      = "primary"
	RoleSecondary    = "secondary"
	RoleExperimental = "experimental"
)

// Cluster environments.
const (
	EnvProd  = "prod"
	EnvDev   = "dev"
	EnvStage = "stage"
)

// Role binds one capture agent to one location and one cluster under a
// role name. A capture agent has at most one role; a location has at most
// one primary and one secondary role (experimental is unlimited).
type Role struct {
	CaID       int64     `gorm:"primaryKey"`
	Name       string    `gorm:"size:16;not null"`
	LocationID int64     `gorm:"index;not null"`
	ClusterID  int64     `gorm:"index;not null"`
	CreatedAt  time.Time `gorm:"not null"`

	// Associations
	Ca       Ca          `gorm:"foreignKey:CaID"`
	Location Location    `gorm:"foreignKey:LocationID"`
	Cluster  MhCluster   `gorm:"foreignKey:ClusterID"`
	Config   *RoleConfig `gorm:"foreignKey:RoleCaID;constraint:OnDelete:CASCADE"`
}

// ValidRoleName reports whether name is one of the allowed role names.
func ValidRoleName(name string) bool {
	switch name {
	case RolePrimary, RoleSecondary, RoleExperimental:
		return true
	}
	return false
}

// ValidEnv reports whether env is one of the allowed cluster environments.
func ValidEnv(env string) bool {
	switch env {
	case EnvProd, EnvDev, EnvStage:
		return true
	}
	return false
}
