package model

import "time"

// UnassignedDeviceID is the sentinel channel/recorder id used until an
// administrator records the id the device actually assigned. A config
// cannot be exported while any id is still at the sentinel.
const UnassignedDeviceID = 9999

// RoleConfig is the device-config root for one role. It owns the
// channels, recorders, and mhpearl sub-config derived for the device.
// Created lazily on first config access; deleted with its role.
type RoleConfig struct {
	ID        int64     `gorm:"primaryKey"`
	RoleCaID  int64     `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Channels  []EpiphanChannel  `gorm:"foreignKey:RoleConfigID;constraint:OnDelete:CASCADE"`
	Recorders []EpiphanRecorder `gorm:"foreignKey:RoleConfigID;constraint:OnDelete:CASCADE"`
	Mhpearl   *MhpearlConfig    `gorm:"foreignKey:RoleConfigID;constraint:OnDelete:CASCADE"`
}

// EpiphanChannel is one encodable output channel configured on a device.
// Name is unique within a RoleConfig; ChannelIDInDevice, once assigned a
// real (non-sentinel) value, is unique within the RoleConfig too.
type EpiphanChannel struct {
	ID           int64  `gorm:"primaryKey"`
	RoleConfigID int64  `gorm:"index;not null"`
	Name         string `gorm:"size:80;not null"`

	ChannelIDInDevice int    `gorm:"not null;default:9999"`
	AudioBitrateKbps  int    `gorm:"not null;default:160"`
	Framesize         string `gorm:"size:16;not null;default:'1920x1080'"`
	VideoBitrateKbps  int    `gorm:"not null;default:9000"`
	SourceLayout      string `gorm:"type:text;not null;default:'{}'"`

	StreamCfgID *int64                 `gorm:"index"`
	StreamCfg   *AkamaiStreamingConfig `gorm:"foreignKey:StreamCfgID"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// Assigned reports whether the channel has a real device id.
func (c *EpiphanChannel) Assigned() bool {
	return c.ChannelIDInDevice != UnassignedDeviceID
}

// EpiphanRecorder is a device-side job recording one or more channels to
// local storage. Same per-RoleConfig uniqueness rules as channels, on its
// own namespace.
type EpiphanRecorder struct {
	ID           int64  `gorm:"primaryKey"`
	RoleConfigID int64  `gorm:"index;not null"`
	Name         string `gorm:"size:80;not null"`

	RecorderIDInDevice int    `gorm:"not null;default:9999"`
	OutputFormat       string `gorm:"size:16;not null;default:'avi'"`
	SizeLimitBytes     int64  `gorm:"not null;default:64000000000"`
	TimeLimitSecs      int    `gorm:"not null;default:21600"`
	// Names of the channels this recorder captures.
	ChannelNames []string `gorm:"serializer:json;type:text;not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// Assigned reports whether the recorder has a real device id.
func (r *EpiphanRecorder) Assigned() bool {
	return r.RecorderIDInDevice != UnassignedDeviceID
}

// MhpearlConfig holds per-device scheduled-ingest parameters for the
// vendor's mhpearl add-on. At most one per RoleConfig.
type MhpearlConfig struct {
	ID           int64 `gorm:"primaryKey"`
	RoleConfigID int64 `gorm:"uniqueIndex;not null"`

	Version             string `gorm:"size:32;not null;default:''"`
	FileSearchRangeSecs int    `gorm:"not null;default:60"`
	UpdateFrequencySecs int    `gorm:"not null;default:120"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
