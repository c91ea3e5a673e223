package model

import "time"

// Default Akamai entrypoint templates. Placeholders are filled when a
// device config is assembled; see the dce package.
const (
	DefaultPrimaryURLTemplate   = "rtmp://p.ep{{stream_id}}.i.akamaientrypoint.net/EntryPoint"
	DefaultSecondaryURLTemplate = "rtmp://b.ep{{stream_id}}.i.akamaientrypoint.net/EntryPoint"
	DefaultStreamNameTemplate   = "{{location_name}}-presenter-delivery.stream-{{framesize}}_1_200@{{stream_id}}"
)

// AkamaiStreamingConfig is a named streaming destination template shared
// read-only by the channels that stream live.
type AkamaiStreamingConfig struct {
	ID             int64  `gorm:"primaryKey"`
	Name           string `gorm:"uniqueIndex;size:80;not null"`
	Comment        string `gorm:"size:256;not null;default:''"`
	StreamID       string `gorm:"uniqueIndex;size:80;not null"`
	StreamUser     string `gorm:"size:80;not null;default:''"`
	StreamPassword string `gorm:"size:80;not null;default:''"`

	PrimaryURLTemplate   string `gorm:"size:256;not null"`
	SecondaryURLTemplate string `gorm:"size:256;not null"`
	StreamNameTemplate   string `gorm:"size:256;not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
