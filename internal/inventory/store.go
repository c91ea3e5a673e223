// Package inventory owns every read and write of the capture-agent
// inventory: entity CRUD with invariant checks, lazy synthesis of the
// standard device sub-configs, and device-config derivation.
package inventory

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"cadash/internal/dce"
	"cadash/internal/model"
)

// Store defines the interface for all inventory operations.
//
// Update methods take the changed fields as a map keyed by the API field
// names; a key outside the entity's updateable set fails with
// ErrInvalidOperation, mirroring what clients are allowed to change.
type Store interface {
	DB() *gorm.DB

	CreateVendor(ctx context.Context, name, vendorModel string) (*model.Vendor, error)
	GetVendor(ctx context.Context, id int64) (*model.Vendor, error)
	ListVendors(ctx context.Context) ([]model.Vendor, error)
	UpdateVendor(ctx context.Context, id int64, fields map[string]any) (*model.Vendor, error)
	DeleteVendor(ctx context.Context, id int64) error

	CreateLocation(ctx context.Context, name string) (*model.Location, error)
	GetLocation(ctx context.Context, id int64) (*model.Location, error)
	ListLocations(ctx context.Context) ([]model.Location, error)
	UpdateLocation(ctx context.Context, id int64, fields map[string]any) (*model.Location, error)
	DeleteLocation(ctx context.Context, id int64) error

	CreateCluster(ctx context.Context, name, adminHost, env string) (*model.MhCluster, error)
	GetCluster(ctx context.Context, id int64) (*model.MhCluster, error)
	ListClusters(ctx context.Context) ([]model.MhCluster, error)
	UpdateCluster(ctx context.Context, id int64, fields map[string]any) (*model.MhCluster, error)
	DeleteCluster(ctx context.Context, id int64) error

	CreateCa(ctx context.Context, name, address string, vendorID int64, serialNumber string) (*model.Ca, error)
	GetCa(ctx context.Context, id int64) (*model.Ca, error)
	ListCas(ctx context.Context) ([]model.Ca, error)
	UpdateCa(ctx context.Context, id int64, fields map[string]any) (*model.Ca, error)
	DeleteCa(ctx context.Context, id int64) error

	CreateRole(ctx context.Context, caID, locationID, clusterID int64, name string) (*model.Role, error)
	GetRole(ctx context.Context, caID int64) (*model.Role, error)
	ListRoles(ctx context.Context) ([]model.Role, error)
	DeleteRole(ctx context.Context, caID int64) error

	CreateStreamConfig(ctx context.Context, name, streamID, user, password string) (*model.AkamaiStreamingConfig, error)
	GetStreamConfig(ctx context.Context, id int64) (*model.AkamaiStreamingConfig, error)
	ListStreamConfigs(ctx context.Context) ([]model.AkamaiStreamingConfig, error)

	// EnsureRoleConfig loads the role config for a capture agent,
	// creating it and synthesizing the standard DCE channel set when the
	// channel list is empty.
	EnsureRoleConfig(ctx context.Context, caID int64) (*model.RoleConfig, error)

	CreateChannel(ctx context.Context, roleConfigID int64, name string, streamCfgID *int64) (*model.EpiphanChannel, error)
	UpdateChannel(ctx context.Context, roleConfigID int64, name string, fields map[string]any) (*model.EpiphanChannel, error)
	CreateRecorder(ctx context.Context, roleConfigID int64, name string) (*model.EpiphanRecorder, error)
	UpdateRecorder(ctx context.Context, roleConfigID int64, name string, fields map[string]any) (*model.EpiphanRecorder, error)
	CreateMhpearl(ctx context.Context, roleConfigID int64) (*model.MhpearlConfig, error)

	// DeviceConfig ensures the role config exists and assembles the full
	// device configuration for a capture agent.
	DeviceConfig(ctx context.Context, caID int64) (*dce.DeviceConfig, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed inventory store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// requireFields fails when the update map carries a key outside the
// entity's updateable set.
func requireFields(entity string, fields map[string]any, allowed ...string) error {
	allowedSet := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		allowedSet[a] = true
	}
	var bad []string
	for k := range fields {
		if !allowedSet[k] {
			bad = append(bad, k)
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("%w: not allowed to update %s fields: %s",
			ErrInvalidOperation, entity, strings.Join(bad, ", "))
	}
	return nil
}

func stringField(fields map[string]any, key string) (string, bool, error) {
	v, ok := fields[key]
	if !ok {
		return "", false, nil
	}
	str, ok := v.(string)
	if !ok {
		return "", false, fmt.Errorf("%w: field %s must be a string", ErrInvalidOperation, key)
	}
	return str, true, nil
}

func intField(fields map[string]any, key string) (int, bool, error) {
	v, ok := fields[key]
	if !ok {
		return 0, false, nil
	}
	switch n := v.(type) {
	case int:
		return n, true, nil
	case int64:
		return int(n), true, nil
	case float64: // decoded json numbers arrive as float64
		return int(n), true, nil
	}
	return 0, false, fmt.Errorf("%w: field %s must be a number", ErrInvalidOperation, key)
}

func notEmpty(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: `%s`", ErrEmptyValue, field)
	}
	return nil
}

// taken reports whether a record matching query exists, excluding the
// record identified by excludeCol/excludeID when excludeID is non-zero.
func (s *gormStore) taken(ctx context.Context, mdl any, excludeCol string, excludeID int64, query string, args ...any) (bool, error) {
	var count int64
	tx := s.db.WithContext(ctx).Model(mdl).Where(query, args...)
	if excludeID != 0 {
		tx = tx.Where(excludeCol+" <> ?", excludeID)
	}
	if err := tx.Count(&count).Error; err != nil {
		return false, fmt.Errorf("uniqueness check failed: %w", err)
	}
	return count > 0, nil
}
