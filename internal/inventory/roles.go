package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"cadash/internal/model"
)

func (s *gormStore) CreateRole(ctx context.Context, caID, locationID, clusterID int64, name string) (*model.Role, error) {
	roleName := strings.ToLower(strings.TrimSpace(name))
	if !model.ValidRoleName(roleName) {
		return nil, fmt.Errorf("%w: %s (valid: primary, secondary, experimental)", ErrInvalidRole, name)
	}

	ca, err := s.GetCa(ctx, caID)
	if err != nil {
		return nil, err
	}
	if ca.Role != nil {
		return nil, fmt.Errorf("%w: ca(%s) already has role %s at location(%s)",
			ErrAssociationExists, ca.Name, ca.Role.Name, ca.Role.Location.Name)
	}
	loc, err := s.GetLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetCluster(ctx, clusterID); err != nil {
		return nil, err
	}

	// a room runs at most one primary and one secondary agent;
	// experimental agents are unlimited
	if roleName != model.RoleExperimental {
		var count int64
		err := s.db.WithContext(ctx).Model(&model.Role{}).
			Where("location_id = ? AND name = ?", locationID, roleName).
			Count(&count).Error
		if err != nil {
			return nil, fmt.Errorf("create role: %w", err)
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: location(%s) already has a %s ca",
				ErrAssociationExists, loc.Name, roleName)
		}
	}

	role := &model.Role{
		CaID:       caID,
		Name:       roleName,
		LocationID: locationID,
		ClusterID:  clusterID,
	}
	if err := s.db.WithContext(ctx).Create(role).Error; err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}
	return s.GetRole(ctx, caID)
}

func (s *gormStore) GetRole(ctx context.Context, caID int64) (*model.Role, error) {
	var role model.Role
	err := s.db.WithContext(ctx).
		Preload("Ca").
		Preload("Location").
		Preload("Location.Config").
		Preload("Cluster").
		First(&role, "ca_id = ?", caID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: role for ca(%d)", ErrNotFound, caID)
	}
	if err != nil {
		return nil, fmt.Errorf("get role: %w", err)
	}
	return &role, nil
}

func (s *gormStore) ListRoles(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	err := s.db.WithContext(ctx).
		Preload("Ca").
		Preload("Location").
		Preload("Cluster").
		Order("location_id, name").
		Find(&roles).Error
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

// DeleteRole clears the capture agent's room assignment; the agent
// itself stays in the inventory.
func (s *gormStore) DeleteRole(ctx context.Context, caID int64) error {
	if _, err := s.GetRole(ctx, caID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteRoleTx(tx, caID)
	})
}

// deleteRoleTx removes a role row and its device sub-configs inside the
// caller's transaction.
func deleteRoleTx(tx *gorm.DB, caID int64) error {
	var cfg model.RoleConfig
	err := tx.First(&cfg, "role_ca_id = ?", caID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// role never had its sub-configs synthesized
	case err != nil:
		return fmt.Errorf("delete role: %w", err)
	default:
		if err := tx.Where("role_config_id = ?", cfg.ID).Delete(&model.EpiphanChannel{}).Error; err != nil {
			return fmt.Errorf("delete role channels: %w", err)
		}
		if err := tx.Where("role_config_id = ?", cfg.ID).Delete(&model.EpiphanRecorder{}).Error; err != nil {
			return fmt.Errorf("delete role recorders: %w", err)
		}
		if err := tx.Where("role_config_id = ?", cfg.ID).Delete(&model.MhpearlConfig{}).Error; err != nil {
			return fmt.Errorf("delete role mhpearl: %w", err)
		}
		if err := tx.Delete(&cfg).Error; err != nil {
			return fmt.Errorf("delete role config: %w", err)
		}
	}
	if err := tx.Where("ca_id = ?", caID).Delete(&model.Role{}).Error; err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	return nil
}
