package inventory

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"cadash/internal/model"
)

var updateableLocationFields = []string{
	"name",
	"primary_pr_vconnector", "primary_pr_vinput",
	"primary_pn_vconnector", "primary_pn_vinput",
	"secondary_pr_vconnector", "secondary_pr_vinput",
	"secondary_pn_vconnector", "secondary_pn_vinput",
}

func (s *gormStore) CreateLocation(ctx context.Context, name string) (*model.Location, error) {
	if err := notEmpty("name", name); err != nil {
		return nil, err
	}
	dup, err := s.taken(ctx, &model.Location{}, "id", 0, "name = ?", name)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, fmt.Errorf("%w: location name(%s)", ErrDuplicateName, name)
	}

	loc := &model.Location{
		Name: name,
		// wiring config lives and dies with its location
		Config: &model.LocationConfig{},
	}
	if err := s.db.WithContext(ctx).Create(loc).Error; err != nil {
		return nil, fmt.Errorf("create location: %w", err)
	}
	return loc, nil
}

func (s *gormStore) GetLocation(ctx context.Context, id int64) (*model.Location, error) {
	var loc model.Location
	err := s.db.WithContext(ctx).Preload("Config").Preload("Roles").First(&loc, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: location(%d)", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get location: %w", err)
	}
	return &loc, nil
}

func (s *gormStore) ListLocations(ctx context.Context) ([]model.Location, error) {
	var locs []model.Location
	if err := s.db.WithContext(ctx).Order("name").Find(&locs).Error; err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return locs, nil
}

func (s *gormStore) UpdateLocation(ctx context.Context, id int64, fields map[string]any) (*model.Location, error) {
	if err := requireFields("location", fields, updateableLocationFields...); err != nil {
		return nil, err
	}
	loc, err := s.GetLocation(ctx, id)
	if err != nil {
		return nil, err
	}

	if v, ok, err := stringField(fields, "name"); err != nil {
		return nil, err
	} else if ok {
		if err := notEmpty("name", v); err != nil {
			return nil, err
		}
		if v != loc.Name {
			dup, err := s.taken(ctx, &model.Location{}, "id", id, "name = ?", v)
			if err != nil {
				return nil, err
			}
			if dup {
				return nil, fmt.Errorf("%w: location name(%s)", ErrDuplicateName, v)
			}
		}
		loc.Name = v
	}

	wiring := map[string]*string{
		"primary_pr_vconnector":   &loc.Config.PrimaryPrVconnector,
		"primary_pr_vinput":       &loc.Config.PrimaryPrVinput,
		"primary_pn_vconnector":   &loc.Config.PrimaryPnVconnector,
		"primary_pn_vinput":       &loc.Config.PrimaryPnVinput,
		"secondary_pr_vconnector": &loc.Config.SecondaryPrVconnector,
		"secondary_pr_vinput":     &loc.Config.SecondaryPrVinput,
		"secondary_pn_vconnector": &loc.Config.SecondaryPnVconnector,
		"secondary_pn_vinput":     &loc.Config.SecondaryPnVinput,
	}
	for key, dst := range wiring {
		v, ok, err := stringField(fields, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if err := notEmpty(key, v); err != nil {
			return nil, err
		}
		*dst = v
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(loc).Error; err != nil {
			return err
		}
		return tx.Save(loc.Config).Error
	})
	if err != nil {
		return nil, fmt.Errorf("update location: %w", err)
	}
	return loc, nil
}

// DeleteLocation removes the location, its wiring config, and every role
// assigned to the room.
func (s *gormStore) DeleteLocation(ctx context.Context, id int64) error {
	loc, err := s.GetLocation(ctx, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range loc.Roles {
			if err := deleteRoleTx(tx, loc.Roles[i].CaID); err != nil {
				return err
			}
		}
		if loc.Config != nil {
			if err := tx.Delete(loc.Config).Error; err != nil {
				return err
			}
		}
		return tx.Delete(loc).Error
	})
}
