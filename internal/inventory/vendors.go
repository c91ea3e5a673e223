package inventory

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"cadash/internal/model"
)

// Vendor fields clients may change.
var updateableVendorFields = []string{"name", "model"}

func (s *gormStore) CreateVendor(ctx context.Context, name, vendorModel string) (*model.Vendor, error) {
	if err := notEmpty("name", name); err != nil {
		return nil, err
	}
	if err := notEmpty("model", vendorModel); err != nil {
		return nil, err
	}
	nameID := model.ComputedNameID(name, vendorModel)
	dup, err := s.taken(ctx, &model.Vendor{}, "id", 0, "name_id = ?", nameID)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, fmt.Errorf("%w: vendor name_model(%s)", ErrDuplicateName, nameID)
	}

	vendor := &model.Vendor{
		Name:   name,
		Model:  vendorModel,
		NameID: nameID,
		// vendor config lives and dies with its vendor
		Config: &model.VendorConfig{},
	}
	if err := s.db.WithContext(ctx).Create(vendor).Error; err != nil {
		return nil, fmt.Errorf("create vendor: %w", err)
	}
	return vendor, nil
}

func (s *gormStore) GetVendor(ctx context.Context, id int64) (*model.Vendor, error) {
	var vendor model.Vendor
	err := s.db.WithContext(ctx).Preload("Config").First(&vendor, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: vendor(%d)", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get vendor: %w", err)
	}
	return &vendor, nil
}

func (s *gormStore) ListVendors(ctx context.Context) ([]model.Vendor, error) {
	var vendors []model.Vendor
	if err := s.db.WithContext(ctx).Order("name_id").Find(&vendors).Error; err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	return vendors, nil
}

func (s *gormStore) UpdateVendor(ctx context.Context, id int64, fields map[string]any) (*model.Vendor, error) {
	if err := requireFields("vendor", fields, updateableVendorFields...); err != nil {
		return nil, err
	}
	vendor, err := s.GetVendor(ctx, id)
	if err != nil {
		return nil, err
	}

	name := vendor.Name
	if v, ok, err := stringField(fields, "name"); err != nil {
		return nil, err
	} else if ok {
		if err := notEmpty("name", v); err != nil {
			return nil, err
		}
		name = v
	}
	vendorModel := vendor.Model
	if v, ok, err := stringField(fields, "model"); err != nil {
		return nil, err
	} else if ok {
		if err := notEmpty("model", v); err != nil {
			return nil, err
		}
		vendorModel = v
	}

	nameID := model.ComputedNameID(name, vendorModel)
	if nameID != vendor.NameID {
		dup, err := s.taken(ctx, &model.Vendor{}, "id", id, "name_id = ?", nameID)
		if err != nil {
			return nil, err
		}
		if dup {
			return nil, fmt.Errorf("%w: vendor name_model(%s)", ErrDuplicateName, nameID)
		}
	}

	vendor.Name = name
	vendor.Model = vendorModel
	vendor.NameID = nameID
	if err := s.db.WithContext(ctx).Save(vendor).Error; err != nil {
		return nil, fmt.Errorf("update vendor: %w", err)
	}
	return vendor, nil
}

// DeleteVendor always fails: vendors stay in the inventory for their
// device history even after the hardware is retired.
func (s *gormStore) DeleteVendor(ctx context.Context, id int64) error {
	return fmt.Errorf("%w: not allowed to delete `vendor`", ErrInvalidOperation)
}
