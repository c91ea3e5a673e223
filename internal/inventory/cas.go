package inventory

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"cadash/internal/model"
)

var updateableCaFields = []string{"name", "address", "serial_number", "capture_card_id"}

func (s *gormStore) CreateCa(ctx context.Context, name, address string, vendorID int64, serialNumber string) (*model.Ca, error) {
	if err := notEmpty("name", name); err != nil {
		return nil, err
	}
	if err := notEmpty("address", address); err != nil {
		return nil, err
	}
	if _, err := s.GetVendor(ctx, vendorID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: vendor(%d)", ErrMissingVendor, vendorID)
		}
		return nil, err
	}
	// agents without a known serial are tracked by name until the
	// hardware is inspected
	if serialNumber == "" {
		serialNumber = name
	}

	if dup, err := s.taken(ctx, &model.Ca{}, "id", 0, "name = ?", name); err != nil {
		return nil, err
	} else if dup {
		return nil, fmt.Errorf("%w: ca name(%s)", ErrDuplicateName, name)
	}
	if dup, err := s.taken(ctx, &model.Ca{}, "id", 0, "address = ?", address); err != nil {
		return nil, err
	} else if dup {
		return nil, fmt.Errorf("%w: ca address(%s)", ErrDuplicateName, address)
	}
	if dup, err := s.taken(ctx, &model.Ca{}, "id", 0, "serial_number = ?", serialNumber); err != nil {
		return nil, err
	} else if dup {
		return nil, fmt.Errorf("%w: ca serial_number(%s)", ErrDuplicateName, serialNumber)
	}

	ca := &model.Ca{
		Name:         name,
		Address:      address,
		SerialNumber: serialNumber,
		VendorID:     vendorID,
	}
	if err := s.db.WithContext(ctx).Create(ca).Error; err != nil {
		return nil, fmt.Errorf("create ca: %w", err)
	}
	return s.GetCa(ctx, ca.ID)
}

func (s *gormStore) GetCa(ctx context.Context, id int64) (*model.Ca, error) {
	var ca model.Ca
	err := s.db.WithContext(ctx).
		Preload("Vendor").
		Preload("Vendor.Config").
		Preload("Role").
		Preload("Role.Location").
		Preload("Role.Cluster").
		First(&ca, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: ca(%d)", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get ca: %w", err)
	}
	return &ca, nil
}

func (s *gormStore) ListCas(ctx context.Context) ([]model.Ca, error) {
	var cas []model.Ca
	err := s.db.WithContext(ctx).
		Preload("Vendor").
		Preload("Role").
		Preload("Role.Location").
		Preload("Role.Cluster").
		Order("name").
		Find(&cas).Error
	if err != nil {
		return nil, fmt.Errorf("list cas: %w", err)
	}
	return cas, nil
}

func (s *gormStore) UpdateCa(ctx context.Context, id int64, fields map[string]any) (*model.Ca, error) {
	if err := requireFields("ca", fields, updateableCaFields...); err != nil {
		return nil, err
	}
	ca, err := s.GetCa(ctx, id)
	if err != nil {
		return nil, err
	}

	if v, ok, err := stringField(fields, "name"); err != nil {
		return nil, err
	} else if ok {
		if err := notEmpty("name", v); err != nil {
			return nil, err
		}
		if v != ca.Name {
			if dup, err := s.taken(ctx, &model.Ca{}, "id", id, "name = ?", v); err != nil {
				return nil, err
			} else if dup {
				return nil, fmt.Errorf("%w: ca name(%s)", ErrDuplicateName, v)
			}
		}
		ca.Name = v
	}
	if v, ok, err := stringField(fields, "address"); err != nil {
		return nil, err
	} else if ok {
		if err := notEmpty("address", v); err != nil {
			return nil, err
		}
		if v != ca.Address {
			if dup, err := s.taken(ctx, &model.Ca{}, "id", id, "address = ?", v); err != nil {
				return nil, err
			} else if dup {
				return nil, fmt.Errorf("%w: ca address(%s)", ErrDuplicateName, v)
			}
		}
		ca.Address = v
	}
	if v, ok, err := stringField(fields, "serial_number"); err != nil {
		return nil, err
	} else if ok {
		if err := notEmpty("serial_number", v); err != nil {
			return nil, err
		}
		if v != ca.SerialNumber {
			if dup, err := s.taken(ctx, &model.Ca{}, "id", id, "serial_number = ?", v); err != nil {
				return nil, err
			} else if dup {
				return nil, fmt.Errorf("%w: ca serial_number(%s)", ErrDuplicateName, v)
			}
		}
		ca.SerialNumber = v
	}
	if v, ok, err := stringField(fields, "capture_card_id"); err != nil {
		return nil, err
	} else if ok {
		ca.CaptureCardID = v
	}

	if err := s.db.WithContext(ctx).Save(ca).Error; err != nil {
		return nil, fmt.Errorf("update ca: %w", err)
	}
	return ca, nil
}

// DeleteCa removes the capture agent together with its role and device
// sub-configs, if any.
func (s *gormStore) DeleteCa(ctx context.Context, id int64) error {
	ca, err := s.GetCa(ctx, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if ca.Role != nil {
			if err := deleteRoleTx(tx, ca.ID); err != nil {
				return err
			}
		}
		return tx.Delete(ca).Error
	})
}
