package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"cadash/internal/model"
)

var updateableClusterFields = []string{"name", "admin_host", "env"}

func validEnv(env string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(env))
	if !model.ValidEnv(e) {
		return "", fmt.Errorf("%w: %s (valid: prod, dev, stage)", ErrInvalidEnvironment, env)
	}
	return e, nil
}

func (s *gormStore) CreateCluster(ctx context.Context, name, adminHost, env string) (*model.MhCluster, error) {
	if err := notEmpty("name", name); err != nil {
		return nil, err
	}
	if err := notEmpty("admin_host", adminHost); err != nil {
		return nil, err
	}
	environment, err := validEnv(env)
	if err != nil {
		return nil, err
	}

	if dup, err := s.taken(ctx, &model.MhCluster{}, "id", 0, "name = ?", name); err != nil {
		return nil, err
	} else if dup {
		return nil, fmt.Errorf("%w: cluster name(%s)", ErrDuplicateName, name)
	}
	if dup, err := s.taken(ctx, &model.MhCluster{}, "id", 0, "admin_host = ?", adminHost); err != nil {
		return nil, err
	} else if dup {
		return nil, fmt.Errorf("%w: cluster admin_host(%s)", ErrDuplicateName, adminHost)
	}

	cluster := &model.MhCluster{Name: name, AdminHost: adminHost, Env: environment}
	if err := s.db.WithContext(ctx).Create(cluster).Error; err != nil {
		return nil, fmt.Errorf("create cluster: %w", err)
	}
	return cluster, nil
}

func (s *gormStore) GetCluster(ctx context.Context, id int64) (*model.MhCluster, error) {
	var cluster model.MhCluster
	err := s.db.WithContext(ctx).First(&cluster, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: cluster(%d)", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get cluster: %w", err)
	}
	return &cluster, nil
}

func (s *gormStore) ListClusters(ctx context.Context) ([]model.MhCluster, error) {
	var clusters []model.MhCluster
	if err := s.db.WithContext(ctx).Order("name").Find(&clusters).Error; err != nil {
		return nil, fmt.Errorf("list clusters: %w", err)
	}
	return clusters, nil
}

func (s *gormStore) UpdateCluster(ctx context.Context, id int64, fields map[string]any) (*model.MhCluster, error) {
	if err := requireFields("mh_cluster", fields, updateableClusterFields...); err != nil {
		return nil, err
	}
	cluster, err := s.GetCluster(ctx, id)
	if err != nil {
		return nil, err
	}

	if v, ok, err := stringField(fields, "name"); err != nil {
		return nil, err
	} else if ok {
		if err := notEmpty("name", v); err != nil {
			return nil, err
		}
		if v != cluster.Name {
			if dup, err := s.taken(ctx, &model.MhCluster{}, "id", id, "name = ?", v); err != nil {
				return nil, err
			} else if dup {
				return nil, fmt.Errorf("%w: cluster name(%s)", ErrDuplicateName, v)
			}
		}
		cluster.Name = v
	}
	if v, ok, err := stringField(fields, "admin_host"); err != nil {
		return nil, err
	} else if ok {
		if err := notEmpty("admin_host", v); err != nil {
			return nil, err
		}
		if v != cluster.AdminHost {
			if dup, err := s.taken(ctx, &model.MhCluster{}, "id", id, "admin_host = ?", v); err != nil {
				return nil, err
			} else if dup {
				return nil, fmt.Errorf("%w: cluster admin_host(%s)", ErrDuplicateName, v)
			}
		}
		cluster.AdminHost = v
	}
	if v, ok, err := stringField(fields, "env"); err != nil {
		return nil, err
	} else if ok {
		environment, err := validEnv(v)
		if err != nil {
			return nil, err
		}
		cluster.Env = environment
	}

	if err := s.db.WithContext(ctx).Save(cluster).Error; err != nil {
		return nil, fmt.Errorf("update cluster: %w", err)
	}
	return cluster, nil
}

// DeleteCluster removes the cluster and every role streaming to it.
func (s *gormStore) DeleteCluster(ctx context.Context, id int64) error {
	cluster, err := s.GetCluster(ctx, id)
	if err != nil {
		return err
	}
	var roles []model.Role
	if err := s.db.WithContext(ctx).Where("cluster_id = ?", id).Find(&roles).Error; err != nil {
		return fmt.Errorf("delete cluster: %w", err)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range roles {
			if err := deleteRoleTx(tx, roles[i].CaID); err != nil {
				return err
			}
		}
		return tx.Delete(cluster).Error
	})
}
