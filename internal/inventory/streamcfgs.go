package inventory

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"cadash/internal/model"
)

func (s *gormStore) CreateStreamConfig(ctx context.Context, name, streamID, user, password string) (*model.AkamaiStreamingConfig, error) {
	if err := notEmpty("name", name); err != nil {
		return nil, err
	}
	if err := notEmpty("stream_id", streamID); err != nil {
		return nil, err
	}

	if dup, err := s.taken(ctx, &model.AkamaiStreamingConfig{}, "id", 0, "name = ?", name); err != nil {
		return nil, err
	} else if dup {
		return nil, fmt.Errorf("%w: stream config name(%s)", ErrDuplicateName, name)
	}
	if dup, err := s.taken(ctx, &model.AkamaiStreamingConfig{}, "id", 0, "stream_id = ?", streamID); err != nil {
		return nil, err
	} else if dup {
		return nil, fmt.Errorf("%w: stream config stream_id(%s)", ErrDuplicateName, streamID)
	}

	cfg := &model.AkamaiStreamingConfig{
		Name:                 name,
		StreamID:             streamID,
		StreamUser:           user,
		StreamPassword:       password,
		PrimaryURLTemplate:   model.DefaultPrimaryURLTemplate,
		SecondaryURLTemplate: model.DefaultSecondaryURLTemplate,
		StreamNameTemplate:   model.DefaultStreamNameTemplate,
	}
	if err := s.db.WithContext(ctx).Create(cfg).Error; err != nil {
		return nil, fmt.Errorf("create stream config: %w", err)
	}
	return cfg, nil
}

func (s *gormStore) GetStreamConfig(ctx context.Context, id int64) (*model.AkamaiStreamingConfig, error) {
	var cfg model.AkamaiStreamingConfig
	err := s.db.WithContext(ctx).First(&cfg, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: stream config(%d)", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get stream config: %w", err)
	}
	return &cfg, nil
}

func (s *gormStore) ListStreamConfigs(ctx context.Context) ([]model.AkamaiStreamingConfig, error) {
	var cfgs []model.AkamaiStreamingConfig
	if err := s.db.WithContext(ctx).Order("name").Find(&cfgs).Error; err != nil {
		return nil, fmt.Errorf("list stream configs: %w", err)
	}
	return cfgs, nil
}
