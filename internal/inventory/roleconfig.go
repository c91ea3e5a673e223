package inventory

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"cadash/internal/dce"
	"cadash/internal/model"
)

var updateableChannelFields = []string{
	"channel_id_in_device",
	"audio_bitrate_kbps", "framesize", "video_bitrate_kbps",
	"source_layout", "stream_cfg_id",
}

var updateableRecorderFields = []string{
	"recorder_id_in_device",
	"output_format", "size_limit_bytes", "time_limit_secs",
	"channel_names",
}

// EnsureRoleConfig loads the role config for a capture agent, creating
// the config row on first access and synthesizing the standard DCE
// channel set, recorder, and mhpearl config when the channel list is
// empty. Synthesis requires the agent's capture card id to be set.
func (s *gormStore) EnsureRoleConfig(ctx context.Context, caID int64) (*model.RoleConfig, error) {
	role, err := s.GetRole(ctx, caID)
	if err != nil {
		return nil, err
	}
	ca, err := s.GetCa(ctx, caID)
	if err != nil {
		return nil, err
	}

	cfg := &model.RoleConfig{RoleCaID: caID}
	err = s.db.WithContext(ctx).
		Where("role_ca_id = ?", caID).
		FirstOrCreate(cfg).Error
	if err != nil {
		return nil, fmt.Errorf("ensure role config: %w", err)
	}

	var count int64
	err = s.db.WithContext(ctx).Model(&model.EpiphanChannel{}).
		Where("role_config_id = ?", cfg.ID).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("ensure role config: %w", err)
	}
	if count == 0 {
		if err := s.synthesizeDefaults(ctx, cfg, ca, role); err != nil {
			return nil, err
		}
	}
	return s.loadRoleConfig(ctx, cfg.ID)
}

// synthesizeDefaults creates the standard DCE channels, the location
// recorder, and the mhpearl config for a fresh role config.
func (s *gormStore) synthesizeDefaults(ctx context.Context, cfg *model.RoleConfig, ca *model.Ca, role *model.Role) error {
	if ca.CaptureCardID == "" {
		return fmt.Errorf("%w: capture_card_id unset for ca(%s)", ErrMissingConfig, ca.Name)
	}

	// live channels attach to the shared "default" destination; admins
	// can rewire them later
	var streamCfgs []model.AkamaiStreamingConfig
	err := s.db.WithContext(ctx).Order("id").Find(&streamCfgs).Error
	if err != nil {
		return fmt.Errorf("synthesize defaults: %w", err)
	}
	defaultStream := dce.PickStreamConfig(streamCfgs)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, spec := range dce.DefaultChannelSpecs() {
			layout, err := dce.DefaultLayout(spec, ca.CaptureCardID, role.Location.Config, role.Name)
			if err != nil {
				return fmt.Errorf("synthesize channel %s: %w", spec.Name, err)
			}
			ch := &model.EpiphanChannel{
				RoleConfigID:     cfg.ID,
				Name:             spec.Name,
				AudioBitrateKbps: spec.AudioBitrateKbps,
				Framesize:        spec.Framesize,
				VideoBitrateKbps: spec.VideoBitrateKbps,
				SourceLayout:     layout,
			}
			if spec.Streams && defaultStream != nil {
				ch.StreamCfgID = &defaultStream.ID
			}
			if err := tx.Create(ch).Error; err != nil {
				return fmt.Errorf("synthesize channel %s: %w", spec.Name, err)
			}
		}
		rec := &model.EpiphanRecorder{
			RoleConfigID: cfg.ID,
			Name:         dce.RecorderName(&role.Location),
			ChannelNames: dce.RecorderChannelNames(),
		}
		if err := tx.Create(rec).Error; err != nil {
			return fmt.Errorf("synthesize recorder: %w", err)
		}
		mh := &model.MhpearlConfig{RoleConfigID: cfg.ID}
		if err := tx.Create(mh).Error; err != nil {
			return fmt.Errorf("synthesize mhpearl: %w", err)
		}
		return nil
	})
}

func (s *gormStore) loadRoleConfig(ctx context.Context, id int64) (*model.RoleConfig, error) {
	var cfg model.RoleConfig
	err := s.db.WithContext(ctx).
		Preload("Channels", func(db *gorm.DB) *gorm.DB { return db.Order("name") }).
		Preload("Channels.StreamCfg").
		Preload("Recorders", func(db *gorm.DB) *gorm.DB { return db.Order("name") }).
		Preload("Mhpearl").
		First(&cfg, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: role config(%d)", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load role config: %w", err)
	}
	return &cfg, nil
}

func (s *gormStore) getRoleConfig(ctx context.Context, id int64) (*model.RoleConfig, error) {
	var cfg model.RoleConfig
	err := s.db.WithContext(ctx).First(&cfg, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: role config(%d)", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get role config: %w", err)
	}
	return &cfg, nil
}

func (s *gormStore) CreateChannel(ctx context.Context, roleConfigID int64, name string, streamCfgID *int64) (*model.EpiphanChannel, error) {
	if err := notEmpty("name", name); err != nil {
		return nil, err
	}
	if _, err := s.getRoleConfig(ctx, roleConfigID); err != nil {
		return nil, err
	}
	dup, err := s.taken(ctx, &model.EpiphanChannel{}, "id", 0,
		"role_config_id = ? AND name = ?", roleConfigID, name)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, fmt.Errorf("%w: channel name(%s)", ErrDuplicateName, name)
	}
	if streamCfgID != nil {
		if _, err := s.GetStreamConfig(ctx, *streamCfgID); err != nil {
			return nil, err
		}
	}

	ch := &model.EpiphanChannel{
		RoleConfigID: roleConfigID,
		Name:         name,
		StreamCfgID:  streamCfgID,
	}
	if err := s.db.WithContext(ctx).Create(ch).Error; err != nil {
		return nil, fmt.Errorf("create channel: %w", err)
	}
	return ch, nil
}

func (s *gormStore) UpdateChannel(ctx context.Context, roleConfigID int64, name string, fields map[string]any) (*model.EpiphanChannel, error) {
	if err := requireFields("epiphan_channel", fields, updateableChannelFields...); err != nil {
		return nil, err
	}
	var ch model.EpiphanChannel
	err := s.db.WithContext(ctx).
		First(&ch, "role_config_id = ? AND name = ?", roleConfigID, name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: channel(%s)", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("update channel: %w", err)
	}

	if v, ok, err := intField(fields, "channel_id_in_device"); err != nil {
		return nil, err
	} else if ok {
		if v != model.UnassignedDeviceID && v != ch.ChannelIDInDevice {
			dup, err := s.taken(ctx, &model.EpiphanChannel{}, "id", ch.ID,
				"role_config_id = ? AND channel_id_in_device = ?", roleConfigID, v)
			if err != nil {
				return nil, err
			}
			if dup {
				return nil, fmt.Errorf("%w: channel id(%d)", ErrDuplicateDeviceID, v)
			}
		}
		ch.ChannelIDInDevice = v
	}
	if v, ok, err := intField(fields, "audio_bitrate_kbps"); err != nil {
		return nil, err
	} else if ok {
		ch.AudioBitrateKbps = v
	}
	if v, ok, err := stringField(fields, "framesize"); err != nil {
		return nil, err
	} else if ok {
		if err := notEmpty("framesize", v); err != nil {
			return nil, err
		}
		ch.Framesize = v
	}
	if v, ok, err := intField(fields, "video_bitrate_kbps"); err != nil {
		return nil, err
	} else if ok {
		ch.VideoBitrateKbps = v
	}
	if v, ok, err := stringField(fields, "source_layout"); err != nil {
		return nil, err
	} else if ok {
		if err := dce.ValidateLayout(v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		ch.SourceLayout = v
	}
	if v, ok, err := intField(fields, "stream_cfg_id"); err != nil {
		return nil, err
	} else if ok {
		if v == 0 {
			ch.StreamCfgID = nil
		} else {
			id := int64(v)
			if _, err := s.GetStreamConfig(ctx, id); err != nil {
				return nil, err
			}
			ch.StreamCfgID = &id
		}
	}

	if err := s.db.WithContext(ctx).Save(&ch).Error; err != nil {
		return nil, fmt.Errorf("update channel: %w", err)
	}
	return &ch, nil
}

func (s *gormStore) CreateRecorder(ctx context.Context, roleConfigID int64, name string) (*model.EpiphanRecorder, error) {
	if err := notEmpty("name", name); err != nil {
		return nil, err
	}
	if _, err := s.getRoleConfig(ctx, roleConfigID); err != nil {
		return nil, err
	}
	dup, err := s.taken(ctx, &model.EpiphanRecorder{}, "id", 0,
		"role_config_id = ? AND name = ?", roleConfigID, name)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, fmt.Errorf("%w: recorder name(%s)", ErrDuplicateName, name)
	}

	rec := &model.EpiphanRecorder{
		RoleConfigID: roleConfigID,
		Name:         name,
		ChannelNames: []string{},
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, fmt.Errorf("create recorder: %w", err)
	}
	return rec, nil
}

func (s *gormStore) UpdateRecorder(ctx context.Context, roleConfigID int64, name string, fields map[string]any) (*model.EpiphanRecorder, error) {
	if err := requireFields("epiphan_recorder", fields, updateableRecorderFields...); err != nil {
		return nil, err
	}
	var rec model.EpiphanRecorder
	err := s.db.WithContext(ctx).
		First(&rec, "role_config_id = ? AND name = ?", roleConfigID, name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: recorder(%s)", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("update recorder: %w", err)
	}

	if v, ok, err := intField(fields, "recorder_id_in_device"); err != nil {
		return nil, err
	} else if ok {
		if v != model.UnassignedDeviceID && v != rec.RecorderIDInDevice {
			dup, err := s.taken(ctx, &model.EpiphanRecorder{}, "id", rec.ID,
				"role_config_id = ? AND recorder_id_in_device = ?", roleConfigID, v)
			if err != nil {
				return nil, err
			}
			if dup {
				return nil, fmt.Errorf("%w: recorder id(%d)", ErrDuplicateDeviceID, v)
			}
		}
		rec.RecorderIDInDevice = v
	}
	if v, ok, err := stringField(fields, "output_format"); err != nil {
		return nil, err
	} else if ok {
		if err := notEmpty("output_format", v); err != nil {
			return nil, err
		}
		rec.OutputFormat = v
	}
	if v, ok, err := intField(fields, "size_limit_bytes"); err != nil {
		return nil, err
	} else if ok {
		rec.SizeLimitBytes = int64(v)
	}
	if v, ok, err := intField(fields, "time_limit_secs"); err != nil {
		return nil, err
	} else if ok {
		rec.TimeLimitSecs = v
	}
	if v, ok, err := stringSliceField(fields, "channel_names"); err != nil {
		return nil, err
	} else if ok {
		rec.ChannelNames = v
	}

	if err := s.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return nil, fmt.Errorf("update recorder: %w", err)
	}
	return &rec, nil
}

func (s *gormStore) CreateMhpearl(ctx context.Context, roleConfigID int64) (*model.MhpearlConfig, error) {
	if _, err := s.getRoleConfig(ctx, roleConfigID); err != nil {
		return nil, err
	}
	dup, err := s.taken(ctx, &model.MhpearlConfig{}, "id", 0,
		"role_config_id = ?", roleConfigID)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, fmt.Errorf("%w: role config(%d) already has a mhpearl config",
			ErrAssociationExists, roleConfigID)
	}

	mh := &model.MhpearlConfig{RoleConfigID: roleConfigID}
	if err := s.db.WithContext(ctx).Create(mh).Error; err != nil {
		return nil, fmt.Errorf("create mhpearl: %w", err)
	}
	return mh, nil
}

// DeviceConfig ensures the standard sub-configs exist and assembles the
// full device configuration for a capture agent.
func (s *gormStore) DeviceConfig(ctx context.Context, caID int64) (*dce.DeviceConfig, error) {
	cfg, err := s.EnsureRoleConfig(ctx, caID)
	if err != nil {
		return nil, err
	}
	ca, err := s.GetCa(ctx, caID)
	if err != nil {
		return nil, err
	}
	return dce.BuildDeviceConfig(ca, cfg)
}

func stringSliceField(fields map[string]any, key string) ([]string, bool, error) {
	v, ok := fields[key]
	if !ok {
		return nil, false, nil
	}
	switch vv := v.(type) {
	case []string:
		return vv, true, nil
	case []any: // decoded json arrays arrive as []any
		out := make([]string, 0, len(vv))
		for _, e := range vv {
			str, ok := e.(string)
			if !ok {
				return nil, false, fmt.Errorf("%w: field %s must be a list of strings", ErrInvalidOperation, key)
			}
			out = append(out, str)
		}
		return out, true, nil
	}
	return nil, false, fmt.Errorf("%w: field %s must be a list of strings", ErrInvalidOperation, key)
}
