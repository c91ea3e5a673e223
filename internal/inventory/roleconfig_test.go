package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cadash/internal/model"
)

func TestEnsureRoleConfigSynthesis(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateStreamConfig(ctx, "dce-default-stream", "abc123", "user", "pwd")
	require.NoError(t, err)

	ca := seedDeployedCa(t, s, "primary")

	cfg, err := s.EnsureRoleConfig(ctx, ca.ID)
	require.NoError(t, err)

	require.Len(t, cfg.Channels, 4)
	byName := make(map[string]model.EpiphanChannel, len(cfg.Channels))
	for _, ch := range cfg.Channels {
		byName[ch.Name] = ch
	}

	pr := byName["dce_pr"]
	assert.Equal(t, 160, pr.AudioBitrateKbps)
	assert.Equal(t, "1280x720", pr.Framesize)
	assert.Equal(t, 9000, pr.VideoBitrateKbps)
	assert.Equal(t, model.UnassignedDeviceID, pr.ChannelIDInDevice)
	assert.Nil(t, pr.StreamCfgID, "pr does not stream")
	assert.Contains(t, pr.SourceLayout, `"video"`)
	assert.Contains(t, pr.SourceLayout, "D12345678.sdi-a")

	pn := byName["dce_pn"]
	assert.Equal(t, "1920x1080", pn.Framesize)
	assert.Contains(t, pn.SourceLayout, "D12345678.sdi-b")
	// audio comes from the presenter connector even for pn
	assert.Contains(t, pn.SourceLayout, "D12345678.sdi-a-audio")

	live := byName["dce_live"]
	assert.Equal(t, 96, live.AudioBitrateKbps)
	assert.Equal(t, "1920x540", live.Framesize)
	assert.Equal(t, 4000, live.VideoBitrateKbps)
	require.NotNil(t, live.StreamCfg, "live channels attach to the default stream config")
	assert.Equal(t, "abc123", live.StreamCfg.StreamID)

	lowbr := byName["dce_live_lowbr"]
	assert.Equal(t, 64, lowbr.AudioBitrateKbps)
	assert.Equal(t, "960x270", lowbr.Framesize)
	assert.Equal(t, 250, lowbr.VideoBitrateKbps)
	require.NotNil(t, lowbr.StreamCfg)

	require.Len(t, cfg.Recorders, 1)
	rec := cfg.Recorders[0]
	assert.Equal(t, "dce_sanders_theatre", rec.Name)
	assert.Equal(t, "avi", rec.OutputFormat)
	assert.Equal(t, int64(64000000000), rec.SizeLimitBytes)
	assert.Equal(t, 21600, rec.TimeLimitSecs)
	assert.Equal(t, []string{"dce_pr", "dce_pn"}, rec.ChannelNames)

	require.NotNil(t, cfg.Mhpearl)
	assert.Equal(t, 60, cfg.Mhpearl.FileSearchRangeSecs)
	assert.Equal(t, 120, cfg.Mhpearl.UpdateFrequencySecs)

	t.Run("idempotent", func(t *testing.T) {
		again, err := s.EnsureRoleConfig(ctx, ca.ID)
		require.NoError(t, err)
		assert.Equal(t, cfg.ID, again.ID)
		assert.Len(t, again.Channels, 4)
		assert.Len(t, again.Recorders, 1)
	})

	t.Run("does not resynthesize after channel removal", func(t *testing.T) {
		// admins pruning a channel is a deliberate state; only a fully
		// empty channel list triggers synthesis
		require.NoError(t, s.DB().
			Where("role_config_id = ? AND name = ?", cfg.ID, "dce_live_lowbr").
			Delete(&model.EpiphanChannel{}).Error)
		again, err := s.EnsureRoleConfig(ctx, ca.ID)
		require.NoError(t, err)
		assert.Len(t, again.Channels, 3)
	})
}

func TestEnsureRoleConfigRequiresCaptureCard(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ca := seedDeployedCa(t, s, "primary")
	_, err := s.UpdateCa(ctx, ca.ID, map[string]any{"capture_card_id": ""})
	require.NoError(t, err)

	_, err = s.EnsureRoleConfig(ctx, ca.ID)
	assert.ErrorIs(t, err, ErrMissingConfig)
}

func TestEnsureRoleConfigWithoutRole(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	vendor, err := s.CreateVendor(ctx, "Epiphan", "Pearl")
	require.NoError(t, err)
	ca, err := s.CreateCa(ctx, "ca1", "ca1.example.edu", vendor.ID, "SN1")
	require.NoError(t, err)

	_, err = s.EnsureRoleConfig(ctx, ca.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExperimentalBorrowsSecondaryWiring(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ca := seedDeployedCa(t, s, "experimental")
	role, err := s.GetRole(ctx, ca.ID)
	require.NoError(t, err)
	_, err = s.UpdateLocation(ctx, role.LocationID, map[string]any{
		"secondary_pr_vconnector": "hdmi",
		"secondary_pn_vconnector": "vga",
	})
	require.NoError(t, err)

	cfg, err := s.EnsureRoleConfig(ctx, ca.ID)
	require.NoError(t, err)
	for _, ch := range cfg.Channels {
		if ch.Name == "dce_pr" {
			assert.Contains(t, ch.SourceLayout, "D12345678.hdmi-a")
		}
		if ch.Name == "dce_pn" {
			assert.Contains(t, ch.SourceLayout, "D12345678.vga-b")
		}
	}
}

func TestUpdateChannel(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ca := seedDeployedCa(t, s, "primary")
	cfg, err := s.EnsureRoleConfig(ctx, ca.ID)
	require.NoError(t, err)

	ch, err := s.UpdateChannel(ctx, cfg.ID, "dce_pr", map[string]any{
		"channel_id_in_device": 1,
		"framesize":            "1920x1080",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, ch.ChannelIDInDevice)
	assert.Equal(t, "1920x1080", ch.Framesize)

	t.Run("duplicate device id", func(t *testing.T) {
		_, err := s.UpdateChannel(ctx, cfg.ID, "dce_pn", map[string]any{"channel_id_in_device": 1})
		assert.ErrorIs(t, err, ErrDuplicateDeviceID)
	})

	t.Run("sentinel never collides", func(t *testing.T) {
		_, err := s.UpdateChannel(ctx, cfg.ID, "dce_pn",
			map[string]any{"channel_id_in_device": model.UnassignedDeviceID})
		assert.NoError(t, err)
	})

	t.Run("source layout must be json with video key", func(t *testing.T) {
		_, err := s.UpdateChannel(ctx, cfg.ID, "dce_pr", map[string]any{"source_layout": "nope"})
		assert.ErrorIs(t, err, ErrInvalidJSON)

		_, err = s.UpdateChannel(ctx, cfg.ID, "dce_pr", map[string]any{"source_layout": `{"audio":[]}`})
		assert.ErrorIs(t, err, ErrInvalidJSON)

		ch, err := s.UpdateChannel(ctx, cfg.ID, "dce_pr", map[string]any{"source_layout": `{"video":[]}`})
		require.NoError(t, err)
		assert.Equal(t, `{"video":[]}`, ch.SourceLayout)
	})

	t.Run("unknown channel", func(t *testing.T) {
		_, err := s.UpdateChannel(ctx, cfg.ID, "bogus", map[string]any{"framesize": "1x1"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update outside allow-list", func(t *testing.T) {
		_, err := s.UpdateChannel(ctx, cfg.ID, "dce_pr", map[string]any{"name": "renamed"})
		assert.ErrorIs(t, err, ErrInvalidOperation)
	})
}

func TestCreateChannelAndRecorder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ca := seedDeployedCa(t, s, "primary")
	cfg, err := s.EnsureRoleConfig(ctx, ca.ID)
	require.NoError(t, err)

	_, err = s.CreateChannel(ctx, cfg.ID, "dce_extra", nil)
	require.NoError(t, err)
	_, err = s.CreateChannel(ctx, cfg.ID, "dce_extra", nil)
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = s.CreateRecorder(ctx, cfg.ID, "dce_extra_rec")
	require.NoError(t, err)
	_, err = s.CreateRecorder(ctx, cfg.ID, "dce_extra_rec")
	assert.ErrorIs(t, err, ErrDuplicateName)

	t.Run("second mhpearl rejected", func(t *testing.T) {
		// synthesis already created one
		_, err := s.CreateMhpearl(ctx, cfg.ID)
		assert.ErrorIs(t, err, ErrAssociationExists)
	})

	t.Run("recorder device id uniqueness", func(t *testing.T) {
		_, err := s.UpdateRecorder(ctx, cfg.ID, "dce_extra_rec",
			map[string]any{"recorder_id_in_device": 7})
		require.NoError(t, err)
		_, err = s.UpdateRecorder(ctx, cfg.ID, "dce_sanders_theatre",
			map[string]any{"recorder_id_in_device": 7})
		assert.ErrorIs(t, err, ErrDuplicateDeviceID)
	})

	t.Run("recorder channel list", func(t *testing.T) {
		rec, err := s.UpdateRecorder(ctx, cfg.ID, "dce_extra_rec",
			map[string]any{"channel_names": []any{"dce_pr"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"dce_pr"}, rec.ChannelNames)
	})
}

func TestDeviceConfigDerivation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateStreamConfig(ctx, "dce-default-stream", "abc123", "user", "pwd")
	require.NoError(t, err)
	ca := seedDeployedCa(t, s, "primary")

	t.Run("sentinel ids block assembly", func(t *testing.T) {
		_, err := s.DeviceConfig(ctx, ca.ID)
		assert.ErrorIs(t, err, ErrMissingConfig)
	})

	// assign device ids to every channel and recorder
	cfg, err := s.EnsureRoleConfig(ctx, ca.ID)
	require.NoError(t, err)
	for i, ch := range cfg.Channels {
		_, err := s.UpdateChannel(ctx, cfg.ID, ch.Name, map[string]any{"channel_id_in_device": i + 1})
		require.NoError(t, err)
	}
	for i, rec := range cfg.Recorders {
		_, err := s.UpdateRecorder(ctx, cfg.ID, rec.Name, map[string]any{"recorder_id_in_device": i + 1})
		require.NoError(t, err)
	}

	out, err := s.DeviceConfig(ctx, ca.ID)
	require.NoError(t, err)
	assert.Equal(t, "D12345678", out.CaptureCardID)
	assert.Equal(t, "fake-epiphan", out.CaName)
	assert.Equal(t, "Sanders Theatre", out.LocationName)
	assert.Len(t, out.Channels, 4)
	assert.Equal(t, "rtmp://p.epabc123.i.akamaientrypoint.net/EntryPoint",
		out.Channels["dce_live"].RTMPURL)
	assert.Equal(t, "Sanders Theatre-presenter-delivery.stream-1920x540_1_200@abc123",
		out.Channels["dce_live"].StreamName)
	assert.Len(t, out.Recorders, 1)
}
