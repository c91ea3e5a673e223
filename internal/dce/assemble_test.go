package dce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cadash/internal/model"
)

func streamCfgFixture() *model.AkamaiStreamingConfig {
	return &model.AkamaiStreamingConfig{
		ID:                   1,
		Name:                 "dce-default-stream",
		StreamID:             "abc123",
		PrimaryURLTemplate:   model.DefaultPrimaryURLTemplate,
		SecondaryURLTemplate: model.DefaultSecondaryURLTemplate,
		StreamNameTemplate:   model.DefaultStreamNameTemplate,
	}
}

func caFixture(roleName string) *model.Ca {
	return &model.Ca{
		ID:            1,
		Name:          "fake-epiphan[A]",
		Address:       "fake-epiphan.dce.harvard.edu",
		SerialNumber:  "ABC123",
		CaptureCardID: "D12345678",
		Vendor: model.Vendor{
			Name:   "Epiphan",
			Model:  "Pearl",
			NameID: "epiphan_pearl",
			Config: &model.VendorConfig{
				NTPServer:                 "0.pool.ntp.org",
				Timezone:                  "US/Eastern",
				FirmwareVersion:           "3.15.3f",
				SourceDeinterlacing:       true,
				MaintenancePermanentLogs:  true,
				TouchscreenTimeoutSecs:    600,
				TouchscreenAllowRecording: false,
			},
		},
		Role: &model.Role{
			CaID:     1,
			Name:     roleName,
			Location: model.Location{ID: 1, Name: "Fake Room"},
			Cluster: model.MhCluster{
				ID:        1,
				Name:      "cluster dev",
				AdminHost: "cluster-dev.dce.harvard.edu",
				Env:       model.EnvDev,
			},
		},
	}
}

func roleConfigFixture(streamCfg *model.AkamaiStreamingConfig) *model.RoleConfig {
	cfg := &model.RoleConfig{
		ID:       1,
		RoleCaID: 1,
		Channels: []model.EpiphanChannel{
			{Name: "dce_pr", ChannelIDInDevice: 1, AudioBitrateKbps: 160, Framesize: "1280x720", VideoBitrateKbps: 9000, SourceLayout: `{"video":[]}`},
			{Name: "dce_pn", ChannelIDInDevice: 2, AudioBitrateKbps: 160, Framesize: "1920x1080", VideoBitrateKbps: 9000, SourceLayout: `{"video":[]}`},
			{Name: "dce_live", ChannelIDInDevice: 3, AudioBitrateKbps: 96, Framesize: "1920x540", VideoBitrateKbps: 4000, SourceLayout: `{"video":[]}`, StreamCfg: streamCfg},
			{Name: "dce_live_lowbr", ChannelIDInDevice: 4, AudioBitrateKbps: 64, Framesize: "960x270", VideoBitrateKbps: 250, SourceLayout: `{"video":[]}`, StreamCfg: streamCfg},
		},
		Recorders: []model.EpiphanRecorder{
			{Name: "dce_fake_room", RecorderIDInDevice: 1, OutputFormat: "avi",
				SizeLimitBytes: 64000000000, TimeLimitSecs: 21600,
				ChannelNames: []string{"dce_pr", "dce_pn"}},
		},
		Mhpearl: &model.MhpearlConfig{Version: "1.0.0", FileSearchRangeSecs: 60, UpdateFrequencySecs: 120},
	}
	return cfg
}

func TestBuildDeviceConfig(t *testing.T) {
	ca := caFixture(model.RolePrimary)
	cfg := roleConfigFixture(streamCfgFixture())

	out, err := BuildDeviceConfig(ca, cfg)
	require.NoError(t, err)

	assert.Equal(t, "D12345678", out.CaptureCardID)
	assert.Equal(t, "fake_epiphan_a_", out.CaNameID)
	assert.Equal(t, model.RolePrimary, out.Role)
	assert.Equal(t, "cluster_dev", out.ClusterNameID)
	assert.Equal(t, model.EnvDev, out.ClusterEnv)
	assert.Equal(t, "Fake Room", out.LocationName)

	// device booleans use the legacy on/"" encoding
	assert.Equal(t, "on", out.SourceDeinterlacing)
	assert.Equal(t, "on", out.MaintenancePermanentLogs)
	assert.Equal(t, "", out.Touchscreen.AllowRecording)
	assert.Equal(t, 600, out.Touchscreen.TimeoutSecs)

	assert.Equal(t, "0.pool.ntp.org", out.DateAndTime.NTPServer)
	assert.Equal(t, "US/Eastern", out.DateAndTime.Timezone)
	assert.Equal(t, "1.0.0", out.Mhpearl.Version)

	require.Len(t, out.Channels, 4)
	live := out.Channels["dce_live"]
	assert.Equal(t, 3, live.ChannelID)
	assert.Equal(t, Encodings{AudioBitrateKbps: 96, Framesize: "1920x540", VideoBitrateKbps: 4000}, live.Encodings)
	assert.Equal(t, "rtmp://p.epabc123.i.akamaientrypoint.net/EntryPoint", live.RTMPURL)
	assert.Equal(t, "Fake Room-presenter-delivery.stream-1920x540_1_200@abc123", live.StreamName)

	// pr/pn do not stream
	assert.Empty(t, out.Channels["dce_pr"].RTMPURL)
	assert.Empty(t, out.Channels["dce_pr"].StreamName)

	// channel_encodings mirrors the first channel in name order (dce_live)
	assert.Equal(t, live.Encodings, out.ChannelEncodings)

	require.Len(t, out.Recorders, 1)
	rec := out.Recorders["dce_fake_room"]
	assert.Equal(t, 1, rec.RecorderID)
	assert.Equal(t, "avi", rec.OutputFormat)
	assert.Equal(t, []string{"dce_pr", "dce_pn"}, rec.Channels)
}

func TestBuildDeviceConfigSecondaryUsesBackupEntrypoint(t *testing.T) {
	for _, roleName := range []string{model.RoleSecondary, model.RoleExperimental} {
		ca := caFixture(roleName)
		cfg := roleConfigFixture(streamCfgFixture())

		out, err := BuildDeviceConfig(ca, cfg)
		require.NoError(t, err)
		assert.Equal(t, "rtmp://b.epabc123.i.akamaientrypoint.net/EntryPoint",
			out.Channels["dce_live"].RTMPURL, "role %s", roleName)
	}
}

func TestBuildDeviceConfigMissingSettings(t *testing.T) {
	t.Run("unset capture card id", func(t *testing.T) {
		ca := caFixture(model.RolePrimary)
		ca.CaptureCardID = ""
		_, err := BuildDeviceConfig(ca, roleConfigFixture(nil))
		assert.ErrorIs(t, err, ErrMissingConfig)
	})

	t.Run("sentinel channel id", func(t *testing.T) {
		ca := caFixture(model.RolePrimary)
		cfg := roleConfigFixture(nil)
		cfg.Channels[2].ChannelIDInDevice = model.UnassignedDeviceID
		_, err := BuildDeviceConfig(ca, cfg)
		assert.ErrorIs(t, err, ErrMissingConfig)
	})

	t.Run("sentinel recorder id", func(t *testing.T) {
		ca := caFixture(model.RolePrimary)
		cfg := roleConfigFixture(nil)
		cfg.Recorders[0].RecorderIDInDevice = model.UnassignedDeviceID
		_, err := BuildDeviceConfig(ca, cfg)
		assert.ErrorIs(t, err, ErrMissingConfig)
	})
}

func TestOnOff(t *testing.T) {
	assert.Equal(t, "on", OnOff(true))
	assert.Equal(t, "", OnOff(false))
}
