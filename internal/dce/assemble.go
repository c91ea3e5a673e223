package dce

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"cadash/internal/model"
)

// ErrMissingConfig is returned when a required setting (capture card id,
// channel or recorder device id) is still unset or at its sentinel.
var ErrMissingConfig = errors.New("missing configuration setting")

// Encodings mirrors one channel's audio/video encoding settings in the
// key names the device understands.
type Encodings struct {
	AudioBitrateKbps int    `json:"audiobitrate"`
	Framesize        string `json:"framesize"`
	VideoBitrateKbps int    `json:"vbitrate"`
}

// ChannelConfig is one channel's entry in the assembled device config.
type ChannelConfig struct {
	ChannelID    int             `json:"channel_id"`
	Encodings    Encodings       `json:"encodings"`
	SourceLayout json.RawMessage `json:"source_layout"`
	RTMPURL      string          `json:"rtmp_url,omitempty"`
	StreamName   string          `json:"stream_name,omitempty"`
}

// RecorderConfig is one recorder's entry in the assembled device config.
type RecorderConfig struct {
	RecorderID     int      `json:"recorder_id"`
	OutputFormat   string   `json:"output_format"`
	SizeLimitBytes int64    `json:"sizelimit"`
	TimeLimitSecs  int      `json:"timelimit"`
	Channels       []string `json:"channels"`
}

// DateTimeSettings carries the device clock configuration.
type DateTimeSettings struct {
	NTPServer string `json:"ntp_server"`
	Timezone  string `json:"timezone"`
}

// TouchscreenSettings carries the device front-panel configuration.
// AllowRecording uses the device's legacy on/"" string encoding.
type TouchscreenSettings struct {
	TimeoutSecs    int    `json:"episcreen_timeout"`
	AllowRecording string `json:"allow_recording"`
}

// MhpearlSettings carries the scheduled-ingest add-on configuration.
type MhpearlSettings struct {
	Version             string `json:"version"`
	FileSearchRangeSecs int    `json:"file_search_range"`
	UpdateFrequencySecs int    `json:"update_frequency"`
}

// DeviceConfig is the flattened configuration pushed to one capture
// agent. Boolean device flags are encoded as "on"/"" strings, a legacy
// device-protocol convention.
type DeviceConfig struct {
	CaptureCardID string `json:"capture_card_id"`

	CaName         string `json:"ca_name"`
	CaNameID       string `json:"ca_name_id"`
	CaSerialNumber string `json:"ca_serial_number"`
	CaAddress      string `json:"ca_address"`
	Role           string `json:"role"`

	ClusterEnv       string `json:"cluster_env"`
	ClusterNameID    string `json:"cluster_name_id"`
	ClusterAdminHost string `json:"cluster_admin_host"`
	LocationName     string `json:"location_name"`

	DateAndTime              DateTimeSettings    `json:"date_and_time"`
	FirmwareVersion          string              `json:"firmware_version"`
	MaintenancePermanentLogs string              `json:"maintenance_permanent_logs"`
	SourceDeinterlacing      string              `json:"source_deinterlacing"`
	Touchscreen              TouchscreenSettings `json:"touchscreen"`
	Mhpearl                  MhpearlSettings     `json:"mhpearl"`

	ChannelEncodings Encodings                 `json:"channel_encodings"`
	Channels         map[string]ChannelConfig  `json:"channels"`
	Recorders        map[string]RecorderConfig `json:"recorders"`
}

// OnOff encodes a boolean flag the way the device expects: "on" or "".
func OnOff(v bool) string {
	if v {
		return "on"
	}
	return ""
}

// renderTemplate substitutes the {{name}} placeholders used by the
// streaming destination templates. These are admin-supplied URL patterns
// with a fixed placeholder vocabulary, not structured data.
func renderTemplate(tpl string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}

// BuildDeviceConfig flattens the fully-loaded graph for one capture
// agent into the device config. The ca must carry its vendor (with
// config) and role (with location config, cluster, and role config with
// channels, recorders, and mhpearl preloaded).
//
// Assembly either fully succeeds or fails with ErrMissingConfig; it
// performs no I/O and writes nothing back.
func BuildDeviceConfig(ca *model.Ca, cfg *model.RoleConfig) (*DeviceConfig, error) {
	if ca.CaptureCardID == "" {
		return nil, fmt.Errorf("%w: capture_card_id unset for ca(%s)", ErrMissingConfig, ca.Name)
	}

	role := ca.Role
	location := role.Location
	cluster := role.Cluster
	vendorCfg := ca.Vendor.Config

	out := &DeviceConfig{
		CaptureCardID:  ca.CaptureCardID,
		CaName:         ca.Name,
		CaNameID:       ca.NameID(),
		CaSerialNumber: ca.SerialNumber,
		CaAddress:      ca.Address,
		Role:           role.Name,

		ClusterEnv:       cluster.Env,
		ClusterNameID:    cluster.NameID(),
		ClusterAdminHost: cluster.AdminHost,
		LocationName:     location.Name,

		Channels:  make(map[string]ChannelConfig, len(cfg.Channels)),
		Recorders: make(map[string]RecorderConfig, len(cfg.Recorders)),
	}

	if vendorCfg != nil {
		out.DateAndTime = DateTimeSettings{NTPServer: vendorCfg.NTPServer, Timezone: vendorCfg.Timezone}
		out.FirmwareVersion = vendorCfg.FirmwareVersion
		out.MaintenancePermanentLogs = OnOff(vendorCfg.MaintenancePermanentLogs)
		out.SourceDeinterlacing = OnOff(vendorCfg.SourceDeinterlacing)
		out.Touchscreen = TouchscreenSettings{
			TimeoutSecs:    vendorCfg.TouchscreenTimeoutSecs,
			AllowRecording: OnOff(vendorCfg.TouchscreenAllowRecording),
		}
	}
	if cfg.Mhpearl != nil {
		out.Mhpearl = MhpearlSettings{
			Version:             cfg.Mhpearl.Version,
			FileSearchRangeSecs: cfg.Mhpearl.FileSearchRangeSecs,
			UpdateFrequencySecs: cfg.Mhpearl.UpdateFrequencySecs,
		}
	}

	// Channels keyed by name; iteration order is name-sorted so the
	// representative channel_encodings block is stable.
	channels := make([]model.EpiphanChannel, len(cfg.Channels))
	copy(channels, cfg.Channels)
	sort.Slice(channels, func(i, j int) bool { return channels[i].Name < channels[j].Name })

	for i, ch := range channels {
		if !ch.Assigned() {
			return nil, fmt.Errorf("%w: channel(%s) has no device id", ErrMissingConfig, ch.Name)
		}
		enc := Encodings{
			AudioBitrateKbps: ch.AudioBitrateKbps,
			Framesize:        ch.Framesize,
			VideoBitrateKbps: ch.VideoBitrateKbps,
		}
		if i == 0 {
			out.ChannelEncodings = enc
		}
		cc := ChannelConfig{
			ChannelID:    ch.ChannelIDInDevice,
			Encodings:    enc,
			SourceLayout: json.RawMessage(ch.SourceLayout),
		}
		if ch.StreamCfg != nil {
			cc.RTMPURL, cc.StreamName = renderStream(ch.StreamCfg, role.Name, location.Name, ch.Framesize)
		}
		out.Channels[ch.Name] = cc
	}

	for _, rec := range cfg.Recorders {
		if !rec.Assigned() {
			return nil, fmt.Errorf("%w: recorder(%s) has no device id", ErrMissingConfig, rec.Name)
		}
		out.Recorders[rec.Name] = RecorderConfig{
			RecorderID:     rec.RecorderIDInDevice,
			OutputFormat:   rec.OutputFormat,
			SizeLimitBytes: rec.SizeLimitBytes,
			TimeLimitSecs:  rec.TimeLimitSecs,
			Channels:       rec.ChannelNames,
		}
	}
	return out, nil
}

// renderStream fills the streaming destination templates for one
// channel. Primary roles publish to the primary entrypoint; secondary
// and experimental roles publish to the secondary one.
func renderStream(scfg *model.AkamaiStreamingConfig, roleName, locationName, framesize string) (rtmpURL, streamName string) {
	urlTpl := scfg.SecondaryURLTemplate
	if roleName == model.RolePrimary {
		urlTpl = scfg.PrimaryURLTemplate
	}
	rtmpURL = renderTemplate(urlTpl, map[string]string{"stream_id": scfg.StreamID})
	streamName = renderTemplate(scfg.StreamNameTemplate, map[string]string{
		"stream_id":     scfg.StreamID,
		"location_name": locationName,
		"framesize":     framesize,
	})
	return rtmpURL, streamName
}
