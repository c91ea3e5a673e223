package dce

import (
	"strings"

	"cadash/internal/model"
)

// ChannelSpec describes one of the standard DCE channels synthesized for
// every role config.
type ChannelSpec struct {
	Name             string
	Flavor           string
	AudioBitrateKbps int
	Framesize        string
	VideoBitrateKbps int
	// Live channels publish to a streaming destination; pr/pn are
	// rendering-side only.
	Streams bool
}

// DefaultChannelSpecs returns the DCE-standard channel set, in the order
// the channels are created.
func DefaultChannelSpecs() []ChannelSpec {
	return []ChannelSpec{
		{Name: "dce_pr", Flavor: FlavorPresenter, AudioBitrateKbps: 160, Framesize: "1280x720", VideoBitrateKbps: 9000},
		{Name: "dce_pn", Flavor: FlavorPresentation, AudioBitrateKbps: 160, Framesize: "1920x1080", VideoBitrateKbps: 9000},
		{Name: "dce_live", Flavor: FlavorLive, AudioBitrateKbps: 96, Framesize: "1920x540", VideoBitrateKbps: 4000, Streams: true},
		{Name: "dce_live_lowbr", Flavor: FlavorLive, AudioBitrateKbps: 64, Framesize: "960x270", VideoBitrateKbps: 250, Streams: true},
	}
}

// RecorderChannelNames are the channels the default recorder captures.
func RecorderChannelNames() []string {
	return []string{"dce_pr", "dce_pn"}
}

// RecorderName returns the default recorder name for a location.
func RecorderName(loc *model.Location) string {
	return "dce_" + loc.NameID()
}

// defaultStreamSubstring selects which streaming config live channels
// attach to.
const defaultStreamSubstring = "default"

// PickStreamConfig returns the streaming config whose name contains
// "default", first match in the given order, or nil when none matches.
func PickStreamConfig(cfgs []model.AkamaiStreamingConfig) *model.AkamaiStreamingConfig {
	for i := range cfgs {
		if strings.Contains(cfgs[i].Name, defaultStreamSubstring) {
			return &cfgs[i]
		}
	}
	return nil
}

// DefaultLayout renders the source layout for one standard channel:
// combined presenter+presentation for live flavors, single-source for
// pr/pn. Audio always comes from the presenter connector of the
// effective side.
func DefaultLayout(spec ChannelSpec, cardID string, locCfg *model.LocationConfig, roleName string) (string, error) {
	side := EffectiveSide(roleName)
	audio, err := ResolveConnector(locCfg, side, FlavorPresenter)
	if err != nil {
		return "", err
	}
	if spec.Flavor == FlavorLive {
		pr, err := ResolveConnector(locCfg, side, FlavorPresenter)
		if err != nil {
			return "", err
		}
		pn, err := ResolveConnector(locCfg, side, FlavorPresentation)
		if err != nil {
			return "", err
		}
		return CombinedLayout(cardID, pr, pn, audio)
	}
	video, err := ResolveConnector(locCfg, side, spec.Flavor)
	if err != nil {
		return "", err
	}
	return SingleSourceLayout(cardID, video, audio)
}
