package dce

import (
	"encoding/json"
	"fmt"
)

// Source layouts are built as typed structs and marshaled, rather than
// interpolated into a JSON literal, so a malformed layout cannot be
// produced in the first place.

type layoutBox struct {
	Height          string `json:"height"`
	KeepAspectRatio bool   `json:"keep_aspect_ratio"`
	Left            string `json:"left"`
	Top             string `json:"top"`
	Width           string `json:"width"`
}

type sourceSettings struct {
	Source string `json:"source"`
}

type audioSource struct {
	Settings sourceSettings `json:"settings"`
	Type     string         `json:"type"`
}

type videoSource struct {
	Crop     json.RawMessage `json:"crop,omitempty"`
	Position layoutBox       `json:"position"`
	Settings sourceSettings  `json:"settings"`
	Type     string          `json:"type"`
}

// emptyCrop marks a croppable video box; pr/pn single-source boxes carry
// no crop key at all.
var emptyCrop = json.RawMessage("{}")

type nosignal struct {
	ID string `json:"id"`
}

type sourceLayout struct {
	Audio      []audioSource `json:"audio"`
	Background string        `json:"background"`
	Nosignal   nosignal      `json:"nosignal"`
	Video      []videoSource `json:"video"`
}

const layoutBackground = "#000000"

func videoSourceID(cardID string, c Connector) string {
	return fmt.Sprintf("%s.%s-%s", cardID, c.Connector, c.Input)
}

func audioSourceID(cardID string, c Connector) string {
	return fmt.Sprintf("%s.%s-%s-audio", cardID, c.Connector, c.Input)
}

// SingleSourceLayout renders the layout for a pr or pn channel: one
// full-frame video box plus the audio source. The audio connector is the
// presenter's, regardless of the channel's own flavor.
func SingleSourceLayout(cardID string, video, audio Connector) (string, error) {
	if video.empty() || audio.empty() {
		return "", fmt.Errorf("incomplete wiring for layout: video=%+v audio=%+v", video, audio)
	}
	layout := sourceLayout{
		Audio: []audioSource{
			{Settings: sourceSettings{Source: audioSourceID(cardID, audio)}, Type: "source"},
		},
		Background: layoutBackground,
		Nosignal:   nosignal{ID: "default"},
		Video: []videoSource{
			{
				Position: layoutBox{Height: "100%", KeepAspectRatio: true, Left: "0%", Top: "0%", Width: "100%"},
				Settings: sourceSettings{Source: videoSourceID(cardID, video)},
				Type:     "source",
			},
		},
	}
	return marshalLayout(layout)
}

// CombinedLayout renders the layout for a live channel: presenter video
// on the left half, presentation video on the right half, audio from the
// presenter.
func CombinedLayout(cardID string, pr, pn, audio Connector) (string, error) {
	if pr.empty() || pn.empty() || audio.empty() {
		return "", fmt.Errorf("incomplete wiring for layout: pr=%+v pn=%+v audio=%+v", pr, pn, audio)
	}
	layout := sourceLayout{
		Audio: []audioSource{
			{Settings: sourceSettings{Source: audioSourceID(cardID, audio)}, Type: "source"},
		},
		Background: layoutBackground,
		Nosignal:   nosignal{ID: "default"},
		Video: []videoSource{
			{
				Crop:     emptyCrop,
				Position: layoutBox{Height: "100%", KeepAspectRatio: true, Left: "0%", Top: "0%", Width: "50%"},
				Settings: sourceSettings{Source: videoSourceID(cardID, pr)},
				Type:     "source",
			},
			{
				Crop:     emptyCrop,
				Position: layoutBox{Height: "100%", KeepAspectRatio: true, Left: "50%", Top: "0%", Width: "50%"},
				Settings: sourceSettings{Source: videoSourceID(cardID, pn)},
				Type:     "source",
			},
		},
	}
	return marshalLayout(layout)
}

func marshalLayout(l sourceLayout) (string, error) {
	b, err := json.Marshal(l)
	if err != nil {
		return "", fmt.Errorf("marshal source layout: %w", err)
	}
	return string(b), nil
}

// ValidateLayout checks that a layout string, typically supplied through
// the API, parses as a JSON object carrying the required "video" key.
func ValidateLayout(layout string) error {
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(layout), &parsed); err != nil {
		return fmt.Errorf("source layout is not valid json: %w", err)
	}
	if _, ok := parsed["video"]; !ok {
		return fmt.Errorf(`source layout missing "video" key`)
	}
	return nil
}
