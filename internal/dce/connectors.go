// Package dce derives Epiphan Pearl device configurations from the
// inventory graph: it resolves a room's physical wiring, renders source
// layouts, defines the standard DCE channel set, and flattens the whole
// graph into one JSON-serializable device config.
package dce

import (
	"fmt"

	"cadash/internal/model"
)

// Channel flavors.
const (
	FlavorPresenter    = "pr"
	FlavorPresentation = "pn"
	FlavorLive         = "live"
)

// Connector identifies one physical video input on a device, e.g. sdi-a.
type Connector struct {
	Connector string
	Input     string
}

func (c Connector) empty() bool {
	return c.Connector == "" || c.Input == ""
}

// EffectiveSide maps a role name to the side of the room wiring it uses.
// Experimental devices borrow the secondary wiring.
func EffectiveSide(roleName string) string {
	if roleName == model.RolePrimary {
		return model.RolePrimary
	}
	return model.RoleSecondary
}

// ResolveConnector returns the connector/input pair wired to the given
// channel flavor (pr or pn) for the given effective side.
func ResolveConnector(cfg *model.LocationConfig, side, flavor string) (Connector, error) {
	if cfg == nil {
		return Connector{}, fmt.Errorf("location has no wiring config")
	}
	switch side {
	case model.RolePrimary:
		switch flavor {
		case FlavorPresenter:
			return Connector{cfg.PrimaryPrVconnector, cfg.PrimaryPrVinput}, nil
		case FlavorPresentation:
			return Connector{cfg.PrimaryPnVconnector, cfg.PrimaryPnVinput}, nil
		}
	case model.RoleSecondary:
		switch flavor {
		case FlavorPresenter:
			return Connector{cfg.SecondaryPrVconnector, cfg.SecondaryPrVinput}, nil
		case FlavorPresentation:
			return Connector{cfg.SecondaryPnVconnector, cfg.SecondaryPnVinput}, nil
		}
	}
	return Connector{}, fmt.Errorf("unknown side/flavor combination: %s/%s", side, flavor)
}
