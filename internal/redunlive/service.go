package redunlive

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"cadash/internal/inventory"
	"cadash/internal/model"
)

// Location pairs the primary and secondary agents serving one room and
// exposes which of them, if any, is currently livestreaming.
type Location struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	ActiveLivestream string   `json:"active_livestream,omitempty"`
	Primary          *Agent   `json:"primary_ca,omitempty"`
	Secondary        *Agent   `json:"secondary_ca,omitempty"`
	Experimental     []*Agent `json:"experimental_cas,omitempty"`
}

// activeLivestream reports which side is publishing, primary first.
func (l *Location) activeLivestream() string {
	if l.Primary != nil && l.Primary.Streaming() {
		return model.RolePrimary
	}
	if l.Secondary != nil && l.Secondary.Streaming() {
		return model.RoleSecondary
	}
	return ""
}

// Service maps the inventory onto per-location agent pairs and performs
// the livestream failover toggle.
type Service struct {
	store    inventory.Store
	user     string
	password string
	timeout  time.Duration
	log      zerolog.Logger

	// sleep is swapped out in tests
	sleep func(time.Duration)
}

// NewService creates a redunlive service using the given device admin
// credentials.
func NewService(store inventory.Store, user, password string, timeout time.Duration, log zerolog.Logger) *Service {
	return &Service{
		store:    store,
		user:     user,
		password: password,
		timeout:  timeout,
		log:      log.With().Str("component", "redunlive").Logger(),
		sleep:    time.Sleep,
	}
}

// Locations builds the location list from the inventory and syncs each
// agent's livestream status against its device. Returned sorted by
// location id.
func (s *Service) Locations(ctx context.Context) ([]*Location, error) {
	roles, err := s.store.ListRoles(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*Location)
	for i := range roles {
		role := &roles[i]
		loc, ok := byID[role.Location.NameID()]
		if !ok {
			loc = &Location{ID: role.Location.NameID(), Name: role.Location.Name}
			byID[loc.ID] = loc
		}
		agent, err := s.buildAgent(ctx, role)
		if err != nil {
			return nil, err
		}
		switch role.Name {
		case model.RolePrimary:
			loc.Primary = agent
		case model.RoleSecondary:
			loc.Secondary = agent
		default:
			loc.Experimental = append(loc.Experimental, agent)
		}
	}

	out := make([]*Location, 0, len(byID))
	for _, loc := range byID {
		loc.ActiveLivestream = loc.activeLivestream()
		out = append(out, loc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Location builds and syncs a single location by its name id.
func (s *Service) Location(ctx context.Context, locID string) (*Location, error) {
	locations, err := s.Locations(ctx)
	if err != nil {
		return nil, err
	}
	for _, loc := range locations {
		if loc.ID == locID {
			return loc, nil
		}
	}
	return nil, fmt.Errorf("%w: redunlive location(%s)", inventory.ErrNotFound, locID)
}

// buildAgent creates the device proxy for one role, wires the livestream
// channel numbers recorded in the inventory, and syncs it.
func (s *Service) buildAgent(ctx context.Context, role *model.Role) (*Agent, error) {
	client := NewDeviceClient(role.Ca.Address, s.user, s.password, s.timeout)
	agent := NewAgent(role.Ca.SerialNumber, role.Ca.Address, client, s.log)

	live, lowBR, err := s.liveChannelNumbers(ctx, role.CaID)
	if err != nil {
		return nil, err
	}
	agent.Channels[ChannelLive].Channel = live
	agent.Channels[ChannelLowBR].Channel = lowBR

	agent.SyncLiveStatus(ctx)
	return agent, nil
}

// liveChannelNumbers looks up the device channel numbers of the dce_live
// and dce_live_lowbr channels. Unassigned or missing channels map to
// "not available".
func (s *Service) liveChannelNumbers(ctx context.Context, caID int64) (live, lowBR string, err error) {
	live, lowBR = StatusNotAvailable, StatusNotAvailable

	var cfg model.RoleConfig
	dbErr := s.store.DB().WithContext(ctx).
		Preload("Channels").
		First(&cfg, "role_ca_id = ?", caID).Error
	if errors.Is(dbErr, gorm.ErrRecordNotFound) {
		return live, lowBR, nil
	}
	if dbErr != nil {
		return "", "", fmt.Errorf("load livestream channels: %w", dbErr)
	}

	for i := range cfg.Channels {
		ch := &cfg.Channels[i]
		if !ch.Assigned() {
			continue
		}
		switch ch.Name {
		case "dce_live":
			live = strconv.Itoa(ch.ChannelIDInDevice)
		case "dce_live_lowbr":
			lowBR = strconv.Itoa(ch.ChannelIDInDevice)
		}
	}
	return live, lowBR, nil
}

// Toggle switches the active livestream of a location to the given side
// ("primary" or "secondary") and returns the refreshed location. When
// the location has no active livestream the toggle is a no-op.
func (s *Service) Toggle(ctx context.Context, locID, activeDevice string) (*Location, error) {
	if activeDevice != model.RolePrimary && activeDevice != model.RoleSecondary {
		return nil, fmt.Errorf("%w: active device must be primary or secondary",
			inventory.ErrInvalidOperation)
	}
	loc, err := s.Location(ctx, locID)
	if err != nil {
		return nil, err
	}
	if loc.Primary == nil || loc.Secondary == nil {
		return nil, fmt.Errorf("%w: location(%s) is not a redundant pair",
			inventory.ErrInvalidOperation, locID)
	}
	if loc.ActiveLivestream == "" {
		// nothing is streaming, do not start anything
		return loc, nil
	}

	s.log.Info().Str("location", locID).Str("active_device", activeDevice).
		Msg("toggling active livestream")

	if activeDevice == model.RolePrimary {
		// start primary, then bounce secondary so the CDN notices the
		// entrypoint change
		loc.Primary.WriteLiveStatus(ctx, PublishTypeStreaming)
		s.sleep(2 * time.Second)
		loc.Secondary.WriteLiveStatus(ctx, PublishTypeStopped)
		s.sleep(time.Second)
		loc.Secondary.WriteLiveStatus(ctx, PublishTypeStreaming)
	} else {
		loc.Secondary.WriteLiveStatus(ctx, PublishTypeStreaming)
		s.sleep(2 * time.Second)
		loc.Primary.WriteLiveStatus(ctx, PublishTypeStopped)
		s.sleep(time.Second)
	}

	loc.Primary.SyncLiveStatus(ctx)
	loc.Secondary.SyncLiveStatus(ctx)
	loc.ActiveLivestream = loc.activeLivestream()
	return loc, nil
}
