// Package redunlive proxies the live-streaming state of redundant
// capture-agent pairs. The device is the source of truth; when a device
// is unreachable its proxied status is "not available".
package redunlive

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"cadash/internal/names"
)

// Device publish_type values.
const (
	PublishTypeStreaming = "6"
	PublishTypeStopped   = "0"
)

// StatusNotAvailable is reported for channels whose device id is unknown
// or whose device cannot be reached.
const StatusNotAvailable = "not available"

// Livestream channel keys on an agent.
const (
	ChannelLive  = "live"
	ChannelLowBR = "lowBR"
)

// DeviceClient talks to one Epiphan Pearl admin interface.
type DeviceClient struct {
	baseURL  string
	user     string
	password string
	client   *http.Client
}

// NewDeviceClient creates a client for the device admin CGI endpoints at
// the given address (host or host:port, no scheme).
func NewDeviceClient(address, user, password string, timeout time.Duration) *DeviceClient {
	return &DeviceClient{
		baseURL:  "http://" + address,
		user:     user,
		password: password,
		client:   &http.Client{Timeout: timeout},
	}
}

// GetParam reads one configuration parameter from a device channel via
// get_params.cgi. The device answers with "key = value" lines.
func (d *DeviceClient) GetParam(ctx context.Context, channel, key string) (string, error) {
	u := fmt.Sprintf("%s/admin/channel%s/get_params.cgi?%s", d.baseURL, channel, url.QueryEscape(key))
	body, err := d.do(ctx, u)
	if err != nil {
		return "", err
	}
	params, err := parseParams(body)
	if err != nil {
		return "", err
	}
	v, ok := params[key]
	if !ok {
		return "", fmt.Errorf("device did not return %q", key)
	}
	return v, nil
}

// SetParam writes one configuration parameter on a device channel via
// set_params.cgi.
func (d *DeviceClient) SetParam(ctx context.Context, channel, key, value string) error {
	u := fmt.Sprintf("%s/admin/channel%s/set_params.cgi?%s=%s",
		d.baseURL, channel, url.QueryEscape(key), url.QueryEscape(value))
	body, err := d.do(ctx, u)
	if err != nil {
		return err
	}
	body.Close()
	return nil
}

func (d *DeviceClient) do(ctx context.Context, u string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create device request: %w", err)
	}
	req.SetBasicAuth(d.user, d.password)
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("device request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("device returned status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func parseParams(body io.ReadCloser) (map[string]string, error) {
	defer body.Close()
	params := make(map[string]string)
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		k, v, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		params[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read device response: %w", err)
	}
	return params, nil
}

// ChannelStatus tracks one livestream channel on a device: the channel
// number the device assigned and its current publish_type.
type ChannelStatus struct {
	Channel     string `json:"channel"`
	PublishType string `json:"publish_type"`
}

// Agent proxies one capture agent's livestream status.
type Agent struct {
	SerialNumber string                    `json:"serial_number"`
	Address      string                    `json:"address"`
	Name         string                    `json:"name"`
	Channels     map[string]*ChannelStatus `json:"channels"`
	LastUpdate   time.Time                 `json:"last_update"`

	client *DeviceClient
	log    zerolog.Logger
}

// NewAgent creates an agent proxy. Channel numbers start out not
// available and are filled in from the inventory before syncing.
func NewAgent(serialNumber, address string, client *DeviceClient, log zerolog.Logger) *Agent {
	host, _, _ := strings.Cut(address, ".")
	return &Agent{
		SerialNumber: serialNumber,
		Address:      address,
		Name:         names.Clean(host),
		Channels: map[string]*ChannelStatus{
			ChannelLive:  {Channel: StatusNotAvailable, PublishType: StatusNotAvailable},
			ChannelLowBR: {Channel: StatusNotAvailable, PublishType: StatusNotAvailable},
		},
		client: client,
		log:    log.With().Str("ca", names.Clean(host)).Logger(),
	}
}

func (a *Agent) getPublishType(ctx context.Context, chanName string) string {
	ch := a.Channels[chanName]
	if ch.Channel == StatusNotAvailable || a.client == nil {
		return StatusNotAvailable
	}
	v, err := a.client.GetParam(ctx, ch.Channel, "publish_type")
	if err != nil {
		a.log.Warn().Err(err).Str("channel", chanName).
			Msg("unable to get publish_type")
		return StatusNotAvailable
	}
	a.LastUpdate = time.Now().UTC()
	return v
}

func (a *Agent) setPublishType(ctx context.Context, chanName, value string) string {
	ch := a.Channels[chanName]
	if ch.Channel == StatusNotAvailable || a.client == nil {
		return StatusNotAvailable
	}
	if err := a.client.SetParam(ctx, ch.Channel, "publish_type", value); err != nil {
		a.log.Warn().Err(err).Str("channel", chanName).Str("value", value).
			Msg("unable to set publish_type")
		return StatusNotAvailable
	}
	a.LastUpdate = time.Now().UTC()
	return value
}

// SyncLiveStatus refreshes the proxied publish_type of the live and
// lowBR channels from the device. When the two channels diverge it tries
// to align lowBR with live first.
func (a *Agent) SyncLiveStatus(ctx context.Context) {
	live := a.getPublishType(ctx, ChannelLive)
	lowBR := a.getPublishType(ctx, ChannelLowBR)

	if live != lowBR {
		a.log.Warn().Str("live", live).Str("lowBR", lowBR).
			Msg("publish_type diverged, aligning lowBR with live")
		lowBR = a.setPublishType(ctx, ChannelLowBR, live)
	}
	a.Channels[ChannelLive].PublishType = live
	a.Channels[ChannelLowBR].PublishType = lowBR
}

// WriteLiveStatus sets the publish_type of both livestream channels.
func (a *Agent) WriteLiveStatus(ctx context.Context, publishType string) {
	a.Channels[ChannelLive].PublishType = a.setPublishType(ctx, ChannelLive, publishType)
	a.Channels[ChannelLowBR].PublishType = a.setPublishType(ctx, ChannelLowBR, publishType)
}

// Streaming reports whether the agent's live channel is publishing.
func (a *Agent) Streaming() bool {
	return a.Channels[ChannelLive].PublishType == PublishTypeStreaming
}
