package redunlive

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDevice simulates the Epiphan admin CGI endpoints, one publish_type
// per channel number.
type fakeDevice struct {
	mu          sync.Mutex
	publishType map[string]string
	user        string
	password    string
}

func newFakeDevice(user, password string) *fakeDevice {
	return &fakeDevice{
		publishType: make(map[string]string),
		user:        user,
		password:    password,
	}
}

func (f *fakeDevice) set(channel, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.publishType[channel] = value
}

func (f *fakeDevice) get(channel string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.publishType[channel]
}

func (f *fakeDevice) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pwd, ok := r.BasicAuth()
		if !ok || user != f.user || pwd != f.password {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		// /admin/channel<N>/{get|set}_params.cgi
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 3 || !strings.HasPrefix(parts[1], "channel") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		channel := strings.TrimPrefix(parts[1], "channel")
		switch parts[2] {
		case "get_params.cgi":
			fmt.Fprintf(w, "publish_type = %s\n", f.get(channel))
		case "set_params.cgi":
			f.set(channel, r.URL.Query().Get("publish_type"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func testAgent(t *testing.T, serverURL string) *Agent {
	t.Helper()
	address := strings.TrimPrefix(serverURL, "http://")
	client := NewDeviceClient(address, "admin", "pwd", time.Second)
	agent := NewAgent("SN1", address, client, zerolog.Nop())
	agent.Channels[ChannelLive].Channel = "3"
	agent.Channels[ChannelLowBR].Channel = "4"
	return agent
}

func TestAgentSyncLiveStatus(t *testing.T) {
	device := newFakeDevice("admin", "pwd")
	server := httptest.NewServer(device.handler())
	defer server.Close()

	device.set("3", PublishTypeStreaming)
	device.set("4", PublishTypeStreaming)

	agent := testAgent(t, server.URL)
	agent.SyncLiveStatus(context.Background())

	assert.Equal(t, PublishTypeStreaming, agent.Channels[ChannelLive].PublishType)
	assert.Equal(t, PublishTypeStreaming, agent.Channels[ChannelLowBR].PublishType)
	assert.True(t, agent.Streaming())
}

func TestAgentSyncAlignsDivergedLowBR(t *testing.T) {
	device := newFakeDevice("admin", "pwd")
	server := httptest.NewServer(device.handler())
	defer server.Close()

	device.set("3", PublishTypeStreaming)
	device.set("4", PublishTypeStopped)

	agent := testAgent(t, server.URL)
	agent.SyncLiveStatus(context.Background())

	assert.Equal(t, PublishTypeStreaming, agent.Channels[ChannelLive].PublishType)
	assert.Equal(t, PublishTypeStreaming, agent.Channels[ChannelLowBR].PublishType)
	assert.Equal(t, PublishTypeStreaming, device.get("4"), "device lowBR channel realigned")
}

func TestAgentUnreachableDevice(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	agent := testAgent(t, server.URL)
	server.Close()

	agent.SyncLiveStatus(context.Background())
	assert.Equal(t, StatusNotAvailable, agent.Channels[ChannelLive].PublishType)
	assert.Equal(t, StatusNotAvailable, agent.Channels[ChannelLowBR].PublishType)
	assert.False(t, agent.Streaming())
}

func TestAgentUnknownChannel(t *testing.T) {
	device := newFakeDevice("admin", "pwd")
	server := httptest.NewServer(device.handler())
	defer server.Close()

	address := strings.TrimPrefix(server.URL, "http://")
	client := NewDeviceClient(address, "admin", "pwd", time.Second)
	agent := NewAgent("SN1", address, client, zerolog.Nop())
	// channel numbers never wired in
	agent.SyncLiveStatus(context.Background())
	assert.Equal(t, StatusNotAvailable, agent.Channels[ChannelLive].PublishType)
}

func TestAgentWriteLiveStatus(t *testing.T) {
	device := newFakeDevice("admin", "pwd")
	server := httptest.NewServer(device.handler())
	defer server.Close()

	device.set("3", PublishTypeStopped)
	device.set("4", PublishTypeStopped)

	agent := testAgent(t, server.URL)
	agent.WriteLiveStatus(context.Background(), PublishTypeStreaming)

	assert.Equal(t, PublishTypeStreaming, device.get("3"))
	assert.Equal(t, PublishTypeStreaming, device.get("4"))
	assert.Equal(t, PublishTypeStreaming, agent.Channels[ChannelLive].PublishType)
}

func TestAgentNameFromAddress(t *testing.T) {
	agent := NewAgent("SN1", "Fake-Epiphan.dce.example.edu", nil, zerolog.Nop())
	require.Equal(t, "fake_epiphan", agent.Name)
}
