package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"cadash/internal/db"
	"cadash/internal/inventory"
	"cadash/internal/redunlive"
)

func newTestRouter(t *testing.T) (*gin.Engine, inventory.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	testDB, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(testDB))

	store := inventory.NewGormStore(testDB)
	logger := zerolog.Nop()
	redun := redunlive.NewService(store, "admin", "pwd", time.Second, logger)
	router := NewRouter(store, redun, logger, RouterOptions{
		RateLimit: rate.Limit(1000),
		RateBurst: 1000,
		CacheTTL:  time.Millisecond,
	})
	return router, store
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestVendorEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/vendors",
		gin.H{"name": "Epiphan", "model": "Pearl"})
	require.Equal(t, http.StatusCreated, w.Code)

	var vendor struct {
		ID     int64  `json:"ID"`
		NameID string `json:"NameID"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &vendor))
	assert.Equal(t, "epiphan_pearl", vendor.NameID)

	t.Run("duplicate is 400", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/vendors",
			gin.H{"name": "Epiphan", "model": "Pearl"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/vendors/987", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("delete is 400", func(t *testing.T) {
		w := doJSON(t, router, http.MethodDelete,
			fmt.Sprintf("/api/vendors/%d", vendor.ID), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("update outside allow-list is 400", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPut,
			fmt.Sprintf("/api/vendors/%d", vendor.ID), gin.H{"name_id": "x"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRoleEndpoints(t *testing.T) {
	router, store := newTestRouter(t)
	ctx := context.Background()

	vendor, err := store.CreateVendor(ctx, "Epiphan", "Pearl")
	require.NoError(t, err)
	loc, err := store.CreateLocation(ctx, "Room 1")
	require.NoError(t, err)
	cluster, err := store.CreateCluster(ctx, "c1", "c1.example.edu", "prod")
	require.NoError(t, err)
	ca, err := store.CreateCa(ctx, "ca1", "ca1.example.edu", vendor.ID, "SN1")
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodPost, "/api/roles", gin.H{
		"ca_id": ca.ID, "location_id": loc.ID, "cluster_id": cluster.ID, "name": "primary",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("role update is 405", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPut,
			fmt.Sprintf("/api/roles/%d", ca.ID), gin.H{"name": "secondary"})
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})

	t.Run("invalid role name is 400", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/roles", gin.H{
			"ca_id": ca.ID, "location_id": loc.ID, "cluster_id": cluster.ID, "name": "backup",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete role is 204", func(t *testing.T) {
		w := doJSON(t, router, http.MethodDelete,
			fmt.Sprintf("/api/roles/%d", ca.ID), nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestCaConfigEndpoint(t *testing.T) {
	router, store := newTestRouter(t)
	ctx := context.Background()

	vendor, err := store.CreateVendor(ctx, "Epiphan", "Pearl")
	require.NoError(t, err)
	loc, err := store.CreateLocation(ctx, "Sanders Theatre")
	require.NoError(t, err)
	cluster, err := store.CreateCluster(ctx, "c1", "c1.example.edu", "prod")
	require.NoError(t, err)
	ca, err := store.CreateCa(ctx, "ca1", "ca1.example.edu", vendor.ID, "SN1")
	require.NoError(t, err)
	_, err = store.CreateStreamConfig(ctx, "dce-default-stream", "abc123", "u", "p")
	require.NoError(t, err)

	t.Run("ca without role is 404", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/cas/%d/config", ca.ID), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	_, err = store.CreateRole(ctx, ca.ID, loc.ID, cluster.ID, "primary")
	require.NoError(t, err)

	t.Run("unset capture card id is 400", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/cas/%d/config", ca.ID), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	_, err = store.UpdateCa(ctx, ca.ID, map[string]any{"capture_card_id": "D12345678"})
	require.NoError(t, err)

	t.Run("sentinel device ids are 400", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/cas/%d/config", ca.ID), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("channel update then config", func(t *testing.T) {
		for i, name := range []string{"dce_pr", "dce_pn", "dce_live", "dce_live_lowbr"} {
			w := doJSON(t, router, http.MethodPut,
				fmt.Sprintf("/api/cas/%d/channels/%s", ca.ID, name),
				gin.H{"channel_id_in_device": i + 1})
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		}
		cfg, err := store.EnsureRoleConfig(ctx, ca.ID)
		require.NoError(t, err)
		for _, rec := range cfg.Recorders {
			_, err := store.UpdateRecorder(ctx, cfg.ID, rec.Name,
				map[string]any{"recorder_id_in_device": 1})
			require.NoError(t, err)
		}

		w := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/cas/%d/config", ca.ID), nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var out map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		assert.Equal(t, "D12345678", out["capture_card_id"])
		channels := out["channels"].(map[string]any)
		assert.Len(t, channels, 4)
		live := channels["dce_live"].(map[string]any)
		assert.Equal(t, "rtmp://p.epabc123.i.akamaientrypoint.net/EntryPoint", live["rtmp_url"])
	})

	t.Run("bad source layout is 400", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPut,
			fmt.Sprintf("/api/cas/%d/channels/dce_pr", ca.ID),
			gin.H{"source_layout": "not json"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLocationDeleteCascades(t *testing.T) {
	router, store := newTestRouter(t)
	ctx := context.Background()

	vendor, err := store.CreateVendor(ctx, "Epiphan", "Pearl")
	require.NoError(t, err)
	loc, err := store.CreateLocation(ctx, "Room 9")
	require.NoError(t, err)
	cluster, err := store.CreateCluster(ctx, "c1", "c1.example.edu", "prod")
	require.NoError(t, err)
	ca, err := store.CreateCa(ctx, "ca1", "ca1.example.edu", vendor.ID, "SN1")
	require.NoError(t, err)
	_, err = store.CreateRole(ctx, ca.ID, loc.ID, cluster.ID, "primary")
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/locations/%d", loc.ID), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	_, err = store.GetRole(ctx, ca.ID)
	assert.ErrorIs(t, err, inventory.ErrNotFound)
}
