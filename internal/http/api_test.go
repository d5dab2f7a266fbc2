package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"hac-portal/internal/domain"
	"hac-portal/internal/repository/sqlite"
	"hac-portal/internal/service"
)

type testPortal struct {
	router *gin.Engine
}

func newTestPortal(t *testing.T) *testPortal {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	userRepo := sqlite.NewUserRepository(db)
	entryRepo := sqlite.NewTimeEntryRepository(db)
	adjustmentRepo := sqlite.NewAdjustmentRepository(db)
	inventoryRepo := sqlite.NewInventoryRepository(db)
	for _, init := range []func(context.Context) error{
		userRepo.Init, entryRepo.Init, adjustmentRepo.Init, inventoryRepo.Init,
	} {
		require.NoError(t, init(ctx))
	}

	users := service.NewUserService(userRepo)
	tracking := service.NewTrackingService(entryRepo, adjustmentRepo)
	inventory := service.NewInventoryService(inventoryRepo)

	require.NoError(t, users.Seed(ctx, []service.UserSeed{
		{Username: "admin", Password: "admin-secret", Role: domain.RoleAdmin},
		{Username: "esteban", Password: "esteban-secret", DailyHours: 8, CanBackfill: true},
		{Username: "jervaice", Password: "jervaice-secret", DailyHours: 8, CanManageInventory: true},
	}))

	logger := logrus.New()
	handler := NewHandler(users, tracking, inventory, nil, "", "", "test-secret", time.Hour, logger)

	router := gin.New()
	handler.RegisterRoutes(router)
	return &testPortal{router: router}
}

func (p *testPortal) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	p.router.ServeHTTP(rec, req)
	return rec
}

func (p *testPortal) login(t *testing.T, username, password string) string {
	t.Helper()
	rec := p.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestLogin(t *testing.T) {
	p := newTestPortal(t)

	rec := p.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "esteban", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = p.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "esteban"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	token := p.login(t, "esteban", "esteban-secret")

	rec = p.do(t, http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		Username    string `json:"username"`
		CanBackfill bool   `json:"can_backfill"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "esteban", me.Username)
	assert.True(t, me.CanBackfill)
}

func TestAuthRequired(t *testing.T) {
	p := newTestPortal(t)

	rec := p.do(t, http.MethodGet, "/api/time/entries", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = p.do(t, http.MethodGet, "/api/time/entries", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestClockFlow(t *testing.T) {
	p := newTestPortal(t)
	token := p.login(t, "esteban", "esteban-secret")

	rec := p.do(t, http.MethodPost, "/api/time/clock-in", token, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = p.do(t, http.MethodPost, "/api/time/clock-in", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = p.do(t, http.MethodGet, "/api/time/entries", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Active *struct {
			Open bool `json:"open"`
		} `json:"active"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.NotNil(t, listing.Active)
	assert.True(t, listing.Active.Open)

	rec = p.do(t, http.MethodPost, "/api/time/clock-out", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = p.do(t, http.MethodPost, "/api/time/clock-out", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestManualEntryCapability(t *testing.T) {
	p := newTestPortal(t)

	body := gin.H{"date": "2025-01-08", "clock_in": "08:00", "clock_out": "17:00"}

	// jervaice lacks the backfill capability
	jervaice := p.login(t, "jervaice", "jervaice-secret")
	rec := p.do(t, http.MethodPost, "/api/time/manual", jervaice, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	esteban := p.login(t, "esteban", "esteban-secret")
	rec = p.do(t, http.MethodPost, "/api/time/manual", esteban, body)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// clock-out before clock-in is rejected
	rec = p.do(t, http.MethodPost, "/api/time/manual", esteban, gin.H{
		"date": "2025-01-09", "clock_in": "17:00", "clock_out": "08:00",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = p.do(t, http.MethodPost, "/api/time/manual", esteban, gin.H{
		"date": "not-a-date", "clock_in": "08:00", "clock_out": "17:00",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminGateAndOverview(t *testing.T) {
	p := newTestPortal(t)

	esteban := p.login(t, "esteban", "esteban-secret")
	rec := p.do(t, http.MethodGet, "/api/admin/overview", esteban, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := p.login(t, "admin", "admin-secret")
	rec = p.do(t, http.MethodGet, "/api/admin/overview", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var overview struct {
		Users []struct {
			User struct {
				Username string `json:"username"`
			} `json:"user"`
			Balance struct {
				Display string `json:"balance_display"`
			} `json:"balance"`
		} `json:"users"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &overview))
	// the admin itself is excluded
	require.Len(t, overview.Users, 2)
	for _, u := range overview.Users {
		assert.NotEqual(t, "admin", u.User.Username)
		assert.NotEmpty(t, u.Balance.Display)
	}
}

func TestSetBalanceViaAPI(t *testing.T) {
	p := newTestPortal(t)
	admin := p.login(t, "admin", "admin-secret")
	esteban := p.login(t, "esteban", "esteban-secret")

	// find esteban's id through the overview
	rec := p.do(t, http.MethodGet, "/api/admin/overview", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var overview struct {
		Users []struct {
			User struct {
				ID       int64  `json:"id"`
				Username string `json:"username"`
			} `json:"user"`
		} `json:"users"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &overview))
	var estebanID int64
	for _, u := range overview.Users {
		if u.User.Username == "esteban" {
			estebanID = u.User.ID
		}
	}
	require.NotZero(t, estebanID)

	path := fmt.Sprintf("/api/admin/users/%d/balance", estebanID)

	rec = p.do(t, http.MethodPost, path, admin, gin.H{"new_total": "abc", "reason": "typo"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = p.do(t, http.MethodPost, path, admin, gin.H{"new_total": "+02:30", "reason": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = p.do(t, http.MethodPost, path, admin, gin.H{"new_total": "+02:30", "reason": "migrated balance"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = p.do(t, http.MethodGet, "/api/time/balance", esteban, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary struct {
		Seconds int64  `json:"balance_seconds"`
		Display string `json:"balance_display"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, int64(9000), summary.Seconds)
	assert.Equal(t, "02h 30m", summary.Display)

	// unknown user id
	rec = p.do(t, http.MethodPost, "/api/admin/users/9999/balance", admin, gin.H{"new_total": "+00:01", "reason": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminEntryEdit(t *testing.T) {
	p := newTestPortal(t)
	admin := p.login(t, "admin", "admin-secret")
	esteban := p.login(t, "esteban", "esteban-secret")

	rec := p.do(t, http.MethodPost, "/api/time/manual", esteban, gin.H{
		"date": "2025-01-08", "clock_in": "08:00", "clock_out": "16:00",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	path := fmt.Sprintf("/api/admin/entries/%d", created.ID)

	rec = p.do(t, http.MethodPut, path, admin, gin.H{"clock_in": "2025-01-08T08:00", "clock_out": "2025-01-08T07:00"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = p.do(t, http.MethodPut, path, admin, gin.H{"clock_in": "garbage", "clock_out": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = p.do(t, http.MethodPut, path, admin, gin.H{"clock_in": "2025-01-08T08:00", "clock_out": "2025-01-08T17:00"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = p.do(t, http.MethodDelete, path, admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = p.do(t, http.MethodDelete, path, admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInventoryGateAndExport(t *testing.T) {
	p := newTestPortal(t)

	esteban := p.login(t, "esteban", "esteban-secret")
	rec := p.do(t, http.MethodGet, "/api/inventory", esteban, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	jervaice := p.login(t, "jervaice", "jervaice-secret")

	rec = p.do(t, http.MethodPost, "/api/inventory", jervaice, gin.H{
		"name": "Botas de Hule", "brand": "Varios", "color": "Negro",
		"quantity": "7", "status": "Bueno", "location": "Estante Cochera Izquierda",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = p.do(t, http.MethodPost, "/api/inventory", jervaice, gin.H{"name": "Anemómetro"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = p.do(t, http.MethodGet, "/api/inventory", jervaice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "Anemómetro", items[0].Name, "list is ordered by name")

	rec = p.do(t, http.MethodPost, "/api/inventory/export", jervaice, gin.H{"ids": []int64{}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Inventario_HAC2025_")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	got, err := f.GetCellValue("Inventario de Activos", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Anemómetro", got)

	// a selection that matches nothing exports nothing
	rec = p.do(t, http.MethodPost, "/api/inventory/export", jervaice, gin.H{"ids": []int64{9999}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLetterDownload(t *testing.T) {
	p := newTestPortal(t)
	admin := p.login(t, "admin", "admin-secret")

	rec := p.do(t, http.MethodPost, "/api/admin/letters", admin, gin.H{
		"doc_date":         "2025-06-15",
		"project_type":     "Estudio Hidrológico",
		"project_name":     "Cuenca Norte",
		"client_name":      "Municipalidad de Escazú",
		"year":             "2025",
		"contact_person":   "María Rojas",
		"contact_position": "Directora de Obras",
		"contact_email":    "mrojas@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Carta_Satisfaccion_Cuenca Norte.docx")
	assert.NotEmpty(t, rec.Body.Bytes())

	// project name is mandatory: it names the file
	rec = p.do(t, http.MethodPost, "/api/admin/letters", admin, gin.H{"doc_date": "2025-06-15"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestArchiveUnconfigured(t *testing.T) {
	p := newTestPortal(t)
	admin := p.login(t, "admin", "admin-secret")

	rec := p.do(t, http.MethodGet, "/api/admin/archive", admin, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
