package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/airops/internal/application/dto"
	appservice "github.com/turtacn/airops/internal/application/service"
	"github.com/turtacn/airops/internal/domain/models"
	domainservice "github.com/turtacn/airops/internal/domain/service"
	"github.com/turtacn/airops/internal/interfaces/http/handlers"
	"github.com/turtacn/airops/pkg/constants"
	"github.com/turtacn/airops/pkg/logger"
	"github.com/turtacn/airops/tests/fakes"
)

type handlerFixture struct {
	engine  *gin.Engine
	tenants *fakes.InMemoryTenantRepository
	alerts  *fakes.InMemoryAlertRepository
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewNoopLogger()

	tenantRepo := fakes.NewInMemoryTenantRepository()
	alertRepo := fakes.NewInMemoryAlertRepository()
	opportunityRepo := fakes.NewInMemoryOpportunityRepository()
	notifier := fakes.NewFakeNotifier()

	registry := appservice.NewTenantAppService(tenantRepo, time.Minute, log)
	engine := domainservice.NewAlertEngine(alertRepo, notifier, log)
	alertApp := appservice.NewAlertAppService(registry, alertRepo, opportunityRepo, engine, log)

	tenantHandler := handlers.NewTenantHandler(registry, log)
	evaluationHandler := handlers.NewEvaluationHandler(nil, alertApp, log)

	router := gin.New()
	v1 := router.Group("/api/v1")
	v1.POST("/tenants", tenantHandler.Onboard)
	tenant := v1.Group("/tenants/:tenant_id")
	tenant.GET("/config", tenantHandler.GetConfig)
	tenant.PUT("/config", tenantHandler.UpdateConfig)
	tenant.GET("/alerts", evaluationHandler.ListAlerts)
	tenant.POST("/alerts/:alert_id/resolve", evaluationHandler.ResolveAlert)
	tenant.GET("/opportunities", evaluationHandler.ListOpportunities)

	return &handlerFixture{engine: router, tenants: tenantRepo, alerts: alertRepo}
}

func (f *handlerFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
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
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	return rec
}

func TestTenantHandler_OnboardAndGetConfig(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/tenants", dto.OnboardTenantRequest{
		Code: "PIA",
		Name: "Pakistan International",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created dto.TenantResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "PIA", created.Code)
	require.NotEmpty(t, created.TenantID)

	rec = f.do(t, http.MethodGet, "/api/v1/tenants/"+created.TenantID+"/config", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got dto.TenantResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, created.TenantID, got.TenantID)
}

func TestTenantHandler_OnboardRejectsMissingFields(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/tenants", map[string]string{"code": "PIA"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTenantHandler_GetConfigUnknownTenant(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/tenants/missing/config", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTenantHandler_UpdateConfig(t *testing.T) {
	f := newHandlerFixture(t)
	tenant := models.NewTenant("tenant-pia", "PIA", "Pakistan International")
	require.Nil(t, f.tenants.Save(nil, tenant))

	thresholds := models.DefaultThresholds()
	thresholds.DelayCritical = 0.9
	rec := f.do(t, http.MethodPut, "/api/v1/tenants/tenant-pia/config", dto.UpdateTenantConfigRequest{
		Thresholds: &thresholds,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var got dto.TenantResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 0.9, got.Thresholds.DelayCritical)
}

func TestEvaluationHandler_ListAlerts(t *testing.T) {
	f := newHandlerFixture(t)
	tenant := models.NewTenant("tenant-pia", "PIA", "Pakistan International")
	require.Nil(t, f.tenants.Save(nil, tenant))

	now := time.Now().UTC()
	require.Nil(t, f.alerts.Save(nil, &models.Alert{
		ID:              "alert-1",
		TenantID:        "tenant-pia",
		Type:            constants.AlertTypeDelayRisk,
		Subject:         "fl-1",
		Severity:        constants.SeverityWarning,
		CreatedAt:       now,
		LastEvaluatedAt: now,
	}))

	rec := f.do(t, http.MethodGet, "/api/v1/tenants/tenant-pia/alerts?open=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Alerts []dto.AlertResponse `json:"alerts"`
		Count  int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "alert-1", body.Alerts[0].ID)
}

func TestEvaluationHandler_ResolveAlert(t *testing.T) {
	f := newHandlerFixture(t)
	tenant := models.NewTenant("tenant-pia", "PIA", "Pakistan International")
	require.Nil(t, f.tenants.Save(nil, tenant))

	now := time.Now().UTC()
	require.Nil(t, f.alerts.Save(nil, &models.Alert{
		ID:              "alert-1",
		TenantID:        "tenant-pia",
		Type:            constants.AlertTypeDelayRisk,
		Subject:         "fl-1",
		Severity:        constants.SeverityWarning,
		CreatedAt:       now,
		LastEvaluatedAt: now,
	}))

	rec := f.do(t, http.MethodPost, "/api/v1/tenants/tenant-pia/alerts/alert-1/resolve", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got dto.AlertResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.NotNil(t, got.ResolvedAt)
}

func TestEvaluationHandler_ResolveAlertUnknown(t *testing.T) {
	f := newHandlerFixture(t)
	tenant := models.NewTenant("tenant-pia", "PIA", "Pakistan International")
	require.Nil(t, f.tenants.Save(nil, tenant))

	rec := f.do(t, http.MethodPost, "/api/v1/tenants/tenant-pia/alerts/missing/resolve", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEvaluationHandler_ListOpportunitiesEmpty(t *testing.T) {
	f := newHandlerFixture(t)
	tenant := models.NewTenant("tenant-pia", "PIA", "Pakistan International")
	require.Nil(t, f.tenants.Save(nil, tenant))

	rec := f.do(t, http.MethodGet, "/api/v1/tenants/tenant-pia/opportunities", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Count)
}
