package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/airops/internal/application/dto"
	"github.com/turtacn/airops/internal/application/service"
	"github.com/turtacn/airops/pkg/errors"
	"github.com/turtacn/airops/pkg/logger"
)

// EvaluationHandler serves evaluation runs and their alert and opportunity
// read paths.
type EvaluationHandler struct {
	evaluations service.EvaluationAppService
	alerts      service.AlertAppService
	log         logger.Logger
}

// NewEvaluationHandler creates an EvaluationHandler.
func NewEvaluationHandler(evaluations service.EvaluationAppService, alerts service.AlertAppService, log logger.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		evaluations: evaluations,
		alerts:      alerts,
		log:         log.WithComponent("EvaluationHandler"),
	}
}

// Evaluate triggers one evaluation run for the tenant.
// POST /api/v1/tenants/:tenant_id/evaluate
func (h *EvaluationHandler) Evaluate(c *gin.Context) {
	req := &dto.EvaluateRequest{}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(req); err != nil {
			respondError(c, errors.ErrInvalidRequest(err.Error()))
			return
		}
	}

	result, appErr := h.evaluations.EvaluateTenant(c.Request.Context(), c.Param("tenant_id"), req)
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, result)
}

// EvaluateAll triggers an evaluation run for every active tenant.
// POST /api/v1/evaluate
func (h *EvaluationHandler) EvaluateAll(c *gin.Context) {
	result, appErr := h.evaluations.EvaluateAll(c.Request.Context())
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListAlerts returns the tenant's alerts. open=true restricts to open alerts.
// GET /api/v1/tenants/:tenant_id/alerts
func (h *EvaluationHandler) ListAlerts(c *gin.Context) {
	openOnly := c.Query("open") == "true"
	limit := parseLimit(c.Query("limit"))

	alerts, appErr := h.alerts.ListAlerts(c.Request.Context(), c.Param("tenant_id"), openOnly, limit)
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "count": len(alerts)})
}

// ResolveAlert closes an open alert on operator request.
// POST /api/v1/tenants/:tenant_id/alerts/:alert_id/resolve
func (h *EvaluationHandler) ResolveAlert(c *gin.Context) {
	alert, appErr := h.alerts.ResolveAlert(c.Request.Context(), c.Param("tenant_id"), c.Param("alert_id"))
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, alert)
}

// ListOpportunities returns the tenant's cost opportunities.
// GET /api/v1/tenants/:tenant_id/opportunities
func (h *EvaluationHandler) ListOpportunities(c *gin.Context) {
	limit := parseLimit(c.Query("limit"))

	opportunities, appErr := h.alerts.ListOpportunities(c.Request.Context(), c.Param("tenant_id"), limit)
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"opportunities": opportunities, "count": len(opportunities)})
}

func parseLimit(raw string) int {
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
