// Package handlers contains the gin HTTP handlers of the engine's REST API.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/airops/internal/application/dto"
	"github.com/turtacn/airops/internal/application/service"
	"github.com/turtacn/airops/pkg/errors"
	"github.com/turtacn/airops/pkg/logger"
)

// TenantHandler serves tenant onboarding and configuration endpoints.
type TenantHandler struct {
	tenants service.TenantAppService
	log     logger.Logger
}

// NewTenantHandler creates a TenantHandler.
func NewTenantHandler(tenants service.TenantAppService, log logger.Logger) *TenantHandler {
	return &TenantHandler{tenants: tenants, log: log.WithComponent("TenantHandler")}
}

// Onboard registers a new airline operator.
// POST /api/v1/tenants
func (h *TenantHandler) Onboard(c *gin.Context) {
	var req dto.OnboardTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.ErrInvalidRequest(err.Error()))
		return
	}

	resp, appErr := h.tenants.Onboard(c.Request.Context(), &req)
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetConfig returns the tenant's thresholds and feature flags.
// GET /api/v1/tenants/:tenant_id/config
func (h *TenantHandler) GetConfig(c *gin.Context) {
	resp, appErr := h.tenants.GetConfig(c.Request.Context(), c.Param("tenant_id"))
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateConfig replaces the tenant's thresholds or feature flags.
// PUT /api/v1/tenants/:tenant_id/config
func (h *TenantHandler) UpdateConfig(c *gin.Context) {
	var req dto.UpdateTenantConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.ErrInvalidRequest(err.Error()))
		return
	}

	resp, appErr := h.tenants.UpdateConfig(c.Request.Context(), c.Param("tenant_id"), &req)
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// respondError writes the structured error body with its mapped HTTP status.
func respondError(c *gin.Context, appErr *errors.AppError) {
	c.JSON(appErr.HTTPStatus(), errors.ToErrorResponse(appErr))
}
