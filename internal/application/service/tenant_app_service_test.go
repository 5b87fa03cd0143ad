package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/airops/internal/application/dto"
	appservice "github.com/turtacn/airops/internal/application/service"
	"github.com/turtacn/airops/internal/domain/models"
	"github.com/turtacn/airops/pkg/errors"
	"github.com/turtacn/airops/pkg/logger"
	"github.com/turtacn/airops/tests/fakes"
)

func newRegistry(t *testing.T) (appservice.TenantAppService, *fakes.InMemoryTenantRepository) {
	t.Helper()
	repo := fakes.NewInMemoryTenantRepository()
	return appservice.NewTenantAppService(repo, time.Minute, logger.NewNoopLogger()), repo
}

func TestTenantAppService_OnboardAndResolve(t *testing.T) {
	registry, _ := newRegistry(t)
	ctx := context.Background()

	resp, err := registry.Onboard(ctx, &dto.OnboardTenantRequest{Code: "PIA", Name: "Pakistan International"})
	require.Nil(t, err)
	assert.NotEmpty(t, resp.TenantID)
	assert.True(t, resp.Features.DelayPrediction)

	tctx, err := registry.Resolve(ctx, resp.TenantID)
	require.Nil(t, err)
	assert.Equal(t, "PIA", tctx.Code)
	assert.Equal(t, resp.Thresholds, tctx.Thresholds)
}

func TestTenantAppService_ResolveUnknownTenantFailsClosed(t *testing.T) {
	registry, _ := newRegistry(t)

	_, err := registry.Resolve(context.Background(), "no-such-tenant")
	require.NotNil(t, err)
	assert.True(t, errors.IsUnknownTenant(err))

	_, err = registry.Resolve(context.Background(), "")
	require.NotNil(t, err)
	assert.True(t, errors.IsUnknownTenant(err))
}

func TestTenantAppService_RetiredTenantDoesNotResolve(t *testing.T) {
	registry, repo := newRegistry(t)
	ctx := context.Background()

	tenant := models.NewTenant("tenant-ret", "RET", "Retired Air")
	tenant.Retire(time.Now().UTC())
	require.Nil(t, repo.Save(ctx, tenant))

	_, err := registry.Resolve(ctx, "tenant-ret")
	require.NotNil(t, err)
	assert.True(t, errors.IsUnknownTenant(err))
}

func TestTenantAppService_UpdateConfigInvalidatesCache(t *testing.T) {
	registry, _ := newRegistry(t)
	ctx := context.Background()

	resp, err := registry.Onboard(ctx, &dto.OnboardTenantRequest{Code: "PIA", Name: "Pakistan International"})
	require.Nil(t, err)

	// Prime the cache.
	_, err = registry.Resolve(ctx, resp.TenantID)
	require.Nil(t, err)

	thresholds := models.DefaultThresholds()
	thresholds.DelayCritical = 0.9
	_, err = registry.UpdateConfig(ctx, resp.TenantID, &dto.UpdateTenantConfigRequest{Thresholds: &thresholds})
	require.Nil(t, err)

	tctx, err := registry.Resolve(ctx, resp.TenantID)
	require.Nil(t, err)
	assert.Equal(t, 0.9, tctx.Thresholds.DelayCritical)
}

func TestTenantAppService_UpdateConfigRequiresChanges(t *testing.T) {
	registry, _ := newRegistry(t)

	_, err := registry.UpdateConfig(context.Background(), "tenant-x", &dto.UpdateTenantConfigRequest{})
	require.NotNil(t, err)
}

func TestTenantAppService_ListActiveExcludesRetired(t *testing.T) {
	registry, repo := newRegistry(t)
	ctx := context.Background()

	require.Nil(t, repo.Save(ctx, models.NewTenant("tenant-a", "AAA", "Alpha Air")))
	retired := models.NewTenant("tenant-b", "BBB", "Beta Air")
	retired.Retire(time.Now().UTC())
	require.Nil(t, repo.Save(ctx, retired))

	active, err := registry.ListActive(ctx)
	require.Nil(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "tenant-a", active[0].TenantID)
}
