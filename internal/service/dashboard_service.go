package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sammy002621/parking-management-system-backend/internal/models"
	appErrors "github.com/sammy002621/parking-management-system-backend/pkg/errors"
)

const dashboardCacheKey = "dashboard:summary"

type userCounter interface {
	Count(ctx context.Context) (int, error)
}

type vehicleCounter interface {
	Count(ctx context.Context) (int, error)
}

type slotCounter interface {
	CountByStatus(ctx context.Context) (map[models.SlotStatus]int, error)
}

type requestCounter interface {
	CountByStatus(ctx context.Context) (map[models.RequestStatus]int, error)
}

// DashboardService assembles headline counts for the admin dashboard. The
// summary is cached briefly; mutations in the domain services invalidate the
// dashboard pattern so the next read rebuilds it.
type DashboardService struct {
	users    userCounter
	vehicles vehicleCounter
	slots    slotCounter
	requests requestCounter
	metrics  *MetricsService
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(users userCounter, vehicles vehicleCounter, slots slotCounter, requests requestCounter, metrics *MetricsService, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		users:    users,
		vehicles: vehicles,
		slots:    slots,
		requests: requests,
		metrics:  metrics,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Summary returns the dashboard aggregate, from cache when fresh. The system
// metrics block is always live; only the database counts are cached.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	var cached models.DashboardSummary
	if hit, _ := s.cache.Get(ctx, dashboardCacheKey, &cached); hit {
		cached.System = s.metrics.Snapshot()
		return &cached, nil
	}

	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count users")
	}
	totalVehicles, err := s.vehicles.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count vehicles")
	}
	slotCounts, err := s.slots.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count slots")
	}
	requestCounts, err := s.requests.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count requests")
	}

	summary := &models.DashboardSummary{
		TotalUsers:       totalUsers,
		TotalVehicles:    totalVehicles,
		SlotsAvailable:   slotCounts[models.SlotAvailable],
		SlotsUnavailable: slotCounts[models.SlotUnavailable],
		RequestsPending:  requestCounts[models.RequestPending],
		RequestsApproved: requestCounts[models.RequestApproved],
		RequestsRejected: requestCounts[models.RequestRejected],
		RequestsCanceled: requestCounts[models.RequestCancelled],
		GeneratedAt:      time.Now().UTC(),
	}

	if err := s.cache.Set(ctx, dashboardCacheKey, summary, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache dashboard summary", zap.Error(err))
	}

	summary.System = s.metrics.Snapshot()
	return summary, nil
}
