package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/sammy002621/parking-management-system-backend/internal/models"
	appErrors "github.com/sammy002621/parking-management-system-backend/pkg/errors"
)

type actionLogRepository interface {
	List(ctx context.Context, filter models.ActionLogFilter) ([]models.ActionLog, int, error)
}

// AuditService exposes the read side of the action log for admins. Writing
// happens inside the domain services; there is no API to mutate the trail.
type AuditService struct {
	repo   actionLogRepository
	logger *zap.Logger
}

// NewAuditService constructs an AuditService.
func NewAuditService(repo actionLogRepository, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, logger: logger}
}

// List returns action logs matching the filter, newest first.
func (s *AuditService) List(ctx context.Context, filter models.ActionLogFilter) ([]models.ActionLog, *models.Pagination, error) {
	logs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list action logs")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	return logs, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}
