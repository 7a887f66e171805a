package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sammy002621/parking-management-system-backend/internal/models"
	appErrors "github.com/sammy002621/parking-management-system-backend/pkg/errors"
)

type userRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	Update(ctx context.Context, user *models.User) error
	DeleteCascade(ctx context.Context, userID string) error
}

// UpdateProfilePayload holds the self-service profile fields.
type UpdateProfilePayload struct {
	FullName string `json:"full_name" validate:"required"`
}

// AdminUpdateUserPayload holds the fields an admin may change on any account.
type AdminUpdateUserPayload struct {
	FullName *string          `json:"full_name"`
	Role     *models.UserRole `json:"role"`
	Active   *bool            `json:"active"`
}

// UserService covers profile management and admin account administration.
type UserService struct {
	repo      userRepository
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(repo userRepository, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// GetProfile returns the actor's own account.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return s.load(ctx, userID)
}

// UpdateProfile lets the actor change their own display name. Email, role and
// active flag are out of reach on this path.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, payload UpdateProfilePayload, meta models.RequestMeta) (*models.User, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}

	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.FullName = payload.FullName
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}

	s.recordUserAudit(ctx, userID, models.AuditActionUserUpdate, user.ID, meta, map[string]interface{}{
		"full_name": user.FullName,
	})

	return user, nil
}

// Get returns any account. Admin only; the handler enforces the role.
func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	return s.load(ctx, userID)
}

// List returns accounts matching the filter with pagination metadata.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	return users, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// AdminUpdate changes name, role, or active flag on any account.
func (s *UserService) AdminUpdate(ctx context.Context, userID string, payload AdminUpdateUserPayload, actor *models.JWTClaims, meta models.RequestMeta) (*models.User, error) {
	if payload.Role != nil && !payload.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "role must be USER or ADMIN")
	}

	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if payload.FullName != nil {
		user.FullName = *payload.FullName
	}
	if payload.Role != nil {
		user.Role = *payload.Role
	}
	if payload.Active != nil {
		user.Active = *payload.Active
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}

	s.recordUserAudit(ctx, actor.UserID, models.AuditActionUserUpdate, user.ID, meta, map[string]interface{}{
		"full_name": user.FullName,
		"role":      user.Role,
		"active":    user.Active,
	})

	return user, nil
}

// Delete removes an account and everything owned by it. Slots bound to the
// account's approved requests return to the available pool. Admins cannot
// delete themselves; demote first, then have another admin remove the account.
func (s *UserService) Delete(ctx context.Context, userID string, actor *models.JWTClaims, meta models.RequestMeta) error {
	if userID == actor.UserID {
		return appErrors.Clone(appErrors.ErrInvalidState, "cannot delete your own account")
	}

	if _, err := s.load(ctx, userID); err != nil {
		return err
	}

	if err := s.repo.DeleteCascade(ctx, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}

	s.recordUserAudit(ctx, actor.UserID, models.AuditActionUserDelete, userID, meta, nil)

	return nil
}

func (s *UserService) load(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

func (s *UserService) recordUserAudit(ctx context.Context, actorID, action, resourceID string, meta models.RequestMeta, detail map[string]interface{}) {
	if s.audit == nil {
		return
	}
	var payload []byte
	if detail != nil {
		payload, _ = json.Marshal(detail)
	}
	if err := s.audit.CreateActionLog(ctx, &models.ActionLog{
		UserID:     &actorID,
		Action:     action,
		Resource:   "users",
		ResourceID: &resourceID,
		NewValues:  payload,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record user audit log", zap.String("action", action), zap.Error(err))
	}
}
