package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sammy002621/parking-management-system-backend/internal/models"
	appErrors "github.com/sammy002621/parking-management-system-backend/pkg/errors"
)

type vehicleRepository interface {
	FindByID(ctx context.Context, id string) (*models.Vehicle, error)
	FindByPlateNumber(ctx context.Context, plate string) (*models.Vehicle, error)
	List(ctx context.Context, filter models.VehicleFilter) ([]models.Vehicle, int, error)
	Create(ctx context.Context, vehicle *models.Vehicle) error
	Update(ctx context.Context, vehicle *models.Vehicle) error
	Delete(ctx context.Context, id string) error
}

type vehicleRequestChecker interface {
	FindActiveByVehicle(ctx context.Context, vehicleID, excludeRequestID string) (*models.SlotRequest, error)
}

// CreateVehiclePayload registers a vehicle under the acting user.
type CreateVehiclePayload struct {
	PlateNumber string          `json:"plate_number" validate:"required"`
	Size        string          `json:"size" validate:"required"`
	VehicleType string          `json:"vehicle_type" validate:"required"`
	Attributes  json.RawMessage `json:"attributes"`
}

// UpdateVehiclePayload changes the mutable vehicle fields. The plate number
// identifies the vehicle for life and cannot be edited.
type UpdateVehiclePayload struct {
	Size        string          `json:"size" validate:"required"`
	VehicleType string          `json:"vehicle_type" validate:"required"`
	Attributes  json.RawMessage `json:"attributes"`
}

// VehicleService manages the vehicle registry.
type VehicleService struct {
	repo      vehicleRepository
	requests  vehicleRequestChecker
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewVehicleService constructs a VehicleService.
func NewVehicleService(repo vehicleRepository, requests vehicleRequestChecker, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *VehicleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &VehicleService{repo: repo, requests: requests, audit: audit, validator: validate, logger: logger}
}

// Create registers a vehicle for the actor. Plate numbers are globally unique.
func (s *VehicleService) Create(ctx context.Context, payload CreateVehiclePayload, actor *models.JWTClaims, meta models.RequestMeta) (*models.Vehicle, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid vehicle payload")
	}

	size := models.VehicleSize(payload.Size)
	if !size.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "size must be small, medium or large")
	}

	if _, err := s.repo.FindByPlateNumber(ctx, payload.PlateNumber); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("plate number %s is already registered", payload.PlateNumber))
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check plate number")
	}

	vehicle := &models.Vehicle{
		UserID:      actor.UserID,
		PlateNumber: payload.PlateNumber,
		Size:        size,
		VehicleType: payload.VehicleType,
		Attributes:  payload.Attributes,
	}
	if err := s.repo.Create(ctx, vehicle); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create vehicle")
	}

	s.recordVehicleAudit(ctx, actor, models.AuditActionVehicleCreate, vehicle.ID, meta, map[string]interface{}{
		"plate_number": vehicle.PlateNumber,
		"size":         vehicle.Size,
	})

	return vehicle, nil
}

// Get returns one vehicle; owners see their own, admins see all.
func (s *VehicleService) Get(ctx context.Context, vehicleID string, actor *models.JWTClaims) (*models.Vehicle, error) {
	vehicle, err := s.load(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin && vehicle.UserID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "vehicle does not belong to you")
	}
	return vehicle, nil
}

// List returns vehicles matching the filter. Non-admin actors are pinned to
// their own vehicles regardless of the filter.
func (s *VehicleService) List(ctx context.Context, filter models.VehicleFilter, actor *models.JWTClaims) ([]models.Vehicle, *models.Pagination, error) {
	if actor.Role != models.RoleAdmin {
		filter.UserID = actor.UserID
	}

	vehicles, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list vehicles")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	return vehicles, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Update changes size, type, or attributes on a vehicle the actor owns.
func (s *VehicleService) Update(ctx context.Context, vehicleID string, payload UpdateVehiclePayload, actor *models.JWTClaims, meta models.RequestMeta) (*models.Vehicle, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid vehicle payload")
	}

	size := models.VehicleSize(payload.Size)
	if !size.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "size must be small, medium or large")
	}

	vehicle, err := s.loadOwned(ctx, vehicleID, actor)
	if err != nil {
		return nil, err
	}

	vehicle.Size = size
	vehicle.VehicleType = payload.VehicleType
	vehicle.Attributes = payload.Attributes

	if err := s.repo.Update(ctx, vehicle); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update vehicle")
	}

	s.recordVehicleAudit(ctx, actor, models.AuditActionVehicleUpdate, vehicle.ID, meta, map[string]interface{}{
		"size":         vehicle.Size,
		"vehicle_type": vehicle.VehicleType,
	})

	return vehicle, nil
}

// Delete removes a vehicle the actor owns. Deletion is refused while a
// PENDING or APPROVED request references the vehicle; resolve the request
// first.
func (s *VehicleService) Delete(ctx context.Context, vehicleID string, actor *models.JWTClaims, meta models.RequestMeta) error {
	vehicle, err := s.loadOwned(ctx, vehicleID, actor)
	if err != nil {
		return err
	}

	if existing, err := s.requests.FindActiveByVehicle(ctx, vehicle.ID, ""); err == nil {
		msg := fmt.Sprintf("vehicle has an active slot request (status: %s)", existing.RequestStatus)
		return appErrors.Clone(appErrors.ErrConflict, msg)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check active requests")
	}

	if err := s.repo.Delete(ctx, vehicle.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete vehicle")
	}

	s.recordVehicleAudit(ctx, actor, models.AuditActionVehicleDelete, vehicle.ID, meta, map[string]interface{}{
		"plate_number": vehicle.PlateNumber,
	})

	return nil
}

func (s *VehicleService) load(ctx context.Context, vehicleID string) (*models.Vehicle, error) {
	vehicle, err := s.repo.FindByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "vehicle not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vehicle")
	}
	return vehicle, nil
}

func (s *VehicleService) loadOwned(ctx context.Context, vehicleID string, actor *models.JWTClaims) (*models.Vehicle, error) {
	vehicle, err := s.load(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.UserID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "vehicle does not belong to you")
	}
	return vehicle, nil
}

func (s *VehicleService) recordVehicleAudit(ctx context.Context, actor *models.JWTClaims, action, vehicleID string, meta models.RequestMeta, detail map[string]interface{}) {
	if s.audit == nil {
		return
	}
	var payload []byte
	if detail != nil {
		payload, _ = json.Marshal(detail)
	}
	if err := s.audit.CreateActionLog(ctx, &models.ActionLog{
		UserID:     &actor.UserID,
		Action:     action,
		Resource:   "vehicles",
		ResourceID: &vehicleID,
		NewValues:  payload,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record vehicle audit log", zap.String("action", action), zap.Error(err))
	}
}
