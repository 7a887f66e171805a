package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sammy002621/parking-management-system-backend/internal/models"
	appErrors "github.com/sammy002621/parking-management-system-backend/pkg/errors"
)

type parkingSlotRepository interface {
	FindByID(ctx context.Context, id string) (*models.ParkingSlot, error)
	FindBySlotNumber(ctx context.Context, slotNumber string) (*models.ParkingSlot, error)
	List(ctx context.Context, filter models.SlotFilter) ([]models.ParkingSlot, int, error)
	Create(ctx context.Context, slot *models.ParkingSlot) error
	Update(ctx context.Context, slot *models.ParkingSlot) error
	Delete(ctx context.Context, id string) error
}

type slotBindingChecker interface {
	CountBoundToSlot(ctx context.Context, slotID string) (int, error)
}

// CreateSlotPayload describes a new inventory slot.
type CreateSlotPayload struct {
	SlotNumber  string `json:"slot_number" validate:"required"`
	Size        string `json:"size" validate:"required"`
	VehicleType string `json:"vehicle_type" validate:"required"`
	Location    string `json:"location"`
}

// UpdateSlotPayload changes slot attributes. Status moves only through the
// allocation flow or an explicit admin override here.
type UpdateSlotPayload struct {
	SlotNumber  *string `json:"slot_number"`
	Size        *string `json:"size"`
	VehicleType *string `json:"vehicle_type"`
	Status      *string `json:"status"`
	Location    *string `json:"location"`
}

// slotListPage is the cacheable availability listing payload.
type slotListPage struct {
	Slots      []models.ParkingSlot `json:"slots"`
	Pagination models.Pagination    `json:"pagination"`
}

// ParkingSlotService manages the slot inventory. Mutations are admin-only;
// the availability listing is open to all authenticated users and served
// through a short-lived cache.
type ParkingSlotService struct {
	repo      parkingSlotRepository
	requests  slotBindingChecker
	audit     auditRecorder
	cache     *CacheService
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewParkingSlotService constructs a ParkingSlotService.
func NewParkingSlotService(repo parkingSlotRepository, requests slotBindingChecker, audit auditRecorder, cache *CacheService, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *ParkingSlotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ParkingSlotService{
		repo:      repo,
		requests:  requests,
		audit:     audit,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger,
	}
}

// Create adds a slot to the inventory. Slot numbers are unique.
func (s *ParkingSlotService) Create(ctx context.Context, payload CreateSlotPayload, actor *models.JWTClaims, meta models.RequestMeta) (*models.ParkingSlot, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot payload")
	}

	size := models.VehicleSize(payload.Size)
	if !size.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "size must be small, medium or large")
	}

	if _, err := s.repo.FindBySlotNumber(ctx, payload.SlotNumber); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("slot number %s already exists", payload.SlotNumber))
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slot number")
	}

	slot := &models.ParkingSlot{
		SlotNumber:  payload.SlotNumber,
		Size:        size,
		VehicleType: payload.VehicleType,
		Status:      models.SlotAvailable,
		Location:    payload.Location,
	}
	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create slot")
	}

	s.invalidateListings(ctx)
	s.recordSlotAudit(ctx, actor, models.AuditActionSlotCreate, slot.ID, meta, map[string]interface{}{
		"slot_number": slot.SlotNumber,
		"size":        slot.Size,
	})

	return slot, nil
}

// Get returns one slot.
func (s *ParkingSlotService) Get(ctx context.Context, slotID string) (*models.ParkingSlot, error) {
	return s.load(ctx, slotID)
}

// List returns slots matching the filter. Pure availability listings (status
// filter only, no search) are cached briefly; anything narrower goes straight
// to the database.
func (s *ParkingSlotService) List(ctx context.Context, filter models.SlotFilter) ([]models.ParkingSlot, *models.Pagination, error) {
	cacheKey, cacheable := s.listingCacheKey(filter)
	if cacheable {
		var cached slotListPage
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return cached.Slots, &cached.Pagination, nil
		}
	}

	slots, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list slots")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	pagination := models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}

	if cacheable {
		if err := s.cache.Set(ctx, cacheKey, slotListPage{Slots: slots, Pagination: pagination}, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache slot listing", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	return slots, &pagination, nil
}

// Update changes slot attributes. A new slot number must stay unique; a
// status override is validated against the known values.
func (s *ParkingSlotService) Update(ctx context.Context, slotID string, payload UpdateSlotPayload, actor *models.JWTClaims, meta models.RequestMeta) (*models.ParkingSlot, error) {
	slot, err := s.load(ctx, slotID)
	if err != nil {
		return nil, err
	}

	if payload.SlotNumber != nil && *payload.SlotNumber != slot.SlotNumber {
		if _, err := s.repo.FindBySlotNumber(ctx, *payload.SlotNumber); err == nil {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("slot number %s already exists", *payload.SlotNumber))
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slot number")
		}
		slot.SlotNumber = *payload.SlotNumber
	}
	if payload.Size != nil {
		size := models.VehicleSize(*payload.Size)
		if !size.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "size must be small, medium or large")
		}
		slot.Size = size
	}
	if payload.VehicleType != nil {
		slot.VehicleType = *payload.VehicleType
	}
	if payload.Status != nil {
		status := models.SlotStatus(*payload.Status)
		if status != models.SlotAvailable && status != models.SlotUnavailable {
			return nil, appErrors.Clone(appErrors.ErrValidation, "status must be AVAILABLE or UNAVAILABLE")
		}
		slot.Status = status
	}
	if payload.Location != nil {
		slot.Location = *payload.Location
	}

	if err := s.repo.Update(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update slot")
	}

	s.invalidateListings(ctx)
	s.recordSlotAudit(ctx, actor, models.AuditActionSlotUpdate, slot.ID, meta, map[string]interface{}{
		"slot_number": slot.SlotNumber,
		"status":      slot.Status,
	})

	return slot, nil
}

// Delete removes a slot. Deletion is refused while an approved request holds
// the slot; the binding must be released first.
func (s *ParkingSlotService) Delete(ctx context.Context, slotID string, actor *models.JWTClaims, meta models.RequestMeta) error {
	slot, err := s.load(ctx, slotID)
	if err != nil {
		return err
	}

	bound, err := s.requests.CountBoundToSlot(ctx, slot.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slot bindings")
	}
	if bound > 0 {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("slot %s is bound to an approved request", slot.SlotNumber))
	}

	if err := s.repo.Delete(ctx, slot.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete slot")
	}

	s.invalidateListings(ctx)
	s.recordSlotAudit(ctx, actor, models.AuditActionSlotDelete, slot.ID, meta, map[string]interface{}{
		"slot_number": slot.SlotNumber,
	})

	return nil
}

// listingCacheKey builds a cache key for listings that only slice by status,
// size, or type. Searches are not cached.
func (s *ParkingSlotService) listingCacheKey(filter models.SlotFilter) (string, bool) {
	if !s.cache.Enabled() || filter.Search != "" {
		return "", false
	}

	status := "all"
	if filter.Status != nil {
		status = string(*filter.Status)
	}
	size := "all"
	if filter.Size != nil {
		size = string(*filter.Size)
	}
	vehicleType := filter.VehicleType
	if vehicleType == "" {
		vehicleType = "all"
	}
	return fmt.Sprintf("slots:list:%s:%s:%s:p%d:s%d", status, size, vehicleType, filter.Page, filter.PageSize), true
}

func (s *ParkingSlotService) invalidateListings(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "slots:*"); err != nil {
		s.logger.Warn("failed to invalidate slot listings", zap.Error(err))
	}
	if err := s.cache.Invalidate(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}

func (s *ParkingSlotService) load(ctx context.Context, slotID string) (*models.ParkingSlot, error) {
	slot, err := s.repo.FindByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "parking slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot")
	}
	return slot, nil
}

func (s *ParkingSlotService) recordSlotAudit(ctx context.Context, actor *models.JWTClaims, action, slotID string, meta models.RequestMeta, detail map[string]interface{}) {
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
		Resource:   "parking_slots",
		ResourceID: &slotID,
		NewValues:  payload,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record slot audit log", zap.String("action", action), zap.Error(err))
	}
}
