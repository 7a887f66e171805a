package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sammy002621/parking-management-system-backend/internal/models"
	"github.com/sammy002621/parking-management-system-backend/internal/repository"
	appErrors "github.com/sammy002621/parking-management-system-backend/pkg/errors"
)

// autoAssignAttempts bounds how many times automatic selection re-runs the
// matcher after losing a slot race to a concurrent approval.
const autoAssignAttempts = 3

type slotRequestRepository interface {
	FindByID(ctx context.Context, id string) (*models.SlotRequest, error)
	FindActiveByVehicle(ctx context.Context, vehicleID, excludeRequestID string) (*models.SlotRequest, error)
	List(ctx context.Context, filter models.SlotRequestFilter) ([]models.SlotRequest, int, error)
	Create(ctx context.Context, request *models.SlotRequest) error
	UpdateVehicle(ctx context.Context, requestID, vehicleID string) error
	UpdateStatus(ctx context.Context, requestID string, status models.RequestStatus, reason *string) error
	Approve(ctx context.Context, requestID string, slot *models.ParkingSlot, approvedAt time.Time) error
}

type allocationVehicleFinder interface {
	FindByID(ctx context.Context, id string) (*models.Vehicle, error)
}

type allocationSlotFinder interface {
	FindByID(ctx context.Context, id string) (*models.ParkingSlot, error)
	FindCompatible(ctx context.Context, size models.VehicleSize, vehicleType string) (*models.ParkingSlot, error)
}

type allocationUserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type auditRecorder interface {
	CreateActionLog(ctx context.Context, log *models.ActionLog) error
}

type resolutionNotifier interface {
	NotifyRequestResolved(notification RequestResolvedNotification)
}

// CreateSlotRequestPayload is the payload for opening a slot request.
type CreateSlotRequestPayload struct {
	VehicleID string `json:"vehicle_id" validate:"required"`
}

// UpdateSlotRequestPayload swaps the vehicle on a pending request.
type UpdateSlotRequestPayload struct {
	VehicleID string `json:"vehicle_id" validate:"required"`
}

// ApproveSlotRequestPayload optionally names a manual slot choice.
type ApproveSlotRequestPayload struct {
	SlotID string `json:"slot_id"`
}

// RejectSlotRequestPayload carries the optional rejection reason.
type RejectSlotRequestPayload struct {
	Reason string `json:"reason"`
}

// AllocationService owns the slot-request lifecycle and slot assignment.
// Requests move PENDING -> APPROVED | REJECTED | CANCELLED; approval binds a
// compatible slot picked manually by the admin or automatically oldest-first.
type AllocationService struct {
	requests  slotRequestRepository
	vehicles  allocationVehicleFinder
	slots     allocationSlotFinder
	users     allocationUserFinder
	audit     auditRecorder
	notifier  resolutionNotifier
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAllocationService constructs an AllocationService.
func NewAllocationService(
	requests slotRequestRepository,
	vehicles allocationVehicleFinder,
	slots allocationSlotFinder,
	users allocationUserFinder,
	audit auditRecorder,
	notifier resolutionNotifier,
	cache *CacheService,
	validate *validator.Validate,
	logger *zap.Logger,
) *AllocationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AllocationService{
		requests:  requests,
		vehicles:  vehicles,
		slots:     slots,
		users:     users,
		audit:     audit,
		notifier:  notifier,
		cache:     cache,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create opens a new PENDING request for one of the actor's vehicles. A
// vehicle may hold at most one active (PENDING or APPROVED) request.
func (s *AllocationService) Create(ctx context.Context, payload CreateSlotRequestPayload, actor *models.JWTClaims, meta models.RequestMeta) (*models.SlotRequest, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot request payload")
	}

	vehicle, err := s.vehicles.FindByID(ctx, payload.VehicleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "vehicle not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vehicle")
	}

	if vehicle.UserID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "vehicle does not belong to you")
	}

	if existing, err := s.requests.FindActiveByVehicle(ctx, vehicle.ID, ""); err == nil {
		msg := fmt.Sprintf("vehicle already has an active slot request (status: %s)", existing.RequestStatus)
		return nil, appErrors.Clone(appErrors.ErrConflict, msg)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check active requests")
	}

	request := &models.SlotRequest{
		UserID:        actor.UserID,
		VehicleID:     vehicle.ID,
		RequestStatus: models.RequestPending,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create slot request")
	}

	s.recordAudit(ctx, actor, models.AuditActionRequestCreated, request.ID, meta, map[string]interface{}{
		"vehicle_id": vehicle.ID,
	})

	return request, nil
}

// Update swaps the vehicle on a request the actor owns while it is still
// PENDING. The uniqueness rule is re-checked against the new vehicle,
// excluding the request being updated.
func (s *AllocationService) Update(ctx context.Context, requestID string, payload UpdateSlotRequestPayload, actor *models.JWTClaims, meta models.RequestMeta) (*models.SlotRequest, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot request payload")
	}

	request, err := s.loadOwnedPending(ctx, requestID, actor)
	if err != nil {
		return nil, err
	}

	vehicle, err := s.vehicles.FindByID(ctx, payload.VehicleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "vehicle not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vehicle")
	}
	if vehicle.UserID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "vehicle does not belong to you")
	}

	if vehicle.ID != request.VehicleID {
		if existing, err := s.requests.FindActiveByVehicle(ctx, vehicle.ID, request.ID); err == nil {
			msg := fmt.Sprintf("vehicle already has an active slot request (status: %s)", existing.RequestStatus)
			return nil, appErrors.Clone(appErrors.ErrConflict, msg)
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check active requests")
		}
	}

	if err := s.requests.UpdateVehicle(ctx, request.ID, vehicle.ID); err != nil {
		if errors.Is(err, repository.ErrRequestNotPending) {
			return nil, s.invalidStateError(ctx, request.ID)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update slot request")
	}
	request.VehicleID = vehicle.ID

	s.recordAudit(ctx, actor, models.AuditActionRequestUpdated, request.ID, meta, map[string]interface{}{
		"vehicle_id": vehicle.ID,
	})

	return request, nil
}

// Cancel transitions a PENDING request the actor owns to CANCELLED. A pending
// request never holds a slot, so no inventory changes.
func (s *AllocationService) Cancel(ctx context.Context, requestID string, actor *models.JWTClaims, meta models.RequestMeta) (*models.SlotRequest, error) {
	request, err := s.loadOwnedPending(ctx, requestID, actor)
	if err != nil {
		return nil, err
	}

	if err := s.requests.UpdateStatus(ctx, request.ID, models.RequestCancelled, nil); err != nil {
		if errors.Is(err, repository.ErrRequestNotPending) {
			return nil, s.invalidStateError(ctx, request.ID)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel slot request")
	}
	request.RequestStatus = models.RequestCancelled

	s.recordAudit(ctx, actor, models.AuditActionRequestCancelled, request.ID, meta, nil)

	return request, nil
}

// Approve resolves a PENDING request by binding a compatible slot, either the
// admin's manual choice or the oldest available match. The request and slot
// rows are updated in one transaction; losing the slot race on the automatic
// path re-runs the matcher before giving up.
func (s *AllocationService) Approve(ctx context.Context, requestID string, payload ApproveSlotRequestPayload, actor *models.JWTClaims, meta models.RequestMeta) (*models.SlotRequest, error) {
	request, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.RequestStatus != models.RequestPending {
		return nil, statusError(request.RequestStatus)
	}

	vehicle, err := s.vehicles.FindByID(ctx, request.VehicleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "vehicle for request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vehicle")
	}

	approvedAt := s.now()
	var slot *models.ParkingSlot
	if payload.SlotID != "" {
		slot, err = s.approveManual(ctx, request.ID, payload.SlotID, vehicle, approvedAt)
	} else {
		slot, err = s.approveAutomatic(ctx, request.ID, vehicle, approvedAt)
	}
	if err != nil {
		return nil, err
	}

	request.RequestStatus = models.RequestApproved
	request.SlotID = &slot.ID
	request.AssignedSlotNumber = &slot.SlotNumber
	request.ApprovedAt = &approvedAt

	s.invalidateAvailability(ctx)
	s.recordAudit(ctx, actor, models.AuditActionRequestApproved, request.ID, meta, map[string]interface{}{
		"slot_id":     slot.ID,
		"slot_number": slot.SlotNumber,
	})
	s.notifyResolved(ctx, request, true, "")

	return request, nil
}

// Reject resolves a PENDING request without assigning a slot.
func (s *AllocationService) Reject(ctx context.Context, requestID string, payload RejectSlotRequestPayload, actor *models.JWTClaims, meta models.RequestMeta) (*models.SlotRequest, error) {
	request, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.RequestStatus != models.RequestPending {
		return nil, statusError(request.RequestStatus)
	}

	var reason *string
	if payload.Reason != "" {
		reason = &payload.Reason
	}
	if err := s.requests.UpdateStatus(ctx, request.ID, models.RequestRejected, reason); err != nil {
		if errors.Is(err, repository.ErrRequestNotPending) {
			return nil, s.invalidStateError(ctx, request.ID)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject slot request")
	}
	request.RequestStatus = models.RequestRejected
	request.RejectionReason = reason

	s.recordAudit(ctx, actor, models.AuditActionRequestRejected, request.ID, meta, map[string]interface{}{
		"reason": payload.Reason,
	})
	s.notifyResolved(ctx, request, false, payload.Reason)

	return request, nil
}

// Get returns one request; owners see their own, admins see all.
func (s *AllocationService) Get(ctx context.Context, requestID string, actor *models.JWTClaims) (*models.SlotRequest, error) {
	request, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin && request.UserID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "slot request does not belong to you")
	}
	return request, nil
}

// List returns requests matching the filter. Non-admin actors are pinned to
// their own requests regardless of the filter.
func (s *AllocationService) List(ctx context.Context, filter models.SlotRequestFilter, actor *models.JWTClaims) ([]models.SlotRequest, *models.Pagination, error) {
	if actor.Role != models.RoleAdmin {
		filter.UserID = actor.UserID
	}

	requests, total, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list slot requests")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	return requests, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// approveManual validates the admin's slot choice against the compatibility
// predicate and claims it. No search happens here.
func (s *AllocationService) approveManual(ctx context.Context, requestID, slotID string, vehicle *models.Vehicle, approvedAt time.Time) (*models.ParkingSlot, error) {
	slot, err := s.slots.FindByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNoCompatibleSlot, "selected slot does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot")
	}

	if !slotCompatible(slot, vehicle) {
		return nil, appErrors.Clone(appErrors.ErrNoCompatibleSlot, fmt.Sprintf("slot %s is not compatible with the vehicle", slot.SlotNumber))
	}

	if err := s.requests.Approve(ctx, requestID, slot, approvedAt); err != nil {
		switch {
		case errors.Is(err, repository.ErrSlotTaken):
			return nil, appErrors.Clone(appErrors.ErrNoCompatibleSlot, fmt.Sprintf("slot %s was claimed by another approval", slot.SlotNumber))
		case errors.Is(err, repository.ErrRequestNotPending):
			return nil, s.invalidStateError(ctx, requestID)
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve slot request")
		}
	}
	return slot, nil
}

// approveAutomatic picks the oldest compatible slot and claims it, retrying
// the scan when a concurrent approval wins the slot first.
func (s *AllocationService) approveAutomatic(ctx context.Context, requestID string, vehicle *models.Vehicle, approvedAt time.Time) (*models.ParkingSlot, error) {
	for attempt := 0; attempt < autoAssignAttempts; attempt++ {
		slot, err := s.slots.FindCompatible(ctx, vehicle.Size, vehicle.VehicleType)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNoCompatibleSlot, fmt.Sprintf("no available slot matches size %s and type %s", vehicle.Size, vehicle.VehicleType))
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search for a compatible slot")
		}

		err = s.requests.Approve(ctx, requestID, slot, approvedAt)
		if err == nil {
			return slot, nil
		}
		if errors.Is(err, repository.ErrSlotTaken) {
			s.logger.Info("lost slot race, retrying automatic assignment",
				zap.String("request_id", requestID), zap.String("slot_id", slot.ID))
			continue
		}
		if errors.Is(err, repository.ErrRequestNotPending) {
			return nil, s.invalidStateError(ctx, requestID)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve slot request")
	}
	return nil, appErrors.Clone(appErrors.ErrNoCompatibleSlot, "no available slot could be claimed")
}

// slotCompatible is the compatibility predicate: the slot must be AVAILABLE,
// size must match exactly, and the type must match exactly or be the "any"
// wildcard (case-insensitive).
func slotCompatible(slot *models.ParkingSlot, vehicle *models.Vehicle) bool {
	if slot.Status != models.SlotAvailable {
		return false
	}
	if slot.Size != vehicle.Size {
		return false
	}
	return slot.VehicleType == vehicle.VehicleType || strings.EqualFold(slot.VehicleType, models.SlotTypeAny)
}

func (s *AllocationService) loadRequest(ctx context.Context, requestID string) (*models.SlotRequest, error) {
	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "slot request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot request")
	}
	return request, nil
}

func (s *AllocationService) loadOwnedPending(ctx context.Context, requestID string, actor *models.JWTClaims) (*models.SlotRequest, error) {
	request, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.UserID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "slot request does not belong to you")
	}
	if request.RequestStatus != models.RequestPending {
		return nil, statusError(request.RequestStatus)
	}
	return request, nil
}

// invalidStateError re-reads the request so the error names the state that
// won the race.
func (s *AllocationService) invalidStateError(ctx context.Context, requestID string) error {
	if request, err := s.requests.FindByID(ctx, requestID); err == nil {
		return statusError(request.RequestStatus)
	}
	return appErrors.Clone(appErrors.ErrInvalidState, "request is no longer pending")
}

func statusError(status models.RequestStatus) error {
	return appErrors.Clone(appErrors.ErrInvalidState,
		fmt.Sprintf("request is not pending (current status: %s)", strings.ToLower(string(status))))
}

func (s *AllocationService) invalidateAvailability(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "slots:*"); err != nil {
		s.logger.Warn("failed to invalidate slot availability cache", zap.Error(err))
	}
	if err := s.cache.Invalidate(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}

// recordAudit writes an action log entry, absorbing failures so audit issues
// never change the outcome of the triggering operation.
func (s *AllocationService) recordAudit(ctx context.Context, actor *models.JWTClaims, action, requestID string, meta models.RequestMeta, detail map[string]interface{}) {
	var payload []byte
	if detail != nil {
		payload, _ = json.Marshal(detail)
	}
	if err := s.audit.CreateActionLog(ctx, &models.ActionLog{
		UserID:     &actor.UserID,
		Action:     action,
		Resource:   "slot_requests",
		ResourceID: &requestID,
		NewValues:  payload,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record slot request audit log", zap.String("action", action), zap.Error(err))
	}
}

// notifyResolved dispatches a best-effort email to the requester. Lookup or
// dispatch problems are logged and dropped; the lifecycle outcome stands.
func (s *AllocationService) notifyResolved(ctx context.Context, request *models.SlotRequest, approved bool, reason string) {
	if s.notifier == nil {
		return
	}
	owner, err := s.users.FindByID(ctx, request.UserID)
	if err != nil {
		s.logger.Warn("failed to load requester for notification", zap.String("request_id", request.ID), zap.Error(err))
		return
	}

	notification := RequestResolvedNotification{
		RecipientEmail: owner.Email,
		RecipientName:  owner.FullName,
		RequestID:      request.ID,
		Approved:       approved,
		Reason:         reason,
	}
	if request.AssignedSlotNumber != nil {
		notification.SlotNumber = *request.AssignedSlotNumber
	}
	s.notifier.NotifyRequestResolved(notification)
}
