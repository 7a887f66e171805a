package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sammy002621/parking-management-system-backend/internal/models"
	"github.com/sammy002621/parking-management-system-backend/internal/repository"
	appErrors "github.com/sammy002621/parking-management-system-backend/pkg/errors"
)

type stubRequestRepo struct {
	requests     map[string]*models.SlotRequest
	activeByVeh  map[string]*models.SlotRequest
	approveErrs  []error
	approveCalls int
	created      []*models.SlotRequest
}

func (m *stubRequestRepo) FindByID(ctx context.Context, id string) (*models.SlotRequest, error) {
	if request, ok := m.requests[id]; ok {
		copy := *request
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *stubRequestRepo) FindActiveByVehicle(ctx context.Context, vehicleID, excludeRequestID string) (*models.SlotRequest, error) {
	if request, ok := m.activeByVeh[vehicleID]; ok && request.ID != excludeRequestID {
		copy := *request
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *stubRequestRepo) List(ctx context.Context, filter models.SlotRequestFilter) ([]models.SlotRequest, int, error) {
	var out []models.SlotRequest
	for _, request := range m.requests {
		if filter.UserID != "" && request.UserID != filter.UserID {
			continue
		}
		out = append(out, *request)
	}
	return out, len(out), nil
}

func (m *stubRequestRepo) Create(ctx context.Context, request *models.SlotRequest) error {
	if request.ID == "" {
		request.ID = "req-new"
	}
	if m.requests == nil {
		m.requests = make(map[string]*models.SlotRequest)
	}
	copy := *request
	m.requests[request.ID] = &copy
	m.created = append(m.created, &copy)
	return nil
}

func (m *stubRequestRepo) UpdateVehicle(ctx context.Context, requestID, vehicleID string) error {
	request, ok := m.requests[requestID]
	if !ok || request.RequestStatus != models.RequestPending {
		return repository.ErrRequestNotPending
	}
	request.VehicleID = vehicleID
	return nil
}

func (m *stubRequestRepo) UpdateStatus(ctx context.Context, requestID string, status models.RequestStatus, reason *string) error {
	request, ok := m.requests[requestID]
	if !ok || request.RequestStatus != models.RequestPending {
		return repository.ErrRequestNotPending
	}
	request.RequestStatus = status
	request.RejectionReason = reason
	return nil
}

func (m *stubRequestRepo) Approve(ctx context.Context, requestID string, slot *models.ParkingSlot, approvedAt time.Time) error {
	m.approveCalls++
	if len(m.approveErrs) > 0 {
		err := m.approveErrs[0]
		m.approveErrs = m.approveErrs[1:]
		if err != nil {
			return err
		}
	}
	request, ok := m.requests[requestID]
	if !ok || request.RequestStatus != models.RequestPending {
		return repository.ErrRequestNotPending
	}
	request.RequestStatus = models.RequestApproved
	request.SlotID = &slot.ID
	request.AssignedSlotNumber = &slot.SlotNumber
	request.ApprovedAt = &approvedAt
	return nil
}

type stubVehicleFinder struct {
	vehicles map[string]*models.Vehicle
}

func (m *stubVehicleFinder) FindByID(ctx context.Context, id string) (*models.Vehicle, error) {
	if vehicle, ok := m.vehicles[id]; ok {
		copy := *vehicle
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

type stubSlotFinder struct {
	slots []*models.ParkingSlot
}

func (m *stubSlotFinder) FindByID(ctx context.Context, id string) (*models.ParkingSlot, error) {
	for _, slot := range m.slots {
		if slot.ID == id {
			copy := *slot
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *stubSlotFinder) FindCompatible(ctx context.Context, size models.VehicleSize, vehicleType string) (*models.ParkingSlot, error) {
	for _, slot := range m.slots {
		if slot.Status != models.SlotAvailable || slot.Size != size {
			continue
		}
		if slot.VehicleType == vehicleType || slot.VehicleType == models.SlotTypeAny {
			copy := *slot
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

type stubUserFinder struct {
	users map[string]*models.User
}

func (m *stubUserFinder) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		copy := *user
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

type stubAudit struct {
	logs []*models.ActionLog
}

func (m *stubAudit) CreateActionLog(ctx context.Context, log *models.ActionLog) error {
	m.logs = append(m.logs, log)
	return nil
}

type stubNotifier struct {
	notifications []RequestResolvedNotification
}

func (m *stubNotifier) NotifyRequestResolved(n RequestResolvedNotification) {
	m.notifications = append(m.notifications, n)
}

type allocationFixture struct {
	requests *stubRequestRepo
	vehicles *stubVehicleFinder
	slots    *stubSlotFinder
	users    *stubUserFinder
	audit    *stubAudit
	notifier *stubNotifier
	svc      *AllocationService
}

func newAllocationFixture() *allocationFixture {
	f := &allocationFixture{
		requests: &stubRequestRepo{requests: map[string]*models.SlotRequest{}, activeByVeh: map[string]*models.SlotRequest{}},
		vehicles: &stubVehicleFinder{vehicles: map[string]*models.Vehicle{}},
		slots:    &stubSlotFinder{},
		users:    &stubUserFinder{users: map[string]*models.User{}},
		audit:    &stubAudit{},
		notifier: &stubNotifier{},
	}
	f.svc = NewAllocationService(f.requests, f.vehicles, f.slots, f.users, f.audit, f.notifier, nil, validator.New(), zap.NewNop())
	return f
}

func userClaims(id string) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: models.RoleUser}
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
}

func TestAllocationCreate(t *testing.T) {
	f := newAllocationFixture()
	f.vehicles.vehicles["veh-1"] = &models.Vehicle{ID: "veh-1", UserID: "user-1", Size: models.SizeMedium, VehicleType: "car"}

	request, err := f.svc.Create(context.Background(), CreateSlotRequestPayload{VehicleID: "veh-1"}, userClaims("user-1"), models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, request.RequestStatus)
	assert.Equal(t, "user-1", request.UserID)
	require.Len(t, f.audit.logs, 1)
	assert.Equal(t, models.AuditActionRequestCreated, f.audit.logs[0].Action)
}

func TestAllocationCreateRejectsForeignVehicle(t *testing.T) {
	f := newAllocationFixture()
	f.vehicles.vehicles["veh-1"] = &models.Vehicle{ID: "veh-1", UserID: "someone-else"}

	_, err := f.svc.Create(context.Background(), CreateSlotRequestPayload{VehicleID: "veh-1"}, userClaims("user-1"), models.RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAllocationCreateConflictNamesExistingStatus(t *testing.T) {
	f := newAllocationFixture()
	f.vehicles.vehicles["veh-1"] = &models.Vehicle{ID: "veh-1", UserID: "user-1"}
	f.requests.activeByVeh["veh-1"] = &models.SlotRequest{ID: "req-1", VehicleID: "veh-1", RequestStatus: models.RequestApproved}

	_, err := f.svc.Create(context.Background(), CreateSlotRequestPayload{VehicleID: "veh-1"}, userClaims("user-1"), models.RequestMeta{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "APPROVED")
}

func TestAllocationCancel(t *testing.T) {
	f := newAllocationFixture()
	f.requests.requests["req-1"] = &models.SlotRequest{ID: "req-1", UserID: "user-1", VehicleID: "veh-1", RequestStatus: models.RequestPending}

	request, err := f.svc.Cancel(context.Background(), "req-1", userClaims("user-1"), models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.RequestCancelled, request.RequestStatus)
}

func TestAllocationCancelNonPendingNamesStatus(t *testing.T) {
	f := newAllocationFixture()
	f.requests.requests["req-1"] = &models.SlotRequest{ID: "req-1", UserID: "user-1", RequestStatus: models.RequestRejected}

	_, err := f.svc.Cancel(context.Background(), "req-1", userClaims("user-1"), models.RequestMeta{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "rejected")
}

func TestAllocationUpdateSwapsVehicle(t *testing.T) {
	f := newAllocationFixture()
	f.requests.requests["req-1"] = &models.SlotRequest{ID: "req-1", UserID: "user-1", VehicleID: "veh-1", RequestStatus: models.RequestPending}
	f.vehicles.vehicles["veh-2"] = &models.Vehicle{ID: "veh-2", UserID: "user-1"}

	request, err := f.svc.Update(context.Background(), "req-1", UpdateSlotRequestPayload{VehicleID: "veh-2"}, userClaims("user-1"), models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, "veh-2", request.VehicleID)
}

func TestAllocationApproveAutomaticPicksOldestCompatible(t *testing.T) {
	f := newAllocationFixture()
	f.requests.requests["req-1"] = &models.SlotRequest{ID: "req-1", UserID: "user-1", VehicleID: "veh-1", RequestStatus: models.RequestPending}
	f.vehicles.vehicles["veh-1"] = &models.Vehicle{ID: "veh-1", UserID: "user-1", Size: models.SizeMedium, VehicleType: "car"}
	f.users.users["user-1"] = &models.User{ID: "user-1", Email: "user@example.com", FullName: "User"}
	f.slots.slots = []*models.ParkingSlot{
		{ID: "slot-large", SlotNumber: "L1", Size: models.SizeLarge, VehicleType: "car", Status: models.SlotAvailable},
		{ID: "slot-old", SlotNumber: "M1", Size: models.SizeMedium, VehicleType: "car", Status: models.SlotAvailable},
		{ID: "slot-new", SlotNumber: "M2", Size: models.SizeMedium, VehicleType: "car", Status: models.SlotAvailable},
	}

	request, err := f.svc.Approve(context.Background(), "req-1", ApproveSlotRequestPayload{}, adminClaims(), models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.RequestApproved, request.RequestStatus)
	require.NotNil(t, request.SlotID)
	assert.Equal(t, "slot-old", *request.SlotID)
	require.NotNil(t, request.AssignedSlotNumber)
	assert.Equal(t, "M1", *request.AssignedSlotNumber)
	assert.NotNil(t, request.ApprovedAt)

	require.Len(t, f.notifier.notifications, 1)
	assert.True(t, f.notifier.notifications[0].Approved)
	assert.Equal(t, "user@example.com", f.notifier.notifications[0].RecipientEmail)
}

func TestAllocationApproveAutomaticRetriesOnSlotRace(t *testing.T) {
	f := newAllocationFixture()
	f.requests.requests["req-1"] = &models.SlotRequest{ID: "req-1", UserID: "user-1", VehicleID: "veh-1", RequestStatus: models.RequestPending}
	f.requests.approveErrs = []error{repository.ErrSlotTaken}
	f.vehicles.vehicles["veh-1"] = &models.Vehicle{ID: "veh-1", UserID: "user-1", Size: models.SizeSmall, VehicleType: "motorcycle"}
	f.users.users["user-1"] = &models.User{ID: "user-1", Email: "user@example.com"}
	f.slots.slots = []*models.ParkingSlot{
		{ID: "slot-1", SlotNumber: "S1", Size: models.SizeSmall, VehicleType: "any", Status: models.SlotAvailable},
	}

	request, err := f.svc.Approve(context.Background(), "req-1", ApproveSlotRequestPayload{}, adminClaims(), models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.RequestApproved, request.RequestStatus)
	assert.Equal(t, 2, f.requests.approveCalls)
}

func TestAllocationApproveAutomaticNoMatch(t *testing.T) {
	f := newAllocationFixture()
	f.requests.requests["req-1"] = &models.SlotRequest{ID: "req-1", UserID: "user-1", VehicleID: "veh-1", RequestStatus: models.RequestPending}
	f.vehicles.vehicles["veh-1"] = &models.Vehicle{ID: "veh-1", UserID: "user-1", Size: models.SizeLarge, VehicleType: "truck"}
	f.slots.slots = []*models.ParkingSlot{
		{ID: "slot-1", SlotNumber: "S1", Size: models.SizeSmall, VehicleType: "truck", Status: models.SlotAvailable},
	}

	_, err := f.svc.Approve(context.Background(), "req-1", ApproveSlotRequestPayload{}, adminClaims(), models.RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoCompatibleSlot.Code, appErrors.FromError(err).Code)
}

func TestAllocationApproveManualIncompatibleSlot(t *testing.T) {
	f := newAllocationFixture()
	f.requests.requests["req-1"] = &models.SlotRequest{ID: "req-1", UserID: "user-1", VehicleID: "veh-1", RequestStatus: models.RequestPending}
	f.vehicles.vehicles["veh-1"] = &models.Vehicle{ID: "veh-1", UserID: "user-1", Size: models.SizeMedium, VehicleType: "car"}
	f.slots.slots = []*models.ParkingSlot{
		{ID: "slot-1", SlotNumber: "T1", Size: models.SizeLarge, VehicleType: "truck", Status: models.SlotAvailable},
	}

	_, err := f.svc.Approve(context.Background(), "req-1", ApproveSlotRequestPayload{SlotID: "slot-1"}, adminClaims(), models.RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoCompatibleSlot.Code, appErrors.FromError(err).Code)
	assert.Zero(t, f.requests.approveCalls)
}

func TestAllocationApproveManualWildcardSlot(t *testing.T) {
	f := newAllocationFixture()
	f.requests.requests["req-1"] = &models.SlotRequest{ID: "req-1", UserID: "user-1", VehicleID: "veh-1", RequestStatus: models.RequestPending}
	f.vehicles.vehicles["veh-1"] = &models.Vehicle{ID: "veh-1", UserID: "user-1", Size: models.SizeMedium, VehicleType: "car"}
	f.users.users["user-1"] = &models.User{ID: "user-1", Email: "user@example.com"}
	f.slots.slots = []*models.ParkingSlot{
		{ID: "slot-1", SlotNumber: "A1", Size: models.SizeMedium, VehicleType: "Any", Status: models.SlotAvailable},
	}

	request, err := f.svc.Approve(context.Background(), "req-1", ApproveSlotRequestPayload{SlotID: "slot-1"}, adminClaims(), models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.RequestApproved, request.RequestStatus)
}

func TestAllocationApproveNonPending(t *testing.T) {
	f := newAllocationFixture()
	f.requests.requests["req-1"] = &models.SlotRequest{ID: "req-1", UserID: "user-1", VehicleID: "veh-1", RequestStatus: models.RequestCancelled}

	_, err := f.svc.Approve(context.Background(), "req-1", ApproveSlotRequestPayload{}, adminClaims(), models.RequestMeta{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "cancelled")
}

func TestAllocationReject(t *testing.T) {
	f := newAllocationFixture()
	f.requests.requests["req-1"] = &models.SlotRequest{ID: "req-1", UserID: "user-1", VehicleID: "veh-1", RequestStatus: models.RequestPending}
	f.users.users["user-1"] = &models.User{ID: "user-1", Email: "user@example.com"}

	request, err := f.svc.Reject(context.Background(), "req-1", RejectSlotRequestPayload{Reason: "lot closed"}, adminClaims(), models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.RequestRejected, request.RequestStatus)
	require.NotNil(t, request.RejectionReason)
	assert.Equal(t, "lot closed", *request.RejectionReason)

	require.Len(t, f.notifier.notifications, 1)
	assert.False(t, f.notifier.notifications[0].Approved)
	assert.Equal(t, "lot closed", f.notifier.notifications[0].Reason)
}

func TestAllocationListPinsNonAdminToOwnRequests(t *testing.T) {
	f := newAllocationFixture()
	f.requests.requests["req-1"] = &models.SlotRequest{ID: "req-1", UserID: "user-1", RequestStatus: models.RequestPending}
	f.requests.requests["req-2"] = &models.SlotRequest{ID: "req-2", UserID: "user-2", RequestStatus: models.RequestPending}

	requests, pagination, err := f.svc.List(context.Background(), models.SlotRequestFilter{}, userClaims("user-1"))
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "req-1", requests[0].ID)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestAllocationGetForbiddenForOtherUser(t *testing.T) {
	f := newAllocationFixture()
	f.requests.requests["req-1"] = &models.SlotRequest{ID: "req-1", UserID: "user-1", RequestStatus: models.RequestPending}

	_, err := f.svc.Get(context.Background(), "req-1", userClaims("user-2"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	request, err := f.svc.Get(context.Background(), "req-1", adminClaims())
	require.NoError(t, err)
	assert.Equal(t, "req-1", request.ID)
}
