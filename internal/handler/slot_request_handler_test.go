package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sammy002621/parking-management-system-backend/internal/middleware"
	"github.com/sammy002621/parking-management-system-backend/internal/models"
	"github.com/sammy002621/parking-management-system-backend/internal/service"
)

type fakeRequestRepo struct {
	requests map[string]*models.SlotRequest
}

func (f *fakeRequestRepo) FindByID(ctx context.Context, id string) (*models.SlotRequest, error) {
	if request, ok := f.requests[id]; ok {
		copy := *request
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRequestRepo) FindActiveByVehicle(ctx context.Context, vehicleID, excludeRequestID string) (*models.SlotRequest, error) {
	for _, request := range f.requests {
		if request.VehicleID == vehicleID && request.ID != excludeRequestID && request.RequestStatus.Active() {
			copy := *request
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRequestRepo) List(ctx context.Context, filter models.SlotRequestFilter) ([]models.SlotRequest, int, error) {
	var out []models.SlotRequest
	for _, request := range f.requests {
		if filter.UserID != "" && request.UserID != filter.UserID {
			continue
		}
		out = append(out, *request)
	}
	return out, len(out), nil
}

func (f *fakeRequestRepo) Create(ctx context.Context, request *models.SlotRequest) error {
	if request.ID == "" {
		request.ID = "req-new"
	}
	if f.requests == nil {
		f.requests = make(map[string]*models.SlotRequest)
	}
	copy := *request
	f.requests[request.ID] = &copy
	return nil
}

func (f *fakeRequestRepo) UpdateVehicle(ctx context.Context, requestID, vehicleID string) error {
	f.requests[requestID].VehicleID = vehicleID
	return nil
}

func (f *fakeRequestRepo) UpdateStatus(ctx context.Context, requestID string, status models.RequestStatus, reason *string) error {
	request := f.requests[requestID]
	request.RequestStatus = status
	request.RejectionReason = reason
	return nil
}

func (f *fakeRequestRepo) Approve(ctx context.Context, requestID string, slot *models.ParkingSlot, approvedAt time.Time) error {
	request := f.requests[requestID]
	request.RequestStatus = models.RequestApproved
	request.SlotID = &slot.ID
	request.AssignedSlotNumber = &slot.SlotNumber
	request.ApprovedAt = &approvedAt
	return nil
}

type fakeVehicleFinder struct {
	vehicles map[string]*models.Vehicle
}

func (f *fakeVehicleFinder) FindByID(ctx context.Context, id string) (*models.Vehicle, error) {
	if vehicle, ok := f.vehicles[id]; ok {
		copy := *vehicle
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

type fakeSlotFinder struct {
	slots []*models.ParkingSlot
}

func (f *fakeSlotFinder) FindByID(ctx context.Context, id string) (*models.ParkingSlot, error) {
	for _, slot := range f.slots {
		if slot.ID == id {
			copy := *slot
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeSlotFinder) FindCompatible(ctx context.Context, size models.VehicleSize, vehicleType string) (*models.ParkingSlot, error) {
	for _, slot := range f.slots {
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

type fakeUserFinder struct{}

func (f fakeUserFinder) FindByID(ctx context.Context, id string) (*models.User, error) {
	return &models.User{ID: id, Email: id + "@example.com", FullName: "Test User"}, nil
}

type fakeAudit struct{}

func (f fakeAudit) CreateActionLog(ctx context.Context, log *models.ActionLog) error {
	return nil
}

type fakeNotifier struct{}

func (f fakeNotifier) NotifyRequestResolved(service.RequestResolvedNotification) {}

type requestHandlerFixture struct {
	requests *fakeRequestRepo
	vehicles *fakeVehicleFinder
	slots    *fakeSlotFinder
	handler  *SlotRequestHandler
}

func newRequestHandlerFixture() *requestHandlerFixture {
	f := &requestHandlerFixture{
		requests: &fakeRequestRepo{requests: map[string]*models.SlotRequest{}},
		vehicles: &fakeVehicleFinder{vehicles: map[string]*models.Vehicle{}},
		slots:    &fakeSlotFinder{},
	}
	svc := service.NewAllocationService(f.requests, f.vehicles, f.slots, fakeUserFinder{}, fakeAudit{}, fakeNotifier{}, nil, nil, zap.NewNop())
	f.handler = NewSlotRequestHandler(svc)
	return f
}

func testContext(t *testing.T, method, target, body string, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		c.Request.Header.Set("Content-Type", "application/json")
	}
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, rec
}

type errorEnvelope struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var envelope errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	return envelope
}

func TestSlotRequestHandlerCreate(t *testing.T) {
	f := newRequestHandlerFixture()
	f.vehicles.vehicles["veh-1"] = &models.Vehicle{ID: "veh-1", UserID: "user-1", Size: models.SizeMedium, VehicleType: "car"}

	c, rec := testContext(t, http.MethodPost, "/slot-requests", `{"vehicle_id":"veh-1"}`, &models.JWTClaims{UserID: "user-1", Role: models.RoleUser})
	f.handler.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var envelope struct {
		Data models.SlotRequest `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, models.RequestPending, envelope.Data.RequestStatus)
}

func TestSlotRequestHandlerCreateConflict(t *testing.T) {
	f := newRequestHandlerFixture()
	f.vehicles.vehicles["veh-1"] = &models.Vehicle{ID: "veh-1", UserID: "user-1"}
	f.requests.requests["req-1"] = &models.SlotRequest{ID: "req-1", UserID: "user-1", VehicleID: "veh-1", RequestStatus: models.RequestPending}

	c, rec := testContext(t, http.MethodPost, "/slot-requests", `{"vehicle_id":"veh-1"}`, &models.JWTClaims{UserID: "user-1", Role: models.RoleUser})
	f.handler.Create(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	envelope := decodeError(t, rec)
	assert.Equal(t, "CONFLICT", envelope.Error.Code)
	assert.Contains(t, envelope.Error.Message, "PENDING")
}

func TestSlotRequestHandlerCreateUnauthenticated(t *testing.T) {
	f := newRequestHandlerFixture()

	c, rec := testContext(t, http.MethodPost, "/slot-requests", `{"vehicle_id":"veh-1"}`, nil)
	f.handler.Create(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSlotRequestHandlerApproveWithoutBody(t *testing.T) {
	f := newRequestHandlerFixture()
	f.requests.requests["req-1"] = &models.SlotRequest{ID: "req-1", UserID: "user-1", VehicleID: "veh-1", RequestStatus: models.RequestPending}
	f.vehicles.vehicles["veh-1"] = &models.Vehicle{ID: "veh-1", UserID: "user-1", Size: models.SizeSmall, VehicleType: "motorcycle"}
	f.slots.slots = []*models.ParkingSlot{
		{ID: "slot-1", SlotNumber: "S1", Size: models.SizeSmall, VehicleType: "motorcycle", Status: models.SlotAvailable},
	}

	c, rec := testContext(t, http.MethodPost, "/slot-requests/req-1/approve", "", &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}
	f.handler.Approve(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data models.SlotRequest `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, models.RequestApproved, envelope.Data.RequestStatus)
	require.NotNil(t, envelope.Data.AssignedSlotNumber)
	assert.Equal(t, "S1", *envelope.Data.AssignedSlotNumber)
}

func TestSlotRequestHandlerApproveNoCompatibleSlot(t *testing.T) {
	f := newRequestHandlerFixture()
	f.requests.requests["req-1"] = &models.SlotRequest{ID: "req-1", UserID: "user-1", VehicleID: "veh-1", RequestStatus: models.RequestPending}
	f.vehicles.vehicles["veh-1"] = &models.Vehicle{ID: "veh-1", UserID: "user-1", Size: models.SizeLarge, VehicleType: "truck"}

	c, rec := testContext(t, http.MethodPost, "/slot-requests/req-1/approve", "", &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}
	f.handler.Approve(c)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	envelope := decodeError(t, rec)
	assert.Equal(t, "NO_COMPATIBLE_SLOT", envelope.Error.Code)
}

func TestSlotRequestHandlerApproveNonPending(t *testing.T) {
	f := newRequestHandlerFixture()
	f.requests.requests["req-1"] = &models.SlotRequest{ID: "req-1", UserID: "user-1", VehicleID: "veh-1", RequestStatus: models.RequestCancelled}

	c, rec := testContext(t, http.MethodPost, "/slot-requests/req-1/approve", "", &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}
	f.handler.Approve(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	envelope := decodeError(t, rec)
	assert.Equal(t, "INVALID_STATE", envelope.Error.Code)
	assert.Contains(t, envelope.Error.Message, "cancelled")
}

func TestSlotRequestHandlerRejectWithReason(t *testing.T) {
	f := newRequestHandlerFixture()
	f.requests.requests["req-1"] = &models.SlotRequest{ID: "req-1", UserID: "user-1", VehicleID: "veh-1", RequestStatus: models.RequestPending}

	c, rec := testContext(t, http.MethodPost, "/slot-requests/req-1/reject", `{"reason":"lot closed"}`, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}
	f.handler.Reject(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data models.SlotRequest `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, models.RequestRejected, envelope.Data.RequestStatus)
	require.NotNil(t, envelope.Data.RejectionReason)
	assert.Equal(t, "lot closed", *envelope.Data.RejectionReason)
}

func TestSlotRequestHandlerGetNotFound(t *testing.T) {
	f := newRequestHandlerFixture()

	c, rec := testContext(t, http.MethodGet, "/slot-requests/ghost", "", &models.JWTClaims{UserID: "user-1", Role: models.RoleUser})
	c.Params = gin.Params{{Key: "id", Value: "ghost"}}
	f.handler.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
