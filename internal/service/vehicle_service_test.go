package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sammy002621/parking-management-system-backend/internal/models"
	appErrors "github.com/sammy002621/parking-management-system-backend/pkg/errors"
)

type mockVehicleRepo struct {
	vehicles map[string]*models.Vehicle
	deleted  []string
}

func (m *mockVehicleRepo) FindByID(ctx context.Context, id string) (*models.Vehicle, error) {
	if vehicle, ok := m.vehicles[id]; ok {
		copy := *vehicle
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockVehicleRepo) FindByPlateNumber(ctx context.Context, plate string) (*models.Vehicle, error) {
	for _, vehicle := range m.vehicles {
		if vehicle.PlateNumber == plate {
			copy := *vehicle
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockVehicleRepo) List(ctx context.Context, filter models.VehicleFilter) ([]models.Vehicle, int, error) {
	var out []models.Vehicle
	for _, vehicle := range m.vehicles {
		if filter.UserID != "" && vehicle.UserID != filter.UserID {
			continue
		}
		out = append(out, *vehicle)
	}
	return out, len(out), nil
}

func (m *mockVehicleRepo) Create(ctx context.Context, vehicle *models.Vehicle) error {
	if vehicle.ID == "" {
		vehicle.ID = "veh-new"
	}
	if m.vehicles == nil {
		m.vehicles = make(map[string]*models.Vehicle)
	}
	copy := *vehicle
	m.vehicles[vehicle.ID] = &copy
	return nil
}

func (m *mockVehicleRepo) Update(ctx context.Context, vehicle *models.Vehicle) error {
	copy := *vehicle
	m.vehicles[vehicle.ID] = &copy
	return nil
}

func (m *mockVehicleRepo) Delete(ctx context.Context, id string) error {
	delete(m.vehicles, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func newVehicleService(repo *mockVehicleRepo, requests *stubRequestRepo) (*VehicleService, *stubAudit) {
	audit := &stubAudit{}
	return NewVehicleService(repo, requests, audit, validator.New(), zap.NewNop()), audit
}

func TestVehicleCreate(t *testing.T) {
	repo := &mockVehicleRepo{vehicles: map[string]*models.Vehicle{}}
	svc, audit := newVehicleService(repo, &stubRequestRepo{})

	vehicle, err := svc.Create(context.Background(), CreateVehiclePayload{
		PlateNumber: "RAB 123 A",
		Size:        "medium",
		VehicleType: "car",
	}, userClaims("user-1"), models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, "user-1", vehicle.UserID)
	assert.Equal(t, models.SizeMedium, vehicle.Size)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionVehicleCreate, audit.logs[0].Action)
}

func TestVehicleCreateDuplicatePlate(t *testing.T) {
	repo := &mockVehicleRepo{vehicles: map[string]*models.Vehicle{
		"veh-1": {ID: "veh-1", UserID: "user-2", PlateNumber: "RAB 123 A"},
	}}
	svc, _ := newVehicleService(repo, &stubRequestRepo{})

	_, err := svc.Create(context.Background(), CreateVehiclePayload{
		PlateNumber: "RAB 123 A",
		Size:        "small",
		VehicleType: "motorcycle",
	}, userClaims("user-1"), models.RequestMeta{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "RAB 123 A")
}

func TestVehicleCreateRejectsUnknownSize(t *testing.T) {
	svc, _ := newVehicleService(&mockVehicleRepo{}, &stubRequestRepo{})

	_, err := svc.Create(context.Background(), CreateVehiclePayload{
		PlateNumber: "RAB 123 A",
		Size:        "gigantic",
		VehicleType: "car",
	}, userClaims("user-1"), models.RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestVehicleUpdateKeepsPlateImmutable(t *testing.T) {
	repo := &mockVehicleRepo{vehicles: map[string]*models.Vehicle{
		"veh-1": {ID: "veh-1", UserID: "user-1", PlateNumber: "RAB 123 A", Size: models.SizeSmall, VehicleType: "motorcycle"},
	}}
	svc, _ := newVehicleService(repo, &stubRequestRepo{})

	vehicle, err := svc.Update(context.Background(), "veh-1", UpdateVehiclePayload{
		Size:        "large",
		VehicleType: "truck",
	}, userClaims("user-1"), models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.SizeLarge, vehicle.Size)
	assert.Equal(t, "RAB 123 A", vehicle.PlateNumber)
}

func TestVehicleDeleteBlockedByActiveRequest(t *testing.T) {
	repo := &mockVehicleRepo{vehicles: map[string]*models.Vehicle{
		"veh-1": {ID: "veh-1", UserID: "user-1", PlateNumber: "RAB 123 A"},
	}}
	requests := &stubRequestRepo{activeByVeh: map[string]*models.SlotRequest{
		"veh-1": {ID: "req-1", VehicleID: "veh-1", RequestStatus: models.RequestPending},
	}}
	svc, _ := newVehicleService(repo, requests)

	err := svc.Delete(context.Background(), "veh-1", userClaims("user-1"), models.RequestMeta{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "PENDING")
	assert.Empty(t, repo.deleted)
}

func TestVehicleDelete(t *testing.T) {
	repo := &mockVehicleRepo{vehicles: map[string]*models.Vehicle{
		"veh-1": {ID: "veh-1", UserID: "user-1", PlateNumber: "RAB 123 A"},
	}}
	svc, audit := newVehicleService(repo, &stubRequestRepo{})

	err := svc.Delete(context.Background(), "veh-1", userClaims("user-1"), models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, []string{"veh-1"}, repo.deleted)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionVehicleDelete, audit.logs[0].Action)
}

func TestVehicleGetForbiddenForOtherUser(t *testing.T) {
	repo := &mockVehicleRepo{vehicles: map[string]*models.Vehicle{
		"veh-1": {ID: "veh-1", UserID: "user-1", PlateNumber: "RAB 123 A"},
	}}
	svc, _ := newVehicleService(repo, &stubRequestRepo{})

	_, err := svc.Get(context.Background(), "veh-1", userClaims("user-2"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	vehicle, err := svc.Get(context.Background(), "veh-1", adminClaims())
	require.NoError(t, err)
	assert.Equal(t, "veh-1", vehicle.ID)
}

func TestVehicleListPinsNonAdminToOwnVehicles(t *testing.T) {
	repo := &mockVehicleRepo{vehicles: map[string]*models.Vehicle{
		"veh-1": {ID: "veh-1", UserID: "user-1", PlateNumber: "RAB 123 A"},
		"veh-2": {ID: "veh-2", UserID: "user-2", PlateNumber: "RAB 456 B"},
	}}
	svc, _ := newVehicleService(repo, &stubRequestRepo{})

	vehicles, pagination, err := svc.List(context.Background(), models.VehicleFilter{UserID: "user-2"}, userClaims("user-1"))
	require.NoError(t, err)
	require.Len(t, vehicles, 1)
	assert.Equal(t, "veh-1", vehicles[0].ID)
	assert.Equal(t, 1, pagination.TotalCount)
}
