package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sammy002621/parking-management-system-backend/internal/models"
)

func vehicleColumns() []string {
	return []string{"id", "user_id", "plate_number", "size", "vehicle_type", "attributes", "created_at", "updated_at"}
}

func TestVehicleFindByPlateNumber(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewVehicleRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, plate_number, size, vehicle_type, attributes, created_at, updated_at FROM vehicles WHERE plate_number = $1 LIMIT 1")).
		WithArgs("RAB 123 A").
		WillReturnRows(sqlmock.NewRows(vehicleColumns()).AddRow("veh-1", "user-1", "RAB 123 A", "medium", "car", nil, now, now))

	vehicle, err := repo.FindByPlateNumber(context.Background(), "RAB 123 A")
	require.NoError(t, err)
	assert.Equal(t, "veh-1", vehicle.ID)
	assert.Equal(t, models.SizeMedium, vehicle.Size)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVehicleFindByPlateNumberMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewVehicleRepository(db)

	mock.ExpectQuery("SELECT .+ FROM vehicles WHERE plate_number").
		WithArgs("RAB 999 Z").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByPlateNumber(context.Background(), "RAB 999 Z")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVehicleListScopedToUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewVehicleRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, plate_number, size, vehicle_type, attributes, created_at, updated_at FROM vehicles WHERE 1=1 AND user_id = $1 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(vehicleColumns()).AddRow("veh-1", "user-1", "RAB 123 A", "small", "motorcycle", nil, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM vehicles WHERE 1=1 AND user_id = $1")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	vehicles, total, err := repo.List(context.Background(), models.VehicleFilter{UserID: "user-1"})
	require.NoError(t, err)
	require.Len(t, vehicles, 1)
	assert.Equal(t, "user-1", vehicles[0].UserID)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVehicleDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewVehicleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM vehicles WHERE id = $1")).
		WithArgs("veh-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), "veh-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
