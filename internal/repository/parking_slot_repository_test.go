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

func slotColumns() []string {
	return []string{"id", "slot_number", "size", "vehicle_type", "status", "location", "created_at", "updated_at"}
}

func TestParkingSlotFindCompatible(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewParkingSlotRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows(slotColumns()).
		AddRow("slot-1", "A1", "medium", "car", "AVAILABLE", "B1", now, now)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, slot_number, size, vehicle_type, status, location, created_at, updated_at FROM parking_slots WHERE status = 'AVAILABLE' AND size = $1 AND (vehicle_type = $2 OR LOWER(vehicle_type) = 'any') ORDER BY created_at ASC, id ASC LIMIT 1")).
		WithArgs(models.SizeMedium, "car").
		WillReturnRows(rows)

	slot, err := repo.FindCompatible(context.Background(), models.SizeMedium, "car")
	require.NoError(t, err)
	assert.Equal(t, "slot-1", slot.ID)
	assert.Equal(t, "A1", slot.SlotNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParkingSlotFindCompatibleNone(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewParkingSlotRepository(db)

	mock.ExpectQuery("SELECT .+ FROM parking_slots WHERE status = 'AVAILABLE'").
		WithArgs(models.SizeLarge, "truck").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindCompatible(context.Background(), models.SizeLarge, "truck")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParkingSlotFindBySlotNumber(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewParkingSlotRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, slot_number, size, vehicle_type, status, location, created_at, updated_at FROM parking_slots WHERE slot_number = $1 LIMIT 1")).
		WithArgs("A1").
		WillReturnRows(sqlmock.NewRows(slotColumns()).AddRow("slot-1", "A1", "small", "any", "AVAILABLE", "", now, now))

	slot, err := repo.FindBySlotNumber(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, models.SlotTypeAny, slot.VehicleType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParkingSlotListFiltersByStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewParkingSlotRepository(db)

	now := time.Now().UTC()
	status := models.SlotAvailable

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, slot_number, size, vehicle_type, status, location, created_at, updated_at FROM parking_slots WHERE 1=1 AND status = $1 ORDER BY slot_number ASC LIMIT 20 OFFSET 0")).
		WithArgs(status).
		WillReturnRows(sqlmock.NewRows(slotColumns()).
			AddRow("slot-1", "A1", "small", "car", "AVAILABLE", "", now, now).
			AddRow("slot-2", "A2", "small", "car", "AVAILABLE", "", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM parking_slots WHERE 1=1 AND status = $1")).
		WithArgs(status).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	slots, total, err := repo.List(context.Background(), models.SlotFilter{Status: &status})
	require.NoError(t, err)
	assert.Len(t, slots, 2)
	assert.Equal(t, 2, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParkingSlotCountByStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewParkingSlotRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(*) AS total FROM parking_slots GROUP BY status")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "total"}).
			AddRow("AVAILABLE", 7).
			AddRow("UNAVAILABLE", 3))

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, counts[models.SlotAvailable])
	assert.Equal(t, 3, counts[models.SlotUnavailable])
	assert.NoError(t, mock.ExpectationsWereMet())
}
