package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sammy002621/parking-management-system-backend/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	db := sqlx.NewDb(mockDB, "sqlmock")
	return db, mock, func() { db.Close() }
}

func requestColumns() []string {
	return []string{"id", "user_id", "vehicle_id", "slot_id", "request_status", "assigned_slot_number", "rejection_reason", "approved_at", "created_at", "updated_at"}
}

func TestSlotRequestFindActiveByVehicle(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSlotRequestRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows(requestColumns()).
		AddRow("req-1", "user-1", "veh-1", nil, "PENDING", nil, nil, nil, now, now)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, vehicle_id, slot_id, request_status, assigned_slot_number, rejection_reason, approved_at, created_at, updated_at FROM slot_requests WHERE vehicle_id = $1 AND request_status IN ('PENDING', 'APPROVED') AND id <> $2 LIMIT 1")).
		WithArgs("veh-1", "").
		WillReturnRows(rows)

	request, err := repo.FindActiveByVehicle(context.Background(), "veh-1", "")
	require.NoError(t, err)
	assert.Equal(t, "req-1", request.ID)
	assert.Equal(t, models.RequestPending, request.RequestStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRequestFindActiveByVehicleNone(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSlotRequestRepository(db)

	mock.ExpectQuery("SELECT .+ FROM slot_requests WHERE vehicle_id").
		WithArgs("veh-1", "req-9").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindActiveByVehicle(context.Background(), "veh-1", "req-9")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRequestUpdateStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSlotRequestRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE slot_requests SET request_status = $2, rejection_reason = $3, updated_at = $4 WHERE id = $1 AND request_status = 'PENDING'")).
		WithArgs("req-1", models.RequestCancelled, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "req-1", models.RequestCancelled, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRequestUpdateStatusNotPending(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSlotRequestRepository(db)

	mock.ExpectExec("UPDATE slot_requests SET request_status").
		WithArgs("req-1", models.RequestRejected, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "req-1", models.RequestRejected, nil)
	assert.ErrorIs(t, err, ErrRequestNotPending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRequestApprove(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSlotRequestRepository(db)

	slot := &models.ParkingSlot{ID: "slot-1", SlotNumber: "A1"}
	approvedAt := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE parking_slots SET status = 'UNAVAILABLE', updated_at = $2 WHERE id = $1 AND status = 'AVAILABLE'")).
		WithArgs("slot-1", approvedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE slot_requests SET request_status = 'APPROVED', slot_id = $2, assigned_slot_number = $3, approved_at = $4, updated_at = $4 WHERE id = $1 AND request_status = 'PENDING'")).
		WithArgs("req-1", "slot-1", "A1", approvedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Approve(context.Background(), "req-1", slot, approvedAt)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRequestApproveSlotTaken(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSlotRequestRepository(db)

	slot := &models.ParkingSlot{ID: "slot-1", SlotNumber: "A1"}
	approvedAt := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE parking_slots SET status = 'UNAVAILABLE'").
		WithArgs("slot-1", approvedAt).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Approve(context.Background(), "req-1", slot, approvedAt)
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRequestApproveRequestNotPending(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSlotRequestRepository(db)

	slot := &models.ParkingSlot{ID: "slot-1", SlotNumber: "A1"}
	approvedAt := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE parking_slots SET status = 'UNAVAILABLE'").
		WithArgs("slot-1", approvedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE slot_requests SET request_status = 'APPROVED'").
		WithArgs("req-1", "slot-1", "A1", approvedAt).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Approve(context.Background(), "req-1", slot, approvedAt)
	assert.ErrorIs(t, err, ErrRequestNotPending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRequestCountBoundToSlot(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSlotRequestRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM slot_requests WHERE slot_id = $1 AND request_status = 'APPROVED'")).
		WithArgs("slot-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	total, err := repo.CountBoundToSlot(context.Background(), "slot-1")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
