package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sammy002621/parking-management-system-backend/internal/models"
)

// ErrSlotTaken reports that the approve transaction lost the race for the
// chosen slot: another approval flipped it off AVAILABLE first.
var ErrSlotTaken = errors.New("slot no longer available")

// ErrRequestNotPending reports that the approve transaction found the request
// already out of PENDING.
var ErrRequestNotPending = errors.New("request no longer pending")

// SlotRequestRepository provides database access for the request lifecycle.
type SlotRequestRepository struct {
	db *sqlx.DB
}

// NewSlotRequestRepository creates a new instance of SlotRequestRepository.
func NewSlotRequestRepository(db *sqlx.DB) *SlotRequestRepository {
	return &SlotRequestRepository{db: db}
}

// FindByID returns a slot request by identifier.
func (r *SlotRequestRepository) FindByID(ctx context.Context, id string) (*models.SlotRequest, error) {
	const query = `SELECT id, user_id, vehicle_id, slot_id, request_status, assigned_slot_number, rejection_reason, approved_at, created_at, updated_at FROM slot_requests WHERE id = $1 LIMIT 1`
	var request models.SlotRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find slot request by id: %w", err)
	}
	return &request, nil
}

// FindActiveByVehicle returns the PENDING or APPROVED request for a vehicle,
// if one exists. excludeRequestID skips a request (used when re-checking the
// uniqueness rule during a vehicle swap on an existing request).
func (r *SlotRequestRepository) FindActiveByVehicle(ctx context.Context, vehicleID, excludeRequestID string) (*models.SlotRequest, error) {
	const query = `SELECT id, user_id, vehicle_id, slot_id, request_status, assigned_slot_number, rejection_reason, approved_at, created_at, updated_at
		FROM slot_requests
		WHERE vehicle_id = $1 AND request_status IN ('PENDING', 'APPROVED') AND id <> $2
		LIMIT 1`
	var request models.SlotRequest
	if err := r.db.GetContext(ctx, &request, query, vehicleID, excludeRequestID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find active request by vehicle: %w", err)
	}
	return &request, nil
}

// List returns slot requests based on filters with total count, newest first.
func (r *SlotRequestRepository) List(ctx context.Context, filter models.SlotRequestFilter) ([]models.SlotRequest, int, error) {
	baseQuery := `FROM slot_requests WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}
	if filter.VehicleID != "" {
		conditions = append(conditions, fmt.Sprintf("vehicle_id = $%d", len(args)+1))
		args = append(args, filter.VehicleID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("request_status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT id, user_id, vehicle_id, slot_id, request_status, assigned_slot_number, rejection_reason, approved_at, created_at, updated_at %s ORDER BY created_at DESC LIMIT %d OFFSET %d", baseQuery, pageSize, offset)

	var requests []models.SlotRequest
	if err := r.db.SelectContext(ctx, &requests, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list slot requests: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count slot requests: %w", err)
	}

	return requests, total, nil
}

// Create inserts a new PENDING request with no slot bound.
func (r *SlotRequestRepository) Create(ctx context.Context, request *models.SlotRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.RequestStatus == "" {
		request.RequestStatus = models.RequestPending
	}
	now := time.Now().UTC()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	request.UpdatedAt = now

	const query = `INSERT INTO slot_requests (id, user_id, vehicle_id, slot_id, request_status, assigned_slot_number, rejection_reason, approved_at, created_at, updated_at) VALUES (:id, :user_id, :vehicle_id, :slot_id, :request_status, :assigned_slot_number, :rejection_reason, :approved_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create slot request: %w", err)
	}
	return nil
}

// UpdateVehicle swaps the vehicle reference on a PENDING request.
func (r *SlotRequestRepository) UpdateVehicle(ctx context.Context, requestID, vehicleID string) error {
	const query = `UPDATE slot_requests SET vehicle_id = $2, updated_at = $3 WHERE id = $1 AND request_status = 'PENDING'`
	res, err := r.db.ExecContext(ctx, query, requestID, vehicleID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update request vehicle: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrRequestNotPending
	}
	return nil
}

// UpdateStatus transitions a PENDING request to a terminal state (CANCELLED
// or REJECTED). The status guard in the WHERE clause keeps terminal states
// final even under concurrent calls.
func (r *SlotRequestRepository) UpdateStatus(ctx context.Context, requestID string, status models.RequestStatus, reason *string) error {
	const query = `UPDATE slot_requests SET request_status = $2, rejection_reason = $3, updated_at = $4 WHERE id = $1 AND request_status = 'PENDING'`
	res, err := r.db.ExecContext(ctx, query, requestID, status, reason, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update request status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrRequestNotPending
	}
	return nil
}

// Approve binds a slot to a PENDING request in one transaction. The slot row
// is claimed with a compare-and-swap on status = 'AVAILABLE'; if either the
// slot or the request was changed concurrently, nothing is committed and the
// caller learns which side lost via ErrSlotTaken / ErrRequestNotPending.
func (r *SlotRequestRepository) Approve(ctx context.Context, requestID string, slot *models.ParkingSlot, approvedAt time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin approve: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const claimSlot = `UPDATE parking_slots SET status = 'UNAVAILABLE', updated_at = $2 WHERE id = $1 AND status = 'AVAILABLE'`
	res, err := tx.ExecContext(ctx, claimSlot, slot.ID, approvedAt)
	if err != nil {
		return fmt.Errorf("claim slot: %w", err)
	}
	if affected, raErr := res.RowsAffected(); raErr == nil && affected == 0 {
		err = ErrSlotTaken
		return err
	}

	const approveRequest = `UPDATE slot_requests SET request_status = 'APPROVED', slot_id = $2, assigned_slot_number = $3, approved_at = $4, updated_at = $4 WHERE id = $1 AND request_status = 'PENDING'`
	res, err = tx.ExecContext(ctx, approveRequest, requestID, slot.ID, slot.SlotNumber, approvedAt)
	if err != nil {
		return fmt.Errorf("approve request: %w", err)
	}
	if affected, raErr := res.RowsAffected(); raErr == nil && affected == 0 {
		err = ErrRequestNotPending
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit approve: %w", err)
	}
	return nil
}

// CountByStatus returns request counts grouped by status.
func (r *SlotRequestRepository) CountByStatus(ctx context.Context) (map[models.RequestStatus]int, error) {
	const query = `SELECT request_status, COUNT(*) AS total FROM slot_requests GROUP BY request_status`
	rows := []struct {
		Status models.RequestStatus `db:"request_status"`
		Total  int                  `db:"total"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count requests by status: %w", err)
	}
	counts := make(map[models.RequestStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

// CountBoundToSlot returns the number of APPROVED requests bound to a slot.
func (r *SlotRequestRepository) CountBoundToSlot(ctx context.Context, slotID string) (int, error) {
	const query = `SELECT COUNT(*) FROM slot_requests WHERE slot_id = $1 AND request_status = 'APPROVED'`
	var total int
	if err := r.db.GetContext(ctx, &total, query, slotID); err != nil {
		return 0, fmt.Errorf("count requests bound to slot: %w", err)
	}
	return total, nil
}
