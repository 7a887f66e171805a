package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sammy002621/parking-management-system-backend/internal/models"
)

// ParkingSlotRepository provides database access for the slot inventory.
type ParkingSlotRepository struct {
	db *sqlx.DB
}

// NewParkingSlotRepository creates a new instance of ParkingSlotRepository.
func NewParkingSlotRepository(db *sqlx.DB) *ParkingSlotRepository {
	return &ParkingSlotRepository{db: db}
}

// FindByID returns a slot by identifier.
func (r *ParkingSlotRepository) FindByID(ctx context.Context, id string) (*models.ParkingSlot, error) {
	const query = `SELECT id, slot_number, size, vehicle_type, status, location, created_at, updated_at FROM parking_slots WHERE id = $1 LIMIT 1`
	var slot models.ParkingSlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find slot by id: %w", err)
	}
	return &slot, nil
}

// FindBySlotNumber returns a slot by its unique number.
func (r *ParkingSlotRepository) FindBySlotNumber(ctx context.Context, slotNumber string) (*models.ParkingSlot, error) {
	const query = `SELECT id, slot_number, size, vehicle_type, status, location, created_at, updated_at FROM parking_slots WHERE slot_number = $1 LIMIT 1`
	var slot models.ParkingSlot
	if err := r.db.GetContext(ctx, &slot, query, slotNumber); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find slot by number: %w", err)
	}
	return &slot, nil
}

// FindCompatible returns the oldest AVAILABLE slot matching the vehicle's
// size exactly and its type either exactly or via the "any" wildcard.
// Creation-time ties break on id so selection is deterministic.
func (r *ParkingSlotRepository) FindCompatible(ctx context.Context, size models.VehicleSize, vehicleType string) (*models.ParkingSlot, error) {
	const query = `SELECT id, slot_number, size, vehicle_type, status, location, created_at, updated_at
		FROM parking_slots
		WHERE status = 'AVAILABLE' AND size = $1 AND (vehicle_type = $2 OR LOWER(vehicle_type) = 'any')
		ORDER BY created_at ASC, id ASC
		LIMIT 1`
	var slot models.ParkingSlot
	if err := r.db.GetContext(ctx, &slot, query, size, vehicleType); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find compatible slot: %w", err)
	}
	return &slot, nil
}

// List returns slots based on filters with total count.
func (r *ParkingSlotRepository) List(ctx context.Context, filter models.SlotFilter) ([]models.ParkingSlot, int, error) {
	baseQuery := `FROM parking_slots WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Size != nil {
		conditions = append(conditions, fmt.Sprintf("size = $%d", len(args)+1))
		args = append(args, *filter.Size)
	}
	if filter.VehicleType != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(vehicle_type) = $%d", len(args)+1))
		args = append(args, strings.ToLower(filter.VehicleType))
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(slot_number) LIKE $%d OR LOWER(location) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
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

	listQuery := fmt.Sprintf("SELECT id, slot_number, size, vehicle_type, status, location, created_at, updated_at %s ORDER BY slot_number ASC LIMIT %d OFFSET %d", baseQuery, pageSize, offset)

	var slots []models.ParkingSlot
	if err := r.db.SelectContext(ctx, &slots, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list slots: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count slots: %w", err)
	}

	return slots, total, nil
}

// Create inserts a new slot. New slots start AVAILABLE unless specified.
func (r *ParkingSlotRepository) Create(ctx context.Context, slot *models.ParkingSlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	if slot.Status == "" {
		slot.Status = models.SlotAvailable
	}
	now := time.Now().UTC()
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = now
	}
	slot.UpdatedAt = now

	const query = `INSERT INTO parking_slots (id, slot_number, size, vehicle_type, status, location, created_at, updated_at) VALUES (:id, :slot_number, :size, :vehicle_type, :status, :location, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("create slot: %w", err)
	}
	return nil
}

// Update updates mutable fields of a slot.
func (r *ParkingSlotRepository) Update(ctx context.Context, slot *models.ParkingSlot) error {
	slot.UpdatedAt = time.Now().UTC()
	const query = `UPDATE parking_slots SET slot_number = :slot_number, size = :size, vehicle_type = :vehicle_type, status = :status, location = :location, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("update slot: %w", err)
	}
	return nil
}

// Delete removes a slot row. The service layer refuses deletion while the
// slot is bound to an approved request.
func (r *ParkingSlotRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM parking_slots WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	return nil
}

// CountByStatus returns slot counts grouped by status.
func (r *ParkingSlotRepository) CountByStatus(ctx context.Context) (map[models.SlotStatus]int, error) {
	const query = `SELECT status, COUNT(*) AS total FROM parking_slots GROUP BY status`
	rows := []struct {
		Status models.SlotStatus `db:"status"`
		Total  int               `db:"total"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count slots by status: %w", err)
	}
	counts := make(map[models.SlotStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
