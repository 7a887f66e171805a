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

// VehicleRepository provides database access for registered vehicles.
type VehicleRepository struct {
	db *sqlx.DB
}

// NewVehicleRepository creates a new instance of VehicleRepository.
func NewVehicleRepository(db *sqlx.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// FindByID returns a vehicle by identifier.
func (r *VehicleRepository) FindByID(ctx context.Context, id string) (*models.Vehicle, error) {
	const query = `SELECT id, user_id, plate_number, size, vehicle_type, attributes, created_at, updated_at FROM vehicles WHERE id = $1 LIMIT 1`
	var vehicle models.Vehicle
	if err := r.db.GetContext(ctx, &vehicle, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find vehicle by id: %w", err)
	}
	return &vehicle, nil
}

// FindByPlateNumber returns a vehicle by plate number.
func (r *VehicleRepository) FindByPlateNumber(ctx context.Context, plate string) (*models.Vehicle, error) {
	const query = `SELECT id, user_id, plate_number, size, vehicle_type, attributes, created_at, updated_at FROM vehicles WHERE plate_number = $1 LIMIT 1`
	var vehicle models.Vehicle
	if err := r.db.GetContext(ctx, &vehicle, query, plate); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find vehicle by plate: %w", err)
	}
	return &vehicle, nil
}

// List returns vehicles based on filters with total count. An empty
// filter.UserID lists across all owners (admin view).
func (r *VehicleRepository) List(ctx context.Context, filter models.VehicleFilter) ([]models.Vehicle, int, error) {
	baseQuery := `FROM vehicles WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}
	if filter.Size != nil {
		conditions = append(conditions, fmt.Sprintf("size = $%d", len(args)+1))
		args = append(args, *filter.Size)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(plate_number) LIKE $%d OR LOWER(vehicle_type) LIKE $%d)", len(args)+1, len(args)+1))
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

	listQuery := fmt.Sprintf("SELECT id, user_id, plate_number, size, vehicle_type, attributes, created_at, updated_at %s ORDER BY created_at DESC LIMIT %d OFFSET %d", baseQuery, pageSize, offset)

	var vehicles []models.Vehicle
	if err := r.db.SelectContext(ctx, &vehicles, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list vehicles: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count vehicles: %w", err)
	}

	return vehicles, total, nil
}

// Create inserts a new vehicle.
func (r *VehicleRepository) Create(ctx context.Context, vehicle *models.Vehicle) error {
	if vehicle.ID == "" {
		vehicle.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if vehicle.CreatedAt.IsZero() {
		vehicle.CreatedAt = now
	}
	vehicle.UpdatedAt = now

	const query = `INSERT INTO vehicles (id, user_id, plate_number, size, vehicle_type, attributes, created_at, updated_at) VALUES (:id, :user_id, :plate_number, :size, :vehicle_type, :attributes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, vehicle); err != nil {
		return fmt.Errorf("create vehicle: %w", err)
	}
	return nil
}

// Update updates mutable fields of a vehicle. Ownership and plate number are
// immutable after creation.
func (r *VehicleRepository) Update(ctx context.Context, vehicle *models.Vehicle) error {
	vehicle.UpdatedAt = time.Now().UTC()
	const query = `UPDATE vehicles SET size = :size, vehicle_type = :vehicle_type, attributes = :attributes, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, vehicle); err != nil {
		return fmt.Errorf("update vehicle: %w", err)
	}
	return nil
}

// Delete removes a vehicle row. The service layer refuses deletion while an
// active slot request references the vehicle.
func (r *VehicleRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM vehicles WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}
	return nil
}

// Count returns the total number of registered vehicles.
func (r *VehicleRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM vehicles`
	var total int
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return 0, fmt.Errorf("count vehicles: %w", err)
	}
	return total, nil
}

// CountByUser returns the number of vehicles registered by a user.
func (r *VehicleRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM vehicles WHERE user_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, userID); err != nil {
		return 0, fmt.Errorf("count vehicles by user: %w", err)
	}
	return total, nil
}
