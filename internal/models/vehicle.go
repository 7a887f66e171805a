package models

import (
	"encoding/json"
	"time"
)

// VehicleSize classifies a vehicle for slot matching. Sizes match slot sizes
// exactly; there is no "fits into larger" fallback.
type VehicleSize string

const (
	SizeSmall  VehicleSize = "small"
	SizeMedium VehicleSize = "medium"
	SizeLarge  VehicleSize = "large"
)

// Valid reports whether the size is one of the known values.
func (s VehicleSize) Valid() bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge:
		return true
	}
	return false
}

// Vehicle represents a registered vehicle owned by exactly one user.
// VehicleType is free-form (car, motorcycle, truck, ...); Attributes is an
// opaque bag the backend stores but never interprets.
type Vehicle struct {
	ID          string          `db:"id" json:"id"`
	UserID      string          `db:"user_id" json:"user_id"`
	PlateNumber string          `db:"plate_number" json:"plate_number"`
	Size        VehicleSize     `db:"size" json:"size"`
	VehicleType string          `db:"vehicle_type" json:"vehicle_type"`
	Attributes  json.RawMessage `db:"attributes" json:"attributes,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// VehicleFilter captures filtering criteria for listing vehicles.
type VehicleFilter struct {
	UserID   string
	Size     *VehicleSize
	Search   string
	Page     int
	PageSize int
}
