package models

import "time"

// SlotStatus tracks whether a slot can be assigned.
type SlotStatus string

const (
	SlotAvailable   SlotStatus = "AVAILABLE"
	SlotUnavailable SlotStatus = "UNAVAILABLE"
)

// SlotTypeAny is the wildcard vehicle type: a slot carrying it accepts any
// vehicle of matching size. Matched case-insensitively.
const SlotTypeAny = "any"

// ParkingSlot represents one assignable parking space. Status is flipped to
// UNAVAILABLE only when an approved request binds the slot; it is never
// reclaimed automatically.
type ParkingSlot struct {
	ID          string      `db:"id" json:"id"`
	SlotNumber  string      `db:"slot_number" json:"slot_number"`
	Size        VehicleSize `db:"size" json:"size"`
	VehicleType string      `db:"vehicle_type" json:"vehicle_type"`
	Status      SlotStatus  `db:"status" json:"status"`
	Location    string      `db:"location" json:"location"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

// SlotFilter captures filtering criteria for listing parking slots.
type SlotFilter struct {
	Status      *SlotStatus
	Size        *VehicleSize
	VehicleType string
	Search      string
	Page        int
	PageSize    int
}
