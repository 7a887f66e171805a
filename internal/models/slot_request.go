package models

import "time"

// RequestStatus is the slot-request lifecycle state. PENDING is the only
// state that permits mutation; REJECTED and CANCELLED are terminal, and an
// APPROVED request is frozen with its slot binding.
type RequestStatus string

const (
	RequestPending   RequestStatus = "PENDING"
	RequestApproved  RequestStatus = "APPROVED"
	RequestRejected  RequestStatus = "REJECTED"
	RequestCancelled RequestStatus = "CANCELLED"
)

// Active reports whether the status counts toward the one-active-request-per-
// vehicle rule.
func (s RequestStatus) Active() bool {
	return s == RequestPending || s == RequestApproved
}

// Terminal reports whether no transition may leave the status.
func (s RequestStatus) Terminal() bool {
	return s == RequestRejected || s == RequestCancelled
}

// SlotRequest is a user's ask for a parking assignment for one vehicle.
// SlotID and AssignedSlotNumber are set exactly once, on approval.
type SlotRequest struct {
	ID                 string        `db:"id" json:"id"`
	UserID             string        `db:"user_id" json:"user_id"`
	VehicleID          string        `db:"vehicle_id" json:"vehicle_id"`
	SlotID             *string       `db:"slot_id" json:"slot_id,omitempty"`
	RequestStatus      RequestStatus `db:"request_status" json:"request_status"`
	AssignedSlotNumber *string       `db:"assigned_slot_number" json:"assigned_slot_number,omitempty"`
	RejectionReason    *string       `db:"rejection_reason" json:"rejection_reason,omitempty"`
	ApprovedAt         *time.Time    `db:"approved_at" json:"approved_at,omitempty"`
	CreatedAt          time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time     `db:"updated_at" json:"updated_at"`
}

// SlotRequestFilter captures filtering criteria for listing slot requests.
type SlotRequestFilter struct {
	UserID    string
	VehicleID string
	Status    *RequestStatus
	Page      int
	PageSize  int
}
