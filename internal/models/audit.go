package models

import "time"

// Audit action constants. The allocation lifecycle actions mirror the request
// state machine; the rest cover account and inventory administration.
const (
	AuditActionLogin          = "LOGIN"
	AuditActionLogout         = "LOGOUT"
	AuditActionRegister       = "REGISTER"
	AuditActionPasswordChange = "PASSWORD_CHANGE"
	AuditActionUserUpdate     = "USER_UPDATE"
	AuditActionUserDelete     = "USER_DELETE"

	AuditActionVehicleCreate = "VEHICLE_CREATE"
	AuditActionVehicleUpdate = "VEHICLE_UPDATE"
	AuditActionVehicleDelete = "VEHICLE_DELETE"

	AuditActionSlotCreate = "PARKING_SLOT_CREATE"
	AuditActionSlotUpdate = "PARKING_SLOT_UPDATE"
	AuditActionSlotDelete = "PARKING_SLOT_DELETE"

	AuditActionRequestCreated   = "SLOT_REQUEST_CREATED"
	AuditActionRequestUpdated   = "SLOT_REQUEST_UPDATED"
	AuditActionRequestCancelled = "SLOT_REQUEST_CANCELLED"
	AuditActionRequestApproved  = "SLOT_REQUEST_APPROVED"
	AuditActionRequestRejected  = "SLOT_REQUEST_REJECTED"
)

// ActionLog represents an append-only audit trail record.
type ActionLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ActionLogFilter captures filtering criteria for the admin audit listing.
type ActionLogFilter struct {
	UserID   string
	Action   string
	Resource string
	Page     int
	PageSize int
}
