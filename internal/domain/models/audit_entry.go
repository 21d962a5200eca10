package models

import "time"

// AuditAction is the closed enumeration of actions the audit trail records.
type AuditAction string

const (
	AuditActionCreate           AuditAction = "create"
	AuditActionUpdate           AuditAction = "update"
	AuditActionDelete           AuditAction = "delete"
	AuditActionSubmit           AuditAction = "submit"
	AuditActionVerify           AuditAction = "verify"
	AuditActionReject           AuditAction = "reject"
	AuditActionRunSelection     AuditAction = "run_selection"
	AuditActionAnnounce         AuditAction = "announce"
	AuditActionLogin            AuditAction = "login"
)

// AuditEntry is an append-only record of a mutating action taken against a
// tenant-owned or cross-tenant entity.
type AuditEntry struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	SchoolID   *uint       `gorm:"index" json:"school_id"`
	UserID     *uint       `gorm:"index" json:"user_id"`
	EntityType string      `gorm:"type:varchar(100);not null" json:"entity_type"`
	EntityID   uint        `gorm:"not null" json:"entity_id"`
	Action     AuditAction `gorm:"type:varchar(30);not null" json:"action"`
	OldValue   string      `gorm:"type:jsonb" json:"old_value"`
	NewValue   string      `gorm:"type:jsonb" json:"new_value"`
	IPAddress  string      `gorm:"type:varchar(64)" json:"ip_address"`
	UserAgent  string      `gorm:"type:text" json:"user_agent"`
	CreatedAt  time.Time   `json:"created_at"`
}

// TableName specifies the table name for AuditEntry.
func (AuditEntry) TableName() string {
	return "audit_entries"
}
