package models

import "time"

// SyncStatus represents the last known state of an external identity sync.
type SyncStatus string

const (
	SyncStatusPending SyncStatus = "pending"
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusFailed  SyncStatus = "failed"
)

// FederatedIdentity links a local user to an identity held by an external
// provider. Used only by an optional external-sync collaborator; the core
// admissions flows never read this table.
type FederatedIdentity struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"index;not null" json:"user_id"`
	Provider       string     `gorm:"type:varchar(50);uniqueIndex:idx_provider_identity;not null" json:"provider"`
	ProviderUserID string     `gorm:"type:varchar(255);uniqueIndex:idx_provider_identity;not null" json:"provider_user_id"`
	AccessToken    string     `gorm:"type:text" json:"-"`
	RefreshToken   string     `gorm:"type:text" json:"-"`
	ExpiresAt      *time.Time `json:"expires_at"`
	SyncStatus     SyncStatus `gorm:"type:varchar(20);not null;default:pending" json:"sync_status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name for FederatedIdentity.
func (FederatedIdentity) TableName() string {
	return "federated_identities"
}
