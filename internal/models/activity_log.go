package models

// Activity log actions.
const (
	ActionCreate       = "create"
	ActionUpdate       = "update"
	ActionDelete       = "delete"
	ActionStatusChange = "status_change"
)

// Model type labels used in the activity log polymorphic reference.
const (
	ModelTypeUser          = "User"
	ModelTypeTravelRequest = "TravelRequest"
)

// ActivityLog is an append-only audit record of a mutating operation.
// Rows are created alongside every mutation on users and travel requests
// and never updated or deleted by the application.
type ActivityLog struct {
	Base
	UserID      uint   `gorm:"not null;index" json:"user_id"`
	Action      string `gorm:"not null;index" json:"action"`
	ModelType   string `gorm:"not null;index" json:"model_type"`
	ModelID     uint   `gorm:"not null" json:"model_id"`
	Description string `json:"description"`
	OldValues   string `json:"old_values,omitempty"`
	NewValues   string `json:"new_values,omitempty"`
	IPAddress   string `json:"ip_address"`
	UserAgent   string `json:"user_agent"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
