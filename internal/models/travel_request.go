package models

import "time"

// TravelRequestStatus is the lifecycle state of a travel request.
type TravelRequestStatus string

const (
	StatusRequested TravelRequestStatus = "requested"
	StatusApproved  TravelRequestStatus = "approved"
	StatusCancelled TravelRequestStatus = "cancelled"
	// StatusRejected exists in seeds and fixtures but is not reachable
	// through the status endpoint, which only accepts approved/cancelled.
	StatusRejected TravelRequestStatus = "rejected"
)

// TravelRequest represents a trip that needs administrator approval.
type TravelRequest struct {
	Base
	UserID        uint                `gorm:"not null;index" json:"user_id"`
	RequesterName string              `gorm:"not null" json:"requester_name"`
	Destination   string              `gorm:"not null" json:"destination"`
	DepartureDate time.Time           `gorm:"not null" json:"departure_date"`
	ReturnDate    time.Time           `gorm:"not null" json:"return_date"`
	Status        TravelRequestStatus `gorm:"not null;default:requested" json:"status"`
	ApprovedBy    *uint               `json:"approved_by"`
	ApprovedAt    *time.Time          `json:"approved_at"`
	Notes         string              `json:"notes"`

	User     *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Approver *User `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
}

// CanBeCancelled reports whether the request is still cancellable by its
// owner. Approval makes the record immutable to non-admin paths.
func (t *TravelRequest) CanBeCancelled() bool {
	return t.Status != StatusApproved
}
