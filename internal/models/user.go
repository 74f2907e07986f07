package models

// User represents an account. Admins may manage every user and travel
// request; regular users only their own travel requests.
type User struct {
	Base
	Name             string          `gorm:"not null" json:"name"`
	Email            string          `gorm:"uniqueIndex;not null" json:"email"`
	Password         string          `gorm:"not null" json:"-"`
	IsAdmin          bool            `gorm:"default:false" json:"is_admin"`
	RefreshTokenHash string          `gorm:"size:64" json:"-"`
	TravelRequests   []TravelRequest `gorm:"foreignKey:UserID" json:"travel_requests,omitempty"`

	// TravelRequestsCount is populated by the admin user listing.
	TravelRequestsCount int64 `gorm:"-" json:"travel_requests_count"`
}
