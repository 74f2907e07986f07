package services

import (
	"context"
	"time"

	"traveldesk/internal/models"
	"traveldesk/internal/pagination"
)

// Actor identifies the authenticated user performing a request, together
// with the request metadata recorded in the activity log. Handlers build
// one per request; services never read ambient auth state.
type Actor struct {
	User      *models.User
	IPAddress string
	UserAgent string
}

// ID returns the acting user's ID.
func (a Actor) ID() uint { return a.User.ID }

// IsAdmin reports whether the acting user is an administrator.
func (a Actor) IsAdmin() bool { return a.User.IsAdmin }

// Owns reports whether the actor owns a resource belonging to ownerID.
func (a Actor) Owns(ownerID uint) bool { return a.User.ID == ownerID }

// CanAccess is the ownership rule shared by every resource: admins may act
// on anything, regular users only on what they own.
func (a Actor) CanAccess(ownerID uint) bool { return a.IsAdmin() || a.Owns(ownerID) }

// UserFilter holds optional filter parameters for the admin user listing.
type UserFilter struct {
	// UserType is "admin", "basic", or empty for all.
	UserType string
	// Email filters by substring match.
	Email string
}

// UserServicer defines the contract for user and credential management.
type UserServicer interface {
	RegisterUser(name, email, password, ipAddress, userAgent string) (*models.User, error)
	AttemptLogin(email, password string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserForActor(actor Actor, id uint) (*models.User, error)
	ListUsers(filter UserFilter) ([]models.User, error)
	UpdateUser(actor Actor, id uint, name *string, isAdmin *bool) (*models.User, error)
	DeleteUser(actor Actor, id uint) error
	StoreRefreshTokenHash(userID uint, tokenHash string) error
	GetRefreshTokenHash(userID uint) (string, error)
	ClearRefreshTokenHash(userID uint) error
	CreatePasswordReset(email string) (string, *models.User, error)
	ResetPassword(email, token, newPassword string) error
}

// TravelRequestFilter holds optional filter parameters for listing travel requests.
type TravelRequestFilter struct {
	Status      string
	Destination string
	StartDate   *time.Time
	EndDate     *time.Time
}

// TravelRequestInput carries the fields for creating a travel request.
type TravelRequestInput struct {
	RequesterName string
	Destination   string
	DepartureDate time.Time
	ReturnDate    time.Time
	Notes         string
}

// TravelRequestUpdate carries a partial update; nil fields are untouched.
type TravelRequestUpdate struct {
	RequesterName *string
	Destination   *string
	DepartureDate *time.Time
	ReturnDate    *time.Time
	Notes         *string
}

// TravelRequestServicer defines the contract for the travel request workflow.
type TravelRequestServicer interface {
	List(actor Actor, filter TravelRequestFilter) ([]models.TravelRequest, error)
	Create(actor Actor, input TravelRequestInput) (*models.TravelRequest, error)
	Get(actor Actor, id uint) (*models.TravelRequest, error)
	Update(actor Actor, id uint, update TravelRequestUpdate) (*models.TravelRequest, error)
	UpdateStatus(actor Actor, id uint, status models.TravelRequestStatus) (*models.TravelRequest, error)
	Cancel(actor Actor, id uint) (*models.TravelRequest, error)
	Delete(actor Actor, id uint) error
}

// ActivityEntry is one audit record to append.
type ActivityEntry struct {
	ActorID     uint
	Action      string
	ModelType   string
	ModelID     uint
	Description string
	OldValues   map[string]interface{}
	NewValues   map[string]interface{}
	IPAddress   string
	UserAgent   string
}

// ActivityLogFilter holds optional filter parameters for the audit listing.
type ActivityLogFilter struct {
	UserID    *uint
	Action    string
	ModelType string
}

// ActivityServicer defines the contract for the append-only audit trail.
type ActivityServicer interface {
	// Record appends an audit entry. It never fails the caller: write
	// errors are logged and swallowed.
	Record(entry ActivityEntry)
	List(filter ActivityLogFilter, page pagination.PageRequest) (*pagination.PageResponse[models.ActivityLog], error)
}

// City is the normalized municipality record served by the lookup endpoints.
type City struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	State string `json:"state"`
	UF    string `json:"uf"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// LocationServicer defines the contract for the municipality lookup.
type LocationServicer interface {
	SearchCities(ctx context.Context, query string) ([]City, error)
	Destinations(ctx context.Context) ([]string, error)
}

// Notifier dispatches user-facing notifications. Implementations must not
// block the calling request path.
type Notifier interface {
	NotifyStatusChanged(user *models.User, request *models.TravelRequest, oldStatus models.TravelRequestStatus)
	SendPasswordReset(user *models.User, token string)
}
