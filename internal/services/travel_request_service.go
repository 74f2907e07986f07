package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "traveldesk/internal/errors"
	"traveldesk/internal/models"
)

// travelRequestService implements the travel request workflow: status
// transitions, ownership checks, audit writes, and owner notification.
type travelRequestService struct {
	db       *gorm.DB
	audit    ActivityServicer
	notifier Notifier
}

// NewTravelRequestService creates a new TravelRequestServicer.
func NewTravelRequestService(db *gorm.DB, audit ActivityServicer, notifier Notifier) TravelRequestServicer {
	return &travelRequestService{db: db, audit: audit, notifier: notifier}
}

// List returns travel requests visible to the actor, newest first.
// Admins see every request; regular users only their own.
func (s *travelRequestService) List(actor Actor, filter TravelRequestFilter) ([]models.TravelRequest, error) {
	query := s.db.Model(&models.TravelRequest{}).Preload("Approver")
	if actor.IsAdmin() {
		query = query.Preload("User")
	} else {
		query = query.Where("user_id = ?", actor.ID())
	}

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Destination != "" {
		query = query.Where("destination LIKE ?", "%"+filter.Destination+"%")
	}
	if filter.StartDate != nil && filter.EndDate != nil {
		query = query.Where(
			"(departure_date BETWEEN ? AND ?) OR (return_date BETWEEN ? AND ?) OR (created_at BETWEEN ? AND ?)",
			*filter.StartDate, *filter.EndDate,
			*filter.StartDate, *filter.EndDate,
			*filter.StartDate, *filter.EndDate,
		)
	}

	var requests []models.TravelRequest
	if err := query.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return requests, nil
}

// Create opens a new travel request in the requested state, owned by the actor.
func (s *travelRequestService) Create(actor Actor, input TravelRequestInput) (*models.TravelRequest, error) {
	if err := validateDates(input.DepartureDate, input.ReturnDate); err != nil {
		return nil, err
	}

	request := &models.TravelRequest{
		UserID:        actor.ID(),
		RequesterName: input.RequesterName,
		Destination:   input.Destination,
		DepartureDate: input.DepartureDate,
		ReturnDate:    input.ReturnDate,
		Notes:         input.Notes,
		Status:        models.StatusRequested,
	}

	if err := s.db.Create(request).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.audit.Record(ActivityEntry{
		ActorID:     actor.ID(),
		Action:      models.ActionCreate,
		ModelType:   models.ModelTypeTravelRequest,
		ModelID:     request.ID,
		Description: "Travel request created",
		NewValues:   travelRequestSnapshot(request),
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})

	return s.load(request.ID)
}

// Get returns a single request. Existence is checked before permission:
// an unknown ID is 404 for everyone, a foreign ID 403 for non-admins.
func (s *travelRequestService) Get(actor Actor, id uint) (*models.TravelRequest, error) {
	request, err := s.load(id)
	if err != nil {
		return nil, err
	}

	if !actor.CanAccess(request.UserID) {
		return nil, apperrors.WithMessage(apperrors.ErrForbidden, "You do not have permission to view this travel request")
	}

	return request, nil
}

// Update edits request fields. Approved requests are immutable.
func (s *travelRequestService) Update(actor Actor, id uint, update TravelRequestUpdate) (*models.TravelRequest, error) {
	request, err := s.load(id)
	if err != nil {
		return nil, err
	}

	if !actor.CanAccess(request.UserID) {
		return nil, apperrors.WithMessage(apperrors.ErrForbidden, "You do not have permission to update this travel request")
	}

	if request.Status == models.StatusApproved {
		return nil, apperrors.WithMessage(apperrors.ErrRequestApproved, "An approved travel request cannot be updated")
	}

	oldValues := travelRequestSnapshot(request)

	if update.RequesterName != nil {
		request.RequesterName = *update.RequesterName
	}
	if update.Destination != nil {
		request.Destination = *update.Destination
	}
	if update.DepartureDate != nil {
		request.DepartureDate = *update.DepartureDate
	}
	if update.ReturnDate != nil {
		request.ReturnDate = *update.ReturnDate
	}
	if update.Notes != nil {
		request.Notes = *update.Notes
	}

	if !request.ReturnDate.After(request.DepartureDate) {
		return nil, apperrors.ErrInvalidDateRange
	}
	if update.DepartureDate != nil && beforeToday(request.DepartureDate) {
		return nil, apperrors.ErrDepartureInPast
	}

	if err := s.db.Save(request).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.audit.Record(ActivityEntry{
		ActorID:     actor.ID(),
		Action:      models.ActionUpdate,
		ModelType:   models.ModelTypeTravelRequest,
		ModelID:     request.ID,
		Description: "Travel request updated",
		OldValues:   oldValues,
		NewValues:   travelRequestSnapshot(request),
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})

	return s.load(request.ID)
}

// UpdateStatus moves a request to approved or cancelled. Administrators
// only, and never on their own requests: approval records the actor as
// approver with a timestamp and notifies the owner.
func (s *travelRequestService) UpdateStatus(actor Actor, id uint, status models.TravelRequestStatus) (*models.TravelRequest, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.WithMessage(apperrors.ErrAdminOnly, "Only administrators can change travel request status")
	}

	if status != models.StatusApproved && status != models.StatusCancelled {
		return nil, apperrors.ErrInvalidStatus
	}

	request, err := s.load(id)
	if err != nil {
		return nil, err
	}

	if request.UserID == actor.ID() {
		return nil, apperrors.ErrSelfApproval
	}

	oldStatus := request.Status
	now := time.Now()
	approverID := actor.ID()

	request.Status = status
	request.ApprovedBy = &approverID
	request.ApprovedAt = &now

	if err := s.db.Save(request).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if owner, err := s.loadOwner(request.UserID); err == nil {
		s.notifier.NotifyStatusChanged(owner, request, oldStatus)
	}

	s.audit.Record(ActivityEntry{
		ActorID:     actor.ID(),
		Action:      models.ActionStatusChange,
		ModelType:   models.ModelTypeTravelRequest,
		ModelID:     request.ID,
		Description: fmt.Sprintf("Status changed from %s to %s", oldStatus, status),
		OldValues:   map[string]interface{}{"status": string(oldStatus)},
		NewValues:   map[string]interface{}{"status": string(status)},
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})

	return s.load(request.ID)
}

// Cancel sets the request to cancelled without touching approver fields.
// Owners and admins may cancel anything not yet approved.
func (s *travelRequestService) Cancel(actor Actor, id uint) (*models.TravelRequest, error) {
	request, err := s.load(id)
	if err != nil {
		return nil, err
	}

	if !actor.CanAccess(request.UserID) {
		return nil, apperrors.WithMessage(apperrors.ErrForbidden, "You do not have permission to cancel this travel request")
	}

	if !request.CanBeCancelled() {
		return nil, apperrors.WithMessage(apperrors.ErrRequestApproved, "An approved travel request cannot be cancelled")
	}

	oldStatus := request.Status
	request.Status = models.StatusCancelled

	if err := s.db.Save(request).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.audit.Record(ActivityEntry{
		ActorID:     actor.ID(),
		Action:      models.ActionStatusChange,
		ModelType:   models.ModelTypeTravelRequest,
		ModelID:     request.ID,
		Description: "Travel request cancelled",
		OldValues:   map[string]interface{}{"status": string(oldStatus)},
		NewValues:   map[string]interface{}{"status": string(models.StatusCancelled)},
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})

	return s.load(request.ID)
}

// Delete soft-deletes a request. Admin-only; approved requests cannot be
// deleted even by admins.
func (s *travelRequestService) Delete(actor Actor, id uint) error {
	if !actor.IsAdmin() {
		return apperrors.WithMessage(apperrors.ErrAdminOnly, "Only administrators can delete travel requests")
	}

	request, err := s.load(id)
	if err != nil {
		return err
	}

	if request.Status == models.StatusApproved {
		return apperrors.WithMessage(apperrors.ErrRequestApproved, "An approved travel request cannot be deleted")
	}

	s.audit.Record(ActivityEntry{
		ActorID:     actor.ID(),
		Action:      models.ActionDelete,
		ModelType:   models.ModelTypeTravelRequest,
		ModelID:     request.ID,
		Description: "Travel request deleted",
		OldValues:   travelRequestSnapshot(request),
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})

	if err := s.db.Delete(request).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return nil
}

func (s *travelRequestService) load(id uint) (*models.TravelRequest, error) {
	var request models.TravelRequest
	if err := s.db.Preload("User").Preload("Approver").First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTravelRequestNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &request, nil
}

func (s *travelRequestService) loadOwner(userID uint) (*models.User, error) {
	var owner models.User
	if err := s.db.First(&owner, userID).Error; err != nil {
		return nil, err
	}
	return &owner, nil
}

func validateDates(departure, ret time.Time) error {
	if beforeToday(departure) {
		return apperrors.ErrDepartureInPast
	}
	if !ret.After(departure) {
		return apperrors.ErrInvalidDateRange
	}
	return nil
}

// beforeToday compares calendar days, not instants, so a departure later
// today is still valid.
func beforeToday(t time.Time) bool {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, t.Location())
	return t.Before(today)
}

func travelRequestSnapshot(request *models.TravelRequest) map[string]interface{} {
	snapshot := map[string]interface{}{
		"id":             request.ID,
		"user_id":        request.UserID,
		"requester_name": request.RequesterName,
		"destination":    request.Destination,
		"departure_date": request.DepartureDate.Format("2006-01-02"),
		"return_date":    request.ReturnDate.Format("2006-01-02"),
		"status":         string(request.Status),
		"notes":          request.Notes,
	}
	if request.ApprovedBy != nil {
		snapshot["approved_by"] = *request.ApprovedBy
	}
	if request.ApprovedAt != nil {
		snapshot["approved_at"] = request.ApprovedAt.Format(time.RFC3339)
	}
	return snapshot
}
