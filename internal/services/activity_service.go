package services

import (
	"encoding/json"

	"gorm.io/gorm"

	apperrors "traveldesk/internal/errors"
	"traveldesk/internal/logger"
	"traveldesk/internal/models"
	"traveldesk/internal/pagination"
)

// activityService appends and lists audit trail entries.
type activityService struct {
	db *gorm.DB
}

// NewActivityService creates a new ActivityServicer.
func NewActivityService(db *gorm.DB) ActivityServicer {
	return &activityService{db: db}
}

// Record appends an audit entry. Write failures are logged but never
// propagate, so the mutation being recorded cannot be disrupted.
func (s *activityService) Record(entry ActivityEntry) {
	log := &models.ActivityLog{
		UserID:      entry.ActorID,
		Action:      entry.Action,
		ModelType:   entry.ModelType,
		ModelID:     entry.ModelID,
		Description: entry.Description,
		OldValues:   marshalValues(entry.OldValues, entry.Action),
		NewValues:   marshalValues(entry.NewValues, entry.Action),
		IPAddress:   entry.IPAddress,
		UserAgent:   entry.UserAgent,
	}

	if err := s.db.Create(log).Error; err != nil {
		logger.Get().Errorw("failed to create activity log entry",
			"error", err,
			"user_id", entry.ActorID,
			"action", entry.Action,
			"model_type", entry.ModelType,
			"model_id", entry.ModelID,
		)
	}
}

// List returns a paginated audit listing, newest first.
func (s *activityService) List(filter ActivityLogFilter, page pagination.PageRequest) (*pagination.PageResponse[models.ActivityLog], error) {
	page.Defaults()

	query := s.db.Model(&models.ActivityLog{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.ModelType != "" {
		query = query.Where("model_type = ?", filter.ModelType)
	}

	var totalItems int64
	if err := query.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var logs []models.ActivityLog
	if err := query.Preload("User").
		Order("created_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&logs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(logs, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func marshalValues(values map[string]interface{}, action string) string {
	if values == nil {
		return ""
	}
	data, err := json.Marshal(values)
	if err != nil {
		logger.Get().Errorw("failed to marshal activity log values", "error", err, "action", action)
		return "{}"
	}
	return string(data)
}
