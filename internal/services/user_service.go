package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "traveldesk/internal/errors"
	"traveldesk/internal/middleware"
	"traveldesk/internal/models"
)

const resetTokenExpiry = time.Hour

// userService handles user accounts and credentials.
type userService struct {
	db    *gorm.DB
	audit ActivityServicer
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB, audit ActivityServicer) UserServicer {
	return &userService{db: db, audit: audit}
}

// RegisterUser creates a non-admin account and records the registration
// in the activity log under the new user's own ID.
func (s *userService) RegisterUser(name, email, password, ipAddress, userAgent string) (*models.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "name, email and password are required")
	}

	var count int64
	s.db.Model(&models.User{}).Where("email = ?", strings.ToLower(email)).Count(&count)
	if count > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Name:     name,
		Email:    strings.ToLower(email),
		Password: string(hashedPassword),
		IsAdmin:  false,
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.audit.Record(ActivityEntry{
		ActorID:     user.ID,
		Action:      models.ActionCreate,
		ModelType:   models.ModelTypeUser,
		ModelID:     user.ID,
		Description: "User registered",
		NewValues:   userSnapshot(user),
		IPAddress:   ipAddress,
		UserAgent:   userAgent,
	})

	return user, nil
}

// AttemptLogin verifies credentials and returns the matching user.
func (s *userService) AttemptLogin(email, password string) (*models.User, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	return user, nil
}

// GetUserByEmail retrieves a user by email
func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserForActor retrieves a user profile for the show endpoint.
// Existence is checked before permission, so an unknown ID yields 404
// even for callers who would be denied access.
func (s *userService) GetUserForActor(actor Actor, id uint) (*models.User, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}

	if !actor.CanAccess(user.ID) {
		return nil, apperrors.WithMessage(apperrors.ErrForbidden, "You do not have permission to view this user")
	}

	user.TravelRequestsCount = s.countTravelRequests(user.ID)
	return user, nil
}

// ListUsers returns all users matching the filter, with travel request counts.
func (s *userService) ListUsers(filter UserFilter) ([]models.User, error) {
	query := s.db.Model(&models.User{})

	switch filter.UserType {
	case "admin":
		query = query.Where("is_admin = ?", true)
	case "basic":
		query = query.Where("is_admin = ?", false)
	}
	if filter.Email != "" {
		query = query.Where("email LIKE ?", "%"+filter.Email+"%")
	}

	var users []models.User
	if err := query.Order("id ASC").Find(&users).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i := range users {
		users[i].TravelRequestsCount = s.countTravelRequests(users[i].ID)
	}

	return users, nil
}

// UpdateUser updates a user's name and/or admin flag and records the change.
func (s *userService) UpdateUser(actor Actor, id uint, name *string, isAdmin *bool) (*models.User, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}

	oldValues := userSnapshot(user)

	if name != nil {
		user.Name = *name
	}
	if isAdmin != nil {
		user.IsAdmin = *isAdmin
	}

	if err := s.db.Save(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.audit.Record(ActivityEntry{
		ActorID:     actor.ID(),
		Action:      models.ActionUpdate,
		ModelType:   models.ModelTypeUser,
		ModelID:     user.ID,
		Description: "User updated",
		OldValues:   oldValues,
		NewValues:   userSnapshot(user),
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})

	return user, nil
}

// DeleteUser soft-deletes a user. Self-deletion is forbidden; related
// travel requests are left intact.
func (s *userService) DeleteUser(actor Actor, id uint) error {
	user, err := s.GetUserByID(id)
	if err != nil {
		return err
	}

	if user.ID == actor.ID() {
		return apperrors.ErrSelfDelete
	}

	s.audit.Record(ActivityEntry{
		ActorID:     actor.ID(),
		Action:      models.ActionDelete,
		ModelType:   models.ModelTypeUser,
		ModelID:     user.ID,
		Description: "User deleted",
		OldValues:   userSnapshot(user),
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})

	if err := s.db.Delete(user).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return nil
}

// StoreRefreshTokenHash persists the hash of the user's current refresh token.
func (s *userService) StoreRefreshTokenHash(userID uint, tokenHash string) error {
	result := s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("refresh_token_hash", tokenHash)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// GetRefreshTokenHash returns the stored refresh token hash for a user.
func (s *userService) GetRefreshTokenHash(userID uint) (string, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return "", err
	}
	return user.RefreshTokenHash, nil
}

// ClearRefreshTokenHash drops the stored refresh token hash (logout).
func (s *userService) ClearRefreshTokenHash(userID uint) error {
	return s.StoreRefreshTokenHash(userID, "")
}

// CreatePasswordReset issues a one-hour reset token for the given email.
// Only the SHA-256 hash is stored; the raw token goes out by email.
func (s *userService) CreatePasswordReset(email string) (string, *models.User, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		return "", nil, apperrors.WithMessage(apperrors.ErrValidation, "No account exists for this email")
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	token := hex.EncodeToString(raw)

	// One pending reset per email.
	if err := s.db.Where("email = ?", user.Email).Delete(&models.PasswordReset{}).Error; err != nil {
		return "", nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	reset := &models.PasswordReset{
		Email:     user.Email,
		TokenHash: middleware.HashToken(token),
		ExpiresAt: time.Now().Add(resetTokenExpiry),
	}
	if err := s.db.Create(reset).Error; err != nil {
		return "", nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return token, user, nil
}

// ResetPassword consumes a valid reset token and replaces the password.
func (s *userService) ResetPassword(email, token, newPassword string) error {
	var reset models.PasswordReset
	err := s.db.Where("email = ? AND token_hash = ?", strings.ToLower(email), middleware.HashToken(token)).
		First(&reset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrResetTokenInvalid
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if time.Now().After(reset.ExpiresAt) {
		return apperrors.ErrResetTokenInvalid
	}

	user, err := s.GetUserByEmail(email)
	if err != nil {
		return apperrors.ErrResetTokenInvalid
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	updates := map[string]interface{}{
		"password":           string(hashedPassword),
		"refresh_token_hash": "",
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Unscoped().Delete(&reset).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return nil
}

func (s *userService) countTravelRequests(userID uint) int64 {
	var count int64
	s.db.Model(&models.TravelRequest{}).Where("user_id = ?", userID).Count(&count)
	return count
}

// userSnapshot dumps the audit-relevant user fields. The password hash is
// deliberately excluded.
func userSnapshot(user *models.User) map[string]interface{} {
	return map[string]interface{}{
		"id":       user.ID,
		"name":     user.Name,
		"email":    user.Email,
		"is_admin": user.IsAdmin,
	}
}
