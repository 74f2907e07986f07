package testutil

import (
	"fmt"
	"testing"
	"time"

	"traveldesk/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func nextID() int64 {
	return dbCounter.Add(1)
}

// CreateTestUser creates a non-admin user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestAdmin creates an administrator user.
func CreateTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := CreateTestUserWithEmail(t, db, fmt.Sprintf("admin%d@test.com", nextID()))
	user.IsAdmin = true
	if err := db.Model(user).Update("is_admin", true).Error; err != nil {
		t.Fatalf("failed to promote test user: %v", err)
	}
	return user
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Name:     fmt.Sprintf("Test User %d", nextID()),
		Email:    email,
		Password: string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestTravelRequest creates a travel request in the requested state
// departing a week from now.
func CreateTestTravelRequest(t *testing.T, db *gorm.DB, userID uint) *models.TravelRequest {
	t.Helper()

	departure := time.Now().AddDate(0, 0, 7)
	tr := &models.TravelRequest{
		UserID:        userID,
		RequesterName: fmt.Sprintf("Requester %d", nextID()),
		Destination:   fmt.Sprintf("Destination %d", nextID()),
		DepartureDate: departure,
		ReturnDate:    departure.AddDate(0, 0, 3),
		Status:        models.StatusRequested,
	}
	if err := db.Create(tr).Error; err != nil {
		t.Fatalf("failed to create test travel request: %v", err)
	}
	return tr
}

// CreateTestTravelRequestWithStatus creates a travel request in the given state.
func CreateTestTravelRequestWithStatus(t *testing.T, db *gorm.DB, userID uint, status models.TravelRequestStatus) *models.TravelRequest {
	t.Helper()

	tr := CreateTestTravelRequest(t, db, userID)
	tr.Status = status
	if err := db.Model(tr).Update("status", status).Error; err != nil {
		t.Fatalf("failed to set travel request status: %v", err)
	}
	return tr
}
