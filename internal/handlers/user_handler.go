package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"traveldesk/internal/services"
)

// UserHandler handles admin user management requests
type UserHandler struct {
	userService services.UserServicer
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService services.UserServicer) *UserHandler {
	return &UserHandler{userService: userService}
}

// UserFilterRequest represents the user listing query parameters
type UserFilterRequest struct {
	UserType string `form:"user_type" binding:"omitempty,user_type"`
	Email    string `form:"email" binding:"omitempty,max=255"`
}

// UpdateUserRequest represents the admin user update payload. Both fields
// are optional; absent fields are left untouched.
type UpdateUserRequest struct {
	Name    *string `json:"name" binding:"omitempty,max=255"`
	IsAdmin *bool   `json:"is_admin"`
}

// ListUsers returns all users with travel request counts. Admin route.
// @Summary     List users
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Param       user_type query string false "Filter by type (admin|basic)"
// @Param       email query string false "Filter by email substring"
// @Success     200 {object} Response "Users"
// @Failure     401 {object} Response "Unauthenticated"
// @Failure     403 {object} Response "Forbidden"
// @Router      /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	var req UserFilterRequest
	if !bindQuery(c, &req) {
		return
	}

	users, err := h.userService.ListUsers(services.UserFilter{
		UserType: req.UserType,
		Email:    req.Email,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "", users)
}

// GetUser returns one user profile for the actor (self or admin).
// @Summary     Get a user
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "User ID"
// @Success     200 {object} Response "User"
// @Failure     403 {object} Response "Forbidden"
// @Failure     404 {object} Response "Not found"
// @Router      /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserForActor(actor, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "", user)
}

// UpdateUser updates a user's name and/or admin flag. Admin route.
// @Summary     Update a user
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "User ID"
// @Param       request body UpdateUserRequest true "Fields to update"
// @Success     200 {object} Response "Updated user"
// @Failure     404 {object} Response "Not found"
// @Failure     422 {object} Response "Validation error"
// @Router      /users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateUser(actor, id, req.Name, req.IsAdmin)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "User updated successfully", user)
}

// DeleteUser soft-deletes a user. Admin route; self-delete is rejected.
// @Summary     Delete a user
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "User ID"
// @Success     200 {object} Response "Deleted"
// @Failure     403 {object} Response "Forbidden"
// @Failure     404 {object} Response "Not found"
// @Router      /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.userService.DeleteUser(actor, id); err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "User deleted successfully", nil)
}
