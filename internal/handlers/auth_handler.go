package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "traveldesk/internal/errors"
	"traveldesk/internal/middleware"
	"traveldesk/internal/models"
	"traveldesk/internal/services"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	userService services.UserServicer
	notifier    services.Notifier
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userService services.UserServicer, notifier services.Notifier) *AuthHandler {
	return &AuthHandler{userService: userService, notifier: notifier}
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries the refresh token for rotation.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ForgotPasswordRequest asks for a password reset email.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest consumes a reset token.
type ResetPasswordRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// UserResponse represents the user data in the response
type UserResponse struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

func newUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
	}
}

// issueTokens generates an access/refresh pair and stores the refresh hash.
func (h *AuthHandler) issueTokens(user *models.User) (gin.H, error) {
	accessToken, err := middleware.GenerateAccessToken(user)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	refreshToken, err := middleware.GenerateRefreshToken(user)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := h.userService.StoreRefreshTokenHash(user.ID, middleware.HashToken(refreshToken)); err != nil {
		return nil, err
	}

	return gin.H{
		"user":          newUserResponse(user),
		"token":         accessToken,
		"refresh_token": refreshToken,
		"token_type":    "bearer",
	}, nil
}

// Register handles user registration
// @Summary     Register a new user
// @Description Register a new non-admin user with name, email and password
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RegisterRequest true "User registration data"
// @Success     201 {object} Response "User registered and tokens generated"
// @Failure     422 {object} Response "Validation error"
// @Failure     500 {object} Response "Server error"
// @Router      /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.RegisterUser(req.Name, req.Email, req.Password, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondWithError(c, err)
		return
	}

	data, err := h.issueTokens(user)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, "User registered successfully", data)
}

// Login handles user login
// @Summary     Login user
// @Description Authenticate a user and issue a token pair
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "User login credentials"
// @Success     200 {object} Response "User authenticated"
// @Failure     401 {object} Response "Invalid credentials"
// @Failure     422 {object} Response "Validation error"
// @Router      /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.AttemptLogin(req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	data, err := h.issueTokens(user)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Login successful", data)
}

// Me returns the authenticated user's profile.
// @Summary     Get current user
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} Response "Current user"
// @Failure     401 {object} Response "Unauthenticated"
// @Router      /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "", newUserResponse(actor.User))
}

// Logout invalidates the stored refresh token.
// @Summary     Logout
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} Response "Logged out"
// @Failure     401 {object} Response "Unauthenticated"
// @Router      /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.userService.ClearRefreshTokenHash(actor.ID()); err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Logged out successfully", nil)
}

// Refresh rotates a valid refresh token into a new token pair.
// @Summary     Refresh tokens
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RefreshRequest true "Refresh token"
// @Success     200 {object} Response "New token pair"
// @Failure     401 {object} Response "Invalid refresh token"
// @Router      /refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	claims, err := middleware.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		respondWithError(c, apperrors.ErrInvalidToken)
		return
	}

	storedHash, err := h.userService.GetRefreshTokenHash(claims.UserID)
	if err != nil || storedHash == "" || storedHash != middleware.HashToken(req.RefreshToken) {
		respondWithError(c, apperrors.ErrInvalidToken)
		return
	}

	user, err := h.userService.GetUserByID(claims.UserID)
	if err != nil {
		respondWithError(c, apperrors.ErrInvalidToken)
		return
	}

	data, err := h.issueTokens(user)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Token refreshed successfully", data)
}

// ForgotPassword issues a password reset token and emails it.
// @Summary     Request password reset
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body ForgotPasswordRequest true "Account email"
// @Success     200 {object} Response "Reset email sent"
// @Failure     422 {object} Response "Unknown email"
// @Router      /forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	token, user, err := h.userService.CreatePasswordReset(req.Email)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.notifier.SendPasswordReset(user, token)

	respondSuccess(c, http.StatusOK, "Password reset email sent", nil)
}

// ResetPassword consumes a reset token and replaces the password.
// @Summary     Reset password
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body ResetPasswordRequest true "Reset token and new password"
// @Success     200 {object} Response "Password updated"
// @Failure     400 {object} Response "Invalid or expired token"
// @Failure     422 {object} Response "Validation error"
// @Router      /reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.userService.ResetPassword(req.Email, req.Token, req.Password); err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Password has been reset", nil)
}
