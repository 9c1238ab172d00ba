package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"inventory-api/internal/middleware"
	"inventory-api/internal/models"
	"inventory-api/internal/services"
)

// UserHandler handles account and session requests
type UserHandler struct {
	userService  services.UserService
	authService  *middleware.AuthService
	secureCookie bool
	logger       *logrus.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService services.UserService, authService *middleware.AuthService, secureCookie bool, logger *logrus.Logger) *UserHandler {
	return &UserHandler{
		userService:  userService,
		authService:  authService,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// RefreshRequest carries a refresh token in the body
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// @Summary Register a user
// @Tags users
// @Accept json
// @Produce json
// @Param user body services.RegisterRequest true "Account data"
// @Success 201 {object} Response{data=models.PublicProfile}
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /users/registerUser [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	profile, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusCreated, "User registered successfully", profile)
}

// @Summary Log in
// @Description Log in with email or username; tokens are returned and set as cookies
// @Tags users
// @Accept json
// @Produce json
// @Param credentials body services.LoginRequest true "Credentials"
// @Success 200 {object} Response{data=services.Session}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /users/loginUser [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := h.userService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.authService.SetSessionCookies(c, session.AccessToken, session.RefreshToken, h.secureCookie)
	respond(c, http.StatusOK, "User logged in successfully", session)
}

// @Summary Log out
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Failure 401 {object} ErrorResponse
// @Router /users/logoutUser [post]
func (h *UserHandler) Logout(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, h.logger, models.NewUnauthorizedError("Authentication required"))
		return
	}

	if err := h.userService.Logout(c.Request.Context(), userID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.authService.ClearSessionCookies(c, h.secureCookie)
	respond(c, http.StatusOK, "User logged out successfully", nil)
}

// @Summary Refresh the session
// @Description Exchange a refresh token from the cookie, query or body for a new token pair
// @Tags users
// @Accept json
// @Produce json
// @Param token body RefreshRequest false "Refresh token"
// @Success 200 {object} Response{data=services.Session}
// @Failure 401 {object} ErrorResponse
// @Router /users/refreshToken [post]
func (h *UserHandler) Refresh(c *gin.Context) {
	token, _ := c.Cookie(middleware.RefreshTokenCookie)
	if token == "" {
		token = c.Query("refreshToken")
	}
	if token == "" && c.Request.ContentLength > 0 {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		token = req.RefreshToken
	}
	if token == "" {
		respondError(c, h.logger, models.NewUnauthorizedError("Refresh token is required"))
		return
	}

	session, err := h.userService.Refresh(c.Request.Context(), token)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.authService.SetSessionCookies(c, session.AccessToken, session.RefreshToken, h.secureCookie)
	respond(c, http.StatusOK, "Access token refreshed", session)
}

// @Summary Change password
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param passwords body services.ChangePasswordRequest true "Old and new password"
// @Success 200 {object} Response
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /users/changePassword [post]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, h.logger, models.NewUnauthorizedError("Authentication required"))
		return
	}

	var req services.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Password changed successfully", nil)
}

// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.PublicProfile}
// @Failure 401 {object} ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, h.logger, models.NewUnauthorizedError("Authentication required"))
		return
	}

	profile, err := h.userService.Me(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "User fetched successfully", profile)
}
