package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cgl/internal/core/apperror"
	"cgl/internal/domain/auth"
	"cgl/internal/infrastructure/http/v1/dto"
)

// AuthHandler handles account endpoints.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		service:     service,
	}
}

// RegisterRoutes registers auth routes. protected must run the Auth middleware.
func (h *AuthHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/register", h.Register)
	public.POST("/login", h.Login)
	public.POST("/forgot-password", h.ForgotPassword)
	public.POST("/confirm-otp", h.ConfirmOTP)
	public.POST("/reset-password", h.ResetPassword)

	protected.GET("/profile", h.Profile)
	protected.PUT("/profile/update", h.UpdateProfile)
	protected.DELETE("/profile/delete", h.DeleteProfile)
}

// Register handles POST /user/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}
	areq := req.ToAuthRequest()
	if areq.UserType == auth.UserTypeAdmin {
		h.Error(c, apperror.NewForbidden("admin accounts cannot be self-registered"))
		return
	}

	user, err := h.service.Register(c.Request.Context(), areq)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.UserMessageResponse{
		Message: "User registered successfully",
		User:    dto.FromUser(user),
	})
}

// Login handles POST /user/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	token, user, err := h.service.Login(c.Request.Context(), req.ToCredentials())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewLoginResponse(token, user))
}

// Profile handles GET /user/profile
func (h *AuthHandler) Profile(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	user, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UserMessageResponse{
		Message: "User profile fetched successfully",
		User:    dto.FromUser(user),
	})
}

// UpdateProfile handles PUT /user/profile/update
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), userID, req.ToProfileUpdate())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UserMessageResponse{
		Message: "User profile updated successfully",
		User:    dto.FromUser(user),
	})
}

// DeleteProfile handles DELETE /user/profile/delete
func (h *AuthHandler) DeleteProfile(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteAccount(c.Request.Context(), userID); err != nil {
		h.Error(c, err)
		return
	}
	h.Message(c, "User deleted successfully")
}

// ForgotPassword handles POST /user/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.Error(c, err)
		return
	}
	h.Message(c, "OTP sent to your email")
}

// ConfirmOTP handles POST /user/confirm-otp
func (h *AuthHandler) ConfirmOTP(c *gin.Context) {
	var req dto.ConfirmOTPRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.ConfirmOTP(c.Request.Context(), req.Email, req.OTP); err != nil {
		h.Error(c, err)
		return
	}
	h.Message(c, "OTP verified successfully")
}

// ResetPassword handles POST /user/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req.Email, req.NewPassword); err != nil {
		h.Error(c, err)
		return
	}
	h.Message(c, "Password reset successfully")
}
