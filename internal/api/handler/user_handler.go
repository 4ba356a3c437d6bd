package handler

import (
	"errors"
	"net/http"

	"github.com/drovers/stockyard/internal/api/middleware"
	"github.com/drovers/stockyard/internal/domain"
	"github.com/drovers/stockyard/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserHandler handles authentication, profile, and notification endpoints.
type UserHandler struct {
	authSvc  *service.AuthService
	notifSvc *service.NotificationService
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(authSvc *service.AuthService, notifSvc *service.NotificationService) *UserHandler {
	return &UserHandler{authSvc: authSvc, notifSvc: notifSvc}
}

// Register godoc
// POST /api/auth/register
func (h *UserHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	resp, err := h.authSvc.Register(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailTaken):
			respondError(c, http.StatusConflict, "ERR_EMAIL_TAKEN", err.Error())
		case errors.Is(err, domain.ErrUsernameTaken):
			respondError(c, http.StatusConflict, "ERR_USERNAME_TAKEN", err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "registration failed")
		}
		return
	}
	respondSuccess(c, http.StatusCreated, resp)
}

// Login godoc
// POST /api/auth/login
func (h *UserHandler) Login(c *gin.Context) {
	var body struct {
		Email    string `json:"email"    binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	resp, err := h.authSvc.Login(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			respondError(c, http.StatusUnauthorized, "ERR_INVALID_CREDENTIALS", err.Error())
		case errors.Is(err, domain.ErrUserInactive):
			respondError(c, http.StatusForbidden, "ERR_ACCOUNT_DISABLED", err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "login failed")
		}
		return
	}
	respondSuccess(c, http.StatusOK, resp)
}

// Refresh godoc
// POST /api/auth/refresh
func (h *UserHandler) Refresh(c *gin.Context) {
	var body struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	access, refresh, err := h.authSvc.RefreshToken(c.Request.Context(), body.RefreshToken)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "ERR_INVALID_TOKEN", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
	})
}

// Me godoc
// GET /api/me [JWT]
func (h *UserHandler) Me(c *gin.Context) {
	userID := middleware.GetUserID(c)
	user, err := h.authSvc.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, http.StatusNotFound, "ERR_USER_NOT_FOUND", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, user.ToPublicProfile())
}

// SubmitKYC godoc
// POST /api/me/kyc [JWT]
func (h *UserHandler) SubmitKYC(c *gin.Context) {
	userID := middleware.GetUserID(c)
	user, err := h.authSvc.SubmitKYC(c.Request.Context(), userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not submit verification")
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"kyc_status": user.KYCStatus})
}

// GetNotifications godoc
// GET /api/notifications?page=1&limit=20 [JWT]
func (h *UserHandler) GetNotifications(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	notifications, err := h.notifSvc.ListForUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch notifications")
		return
	}
	respondList(c, notifications, len(notifications), page, limit)
}

// MarkNotificationRead godoc
// POST /api/notifications/:id/read [JWT]
func (h *UserHandler) MarkNotificationRead(c *gin.Context) {
	userID := middleware.GetUserID(c)

	notifID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid notification id")
		return
	}

	if err := h.notifSvc.MarkRead(c.Request.Context(), notifID, userID); err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not mark notification read")
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"read": true})
}
