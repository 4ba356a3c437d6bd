package handler

import (
	"net/http"

	"github.com/drovers/stockyard/internal/config"
	"github.com/drovers/stockyard/internal/domain"
	"github.com/drovers/stockyard/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserAdminHandler serves /admin/users endpoints, including the KYC review
// queue.
type UserAdminHandler struct {
	userRepo *repository.UserRepository
	cfg      *config.Config
}

// NewUserAdminHandler creates a UserAdminHandler.
func NewUserAdminHandler(userRepo *repository.UserRepository, cfg *config.Config) *UserAdminHandler {
	return &UserAdminHandler{userRepo: userRepo, cfg: cfg}
}

// List godoc
// GET /admin/users?kyc_status=pending&page=1&limit=50
func (h *UserAdminHandler) List(c *gin.Context) {
	kycStatus := c.Query("kyc_status")
	page, limit := adminPagination(c)
	offset := (page - 1) * limit

	users, err := h.userRepo.List(c.Request.Context(), limit, offset, kycStatus)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}

	out := make([]domain.PublicProfile, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToPublicProfile())
	}
	respondList(c, out, len(out), page, limit)
}

// Detail godoc
// GET /admin/users/:id
func (h *UserAdminHandler) Detail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid user id")
		return
	}

	user, err := h.userRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, user.ToPublicProfile())
}

// VerifyKYC godoc
// POST /admin/users/:id/kyc/verify
func (h *UserAdminHandler) VerifyKYC(c *gin.Context) {
	h.setKYC(c, domain.KYCVerified)
}

// RejectKYC godoc
// POST /admin/users/:id/kyc/reject
func (h *UserAdminHandler) RejectKYC(c *gin.Context) {
	h.setKYC(c, domain.KYCRejected)
}

func (h *UserAdminHandler) setKYC(c *gin.Context, status domain.KYCStatus) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid user id")
		return
	}
	if err = h.userRepo.SetKYCStatus(c.Request.Context(), id, status); err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"user_id": id, "kyc_status": status})
}

// Suspend godoc
// POST /admin/users/:id/suspend
func (h *UserAdminHandler) Suspend(c *gin.Context) {
	h.setActive(c, false)
}

// Activate godoc
// POST /admin/users/:id/activate
func (h *UserAdminHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

func (h *UserAdminHandler) setActive(c *gin.Context, active bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid user id")
		return
	}
	if err = h.userRepo.SetActive(c.Request.Context(), id, active); err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"user_id": id, "is_active": active})
}

// SetRole godoc
// POST /admin/users/:id/role
// Body: {"role": "ops"}
func (h *UserAdminHandler) SetRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid user id")
		return
	}
	var body struct {
		Role string `json:"role" binding:"required"`
	}
	if err = c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}
	role := domain.UserRole(body.Role)
	validRoles := map[domain.UserRole]bool{
		domain.RoleUser:     true,
		domain.RoleAdmin:    true,
		domain.RoleOps:      true,
		domain.RoleReadOnly: true,
	}
	if !validRoles[role] {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ROLE", "unknown role")
		return
	}
	if err = h.userRepo.UpdateRole(c.Request.Context(), id, role); err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"user_id": id, "role": role})
}
