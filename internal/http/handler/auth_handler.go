package handler

import (
	"context"
	"net/http"

	"github.com/salesbridge/crm-api/internal/auth"
	"github.com/salesbridge/crm-api/internal/domain"
	"github.com/salesbridge/crm-api/internal/repository"
	"go.uber.org/zap"
)

// UserRepository interface for dependency injection
type UserRepository interface {
	Upsert(ctx context.Context, user *domain.User) error
	List(ctx context.Context) ([]domain.User, error)
}

type AuthHandler struct {
	userRepo UserRepository
	logger   *zap.Logger
}

func NewAuthHandler(userRepo *repository.UserRepository, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userRepo: userRepo,
		logger:   logger,
	}
}

// NewAuthHandlerWithMocks creates an auth handler with mock dependencies for testing
func NewAuthHandlerWithMocks(userRepo UserRepository, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Me godoc
// @Summary Get current authenticated user
// @Description Returns the current authenticated user with roles and write permission info
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.AuthUserDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	// The auth middleware guarantees a user context on this route
	userCtx := auth.MustFromContext(r.Context())

	user := &domain.User{
		ID:          userCtx.UserID,
		DisplayName: userCtx.DisplayName,
		Email:       userCtx.Email,
		Roles:       userCtx.RolesAsStrings(),
	}

	if err := h.userRepo.Upsert(r.Context(), user); err != nil {
		h.logger.Warn("failed to upsert user", zap.Error(err))
	}

	dto := domain.AuthUserDTO{
		ID:       userCtx.UserID,
		Name:     userCtx.DisplayName,
		Email:    userCtx.Email,
		Roles:    userCtx.RolesAsStrings(),
		Initials: userCtx.GetDisplayNameInitials(),
		IsAdmin:  userCtx.IsAdmin(),
		CanWrite: userCtx.CanWrite(),
	}

	respondJSON(w, http.StatusOK, dto)
}

// ListUsers godoc
// @Summary List users
// @Description Returns all users that have authenticated against the API
// @Tags Users
// @Produce json
// @Success 200 {array} domain.UserDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /users [get]
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userRepo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to list users",
		})
		return
	}

	dtos := make([]domain.UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, domain.UserDTO{
			ID:    u.ID,
			Name:  u.DisplayName,
			Email: u.Email,
			Roles: u.Roles,
		})
	}

	respondJSON(w, http.StatusOK, dtos)
}
