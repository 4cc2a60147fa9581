package handler

import (
	"net/http"

	"github.com/evently/backend/internal/apperr"
	"github.com/evently/backend/internal/metrics"
	"github.com/evently/backend/internal/model"
	"github.com/evently/backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type AuthHandler struct {
	svc     *service.AuthService
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func NewAuthHandler(svc *service.AuthService, m *metrics.Metrics, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, metrics: m, log: log}
}

// Register godoc
// @Summary Register a new user
// @Tags users
// @Accept json
// @Produce json
// @Param request body model.AuthRequest true "Email username and password"
// @Success 201 {object} model.PublicUser
// @Failure 400 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /users/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, bindError(err))
		return
	}

	user, err := h.svc.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Login godoc
// @Summary Login
// @Tags users
// @Accept json
// @Produce json
// @Param request body model.AuthRequest true "Email username and password"
// @Success 200 {object} model.LoginResult
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /users/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, bindError(err))
		return
	}

	res, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.metrics.Login(apperr.KindOf(err).String())
		writeError(c, h.log, err)
		return
	}

	h.metrics.Login("success")
	c.JSON(http.StatusOK, res)
}

// Refresh godoc
// @Summary Refresh access token
// @Description Exchanges a refresh token for a new access token. The refresh token is not rotated.
// @Tags users
// @Accept json
// @Produce json
// @Param request body model.RefreshRequest true "Refresh token"
// @Success 200 {object} model.RefreshResult
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /users/refresh-token [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req model.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, bindError(err))
		return
	}

	res, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// Me godoc
// @Summary Get current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.PublicUser
// @Failure 401 {object} model.ErrorResponse
// @Router /users/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	identity := GetAuthIdentity(c)
	if identity == nil {
		writeError(c, h.log, apperr.New(apperr.KindTokenMissing, "Access token required"))
		return
	}

	user, err := h.svc.Me(c.Request.Context(), identity.Subject)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteMe godoc
// @Summary Delete current user
// @Description Removes the account and its event registrations. Issued refresh tokens stop working.
// @Tags users
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} model.ErrorResponse
// @Router /users/me [delete]
func (h *AuthHandler) DeleteMe(c *gin.Context) {
	identity := GetAuthIdentity(c)
	if identity == nil {
		writeError(c, h.log, apperr.New(apperr.KindTokenMissing, "Access token required"))
		return
	}

	if err := h.svc.DeleteAccount(c.Request.Context(), identity.Subject); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
