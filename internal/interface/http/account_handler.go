package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/account-service/internal/application"
	"github.com/oksasatya/account-service/pkg/response"
	"github.com/oksasatya/account-service/pkg/validation"
)

type AccountHandler struct {
	Svc    *application.Service
	Logger *logrus.Logger
}

func NewAccountHandler(svc *application.Service, logger *logrus.Logger) *AccountHandler {
	return &AccountHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Name            string `json:"name" binding:"required,fullname"`
	Email           string `json:"email" binding:"required,email_shape"`
	Password        string `json:"password" binding:"required,strongpwd"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	SessionToken string `json:"session_token"`
}

// Register POST /api/accounts/register
func (h *AccountHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, authResponse{
		ID:           res.Account.ID,
		Name:         res.Account.Name,
		Email:        res.Account.Email,
		SessionToken: res.SessionToken,
	}, "account registered; verification email sent", map[string]any{"token_expires_at": res.TokenExpiry})
}

// VerifyEmail GET /api/accounts/verify/:accountId/:token
func (h *AccountHandler) VerifyEmail(c *gin.Context) {
	accountID := c.Param("accountId")
	token := c.Param("token")

	if err := h.Svc.VerifyEmail(c.Request.Context(), accountID, token); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"verified": true}, "email verified", nil)
}

// Login POST /api/accounts/login
func (h *AccountHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, authResponse{
		ID:           res.Account.ID,
		Name:         res.Account.Name,
		Email:        res.Account.Email,
		SessionToken: res.SessionToken,
	}, "login successful", map[string]any{"token_expires_at": res.TokenExpiry})
}

// Me GET /api/accounts/me (auth required)
func (h *AccountHandler) Me(c *gin.Context) {
	accountID := c.GetString("accountID")
	if accountID == "" {
		response.Error[any](c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	p, err := h.Svc.CurrentAccount(c.Request.Context(), accountID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, "current account", nil)
}

// writeError maps service errors onto the HTTP taxonomy. Internal failures
// are logged with detail and rendered without it.
func (h *AccountHandler) writeError(c *gin.Context, err error) {
	var verr *application.ValidationError
	switch {
	case errors.As(err, &verr):
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{verr.Field: verr.Reason})
	case errors.Is(err, application.ErrValidation):
		response.Error[any](c, http.StatusBadRequest, "invalid payload", nil)
	case errors.Is(err, application.ErrEmailTaken):
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error[any](c, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, application.ErrEmailNotVerified),
		errors.Is(err, application.ErrLoginNotAllowed):
		response.Error[any](c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, application.ErrInvalidLink),
		errors.Is(err, application.ErrExpiredLink):
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, application.ErrAccountNotFound):
		response.Error[any](c, http.StatusNotFound, err.Error(), nil)
	default:
		if h.Logger != nil {
			h.Logger.WithError(err).Error("account operation failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}
