package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskapi/internal/apierr"
	"taskapi/internal/auth"
	"taskapi/internal/dto"
	"taskapi/internal/service"
)

// AuthHandler handles token obtain, refresh and verify.
type AuthHandler struct {
	tokens  *auth.Manager
	userSvc *service.UserService
}

// NewAuthHandler returns a new AuthHandler.
func NewAuthHandler(tokens *auth.Manager, userSvc *service.UserService) *AuthHandler {
	return &AuthHandler{tokens: tokens, userSvc: userSvc}
}

// Obtain handles POST /auth/obtain: credentials in, token pair out.
func (h *AuthHandler) Obtain(c *gin.Context) {
	var req dto.ObtainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Validation(c, err)
		return
	}
	user, err := h.userSvc.ValidateCredentials(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			apierr.Unauthorized(c, "No active account found with the given credentials.")
			return
		}
		apierr.Internal(c, err)
		return
	}
	pair, err := h.tokens.Issue(user)
	if err != nil {
		apierr.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TokenResponse{Access: pair.Access, Refresh: pair.Refresh})
}

// Refresh handles POST /auth/refresh: the refresh token is rotated and a
// fresh pair returned.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Validation(c, err)
		return
	}
	pair, err := h.tokens.Rotate(req.Refresh)
	if err != nil {
		apierr.Unauthorized(c, "Given token not valid for any token type.")
		return
	}
	c.JSON(http.StatusOK, dto.TokenResponse{Access: pair.Access, Refresh: pair.Refresh})
}

// Verify handles POST /auth/verify: 200 with an empty object when the
// token is valid, 401 otherwise.
func (h *AuthHandler) Verify(c *gin.Context) {
	var req dto.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Validation(c, err)
		return
	}
	if _, err := h.tokens.Parse(req.Token); err != nil {
		apierr.Unauthorized(c, "Given token not valid for any token type.")
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}
