package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/domain"
	"github.com/Fragarianos1981/Dr.platiPel/internal/transport/http/middleware"
	"github.com/Fragarianos1981/Dr.platiPel/internal/usecase"
)

// AuthHandler exposes the login, logout, and identity endpoints.
type AuthHandler struct {
	auth       *usecase.AuthService
	accounts   *usecase.AccountService
	cookieName string
	secure     bool
}

// NewAuthHandler constructs AuthHandler. secure controls the cookie's Secure
// flag and should follow TLS termination.
func NewAuthHandler(auth *usecase.AuthService, accounts *usecase.AccountService, cookieName string, secure bool) *AuthHandler {
	return &AuthHandler{
		auth:       auth,
		accounts:   accounts,
		cookieName: cookieName,
		secure:     secure,
	}
}

// RegisterRoutes binds authentication routes, applying optional middleware
// ahead of the login handler.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, authMiddleware gin.HandlerFunc, loginMiddlewares ...gin.HandlerFunc) {
	chain := append([]gin.HandlerFunc{}, loginMiddlewares...)
	chain = append(chain, h.login)
	r.POST("/login", chain...)

	r.POST("/logout", authMiddleware, h.logout)
	r.GET("/me", authMiddleware, h.me)
}

// Login godoc
// @Summary Staff login
// @Description Validates the username and both passwords and opens an eight hour session.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login payload"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	reqCtx := middleware.GetRequestContext(c)

	session, account, err := h.auth.Login(c.Request.Context(), usecase.LoginInput{
		Username:  req.Username,
		Password1: req.Password1,
		Password2: req.Password2,
		IP:        reqCtx.IP,
		UserAgent: reqCtx.UserAgent,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrMissingField, Status: http.StatusBadRequest, Message: "username and both passwords are required"},
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid credentials"},
			{Err: usecase.ErrAccountInactive, Status: http.StatusForbidden, Message: "account is not active"},
		}, http.StatusInternalServerError, "login failed")
		return
	}

	h.setSessionCookie(c, session.ID, int(domain.SessionLifetime.Seconds()))

	c.JSON(http.StatusOK, LoginResponse{
		Account:   newAccountSummary(*account),
		ExpiresAt: session.ExpiresAt,
	})
}

// Logout godoc
// @Summary Staff logout
// @Description Revokes the current session and clears the cookie.
// @Tags Authentication
// @Produce json
// @Success 200 {object} MessageResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) logout(c *gin.Context) {
	sessionID, _ := c.Cookie(h.cookieName)

	if err := h.auth.Logout(c.Request.Context(), sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "logout failed"))
		return
	}

	h.setSessionCookie(c, "", -1)

	c.JSON(http.StatusOK, MessageResponse{Message: "logged out"})
}

// Me godoc
// @Summary Current identity
// @Description Returns the account behind the current session.
// @Tags Authentication
// @Produce json
// @Success 200 {object} AccountSummary
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) me(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	account, err := h.accounts.Get(c.Request.Context(), session.AccountID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusUnauthorized, Message: "authentication required"},
		}, http.StatusInternalServerError, "lookup failed")
		return
	}

	c.JSON(http.StatusOK, newAccountSummary(*account))
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, value, maxAge, "/", "", h.secure, true)
}
