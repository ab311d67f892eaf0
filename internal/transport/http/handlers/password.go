package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Fragarianos1981/Dr.platiPel/internal/infra/logger"
	"github.com/Fragarianos1981/Dr.platiPel/internal/infra/security"
	"github.com/Fragarianos1981/Dr.platiPel/internal/transport/http/middleware"
	"github.com/Fragarianos1981/Dr.platiPel/internal/usecase"
)

const forgotMessage = "if the address is registered, reset instructions have been sent"

// PasswordHandler exposes the reset flow, the authenticated password change,
// and the strength advisor.
type PasswordHandler struct {
	reset    *usecase.PasswordResetService
	accounts *usecase.AccountService
	log      *zap.Logger
	isDev    bool
}

// NewPasswordHandler constructs PasswordHandler. In development mode the
// generated reset token is returned in the response body since no mail
// delivery is wired there.
func NewPasswordHandler(reset *usecase.PasswordResetService, accounts *usecase.AccountService, log *zap.Logger, isDev bool) *PasswordHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PasswordHandler{
		reset:    reset,
		accounts: accounts,
		log:      log,
		isDev:    isDev,
	}
}

// Forgot godoc
// @Summary Request a password reset
// @Description Generates a single-use reset token. The response is identical whether or not the address is known.
// @Tags Password
// @Accept json
// @Produce json
// @Param request body PasswordForgotRequest true "Reset request payload"
// @Success 200 {object} PasswordForgotResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/auth/password/forgot [post]
func (h *PasswordHandler) Forgot(c *gin.Context) {
	var req PasswordForgotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email is required"))
		return
	}

	result, err := h.reset.Request(c.Request.Context(), req.Email)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrMissingField, Status: http.StatusBadRequest, Message: "email is required"},
		}, http.StatusInternalServerError, "reset request failed")
		return
	}

	resp := PasswordForgotResponse{Message: forgotMessage}

	if result != nil {
		h.log.Info("password reset token issued",
			zap.String("account_id", result.AccountID),
			zap.String("email", logger.MaskEmail(result.Email)),
			zap.Time("expires_at", result.ExpiresAt))

		if h.isDev {
			resp.DevToken = result.Token
		}
	}

	c.JSON(http.StatusOK, resp)
}

// Reset godoc
// @Summary Complete a password reset
// @Description Consumes a reset token and installs the new password. Tokens are single use and expire after 24 hours.
// @Tags Password
// @Accept json
// @Produce json
// @Param request body PasswordResetConfirmRequest true "Reset confirmation payload"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/auth/password/reset [post]
func (h *PasswordHandler) Reset(c *gin.Context) {
	var req PasswordResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "token and new password are required"))
		return
	}

	if err := h.reset.Confirm(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrMissingField, Status: http.StatusBadRequest, Message: "token and new password are required"},
			{Err: usecase.ErrResetTokenInvalid, Status: http.StatusBadRequest, Message: "reset token invalid"},
			{Err: usecase.ErrResetTokenExpired, Status: http.StatusBadRequest, Message: "reset token expired"},
			{Err: usecase.ErrPasswordTooWeak, Status: http.StatusUnprocessableEntity, Message: "password does not meet the minimum requirements"},
		}, http.StatusInternalServerError, "reset failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password updated"})
}

// Change godoc
// @Summary Change own password
// @Description Verifies the current password and installs the new one. All sessions are revoked.
// @Tags Password
// @Accept json
// @Produce json
// @Param request body PasswordChangeRequest true "Change payload"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/auth/password/change [post]
func (h *PasswordHandler) Change(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req PasswordChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "current and new password are required"))
		return
	}

	err := h.accounts.ChangePassword(c.Request.Context(), session.AccountID, req.CurrentPassword, req.NewPassword, session.ID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrMissingField, Status: http.StatusBadRequest, Message: "current and new password are required"},
			{Err: usecase.ErrWrongPassword, Status: http.StatusUnauthorized, Message: "current password is incorrect"},
			{Err: usecase.ErrPasswordTooWeak, Status: http.StatusUnprocessableEntity, Message: "password does not meet the minimum requirements"},
		}, http.StatusInternalServerError, "password change failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password updated"})
}

// Strength godoc
// @Summary Rate a candidate password
// @Description Returns the acceptance tier plus an advisory estimator score. Rating never fails.
// @Tags Password
// @Accept json
// @Produce json
// @Param request body PasswordStrengthRequest true "Candidate payload"
// @Success 200 {object} PasswordStrengthResponse
// @Router /api/v1/auth/password/strength [post]
func (h *PasswordHandler) Strength(c *gin.Context) {
	var req PasswordStrengthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid payload"))
		return
	}

	acceptable, tier := security.AssessPassword(req.Password)

	c.JSON(http.StatusOK, PasswordStrengthResponse{
		Acceptable:    acceptable,
		Tier:          string(tier),
		AdvisoryScore: security.AdvisoryScore(req.Password),
	})
}
