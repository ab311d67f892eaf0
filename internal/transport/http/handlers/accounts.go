package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/domain"
	"github.com/Fragarianos1981/Dr.platiPel/internal/core/port"
	"github.com/Fragarianos1981/Dr.platiPel/internal/transport/http/middleware"
	"github.com/Fragarianos1981/Dr.platiPel/internal/usecase"
)

// AccountHandler exposes staff account administration. The whole group sits
// behind the top role.
type AccountHandler struct {
	accounts *usecase.AccountService
}

// NewAccountHandler constructs AccountHandler.
func NewAccountHandler(accounts *usecase.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// RegisterRoutes binds account administration routes.
func (h *AccountHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.create)
	r.GET("", h.list)
	r.GET("/:id", h.get)
	r.PUT("/:id", h.update)
	r.PUT("/:id/active", h.setActive)
}

func accountErrorCases() []ErrorCase {
	return []ErrorCase{
		{Err: usecase.ErrMissingField, Status: http.StatusBadRequest, Message: "required field missing"},
		{Err: usecase.ErrInvalidRole, Status: http.StatusBadRequest, Message: "unknown role"},
		{Err: usecase.ErrPasswordTooWeak, Status: http.StatusUnprocessableEntity, Message: "password does not meet the minimum requirements"},
		{Err: usecase.ErrAccountExists, Status: http.StatusConflict, Message: "username or email already in use"},
		{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
	}
}

// Create godoc
// @Summary Create a staff account
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body AccountCreateRequest true "Account payload"
// @Success 201 {object} AccountSummary
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/accounts [post]
func (h *AccountHandler) create(c *gin.Context) {
	var req AccountCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid account payload"))
		return
	}

	actorID := actorFromContext(c)

	account, err := h.accounts.Create(c.Request.Context(), usecase.CreateAccountInput{
		Username:       req.Username,
		Email:          req.Email,
		FullName:       req.FullName,
		Role:           req.Role,
		Password:       req.Password,
		SecondPassword: req.SecondPassword,
		ActorID:        actorID,
	})
	if err != nil {
		RespondWithMappedError(c, err, accountErrorCases(), http.StatusInternalServerError, "account creation failed")
		return
	}

	c.JSON(http.StatusCreated, newAccountSummary(*account))
}

// List godoc
// @Summary List staff accounts
// @Tags Accounts
// @Produce json
// @Success 200 {object} AccountListResponse
// @Router /api/v1/accounts [get]
func (h *AccountHandler) list(c *gin.Context) {
	filter := port.AccountFilter{
		Role:   domain.Role(c.Query("role")),
		Limit:  queryInt(c, "limit", 50),
		Offset: queryInt(c, "offset", 0),
	}

	if active := c.Query("active"); active != "" {
		value := active == "true"
		filter.IsActive = &value
	}

	accounts, total, err := h.accounts.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "listing accounts failed"))
		return
	}

	summaries := make([]AccountSummary, 0, len(accounts))
	for _, account := range accounts {
		summaries = append(summaries, newAccountSummary(account))
	}

	c.JSON(http.StatusOK, AccountListResponse{Accounts: summaries, Total: total})
}

func (h *AccountHandler) get(c *gin.Context) {
	account, err := h.accounts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, accountErrorCases(), http.StatusInternalServerError, "lookup failed")
		return
	}

	c.JSON(http.StatusOK, newAccountSummary(*account))
}

func (h *AccountHandler) update(c *gin.Context) {
	var req AccountUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid account payload"))
		return
	}

	account, err := h.accounts.Update(c.Request.Context(), usecase.UpdateAccountInput{
		ID:             c.Param("id"),
		Email:          req.Email,
		FullName:       req.FullName,
		Role:           req.Role,
		SecondPassword: req.SecondPassword,
		ActorID:        actorFromContext(c),
	})
	if err != nil {
		RespondWithMappedError(c, err, accountErrorCases(), http.StatusInternalServerError, "account update failed")
		return
	}

	c.JSON(http.StatusOK, newAccountSummary(*account))
}

func (h *AccountHandler) setActive(c *gin.Context) {
	var req AccountActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid payload"))
		return
	}

	err := h.accounts.SetActive(c.Request.Context(), c.Param("id"), req.Active, actorFromContext(c))
	if err != nil {
		RespondWithMappedError(c, err, accountErrorCases(), http.StatusInternalServerError, "account update failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "account updated"})
}

func actorFromContext(c *gin.Context) string {
	if session, ok := middleware.CurrentSession(c); ok {
		return session.AccountID
	}
	return ""
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
