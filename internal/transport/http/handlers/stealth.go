package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Fragarianos1981/Dr.platiPel/internal/transport/http/middleware"
	"github.com/Fragarianos1981/Dr.platiPel/internal/usecase"
)

// StealthHandler exposes the hidden revenue ledger. Entries never leave the
// owner's account; the routes sit behind the top role gate.
type StealthHandler struct {
	stealth *usecase.StealthService
}

// NewStealthHandler constructs StealthHandler.
func NewStealthHandler(stealth *usecase.StealthService) *StealthHandler {
	return &StealthHandler{stealth: stealth}
}

// RegisterRoutes binds hidden ledger routes.
func (h *StealthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.add)
	r.GET("", h.list)
	r.PUT("/:id", h.update)
	r.DELETE("/:id", h.delete)
}

func stealthErrorCases() []ErrorCase {
	return []ErrorCase{
		{Err: usecase.ErrMissingField, Status: http.StatusBadRequest, Message: "title is required"},
		{Err: usecase.ErrStealthEntryNotFound, Status: http.StatusNotFound, Message: "entry not found"},
	}
}

func (h *StealthHandler) bindInput(c *gin.Context) (usecase.StealthInput, bool) {
	var req StealthEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid entry payload"))
		return usecase.StealthInput{}, false
	}

	input := usecase.StealthInput{
		Title:  req.Title,
		Note:   req.Note,
		Amount: req.Amount,
	}

	if req.EntryDate != "" {
		entryDate, err := time.Parse(dateLayout, req.EntryDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "entry_date must be YYYY-MM-DD"))
			return usecase.StealthInput{}, false
		}
		input.EntryDate = entryDate
	}

	return input, true
}

func ownerFromContext(c *gin.Context) (string, bool) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return "", false
	}
	return session.AccountID, true
}

func (h *StealthHandler) add(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	input, ok := h.bindInput(c)
	if !ok {
		return
	}

	entry, err := h.stealth.Add(c.Request.Context(), ownerID, input)
	if err != nil {
		RespondWithMappedError(c, err, stealthErrorCases(), http.StatusInternalServerError, "adding entry failed")
		return
	}

	c.JSON(http.StatusCreated, newStealthEntryPayload(*entry))
}

func (h *StealthHandler) list(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	entries, err := h.stealth.List(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "listing entries failed"))
		return
	}

	payloads := make([]StealthEntryPayload, 0, len(entries))
	for _, entry := range entries {
		payloads = append(payloads, newStealthEntryPayload(entry))
	}

	c.JSON(http.StatusOK, gin.H{"entries": payloads})
}

func (h *StealthHandler) update(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	input, ok := h.bindInput(c)
	if !ok {
		return
	}

	entry, err := h.stealth.Update(c.Request.Context(), ownerID, c.Param("id"), input)
	if err != nil {
		RespondWithMappedError(c, err, stealthErrorCases(), http.StatusInternalServerError, "entry update failed")
		return
	}

	c.JSON(http.StatusOK, newStealthEntryPayload(*entry))
}

func (h *StealthHandler) delete(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	if err := h.stealth.Delete(c.Request.Context(), ownerID, c.Param("id")); err != nil {
		RespondWithMappedError(c, err, stealthErrorCases(), http.StatusInternalServerError, "delete failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "entry deleted"})
}
