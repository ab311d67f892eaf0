package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/domain"
	"github.com/Fragarianos1981/Dr.platiPel/internal/transport/http/middleware"
	"github.com/Fragarianos1981/Dr.platiPel/internal/usecase"
)

// ChatHandler exposes the internal staff message board.
type ChatHandler struct {
	chat     *usecase.ChatService
	accounts *usecase.AccountService
}

// NewChatHandler constructs ChatHandler.
func NewChatHandler(chat *usecase.ChatService, accounts *usecase.AccountService) *ChatHandler {
	return &ChatHandler{chat: chat, accounts: accounts}
}

// RegisterRoutes binds message board routes.
func (h *ChatHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.post)
	r.GET("", h.list)
	r.PUT("/:id/pin", h.setPinned)
	r.DELETE("/:id", h.delete)
}

func chatErrorCases() []ErrorCase {
	return []ErrorCase{
		{Err: usecase.ErrMissingField, Status: http.StatusBadRequest, Message: "message body is required"},
		{Err: usecase.ErrInvalidMessageKind, Status: http.StatusBadRequest, Message: "unknown message kind"},
		{Err: usecase.ErrMessageNotFound, Status: http.StatusNotFound, Message: "message not found"},
		{Err: usecase.ErrForbidden, Status: http.StatusForbidden, Message: "only the author or an administrator may remove a message"},
	}
}

// Post godoc
// @Summary Post a board message
// @Tags Chat
// @Accept json
// @Produce json
// @Param request body ChatPostRequest true "Message payload"
// @Success 201 {object} ChatMessagePayload
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/chat [post]
func (h *ChatHandler) post(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ChatPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid message payload"))
		return
	}

	authorName := session.AccountID
	if account, err := h.accounts.Get(c.Request.Context(), session.AccountID); err == nil {
		if name := account.FullName(); name != "" {
			authorName = name
		} else {
			authorName = account.Username
		}
	}

	message, err := h.chat.Post(c.Request.Context(), usecase.PostInput{
		AuthorID:   session.AccountID,
		AuthorName: authorName,
		Body:       req.Body,
		Kind:       domain.ChatKind(req.Kind),
	})
	if err != nil {
		RespondWithMappedError(c, err, chatErrorCases(), http.StatusInternalServerError, "posting message failed")
		return
	}

	c.JSON(http.StatusCreated, newChatMessagePayload(*message))
}

func (h *ChatHandler) list(c *gin.Context) {
	messages, err := h.chat.List(c.Request.Context(), queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "listing messages failed"))
		return
	}

	payloads := make([]ChatMessagePayload, 0, len(messages))
	for _, message := range messages {
		payloads = append(payloads, newChatMessagePayload(message))
	}

	c.JSON(http.StatusOK, gin.H{"messages": payloads})
}

func (h *ChatHandler) setPinned(c *gin.Context) {
	var req ChatPinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid payload"))
		return
	}

	if err := h.chat.SetPinned(c.Request.Context(), c.Param("id"), req.Pinned); err != nil {
		RespondWithMappedError(c, err, chatErrorCases(), http.StatusInternalServerError, "pin update failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "message updated"})
}

func (h *ChatHandler) delete(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.chat.Delete(c.Request.Context(), c.Param("id"), session); err != nil {
		RespondWithMappedError(c, err, chatErrorCases(), http.StatusInternalServerError, "delete failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "message deleted"})
}
