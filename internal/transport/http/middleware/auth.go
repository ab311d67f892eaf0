package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/domain"
	"github.com/Fragarianos1981/Dr.platiPel/internal/usecase"
)

// LoginPath is where unauthenticated callers are pointed.
const LoginPath = "/api/v1/auth/login"

// ErrorResponse matches the handlers.ErrorResponse structure
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// unauthorizedResponse carries the login location plus the path the caller
// tried to reach, so the client can return there after a fresh login.
type unauthorizedResponse struct {
	Error    string `json:"error"`
	LoginURL string `json:"login_url"`
	Next     string `json:"next,omitempty"`
	TraceID  string `json:"trace_id,omitempty"`
}

// newErrorResponse creates an error response with trace ID
func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

// RequireAuth resolves the session cookie and stores the session in the
// request context. Requests without a valid session get 401 with a pointer to
// the login endpoint; the original path rides along as "next".
func RequireAuth(authService *usecase.AuthService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(cookieName)
		if err != nil || sessionID == "" {
			abortUnauthenticated(c)
			return
		}

		session, err := authService.ResolveSession(c.Request.Context(), sessionID)
		if err != nil {
			if errors.Is(err, usecase.ErrNotAuthenticated) {
				abortUnauthenticated(c)
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				newErrorResponse(c, "authentication failed"))
			return
		}

		c.Set(SessionKey, session)

		if reqCtx := GetRequestContext(c); reqCtx != nil {
			reqCtx.AccountID = session.AccountID
		}

		c.Next()
	}
}

func abortUnauthenticated(c *gin.Context) {
	next := c.Request.URL.Path
	if raw := c.Request.URL.RawQuery; raw != "" {
		next += "?" + raw
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, unauthorizedResponse{
		Error:    "authentication required",
		LoginURL: LoginPath,
		Next:     next,
		TraceID:  GetTraceID(c),
	})
}

// RequireRole enforces a minimum role for the route. A valid session below
// the required level gets 403; unlike the 401 path there is no login pointer,
// because logging in again would not change the answer.
func RequireRole(required domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := CurrentSession(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "authentication required"))
			return
		}

		if !session.Role.AtLeast(required) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				newErrorResponse(c, "insufficient permissions"))
			return
		}

		c.Next()
	}
}
