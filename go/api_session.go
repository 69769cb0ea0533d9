package posserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	directoryports "github.com/Apurer/go-gin-pos-server/internal/domains/directory/ports"
	orderingports "github.com/Apurer/go-gin-pos-server/internal/domains/ordering/ports"
)

// SessionAPI signs employees in and out and switches the admin role.
type SessionAPI struct {
	directory directoryports.Service
	ordering  orderingports.Service
	auth      *Authenticator
}

func NewSessionAPI(directory directoryports.Service, ordering orderingports.Service, auth *Authenticator) SessionAPI {
	return SessionAPI{directory: directory, ordering: ordering, auth: auth}
}

// Post /v1/sessions
// Sign in and open an empty order
func (api *SessionAPI) SignIn(c *gin.Context) {
	var payload SignInRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	ctx := c.Request.Context()
	employee, err := api.directory.SignIn(ctx, payload.Username, payload.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	state, err := api.ordering.OpenSession(ctx, employee)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	api.issue(c, http.StatusCreated, state.SessionID, employee.Username, RoleEmployee)
}

// Delete /v1/sessions/current
// Sign out, discarding the open order
func (api *SessionAPI) SignOut(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	if err := api.ordering.CloseSession(c.Request.Context(), claims.SessionID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Post /v1/sessions/current/admin
// Unlock the admin role with the shared PIN
func (api *SessionAPI) UnlockAdmin(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	var payload AdminUnlockRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	ctx := c.Request.Context()
	if err := api.directory.UnlockAdmin(ctx, payload.Pin); err != nil {
		respondServiceError(c, err)
		return
	}
	if _, err := api.ordering.Order(ctx, claims.SessionID); err != nil {
		respondServiceError(c, err)
		return
	}
	api.issue(c, http.StatusOK, claims.SessionID, claims.Username, RoleAdmin)
}

// Delete /v1/sessions/current/admin
// Switch back to the employee role
func (api *SessionAPI) LockAdmin(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	if _, err := api.ordering.Order(c.Request.Context(), claims.SessionID); err != nil {
		respondServiceError(c, err)
		return
	}
	api.issue(c, http.StatusOK, claims.SessionID, claims.Username, RoleEmployee)
}

func (api *SessionAPI) issue(c *gin.Context, status int, sessionID, username, role string) {
	token, expires, err := api.auth.Issue(sessionID, username, role)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(status, SessionToken{
		Token:     token,
		ExpiresAt: expires,
		SessionId: sessionID,
		Username:  username,
		Role:      role,
	})
}
