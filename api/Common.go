package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redasGoluenko/Errando/access"
	"github.com/redasGoluenko/Errando/common"
	"github.com/redasGoluenko/Errando/database/models"
	"github.com/redasGoluenko/Errando/utils"
)

// Context keys set by TokenAuthMiddleware.
const (
	ContextUserID   = "user_id"
	ContextRole     = "role"
	ContextUsername = "username"
	ContextSession  = "session"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Respond sends a standardized JSON response.
func Respond(c *gin.Context, httpStatus int, status string, message string, data interface{}) {
	c.JSON(httpStatus, Response{Status: status, Message: message, Data: data})
}

// RespondSuccess sends a success response with data.
func RespondSuccess(c *gin.Context, data interface{}) {
	Respond(c, http.StatusOK, "success", "", data)
}

// RespondSuccessMessage sends a success response with message and data.
func RespondSuccessMessage(c *gin.Context, message string, data interface{}) {
	Respond(c, http.StatusOK, "success", message, data)
}

// RespondCreated sends 201 with a Location header pointing at path.
func RespondCreated(c *gin.Context, path string, data interface{}) {
	c.Header("Location", utils.GetResourceURL(c, path))
	Respond(c, http.StatusCreated, "success", "", data)
}

// RespondError sends an error response with message.
func RespondError(c *gin.Context, httpStatus int, message string) {
	Respond(c, httpStatus, "error", message, nil)
}

// StatusOf maps a service error onto its HTTP status.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, common.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrConflict), errors.Is(err, common.ErrStaleVersion):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondServiceError sends the response for an error returned by a service.
// Unexpected errors are logged and reported without detail.
func RespondServiceError(c *gin.Context, err error) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		RespondError(c, status, "Internal server error")
		return
	}
	RespondError(c, status, err.Error())
}

// GetActor returns the authenticated actor of the request, or the zero
// Actor when there is none.
func GetActor(c *gin.Context) access.Actor {
	id, _ := c.Get(ContextUserID)
	role, _ := c.Get(ContextRole)
	uid, _ := id.(uint)
	r, _ := role.(models.Role)
	return access.Actor{ID: uid, Role: r}
}

// SetActor stores the authenticated identity on the request context.
func SetActor(c *gin.Context, userID uint, username string, role models.Role, session string) {
	c.Set(ContextUserID, userID)
	c.Set(ContextUsername, username)
	c.Set(ContextRole, role)
	c.Set(ContextSession, session)
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// PathID parses the positive integer path parameter name. On failure it
// responds 400 and returns false.
func PathID(c *gin.Context, name string) (uint, bool) {
	id, ok := parseID(c.Param(name))
	if !ok {
		RespondError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s parameter", name))
	}
	return id, ok
}

// QueryID parses the optional positive integer query parameter name. A
// missing parameter is 0. On failure it responds 400 and returns false.
func QueryID(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	id, ok := parseID(raw)
	if !ok {
		RespondError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s parameter", name))
	}
	return id, ok
}

// MatchBodyID rejects a body id that differs from the path id. A missing or
// zero body id matches.
func MatchBodyID(c *gin.Context, pathID uint, bodyID *uint) bool {
	if bodyID != nil && *bodyID != 0 && *bodyID != pathID {
		RespondError(c, http.StatusBadRequest, "ID mismatch")
		return false
	}
	return true
}

// BindJSON decodes the request body into req, responding 400 on failure.
func BindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}
