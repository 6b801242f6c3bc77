// api/controller/session_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	atlas_errors "github.com/atlasgrc/atlas/api/errors"
	"github.com/atlasgrc/atlas/api/service"
	"github.com/atlasgrc/atlas/api/util"
)

type SessionController struct {
	sessionService service.ISessionService
}

func NewSessionController(sessionService service.ISessionService) *SessionController {
	return &SessionController{sessionService: sessionService}
}

// RegisterRoutes registers the API routes
func (sc *SessionController) RegisterRoutes(r *gin.RouterGroup) {
	sessions := r.Group("/sessions")
	{
		sessions.POST("/login", sc.ProcessLogin)
		sessions.POST("/:userId/invalidate", sc.InvalidateCache)
	}
}

type loginRequest struct {
	UserID       string `json:"user_id" binding:"required"`
	ForceRefresh bool   `json:"force_refresh"`
}

// ProcessLogin endpoint
func (sc *SessionController) ProcessLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid login request", err)
		return
	}

	snapshot, err := sc.sessionService.ProcessLogin(c, req.UserID, req.ForceRefresh)
	if err != nil {
		switch err {
		case atlas_errors.ErrUserNotFound:
			util.RespondWithError(c, http.StatusNotFound, "User not found", err)
		case atlas_errors.ErrDatabaseOperation:
			util.RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to materialize session", err)
		}
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// InvalidateCache endpoint
func (sc *SessionController) InvalidateCache(c *gin.Context) {
	userID := c.Param("userId")

	if err := sc.sessionService.InvalidateSessionCache(c, userID); err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to invalidate session cache", err)
		return
	}

	c.Status(http.StatusNoContent)
}
