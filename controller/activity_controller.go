// api/controller/activity_controller.go
package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atlasgrc/atlas/api/audit"
	atlas_errors "github.com/atlasgrc/atlas/api/errors"
	"github.com/atlasgrc/atlas/api/util"
	helper_util "github.com/atlasgrc/atlas/api/util/helper"
)

type ActivityController struct {
	auditService audit.Service
}

func NewActivityController(auditService audit.Service) *ActivityController {
	return &ActivityController{auditService: auditService}
}

// RegisterRoutes registers the API routes
func (ac *ActivityController) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/activity", ac.LogActivity)
	r.GET("/activity", ac.QueryActivity)
}

// LogActivity endpoint
func (ac *ActivityController) LogActivity(c *gin.Context) {
	var entry audit.ActivityLog
	if err := c.ShouldBindJSON(&entry); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid activity entry", err)
		return
	}

	id, err := ac.auditService.LogActivity(c, entry)
	if err != nil {
		if err == atlas_errors.ErrInvalidActivityData {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid activity entry", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to record activity", err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// QueryActivity endpoint
func (ac *ActivityController) QueryActivity(c *gin.Context) {
	query := audit.Query{
		OrganizationID: c.Query("organizationId"),
		UserID:         c.Query("userId"),
		Category:       c.Query("category"),
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid limit", err)
		return
	}
	query.Limit = limit

	if from := c.Query("from"); from != "" {
		t, err := helper_util.ParseTime(from)
		if err != nil {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid from timestamp", err)
			return
		}
		query.From = t
	} else {
		query.From = time.Now().AddDate(0, -1, 0)
	}

	if to := c.Query("to"); to != "" {
		t, err := helper_util.ParseTime(to)
		if err != nil {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid to timestamp", err)
			return
		}
		query.To = t
	} else {
		query.To = time.Now()
	}

	logs, err := ac.auditService.QueryLogs(c, query)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to query activity logs", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs, "count": len(logs)})
}
