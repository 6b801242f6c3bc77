// api/controller/user_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	atlas_errors "github.com/atlasgrc/atlas/api/errors"
	"github.com/atlasgrc/atlas/api/model"
	"github.com/atlasgrc/atlas/api/service"
	"github.com/atlasgrc/atlas/api/util"
	helper_util "github.com/atlasgrc/atlas/api/util/helper"
)

type UserController struct {
	userService service.IUserService
}

func NewUserController(userService service.IUserService) *UserController {
	return &UserController{
		userService: userService,
	}
}

// RegisterRoutes registers the API routes. Mirrors are read-only over HTTP;
// writes happen exclusively through the webhook pipeline.
func (uc *UserController) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.GET("/:id", uc.GetUser)
		users.GET("/search", uc.SearchUsers)
	}
}

// GetUser endpoint
func (uc *UserController) GetUser(c *gin.Context) {
	userID := c.Param("id")

	user, err := uc.userService.GetUser(c, userID)
	if err != nil {
		if errors.Is(err, atlas_errors.ErrUserNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "User not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve user", err)
		}
		return
	}

	c.JSON(http.StatusOK, user)
}

// SearchUsers endpoint
func (uc *UserController) SearchUsers(c *gin.Context) {
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	criteria := model.UserSearchCriteria{
		Email:  c.Query("email"),
		Name:   c.Query("name"),
		Status: c.Query("status"),
		OrgID:  c.Query("organizationId"),
		Limit:  limit,
		Offset: offset,
	}

	users, err := uc.userService.SearchUsers(c, criteria)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to search users", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}
