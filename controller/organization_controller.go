// api/controller/organization_controller.go
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

type OrganizationController struct {
	orgService service.IOrganizationService
}

func NewOrganizationController(orgService service.IOrganizationService) *OrganizationController {
	return &OrganizationController{
		orgService: orgService,
	}
}

// RegisterRoutes registers the API routes
func (oc *OrganizationController) RegisterRoutes(r *gin.RouterGroup) {
	organizations := r.Group("/organizations")
	{
		organizations.GET("", oc.ListOrganizations)
		organizations.GET("/search", oc.SearchOrganizations)
		organizations.GET("/:id", oc.GetOrganization)
		organizations.GET("/:id/members", oc.ListMembers)
	}
}

// GetOrganization endpoint
func (oc *OrganizationController) GetOrganization(c *gin.Context) {
	orgID := c.Param("id")

	org, err := oc.orgService.GetOrganization(c, orgID)
	if err != nil {
		if errors.Is(err, atlas_errors.ErrOrganizationNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Organization not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve organization", err)
		}
		return
	}

	c.JSON(http.StatusOK, org)
}

// ListOrganizations endpoint
func (oc *OrganizationController) ListOrganizations(c *gin.Context) {
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	orgs, err := oc.orgService.ListOrganizations(c, limit, offset)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list organizations", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"organizations": orgs, "count": len(orgs)})
}

// SearchOrganizations endpoint
func (oc *OrganizationController) SearchOrganizations(c *gin.Context) {
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	criteria := model.OrganizationSearchCriteria{
		Name:     c.Query("name"),
		Plan:     c.Query("plan"),
		Industry: c.Query("industry"),
		Limit:    limit,
		Offset:   offset,
	}

	orgs, err := oc.orgService.SearchOrganizations(c, criteria)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to search organizations", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"organizations": orgs, "count": len(orgs)})
}

// ListMembers endpoint
func (oc *OrganizationController) ListMembers(c *gin.Context) {
	members, err := oc.orgService.ListMembers(c, c.Param("id"))
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list members", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members, "count": len(members)})
}
