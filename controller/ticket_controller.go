// api/controller/ticket_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	atlas_errors "github.com/atlasgrc/atlas/api/errors"
	"github.com/atlasgrc/atlas/api/model"
	"github.com/atlasgrc/atlas/api/service"
	"github.com/atlasgrc/atlas/api/util"
	helper_util "github.com/atlasgrc/atlas/api/util/helper"
)

type TicketController struct {
	ticketService service.ITicketService
}

func NewTicketController(ticketService service.ITicketService) *TicketController {
	return &TicketController{ticketService: ticketService}
}

// RegisterRoutes registers the API routes
func (tc *TicketController) RegisterRoutes(r *gin.RouterGroup) {
	tickets := r.Group("/tickets")
	{
		tickets.POST("", tc.CreateTicket)
		tickets.GET("", tc.ListTickets)
		tickets.GET("/:id", tc.GetTicket)
		tickets.PATCH("/:id", tc.UpdateTicket)
		tickets.POST("/:id/messages", tc.AddMessage)
		tickets.GET("/:id/messages", tc.ListMessages)
	}
}

// CreateTicket endpoint
func (tc *TicketController) CreateTicket(c *gin.Context) {
	var ticket model.SupportTicket
	if err := c.ShouldBindJSON(&ticket); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid ticket data", atlas_errors.ErrInvalidTicketData)
		return
	}

	created, err := tc.ticketService.CreateTicket(c, ticket)
	if err != nil {
		switch err {
		case atlas_errors.ErrDatabaseOperation:
			util.RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
		default:
			util.RespondWithError(c, http.StatusBadRequest, "Invalid ticket data", err)
		}
		return
	}

	c.JSON(http.StatusCreated, created)
}

// ListTickets endpoint
func (tc *TicketController) ListTickets(c *gin.Context) {
	page, pageSize, err := helper_util.GetPageParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	filter := model.TicketFilter{
		Status:     c.Query("status"),
		Priority:   c.Query("priority"),
		AssignedTo: c.Query("assignedTo"),
		Page:       page,
		PageSize:   pageSize,
	}

	orgID := c.Query("organizationId")
	var tickets []*model.SupportTicket
	if orgID != "" {
		tickets, err = tc.ticketService.GetTicketsForOrganization(c, orgID, filter)
	} else {
		tickets, err = tc.ticketService.GetTicketsForPlatform(c, filter)
	}
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list tickets", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tickets": tickets, "count": len(tickets)})
}

// GetTicket endpoint
func (tc *TicketController) GetTicket(c *gin.Context) {
	ticket, err := tc.ticketService.GetTicket(c, c.Param("id"))
	if err != nil {
		if err == atlas_errors.ErrTicketNotFound {
			util.RespondWithError(c, http.StatusNotFound, "Ticket not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve ticket", err)
		}
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// UpdateTicket endpoint
func (tc *TicketController) UpdateTicket(c *gin.Context) {
	var update model.TicketUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid ticket update", atlas_errors.ErrInvalidTicketData)
		return
	}

	updated, err := tc.ticketService.UpdateTicket(c, c.Param("id"), update)
	if err != nil {
		if err == atlas_errors.ErrTicketNotFound {
			util.RespondWithError(c, http.StatusNotFound, "Ticket not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to update ticket", err)
		}
		return
	}

	c.JSON(http.StatusOK, updated)
}

// AddMessage endpoint
func (tc *TicketController) AddMessage(c *gin.Context) {
	var message model.TicketMessage
	if err := c.ShouldBindJSON(&message); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid message data", atlas_errors.ErrInvalidMessageData)
		return
	}
	message.TicketID = c.Param("id")

	created, err := tc.ticketService.AddMessage(c, message)
	if err != nil {
		switch err {
		case atlas_errors.ErrTicketNotFound:
			util.RespondWithError(c, http.StatusNotFound, "Ticket not found", err)
		case atlas_errors.ErrDatabaseOperation:
			util.RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
		default:
			util.RespondWithError(c, http.StatusBadRequest, "Invalid message data", err)
		}
		return
	}

	c.JSON(http.StatusCreated, created)
}

// ListMessages endpoint
func (tc *TicketController) ListMessages(c *gin.Context) {
	messages, err := tc.ticketService.GetMessages(c, c.Param("id"))
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list messages", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages, "count": len(messages)})
}
