// api/service/ticket_service.go
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	logger "github.com/atlasgrc/atlas/api/logging"
	"github.com/atlasgrc/atlas/api/model"
	"github.com/atlasgrc/atlas/api/util"
)

// TicketStore is the slice of the ticket DAO the service uses.
type TicketStore interface {
	InsertTicket(ctx context.Context, ticket model.SupportTicket) (string, error)
	UpdateTicket(ctx context.Context, ticketID string, update model.TicketUpdate) error
	GetTicket(ctx context.Context, ticketID string) (*model.SupportTicket, error)
	ListTickets(ctx context.Context, filter model.TicketFilter) ([]*model.SupportTicket, error)
	AppendMessage(ctx context.Context, message model.TicketMessage, snippet string) error
	ListMessages(ctx context.Context, ticketID string) ([]*model.TicketMessage, error)
}

type ITicketService interface {
	CreateTicket(ctx context.Context, ticket model.SupportTicket) (*model.SupportTicket, error)
	UpdateTicket(ctx context.Context, ticketID string, update model.TicketUpdate) (*model.SupportTicket, error)
	GetTicket(ctx context.Context, ticketID string) (*model.SupportTicket, error)
	GetTicketsForOrganization(ctx context.Context, orgID string, filter model.TicketFilter) ([]*model.SupportTicket, error)
	GetTicketsForPlatform(ctx context.Context, filter model.TicketFilter) ([]*model.SupportTicket, error)
	AddMessage(ctx context.Context, message model.TicketMessage) (*model.TicketMessage, error)
	GetMessages(ctx context.Context, ticketID string) ([]*model.TicketMessage, error)
}

type TicketService struct {
	store      TicketStore
	validation *util.ValidationUtil
}

var _ ITicketService = &TicketService{}

func NewTicketService(store TicketStore, validation *util.ValidationUtil) *TicketService {
	return &TicketService{store: store, validation: validation}
}

// CreateTicket opens a new ticket. Status, rollups, and timestamps are
// assigned here; callers cannot open a ticket in any state but open.
func (s *TicketService) CreateTicket(ctx context.Context, ticket model.SupportTicket) (*model.SupportTicket, error) {
	if ticket.Priority == "" {
		ticket.Priority = model.TicketPriorityMedium
	}
	if err := s.validation.ValidateTicket(ticket); err != nil {
		return nil, err
	}

	now := time.Now()
	ticket.ID = uuid.New().String()
	ticket.Status = model.TicketStatusOpen
	ticket.MessageCount = 0
	ticket.LatestMessageSnippet = ""
	ticket.LastActivityAt = now
	ticket.CreatedAt = now
	ticket.UpdatedAt = now

	if _, err := s.store.InsertTicket(ctx, ticket); err != nil {
		return nil, err
	}

	logger.Info("Support ticket opened",
		zap.String("ticketID", ticket.ID),
		zap.String("orgID", ticket.OrganizationID),
		zap.String("priority", ticket.Priority))
	return &ticket, nil
}

// UpdateTicket applies a partial update and returns the resulting ticket.
func (s *TicketService) UpdateTicket(ctx context.Context, ticketID string, update model.TicketUpdate) (*model.SupportTicket, error) {
	if err := s.store.UpdateTicket(ctx, ticketID, update); err != nil {
		return nil, err
	}
	return s.store.GetTicket(ctx, ticketID)
}

func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*model.SupportTicket, error) {
	return s.store.GetTicket(ctx, ticketID)
}

func (s *TicketService) GetTicketsForOrganization(ctx context.Context, orgID string, filter model.TicketFilter) ([]*model.SupportTicket, error) {
	filter.OrganizationID = orgID
	return s.listPage(ctx, filter)
}

// GetTicketsForPlatform lists tickets across all organizations; intended for
// platform support staff.
func (s *TicketService) GetTicketsForPlatform(ctx context.Context, filter model.TicketFilter) ([]*model.SupportTicket, error) {
	filter.OrganizationID = ""
	return s.listPage(ctx, filter)
}

func (s *TicketService) listPage(ctx context.Context, filter model.TicketFilter) ([]*model.SupportTicket, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	tickets, err := s.store.ListTickets(ctx, filter)
	if err != nil {
		return nil, err
	}

	start := (filter.Page - 1) * filter.PageSize
	if start >= len(tickets) {
		return []*model.SupportTicket{}, nil
	}
	end := start + filter.PageSize
	if end > len(tickets) {
		end = len(tickets)
	}
	return tickets[start:end], nil
}

// AddMessage appends a message to a ticket. The snippet for the ticket
// rollup is computed here; the store updates the rollups in the same
// transaction as the message write.
func (s *TicketService) AddMessage(ctx context.Context, message model.TicketMessage) (*model.TicketMessage, error) {
	if err := s.validation.ValidateTicketMessage(message); err != nil {
		return nil, err
	}

	message.ID = uuid.New().String()
	message.CreatedAt = time.Now()

	if err := s.store.AppendMessage(ctx, message, snippet(message.Message)); err != nil {
		return nil, err
	}

	logger.Debug("Ticket message added",
		zap.String("ticketID", message.TicketID),
		zap.String("messageID", message.ID))
	return &message, nil
}

func (s *TicketService) GetMessages(ctx context.Context, ticketID string) ([]*model.TicketMessage, error) {
	return s.store.ListMessages(ctx, ticketID)
}

// snippet truncates on rune boundaries so a multibyte character is never
// split in the stored rollup.
func snippet(message string) string {
	runes := []rune(message)
	if len(runes) <= model.TicketSnippetLength {
		return message
	}
	return string(runes[:model.TicketSnippetLength])
}
