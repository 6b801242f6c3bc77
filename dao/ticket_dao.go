// api/dao/ticket_dao.go
package dao

import (
	"context"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	atlas_errors "github.com/atlasgrc/atlas/api/errors"
	logger "github.com/atlasgrc/atlas/api/logging"
	"github.com/atlasgrc/atlas/api/model"
)

type TicketDAO struct {
	Driver neo4j.Driver
}

func NewTicketDAO(driver neo4j.Driver) *TicketDAO {
	dao := &TicketDAO{Driver: driver}
	ctx := context.Background()
	if err := dao.EnsureConstraints(ctx); err != nil {
		logger.Fatal("Failed to ensure constraints for SupportTicket", zap.Error(err))
	}
	return dao
}

func (dao *TicketDAO) EnsureConstraints(ctx context.Context) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		queries := []string{
			`CREATE CONSTRAINT unique_ticket_id IF NOT EXISTS
             FOR (t:` + LabelTicket + `) REQUIRE t.id IS UNIQUE`,
			`CREATE CONSTRAINT unique_ticket_message_id IF NOT EXISTS
             FOR (m:` + LabelMessage + `) REQUIRE m.id IS UNIQUE`,
		}
		for _, query := range queries {
			if _, err := transaction.Run(query, nil); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})

	if err != nil {
		logger.Error("Failed to ensure unique constraints on SupportTicket", zap.Error(err))
		return err
	}
	return nil
}

func (dao *TicketDAO) InsertTicket(ctx context.Context, ticket model.SupportTicket) (string, error) {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MERGE (t:` + LabelTicket + ` {id: $id})
        ON CREATE SET t += $props
        RETURN t.id as id
        `
		props := map[string]interface{}{
			"organizationId":       ticket.OrganizationID,
			"subject":              ticket.Subject,
			"description":          ticket.Description,
			"priority":             ticket.Priority,
			"status":               ticket.Status,
			"createdBy":            ticket.CreatedBy,
			"assignedTo":           ticket.AssignedTo,
			"assignedToName":       ticket.AssignedToName,
			"tags":                 ticket.Tags,
			"isEscalated":          ticket.IsEscalated,
			"messageCount":         ticket.MessageCount,
			"latestMessageSnippet": ticket.LatestMessageSnippet,
			"resolutionSummary":    ticket.ResolutionSummary,
			"lastActivityAt":       ticket.LastActivityAt.Format(time.RFC3339),
			"createdAt":            ticket.CreatedAt.Format(time.RFC3339),
			"updatedAt":            ticket.UpdatedAt.Format(time.RFC3339),
		}

		result, err := transaction.Run(query, map[string]interface{}{
			"id":    ticket.ID,
			"props": props,
		})
		if err != nil {
			return nil, atlas_errors.ErrDatabaseOperation
		}
		if !result.Next() {
			return nil, atlas_errors.ErrInternalServer
		}
		return nil, nil
	})

	if err != nil {
		logger.Error("Failed to insert support ticket",
			zap.Error(err),
			zap.String("orgID", ticket.OrganizationID),
			zap.Duration("duration", time.Since(start)))
		return "", err
	}

	logger.Info("Support ticket created",
		zap.String("ticketID", ticket.ID),
		zap.String("orgID", ticket.OrganizationID))
	return ticket.ID, nil
}

// UpdateTicket applies the non-nil fields of the update and always bumps
// updatedAt. Returns ErrTicketNotFound when the id does not match a ticket.
func (dao *TicketDAO) UpdateTicket(ctx context.Context, ticketID string, update model.TicketUpdate) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		var queryBuilder strings.Builder
		queryBuilder.WriteString("MATCH (t:" + LabelTicket + " {id: $id}) SET t.updatedAt = $now")

		params := map[string]interface{}{
			"id":  ticketID,
			"now": time.Now().Format(time.RFC3339),
		}

		if update.Status != nil {
			queryBuilder.WriteString(", t.status = $status")
			params["status"] = *update.Status
		}
		if update.Priority != nil {
			queryBuilder.WriteString(", t.priority = $priority")
			params["priority"] = *update.Priority
		}
		if update.AssignedTo != nil {
			queryBuilder.WriteString(", t.assignedTo = $assignedTo")
			params["assignedTo"] = *update.AssignedTo
		}
		if update.AssignedToName != nil {
			queryBuilder.WriteString(", t.assignedToName = $assignedToName")
			params["assignedToName"] = *update.AssignedToName
		}
		if update.ResolutionSummary != nil {
			queryBuilder.WriteString(", t.resolutionSummary = $resolutionSummary")
			params["resolutionSummary"] = *update.ResolutionSummary
		}
		if update.IsEscalated != nil {
			queryBuilder.WriteString(", t.isEscalated = $isEscalated")
			params["isEscalated"] = *update.IsEscalated
		}
		if update.Tags != nil {
			queryBuilder.WriteString(", t.tags = $tags")
			params["tags"] = *update.Tags
		}
		if update.LastActivityAt != nil {
			queryBuilder.WriteString(", t.lastActivityAt = $lastActivityAt")
			params["lastActivityAt"] = update.LastActivityAt.Format(time.RFC3339)
		}

		queryBuilder.WriteString(" RETURN t.id")

		result, err := transaction.Run(queryBuilder.String(), params)
		if err != nil {
			return nil, atlas_errors.ErrDatabaseOperation
		}
		if !result.Next() {
			return nil, atlas_errors.ErrTicketNotFound
		}
		return nil, nil
	})

	if err != nil {
		logger.Error("Failed to update support ticket",
			zap.Error(err),
			zap.String("ticketID", ticketID))
		return err
	}
	return nil
}

func (dao *TicketDAO) GetTicket(ctx context.Context, ticketID string) (*model.SupportTicket, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (t:` + LabelTicket + ` {id: $id})
    RETURN t
    `
	result, err := session.Run(query, map[string]interface{}{"id": ticketID})
	if err != nil {
		logger.Error("Failed to execute get ticket query",
			zap.Error(err),
			zap.String("ticketID", ticketID))
		return nil, atlas_errors.ErrDatabaseOperation
	}

	if result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		return mapNodeToTicket(node), nil
	}
	return nil, atlas_errors.ErrTicketNotFound
}

// ListTickets returns tickets matching the filter ordered by most recent
// activity. It fetches page*pageSize rows; the service slices out the
// requested page.
func (dao *TicketDAO) ListTickets(ctx context.Context, filter model.TicketFilter) ([]*model.SupportTicket, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	var queryBuilder strings.Builder
	queryBuilder.WriteString("MATCH (t:" + LabelTicket + ")")

	params := map[string]interface{}{}
	conditions := []string{}

	if filter.OrganizationID != "" {
		conditions = append(conditions, "t.organizationId = $organizationId")
		params["organizationId"] = filter.OrganizationID
	}
	if filter.Status != "" {
		conditions = append(conditions, "t.status = $status")
		params["status"] = filter.Status
	}
	if filter.Priority != "" {
		conditions = append(conditions, "t.priority = $priority")
		params["priority"] = filter.Priority
	}
	if filter.AssignedTo != "" {
		conditions = append(conditions, "t.assignedTo = $assignedTo")
		params["assignedTo"] = filter.AssignedTo
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}

	queryBuilder.WriteString(" RETURN t ORDER BY t.lastActivityAt DESC")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	queryBuilder.WriteString(" LIMIT $fetch")
	params["fetch"] = page * pageSize

	result, err := session.Run(queryBuilder.String(), params)
	if err != nil {
		logger.Error("Failed to execute list tickets query", zap.Error(err))
		return nil, atlas_errors.ErrDatabaseOperation
	}

	var tickets []*model.SupportTicket
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		tickets = append(tickets, mapNodeToTicket(node))
	}
	return tickets, nil
}

// AppendMessage creates the message, links it to its ticket, and refreshes
// the ticket rollups (messageCount, latestMessageSnippet, lastActivityAt) in
// one transaction so the rollups can never drift from the message list.
func (dao *TicketDAO) AppendMessage(ctx context.Context, message model.TicketMessage, snippet string) error {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (t:` + LabelTicket + ` {id: $ticketId})
        CREATE (m:` + LabelMessage + ` {id: $id})
        SET m += $props
        CREATE (t)-[:` + RelHasMessage + `]->(m)
        SET t.messageCount = coalesce(t.messageCount, 0) + 1,
            t.latestMessageSnippet = $snippet,
            t.lastActivityAt = $now,
            t.updatedAt = $now
        RETURN m.id
        `
		now := message.CreatedAt.Format(time.RFC3339)

		props := map[string]interface{}{
			"ticketId":   message.TicketID,
			"authorId":   message.AuthorID,
			"authorName": message.AuthorName,
			"message":    message.Message,
			"internal":   message.Internal,
			"createdAt":  now,
		}

		result, err := transaction.Run(query, map[string]interface{}{
			"ticketId": message.TicketID,
			"id":       message.ID,
			"props":    props,
			"snippet":  snippet,
			"now":      now,
		})
		if err != nil {
			return nil, atlas_errors.ErrDatabaseOperation
		}
		if !result.Next() {
			return nil, atlas_errors.ErrTicketNotFound
		}
		return nil, nil
	})

	if err != nil {
		logger.Error("Failed to append ticket message",
			zap.Error(err),
			zap.String("ticketID", message.TicketID),
			zap.Duration("duration", time.Since(start)))
		return err
	}

	logger.Debug("Ticket message appended",
		zap.String("ticketID", message.TicketID),
		zap.String("messageID", message.ID))
	return nil
}

// ListMessages returns a ticket's messages oldest first.
func (dao *TicketDAO) ListMessages(ctx context.Context, ticketID string) ([]*model.TicketMessage, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (t:` + LabelTicket + ` {id: $ticketId})-[:` + RelHasMessage + `]->(m:` + LabelMessage + `)
    RETURN m ORDER BY m.createdAt ASC
    `
	result, err := session.Run(query, map[string]interface{}{"ticketId": ticketID})
	if err != nil {
		logger.Error("Failed to execute list messages query",
			zap.Error(err),
			zap.String("ticketID", ticketID))
		return nil, atlas_errors.ErrDatabaseOperation
	}

	var messages []*model.TicketMessage
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		messages = append(messages, &model.TicketMessage{
			ID:         stringProp(node.Props, "id"),
			TicketID:   stringProp(node.Props, "ticketId"),
			AuthorID:   stringProp(node.Props, "authorId"),
			AuthorName: stringProp(node.Props, "authorName"),
			Message:    stringProp(node.Props, "message"),
			Internal:   boolProp(node.Props, "internal"),
			CreatedAt:  timeProp(node.Props, "createdAt"),
		})
	}
	return messages, nil
}

// Helper function to map Neo4j Node to SupportTicket struct
func mapNodeToTicket(node neo4j.Node) *model.SupportTicket {
	props := node.Props
	return &model.SupportTicket{
		ID:                   stringProp(props, "id"),
		OrganizationID:       stringProp(props, "organizationId"),
		Subject:              stringProp(props, "subject"),
		Description:          stringProp(props, "description"),
		Priority:             stringProp(props, "priority"),
		Status:               stringProp(props, "status"),
		CreatedBy:            stringProp(props, "createdBy"),
		AssignedTo:           stringProp(props, "assignedTo"),
		AssignedToName:       stringProp(props, "assignedToName"),
		Tags:                 stringSliceProp(props, "tags"),
		IsEscalated:          boolProp(props, "isEscalated"),
		MessageCount:         int64Prop(props, "messageCount"),
		LatestMessageSnippet: stringProp(props, "latestMessageSnippet"),
		ResolutionSummary:    stringProp(props, "resolutionSummary"),
		LastActivityAt:       timeProp(props, "lastActivityAt"),
		CreatedAt:            timeProp(props, "createdAt"),
		UpdatedAt:            timeProp(props, "updatedAt"),
	}
}
