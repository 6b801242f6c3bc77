// api/dao/organization_dao.go
package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	atlas_errors "github.com/atlasgrc/atlas/api/errors"
	logger "github.com/atlasgrc/atlas/api/logging"
	"github.com/atlasgrc/atlas/api/model"
)

type OrganizationDAO struct {
	Driver neo4j.Driver
}

func NewOrganizationDAO(driver neo4j.Driver) *OrganizationDAO {
	dao := &OrganizationDAO{Driver: driver}
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for Organization", zap.Error(err))
	}
	return dao
}

func (dao *OrganizationDAO) EnsureUniqueConstraint(ctx context.Context) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_org_id IF NOT EXISTS
        FOR (o:` + LabelOrganization + `) REQUIRE o.id IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		return nil, err
	})

	if err != nil {
		logger.Error("Failed to ensure unique constraint on Organization ID", zap.Error(err))
		return err
	}
	return nil
}

// UpsertOrganization mirrors an identity-provider organization record.
// Idempotent: keyed MERGE, redeliveries converge on the same state.
func (dao *OrganizationDAO) UpsertOrganization(ctx context.Context, org model.Organization) (string, error) {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MERGE (o:` + LabelOrganization + ` {id: $id})
        ON CREATE SET o.createdAt = $now
        SET o += $props
        RETURN o.id as id
        `

		settingsJSON, _ := json.Marshal(org.Settings)

		params := map[string]interface{}{
			"id":  org.ID,
			"now": time.Now().Format(time.RFC3339),
			"props": map[string]interface{}{
				"name":        org.Name,
				"slug":        org.Slug,
				"industry":    org.Industry,
				"size":        org.Size,
				"plan":        org.Plan,
				"planStatus":  org.PlanStatus,
				"parentOrgId": org.ParentOrgID,
				"settings":    string(settingsJSON),
				"updatedAt":   time.Now().Format(time.RFC3339),
			},
		}

		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, atlas_errors.ErrDatabaseOperation
		}

		if result.Next() {
			return result.Record().Values[0], nil
		}

		return nil, atlas_errors.ErrInternalServer
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to upsert organization",
			zap.Error(err),
			zap.String("orgID", org.ID),
			zap.Duration("duration", duration))
		return "", err
	}

	orgID := fmt.Sprintf("%v", result)
	logger.Info("Organization mirrored successfully",
		zap.String("orgID", orgID),
		zap.Duration("duration", duration))

	return orgID, nil
}

// DeleteOrganization hard-deletes the mirrored document. DETACH DELETE
// removes membership relationships in the same transaction, so user
// membership lists never retain entries for deleted organizations. Deleting
// an absent organization is a no-op for redelivery safety.
func (dao *OrganizationDAO) DeleteOrganization(ctx context.Context, orgID string) error {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (o:` + LabelOrganization + ` {id: $id})
        DETACH DELETE o
        `
		result, err := transaction.Run(query, map[string]interface{}{"id": orgID})
		if err != nil {
			return nil, atlas_errors.ErrDatabaseOperation
		}

		summary, err := result.Consume()
		if err != nil {
			return nil, atlas_errors.ErrDatabaseOperation
		}

		if summary.Counters().NodesDeleted() == 0 {
			logger.Warn("Organization already absent on delete", zap.String("orgID", orgID))
		}

		return nil, nil
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to delete organization",
			zap.Error(err),
			zap.String("orgID", orgID),
			zap.Duration("duration", duration))
		return err
	}

	logger.Info("Organization deleted successfully",
		zap.String("orgID", orgID),
		zap.Duration("duration", duration))
	return nil
}

func (dao *OrganizationDAO) GetOrganization(ctx context.Context, orgID string) (*model.Organization, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (o:` + LabelOrganization + ` {id: $id})
    RETURN o
    `
	result, err := session.Run(query, map[string]interface{}{"id": orgID})
	if err != nil {
		logger.Error("Failed to execute get organization query",
			zap.Error(err),
			zap.String("orgID", orgID))
		return nil, atlas_errors.ErrDatabaseOperation
	}

	if result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		return mapNodeToOrganization(node), nil
	}

	logger.Warn("Organization not found", zap.String("orgID", orgID))
	return nil, atlas_errors.ErrOrganizationNotFound
}

// GetOrganizations fetches several organizations in one round trip, used by
// the session materializer to resolve all of a user's memberships.
func (dao *OrganizationDAO) GetOrganizations(ctx context.Context, orgIDs []string) (map[string]*model.Organization, error) {
	orgs := make(map[string]*model.Organization, len(orgIDs))
	if len(orgIDs) == 0 {
		return orgs, nil
	}

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (o:` + LabelOrganization + `)
    WHERE o.id IN $ids
    RETURN o
    `
	result, err := session.Run(query, map[string]interface{}{"ids": orgIDs})
	if err != nil {
		logger.Error("Failed to execute batched get organizations query", zap.Error(err))
		return nil, atlas_errors.ErrDatabaseOperation
	}

	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		org := mapNodeToOrganization(node)
		orgs[org.ID] = org
	}

	return orgs, nil
}

func (dao *OrganizationDAO) ListOrganizations(ctx context.Context, limit int, offset int) ([]*model.Organization, error) {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (o:` + LabelOrganization + `)
    RETURN o
    ORDER BY o.createdAt DESC
    SKIP $offset
    LIMIT $limit
    `
	result, err := session.Run(query, map[string]interface{}{
		"limit":  limit,
		"offset": offset,
	})
	if err != nil {
		logger.Error("Failed to execute list organizations query",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return nil, atlas_errors.ErrDatabaseOperation
	}

	var orgs []*model.Organization
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		orgs = append(orgs, mapNodeToOrganization(node))
	}

	logger.Info("Organizations listed successfully",
		zap.Int("count", len(orgs)),
		zap.Duration("duration", time.Since(start)))

	return orgs, nil
}

func (dao *OrganizationDAO) SearchOrganizations(ctx context.Context, criteria model.OrganizationSearchCriteria) ([]*model.Organization, error) {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf("MATCH (o:%s) WHERE 1=1", LabelOrganization))

	params := make(map[string]interface{})

	if criteria.Name != "" {
		queryBuilder.WriteString(" AND toLower(o.name) CONTAINS toLower($name)")
		params["name"] = criteria.Name
	}
	if criteria.ID != "" {
		queryBuilder.WriteString(" AND o.id = $id")
		params["id"] = criteria.ID
	}
	if criteria.Plan != "" {
		queryBuilder.WriteString(" AND o.plan = $plan")
		params["plan"] = criteria.Plan
	}
	if criteria.Industry != "" {
		queryBuilder.WriteString(" AND o.industry = $industry")
		params["industry"] = criteria.Industry
	}
	if criteria.FromDate != nil {
		queryBuilder.WriteString(" AND o.createdAt >= $fromDate")
		params["fromDate"] = criteria.FromDate.Format(time.RFC3339)
	}
	if criteria.ToDate != nil {
		queryBuilder.WriteString(" AND o.createdAt <= $toDate")
		params["toDate"] = criteria.ToDate.Format(time.RFC3339)
	}

	queryBuilder.WriteString(" RETURN o")

	if criteria.SortBy != "" {
		queryBuilder.WriteString(fmt.Sprintf(" ORDER BY o.%s", criteria.SortBy))
		if strings.EqualFold(criteria.SortOrder, "desc") {
			queryBuilder.WriteString(" DESC")
		} else {
			queryBuilder.WriteString(" ASC")
		}
	} else {
		queryBuilder.WriteString(" ORDER BY o.createdAt DESC")
	}

	if criteria.Offset > 0 {
		queryBuilder.WriteString(" SKIP $offset")
		params["offset"] = criteria.Offset
	}
	if criteria.Limit > 0 {
		queryBuilder.WriteString(" LIMIT $limit")
		params["limit"] = criteria.Limit
	}

	result, err := session.Run(queryBuilder.String(), params)
	if err != nil {
		logger.Error("Failed to execute search organizations query",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return nil, atlas_errors.ErrDatabaseOperation
	}

	var orgs []*model.Organization
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		orgs = append(orgs, mapNodeToOrganization(node))
	}

	logger.Info("Organizations searched successfully",
		zap.Int("count", len(orgs)),
		zap.Duration("duration", time.Since(start)))

	return orgs, nil
}

// ListMembers projects the organization-side view of MEMBER_OF edges.
func (dao *OrganizationDAO) ListMembers(ctx context.Context, orgID string) ([]model.OrgMember, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (u:` + LabelUser + `)-[m:` + RelMemberOf + `]->(o:` + LabelOrganization + ` {id: $id})
    RETURN u.id, u.email, m.role, m.permissions, m.isActive, m.joinedAt
    ORDER BY m.joinedAt ASC
    `
	result, err := session.Run(query, map[string]interface{}{"id": orgID})
	if err != nil {
		logger.Error("Failed to execute list members query",
			zap.Error(err),
			zap.String("orgID", orgID))
		return nil, atlas_errors.ErrDatabaseOperation
	}

	var members []model.OrgMember
	for result.Next() {
		values := result.Record().Values
		member := model.OrgMember{}
		if s, ok := values[0].(string); ok {
			member.UserID = s
		}
		if s, ok := values[1].(string); ok {
			member.Email = s
		}
		if s, ok := values[2].(string); ok {
			member.Role = s
		}
		if raw, ok := values[3].([]interface{}); ok {
			for _, p := range raw {
				if s, ok := p.(string); ok {
					member.Permissions = append(member.Permissions, s)
				}
			}
		}
		if b, ok := values[4].(bool); ok {
			member.IsActive = b
		}
		if s, ok := values[5].(string); ok {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				member.JoinedAt = t
			}
		}
		members = append(members, member)
	}

	return members, nil
}

// Helper function to map Neo4j Node to Organization struct
func mapNodeToOrganization(node neo4j.Node) *model.Organization {
	props := node.Props
	org := &model.Organization{
		ID:          stringProp(props, "id"),
		Name:        stringProp(props, "name"),
		Slug:        stringProp(props, "slug"),
		Industry:    stringProp(props, "industry"),
		Size:        stringProp(props, "size"),
		Plan:        stringProp(props, "plan"),
		PlanStatus:  stringProp(props, "planStatus"),
		ParentOrgID: stringProp(props, "parentOrgId"),
		CreatedAt:   timeProp(props, "createdAt"),
		UpdatedAt:   timeProp(props, "updatedAt"),
	}
	jsonProp(props, "settings", &org.Settings)
	return org
}
