// api/dao/user_dao.go
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

type UserDAO struct {
	Driver neo4j.Driver
}

func NewUserDAO(driver neo4j.Driver) *UserDAO {
	dao := &UserDAO{Driver: driver}
	ctx := context.Background()
	if err := dao.EnsureConstraints(ctx); err != nil {
		logger.Fatal("Failed to ensure constraints for User", zap.Error(err))
	}
	return dao
}

func (dao *UserDAO) EnsureConstraints(ctx context.Context) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		queries := []string{
			`CREATE CONSTRAINT unique_user_id IF NOT EXISTS
			FOR (u:` + LabelUser + `) REQUIRE u.id IS UNIQUE`,
			`CREATE CONSTRAINT unique_user_email IF NOT EXISTS
			FOR (u:` + LabelUser + `) REQUIRE u.email IS UNIQUE`,
		}
		for _, query := range queries {
			if _, err := transaction.Run(query, nil); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})

	if err != nil {
		logger.Error("Failed to ensure constraints on User", zap.Error(err))
		return err
	}
	return nil
}

// UpsertUser mirrors an identity-provider user record. The MERGE keyed by id
// makes the operation idempotent: applying the same event twice produces the
// same document state as applying it once.
func (dao *UserDAO) UpsertUser(ctx context.Context, user model.User) (string, error) {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MERGE (u:` + LabelUser + ` {id: $id})
        ON CREATE SET u.createdAt = $now
        SET u += $props
        RETURN u.id as id
        `

		preferencesJSON, _ := json.Marshal(user.Preferences)
		securityJSON, _ := json.Marshal(user.Security)

		params := map[string]interface{}{
			"id":  user.ID,
			"now": time.Now().Format(time.RFC3339),
			"props": map[string]interface{}{
				"email":       user.Email,
				"firstName":   user.FirstName,
				"lastName":    user.LastName,
				"imageUrl":    user.ImageURL,
				"status":      user.Status,
				"preferences": string(preferencesJSON),
				"security":    string(securityJSON),
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
		logger.Error("Failed to upsert user",
			zap.Error(err),
			zap.String("userID", user.ID),
			zap.Duration("duration", duration))
		return "", err
	}

	userID := fmt.Sprintf("%v", result)
	logger.Info("User mirrored successfully",
		zap.String("userID", userID),
		zap.Duration("duration", duration))

	return userID, nil
}

// DeleteUser hard-deletes the mirrored document. DETACH DELETE removes the
// user's membership relationships in the same transaction, so organization
// member lists never retain entries for deleted users. Deleting an absent
// user is a no-op so that webhook redeliveries stay safe.
func (dao *UserDAO) DeleteUser(ctx context.Context, userID string) error {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (u:` + LabelUser + ` {id: $id})
        DETACH DELETE u
        `
		result, err := transaction.Run(query, map[string]interface{}{"id": userID})
		if err != nil {
			return nil, atlas_errors.ErrDatabaseOperation
		}

		summary, err := result.Consume()
		if err != nil {
			return nil, atlas_errors.ErrDatabaseOperation
		}

		if summary.Counters().NodesDeleted() == 0 {
			logger.Warn("User already absent on delete", zap.String("userID", userID))
		}

		return nil, nil
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to delete user",
			zap.Error(err),
			zap.String("userID", userID),
			zap.Duration("duration", duration))
		return err
	}

	logger.Info("User deleted successfully",
		zap.String("userID", userID),
		zap.Duration("duration", duration))
	return nil
}

func (dao *UserDAO) GetUser(ctx context.Context, userID string) (*model.User, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (u:` + LabelUser + ` {id: $id})
    OPTIONAL MATCH (u)-[m:` + RelMemberOf + `]->(o:` + LabelOrganization + `)
    RETURN u, collect({
        orgId: o.id, role: m.role, permissions: m.permissions,
        isPrimary: m.isPrimary, isActive: m.isActive, joinedAt: m.joinedAt
    }) as memberships
    `
	result, err := session.Run(query, map[string]interface{}{"id": userID})
	if err != nil {
		logger.Error("Failed to execute get user query",
			zap.Error(err),
			zap.String("userID", userID))
		return nil, atlas_errors.ErrDatabaseOperation
	}

	if result.Next() {
		record := result.Record()
		node := record.Values[0].(neo4j.Node)
		user := mapNodeToUser(node)
		user.Organizations = mapMemberships(record.Values[1])
		return user, nil
	}

	logger.Warn("User not found", zap.String("userID", userID))
	return nil, atlas_errors.ErrUserNotFound
}

func (dao *UserDAO) SearchUsers(ctx context.Context, criteria model.UserSearchCriteria) ([]*model.User, error) {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf("MATCH (u:%s) WHERE 1=1", LabelUser))

	params := make(map[string]interface{})

	if criteria.ID != "" {
		queryBuilder.WriteString(" AND u.id = $id")
		params["id"] = criteria.ID
	}
	if criteria.Email != "" {
		queryBuilder.WriteString(" AND toLower(u.email) = toLower($email)")
		params["email"] = criteria.Email
	}
	if criteria.Name != "" {
		queryBuilder.WriteString(" AND (toLower(u.firstName) CONTAINS toLower($name) OR toLower(u.lastName) CONTAINS toLower($name))")
		params["name"] = criteria.Name
	}
	if criteria.Status != "" {
		queryBuilder.WriteString(" AND u.status = $status")
		params["status"] = criteria.Status
	}
	if criteria.OrgID != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND (u)-[:%s]->(:%s {id: $orgId})", RelMemberOf, LabelOrganization))
		params["orgId"] = criteria.OrgID
	}
	if criteria.FromDate != nil {
		queryBuilder.WriteString(" AND u.createdAt >= $fromDate")
		params["fromDate"] = criteria.FromDate.Format(time.RFC3339)
	}
	if criteria.ToDate != nil {
		queryBuilder.WriteString(" AND u.createdAt <= $toDate")
		params["toDate"] = criteria.ToDate.Format(time.RFC3339)
	}

	queryBuilder.WriteString(" RETURN u")

	if criteria.SortBy != "" {
		queryBuilder.WriteString(fmt.Sprintf(" ORDER BY u.%s", criteria.SortBy))
		if strings.EqualFold(criteria.SortOrder, "desc") {
			queryBuilder.WriteString(" DESC")
		} else {
			queryBuilder.WriteString(" ASC")
		}
	} else {
		queryBuilder.WriteString(" ORDER BY u.createdAt DESC")
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
		logger.Error("Failed to execute search users query",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return nil, atlas_errors.ErrDatabaseOperation
	}

	var users []*model.User
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		users = append(users, mapNodeToUser(node))
	}

	logger.Info("Users searched successfully",
		zap.Int("count", len(users)),
		zap.Duration("duration", time.Since(start)))

	return users, nil
}

// UpsertMembership merges the MEMBER_OF relationship keyed by the user/org
// pair, so redelivered membership events update in place instead of
// appending duplicates. A newly created membership becomes primary only when
// the user has no primary membership yet, keeping the at-most-one-primary
// invariant inside a single write transaction.
func (dao *UserDAO) UpsertMembership(ctx context.Context, userID, orgID, role string, permissions []string) error {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if len(permissions) == 0 {
		permissions = model.RolePermissions[role]
	}

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		checkQuery := `
        OPTIONAL MATCH (u:` + LabelUser + ` {id: $userId})
        OPTIONAL MATCH (o:` + LabelOrganization + ` {id: $orgId})
        OPTIONAL MATCH (u)-[p:` + RelMemberOf + ` {isPrimary: true}]->(:` + LabelOrganization + `)
        RETURN u IS NOT NULL, o IS NOT NULL, count(p)
        `
		result, err := transaction.Run(checkQuery, map[string]interface{}{
			"userId": userID,
			"orgId":  orgID,
		})
		if err != nil {
			return nil, atlas_errors.ErrDatabaseOperation
		}
		if !result.Next() {
			return nil, atlas_errors.ErrDatabaseOperation
		}
		record := result.Record()
		if !record.Values[0].(bool) {
			return nil, atlas_errors.ErrUserNotFound
		}
		if !record.Values[1].(bool) {
			return nil, atlas_errors.ErrOrganizationNotFound
		}
		hasPrimary := record.Values[2].(int64) > 0

		mergeQuery := `
        MATCH (u:` + LabelUser + ` {id: $userId})
        MATCH (o:` + LabelOrganization + ` {id: $orgId})
        MERGE (u)-[m:` + RelMemberOf + `]->(o)
        ON CREATE SET m.joinedAt = $now, m.isPrimary = $isPrimary
        SET m.role = $role, m.permissions = $permissions, m.isActive = true
        RETURN m
        `
		result, err = transaction.Run(mergeQuery, map[string]interface{}{
			"userId":      userID,
			"orgId":       orgID,
			"role":        role,
			"permissions": permissions,
			"isPrimary":   !hasPrimary,
			"now":         time.Now().Format(time.RFC3339),
		})
		if err != nil {
			return nil, atlas_errors.ErrDatabaseOperation
		}
		if !result.Next() {
			return nil, atlas_errors.ErrInternalServer
		}
		return nil, nil
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to upsert membership",
			zap.Error(err),
			zap.String("userID", userID),
			zap.String("orgID", orgID),
			zap.Duration("duration", duration))
		return err
	}

	logger.Info("Membership mirrored successfully",
		zap.String("userID", userID),
		zap.String("orgID", orgID),
		zap.String("role", role),
		zap.Duration("duration", duration))
	return nil
}

// RemoveMembership deletes the relationship. Removing an absent membership
// is a no-op, so redelivered deletion events are safe.
func (dao *UserDAO) RemoveMembership(ctx context.Context, userID, orgID string) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (u:` + LabelUser + ` {id: $userId})-[m:` + RelMemberOf + `]->(o:` + LabelOrganization + ` {id: $orgId})
        DELETE m
        `
		result, err := transaction.Run(query, map[string]interface{}{
			"userId": userID,
			"orgId":  orgID,
		})
		if err != nil {
			return nil, atlas_errors.ErrDatabaseOperation
		}
		summary, err := result.Consume()
		if err != nil {
			return nil, atlas_errors.ErrDatabaseOperation
		}
		if summary.Counters().RelationshipsDeleted() == 0 {
			logger.Debug("Membership already absent on delete",
				zap.String("userID", userID),
				zap.String("orgID", orgID))
		}
		return nil, nil
	})

	if err != nil {
		logger.Error("Failed to remove membership",
			zap.Error(err),
			zap.String("userID", userID),
			zap.String("orgID", orgID))
		return err
	}

	logger.Info("Membership removed",
		zap.String("userID", userID),
		zap.String("orgID", orgID))
	return nil
}

// Helper function to map Neo4j Node to User struct
func mapNodeToUser(node neo4j.Node) *model.User {
	props := node.Props
	user := &model.User{
		ID:        stringProp(props, "id"),
		Email:     stringProp(props, "email"),
		FirstName: stringProp(props, "firstName"),
		LastName:  stringProp(props, "lastName"),
		ImageURL:  stringProp(props, "imageUrl"),
		Status:    stringProp(props, "status"),
		CreatedAt: timeProp(props, "createdAt"),
		UpdatedAt: timeProp(props, "updatedAt"),
	}
	jsonProp(props, "preferences", &user.Preferences)
	jsonProp(props, "security", &user.Security)
	return user
}

func mapMemberships(value interface{}) []model.Membership {
	raw, ok := value.([]interface{})
	if !ok {
		return nil
	}
	var memberships []model.Membership
	for _, item := range raw {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		// OPTIONAL MATCH yields one all-null row for users without edges.
		if entry["orgId"] == nil {
			continue
		}
		memberships = append(memberships, model.Membership{
			OrgID:       stringProp(entry, "orgId"),
			Role:        stringProp(entry, "role"),
			Permissions: stringSliceProp(entry, "permissions"),
			IsPrimary:   boolProp(entry, "isPrimary"),
			IsActive:    boolProp(entry, "isActive"),
			JoinedAt:    timeProp(entry, "joinedAt"),
		})
	}
	return memberships
}
