// api/audit/service.go
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	atlas_errors "github.com/atlasgrc/atlas/api/errors"
	logger "github.com/atlasgrc/atlas/api/logging"
	"github.com/atlasgrc/atlas/api/model"
)

// Actor identifies who performed the logged action.
type Actor struct {
	ID    string
	Name  string
	Email string
}

// MemberNotice is the notification shape the audit helpers hand to the
// notifier during fan-out. Kept here so the notification service can depend
// on audit without a cycle.
type MemberNotice struct {
	OrganizationID string
	Type           string
	Category       string
	Priority       string
	Title          string
	Message        string
	ActionBy       string
	ResourceType   string
	ResourceID     string
	ResourceName   string
	ActionURL      string
}

// MemberNotifier fans a notice out to organization members. Implementations
// never fail the caller; they return whichever ids succeeded.
type MemberNotifier interface {
	NotifyMembers(ctx context.Context, memberIDs []string, excludeUserID string, notice MemberNotice) []string
}

type Service interface {
	LogActivity(ctx context.Context, entry ActivityLog) (string, error)
	QueryLogs(ctx context.Context, query Query) ([]ActivityLog, error)
	LogOrganizationCreated(ctx context.Context, actor Actor, org model.Organization, memberIDs []string) error
	LogOrganizationUpdated(ctx context.Context, actor Actor, oldOrg, newOrg model.Organization, memberIDs []string) error
	LogMemberJoined(ctx context.Context, actor Actor, org model.Organization, userID, role string, memberIDs []string) error
}

type service struct {
	repo     Repository
	notifier MemberNotifier
}

// NewService builds the activity log service. notifier may be nil; fan-out
// is then skipped entirely.
func NewService(repo Repository, notifier MemberNotifier) Service {
	return &service{repo: repo, notifier: notifier}
}

// LogActivity validates required fields and appends one immutable record
// with a server-assigned id and timestamp. It has no side effect beyond the
// write; notification fan-out is composed by the convenience helpers, not
// implied here.
func (s *service) LogActivity(ctx context.Context, entry ActivityLog) (string, error) {
	if entry.OrganizationID == "" || entry.UserID == "" || entry.Action == "" ||
		entry.Category == "" || entry.Description == "" {
		return "", atlas_errors.ErrInvalidActivityData
	}

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Severity == "" {
		entry.Severity = SeverityInfo
	}
	entry.Timestamp = time.Now().UTC()

	if err := s.repo.Append(ctx, entry); err != nil {
		logger.Error("Failed to append activity log",
			zap.Error(err),
			zap.String("action", entry.Action),
			zap.String("organizationID", entry.OrganizationID))
		return "", err
	}

	return entry.ID, nil
}

func (s *service) QueryLogs(ctx context.Context, query Query) ([]ActivityLog, error) {
	return s.repo.QueryLogs(ctx, query)
}

func (s *service) LogOrganizationCreated(ctx context.Context, actor Actor, org model.Organization, memberIDs []string) error {
	entry := ActivityLog{
		OrganizationID: org.ID,
		UserID:         actor.ID,
		UserName:       actor.Name,
		UserEmail:      actor.Email,
		Action:         "organization.created",
		Category:       "organization",
		ResourceType:   "organization",
		ResourceID:     org.ID,
		ResourceName:   org.Name,
		Description:    "Organization " + org.Name + " was created",
		Severity:       SeverityInfo,
	}

	id, err := s.LogActivity(ctx, entry)
	if err != nil {
		return err
	}

	s.fanOut(ctx, actor, memberIDs, MemberNotice{
		OrganizationID: org.ID,
		Type:           "organization_created",
		Category:       "organization",
		Priority:       model.NotificationPriorityMedium,
		Title:          "Organization created",
		Message:        entry.Description,
		ActionBy:       actor.ID,
		ResourceType:   "organization",
		ResourceID:     org.ID,
		ResourceName:   org.Name,
	})

	logger.Debug("Organization creation logged", zap.String("activityID", id), zap.String("orgID", org.ID))
	return nil
}

func (s *service) LogOrganizationUpdated(ctx context.Context, actor Actor, oldOrg, newOrg model.Organization, memberIDs []string) error {
	entry := ActivityLog{
		OrganizationID: newOrg.ID,
		UserID:         actor.ID,
		UserName:       actor.Name,
		UserEmail:      actor.Email,
		Action:         "organization.updated",
		Category:       "organization",
		ResourceType:   "organization",
		ResourceID:     newOrg.ID,
		ResourceName:   newOrg.Name,
		Description:    "Organization " + newOrg.Name + " was updated",
		Severity:       SeverityInfo,
		Changes:        DiffOrganizations(oldOrg, newOrg),
	}

	if _, err := s.LogActivity(ctx, entry); err != nil {
		return err
	}

	s.fanOut(ctx, actor, memberIDs, MemberNotice{
		OrganizationID: newOrg.ID,
		Type:           "organization_updated",
		Category:       "organization",
		Priority:       model.NotificationPriorityLow,
		Title:          "Organization updated",
		Message:        entry.Description,
		ActionBy:       actor.ID,
		ResourceType:   "organization",
		ResourceID:     newOrg.ID,
		ResourceName:   newOrg.Name,
	})

	return nil
}

func (s *service) LogMemberJoined(ctx context.Context, actor Actor, org model.Organization, userID, role string, memberIDs []string) error {
	entry := ActivityLog{
		OrganizationID: org.ID,
		UserID:         actor.ID,
		UserName:       actor.Name,
		UserEmail:      actor.Email,
		Action:         "organization.member_joined",
		Category:       "membership",
		ResourceType:   "user",
		ResourceID:     userID,
		Description:    "A member joined organization " + org.Name + " with role " + role,
		Severity:       SeverityInfo,
	}

	if _, err := s.LogActivity(ctx, entry); err != nil {
		return err
	}

	s.fanOut(ctx, actor, memberIDs, MemberNotice{
		OrganizationID: org.ID,
		Type:           "member_joined",
		Category:       "membership",
		Priority:       model.NotificationPriorityLow,
		Title:          "New member",
		Message:        entry.Description,
		ActionBy:       actor.ID,
		ResourceType:   "user",
		ResourceID:     userID,
	})

	return nil
}

// fanOut runs after the activity write has committed. A failure notifying
// one member never aborts the rest and never surfaces to the caller.
func (s *service) fanOut(ctx context.Context, actor Actor, memberIDs []string, notice MemberNotice) {
	if s.notifier == nil || len(memberIDs) == 0 {
		return
	}
	notified := s.notifier.NotifyMembers(ctx, memberIDs, actor.ID, notice)
	logger.Debug("Activity fan-out completed",
		zap.String("orgID", notice.OrganizationID),
		zap.Int("requested", len(memberIDs)),
		zap.Int("notified", len(notified)))
}

// DiffOrganizations produces field-level before/after changes for the
// fields an organization update can touch.
func DiffOrganizations(oldOrg, newOrg model.Organization) []Change {
	var changes []Change
	if oldOrg.Name != newOrg.Name {
		changes = append(changes, Change{Field: "name", OldValue: oldOrg.Name, NewValue: newOrg.Name})
	}
	if oldOrg.Plan != newOrg.Plan {
		changes = append(changes, Change{Field: "plan", OldValue: oldOrg.Plan, NewValue: newOrg.Plan})
	}
	if oldOrg.PlanStatus != newOrg.PlanStatus {
		changes = append(changes, Change{Field: "plan_status", OldValue: oldOrg.PlanStatus, NewValue: newOrg.PlanStatus})
	}
	if oldOrg.Industry != newOrg.Industry {
		changes = append(changes, Change{Field: "industry", OldValue: oldOrg.Industry, NewValue: newOrg.Industry})
	}
	if oldOrg.Size != newOrg.Size {
		changes = append(changes, Change{Field: "size", OldValue: oldOrg.Size, NewValue: newOrg.Size})
	}
	if oldOrg.Settings != newOrg.Settings {
		changes = append(changes, Change{Field: "settings", OldValue: oldOrg.Settings, NewValue: newOrg.Settings})
	}
	return changes
}
