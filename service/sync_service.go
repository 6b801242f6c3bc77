// api/service/sync_service.go
package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/atlasgrc/atlas/api/audit"
	"github.com/atlasgrc/atlas/api/idp"
	logger "github.com/atlasgrc/atlas/api/logging"
	"github.com/atlasgrc/atlas/api/model"
	"github.com/atlasgrc/atlas/api/util"
)

// UserStore is the slice of the user DAO the sync pipeline writes through.
type UserStore interface {
	UpsertUser(ctx context.Context, user model.User) (string, error)
	DeleteUser(ctx context.Context, userID string) error
	GetUser(ctx context.Context, userID string) (*model.User, error)
	UpsertMembership(ctx context.Context, userID, orgID, role string, permissions []string) error
	RemoveMembership(ctx context.Context, userID, orgID string) error
}

// OrganizationStore is the slice of the organization DAO the sync pipeline
// writes through.
type OrganizationStore interface {
	UpsertOrganization(ctx context.Context, org model.Organization) (string, error)
	DeleteOrganization(ctx context.Context, orgID string) error
	GetOrganization(ctx context.Context, orgID string) (*model.Organization, error)
	GetOrganizations(ctx context.Context, orgIDs []string) (map[string]*model.Organization, error)
	ListMembers(ctx context.Context, orgID string) ([]model.OrgMember, error)
}

// SessionInvalidator drops the cached session snapshot for a user after a
// mirror write that could change what their session would contain.
type SessionInvalidator interface {
	InvalidateSessionCache(ctx context.Context, userID string) error
}

// ISyncService handles identity-provider events. Every handler is safe to
// replay: deliveries arrive at least once and possibly out of order, so each
// one re-fetches current provider state instead of trusting the payload.
type ISyncService interface {
	SyncUser(ctx context.Context, userID string) (*model.User, error)
	DeleteUser(ctx context.Context, userID string) error
	SyncOrganization(ctx context.Context, orgID string) (*model.Organization, error)
	DeleteOrganization(ctx context.Context, orgID string) error
	UpsertMembership(ctx context.Context, userID, orgID, role string, permissions []string) error
	RemoveMembership(ctx context.Context, userID, orgID string) error
}

type SyncService struct {
	userStore  UserStore
	orgStore   OrganizationStore
	idpClient  idp.Client
	sessions   SessionInvalidator
	auditSvc   audit.Service
	eventBus   *util.EventBus
	validation *util.ValidationUtil
}

var _ ISyncService = &SyncService{}

var syncActor = audit.Actor{ID: "system", Name: "Identity Sync"}

func NewSyncService(userStore UserStore, orgStore OrganizationStore, idpClient idp.Client, sessions SessionInvalidator, auditSvc audit.Service, validation *util.ValidationUtil, eventBus *util.EventBus) *SyncService {
	return &SyncService{
		userStore:  userStore,
		orgStore:   orgStore,
		idpClient:  idpClient,
		sessions:   sessions,
		auditSvc:   auditSvc,
		eventBus:   eventBus,
		validation: validation,
	}
}

// SyncUser re-fetches the provider's current account state and upserts the
// mirrored document. The stored status is merged forward-only: an event
// replayed after a suspension cannot reactivate the user.
func (s *SyncService) SyncUser(ctx context.Context, userID string) (*model.User, error) {
	providerUser, err := s.idpClient.GetUser(ctx, userID)
	if err != nil {
		logger.Error("Failed to fetch user from identity provider",
			zap.Error(err),
			zap.String("userID", userID))
		return nil, err
	}

	stored, _ := s.userStore.GetUser(ctx, userID)

	user := mapProviderUser(providerUser)
	if stored != nil {
		user.Status = model.ForwardStatus(stored.Status, user.Status)
		user.CreatedAt = stored.CreatedAt
	}

	if err := s.validation.ValidateUser(user); err != nil {
		logger.Error("Provider user failed validation",
			zap.Error(err),
			zap.String("userID", userID))
		return nil, err
	}

	if _, err := s.userStore.UpsertUser(ctx, user); err != nil {
		return nil, err
	}

	s.invalidateSession(ctx, userID)
	s.eventBus.Publish(ctx, util.EventUserSynced, user)

	logger.Info("User mirrored from identity provider",
		zap.String("userID", userID),
		zap.String("status", user.Status))
	return &user, nil
}

// DeleteUser removes the mirrored document and everything hanging off it.
// A replayed deletion is a no-op, not an error.
func (s *SyncService) DeleteUser(ctx context.Context, userID string) error {
	if err := s.userStore.DeleteUser(ctx, userID); err != nil {
		return err
	}

	s.invalidateSession(ctx, userID)
	s.eventBus.Publish(ctx, util.EventUserDeleted, userID)

	logger.Info("User mirror deleted", zap.String("userID", userID))
	return nil
}

func (s *SyncService) SyncOrganization(ctx context.Context, orgID string) (*model.Organization, error) {
	providerOrg, err := s.idpClient.GetOrganization(ctx, orgID)
	if err != nil {
		logger.Error("Failed to fetch organization from identity provider",
			zap.Error(err),
			zap.String("orgID", orgID))
		return nil, err
	}

	stored, _ := s.orgStore.GetOrganization(ctx, orgID)

	org := mapProviderOrganization(providerOrg)
	if stored != nil {
		org.CreatedAt = stored.CreatedAt
	}

	if err := s.validation.ValidateOrganization(org); err != nil {
		logger.Error("Provider organization failed validation",
			zap.Error(err),
			zap.String("orgID", orgID))
		return nil, err
	}

	if _, err := s.orgStore.UpsertOrganization(ctx, org); err != nil {
		return nil, err
	}

	s.auditOrganizationSync(ctx, stored, org)
	s.eventBus.Publish(ctx, util.EventOrganizationSynced, org)

	logger.Info("Organization mirrored from identity provider", zap.String("orgID", orgID))
	return &org, nil
}

func (s *SyncService) DeleteOrganization(ctx context.Context, orgID string) error {
	// Members whose session references this org are invalidated before the
	// cascade removes the membership edges.
	members, err := s.orgStore.ListMembers(ctx, orgID)
	if err != nil {
		logger.Warn("Could not list members before organization delete",
			zap.Error(err),
			zap.String("orgID", orgID))
	}

	if err := s.orgStore.DeleteOrganization(ctx, orgID); err != nil {
		return err
	}

	for _, member := range members {
		s.invalidateSession(ctx, member.UserID)
	}
	s.eventBus.Publish(ctx, util.EventOrganizationGone, orgID)

	logger.Info("Organization mirror deleted",
		zap.String("orgID", orgID),
		zap.Int("membersInvalidated", len(members)))
	return nil
}

// UpsertMembership records or updates a user's membership edge. Empty
// permissions fall back to the role's defaults inside the store.
func (s *SyncService) UpsertMembership(ctx context.Context, userID, orgID, role string, permissions []string) error {
	if err := s.validation.ValidateMembership(model.Membership{OrgID: orgID, Role: role}); err != nil {
		return err
	}

	existing, _ := s.userStore.GetUser(ctx, userID)
	isNew := true
	if existing != nil {
		for _, m := range existing.Organizations {
			if m.OrgID == orgID {
				isNew = false
				break
			}
		}
	}

	if err := s.userStore.UpsertMembership(ctx, userID, orgID, role, permissions); err != nil {
		return err
	}

	s.invalidateSession(ctx, userID)
	s.eventBus.Publish(ctx, util.EventMembershipChanged, map[string]string{
		"userId": userID,
		"orgId":  orgID,
		"role":   role,
	})

	if isNew {
		s.auditMemberJoined(ctx, userID, orgID, role)
	}

	logger.Info("Membership upserted",
		zap.String("userID", userID),
		zap.String("orgID", orgID),
		zap.String("role", role))
	return nil
}

func (s *SyncService) RemoveMembership(ctx context.Context, userID, orgID string) error {
	if err := s.userStore.RemoveMembership(ctx, userID, orgID); err != nil {
		return err
	}

	s.invalidateSession(ctx, userID)
	s.eventBus.Publish(ctx, util.EventMembershipChanged, map[string]string{
		"userId": userID,
		"orgId":  orgID,
	})

	logger.Info("Membership removed",
		zap.String("userID", userID),
		zap.String("orgID", orgID))
	return nil
}

// invalidateSession is best effort. A stale snapshot is recomputed on the
// next login; a failed invalidation must not fail the mirror write that
// already committed.
func (s *SyncService) invalidateSession(ctx context.Context, userID string) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.InvalidateSessionCache(ctx, userID); err != nil {
		logger.Warn("Failed to invalidate session cache",
			zap.Error(err),
			zap.String("userID", userID))
	}
}

func (s *SyncService) auditOrganizationSync(ctx context.Context, stored *model.Organization, org model.Organization) {
	if s.auditSvc == nil {
		return
	}

	members, err := s.orgStore.ListMembers(ctx, org.ID)
	if err != nil {
		logger.Warn("Could not list members for audit fan-out",
			zap.Error(err),
			zap.String("orgID", org.ID))
	}
	memberIDs := make([]string, 0, len(members))
	for _, m := range members {
		memberIDs = append(memberIDs, m.UserID)
	}

	if stored == nil {
		err = s.auditSvc.LogOrganizationCreated(ctx, syncActor, org, memberIDs)
	} else {
		err = s.auditSvc.LogOrganizationUpdated(ctx, syncActor, *stored, org, memberIDs)
	}
	if err != nil {
		logger.Warn("Failed to record organization activity",
			zap.Error(err),
			zap.String("orgID", org.ID))
	}
}

func (s *SyncService) auditMemberJoined(ctx context.Context, userID, orgID, role string) {
	if s.auditSvc == nil {
		return
	}

	org, err := s.orgStore.GetOrganization(ctx, orgID)
	if err != nil || org == nil {
		return
	}

	members, _ := s.orgStore.ListMembers(ctx, orgID)
	memberIDs := make([]string, 0, len(members))
	for _, m := range members {
		memberIDs = append(memberIDs, m.UserID)
	}

	if err := s.auditSvc.LogMemberJoined(ctx, syncActor, *org, userID, role, memberIDs); err != nil {
		logger.Warn("Failed to record member join activity",
			zap.Error(err),
			zap.String("userID", userID),
			zap.String("orgID", orgID))
	}
}

// mapProviderUser projects the provider account onto the mirrored document.
// A banned account maps to suspended; the forward-only merge against the
// stored status happens in SyncUser.
func mapProviderUser(u *idp.User) model.User {
	status := model.UserStatusActive
	if u.Banned {
		status = model.UserStatusSuspended
	}

	user := model.User{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		ImageURL:  u.ImageURL,
		Status:    status,
		Security: model.UserSecurity{
			MFAEnabled:  u.MFAEnabled,
			LastLoginAt: u.LastSignInAt,
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if len(u.PublicMetadata) > 0 {
		var meta struct {
			Preferences model.UserPreferences `json:"preferences"`
		}
		if err := json.Unmarshal(u.PublicMetadata, &meta); err == nil {
			user.Preferences = meta.Preferences
		}
	}
	return user
}

func mapProviderOrganization(o *idp.Organization) model.Organization {
	org := model.Organization{
		ID:        o.ID,
		Name:      o.Name,
		Slug:      o.Slug,
		Plan:      model.PlanTrial,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if len(o.PublicMetadata) > 0 {
		var meta struct {
			Plan        string                     `json:"plan"`
			PlanStatus  string                     `json:"plan_status"`
			Industry    string                     `json:"industry"`
			Size        string                     `json:"size"`
			ParentOrgID string                     `json:"parent_org_id"`
			Settings    model.OrganizationSettings `json:"settings"`
		}
		if err := json.Unmarshal(o.PublicMetadata, &meta); err == nil {
			if meta.Plan != "" {
				org.Plan = meta.Plan
			}
			org.PlanStatus = meta.PlanStatus
			org.Industry = meta.Industry
			org.Size = meta.Size
			org.ParentOrgID = meta.ParentOrgID
			org.Settings = meta.Settings
		}
	}
	return org
}
