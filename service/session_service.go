// api/service/session_service.go
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/atlasgrc/atlas/api/idp"
	logger "github.com/atlasgrc/atlas/api/logging"
	"github.com/atlasgrc/atlas/api/model"
)

// SnapshotCache stores computed session snapshots keyed by user.
type SnapshotCache interface {
	GetSnapshot(ctx context.Context, userID string) (*model.SessionSnapshot, error)
	SetSnapshot(ctx context.Context, snapshot model.SessionSnapshot) error
	DeleteSnapshot(ctx context.Context, userID string) error
}

// ISessionService materializes session snapshots. A snapshot is always
// recomputed whole from the mirrored documents; it is never patched in place.
type ISessionService interface {
	ProcessLogin(ctx context.Context, userID string, forceRefresh bool) (*model.SessionSnapshot, error)
	InvalidateSessionCache(ctx context.Context, userID string) error
}

type SessionService struct {
	userStore UserStore
	orgStore  OrganizationStore
	cache     SnapshotCache
	idpClient idp.Client
}

var _ ISessionService = &SessionService{}
var _ SessionInvalidator = &SessionService{}

func NewSessionService(userStore UserStore, orgStore OrganizationStore, cache SnapshotCache, idpClient idp.Client) *SessionService {
	return &SessionService{
		userStore: userStore,
		orgStore:  orgStore,
		cache:     cache,
		idpClient: idpClient,
	}
}

// ProcessLogin returns the session snapshot for a user, serving from cache
// when possible. A cached snapshot with an outdated schema version is a miss.
// On recompute, the fresh snapshot is pushed to the identity provider's user
// metadata first and cached only once that succeeds, so it rides along on
// future tokens.
func (s *SessionService) ProcessLogin(ctx context.Context, userID string, forceRefresh bool) (*model.SessionSnapshot, error) {
	start := time.Now()

	cached, err := s.cache.GetSnapshot(ctx, userID)
	if err != nil {
		logger.Warn("Session cache read failed, recomputing",
			zap.Error(err),
			zap.String("userID", userID))
		cached = nil
	}

	if cached != nil && !forceRefresh && cached.Cache.SchemaVersion == model.SessionSchemaVersion {
		logger.Debug("Session snapshot served from cache",
			zap.String("userID", userID),
			zap.Int64("version", cached.Cache.Version))
		return cached, nil
	}

	snapshot, err := s.computeSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Version increments across recomputes so consumers can detect a refresh
	// even when the content happens to be identical.
	if cached != nil {
		snapshot.Cache.Version = cached.Cache.Version + 1
	} else {
		snapshot.Cache.Version = 1
	}

	// Push before caching. A cached snapshot the provider never received
	// would turn every later login into a cache hit and the push would never
	// be retried.
	if err := s.idpClient.UpdateUserMetadata(ctx, userID, map[string]interface{}{"session": snapshot}); err != nil {
		logger.Error("Failed to push session snapshot to identity provider",
			zap.Error(err),
			zap.String("userID", userID))
		return nil, err
	}

	if err := s.cache.SetSnapshot(ctx, *snapshot); err != nil {
		logger.Warn("Failed to cache session snapshot",
			zap.Error(err),
			zap.String("userID", userID))
	}

	logger.Info("Session snapshot materialized",
		zap.String("userID", userID),
		zap.Int64("version", snapshot.Cache.Version),
		zap.Duration("duration", time.Since(start)))
	return snapshot, nil
}

func (s *SessionService) InvalidateSessionCache(ctx context.Context, userID string) error {
	return s.cache.DeleteSnapshot(ctx, userID)
}

func (s *SessionService) computeSnapshot(ctx context.Context, userID string) (*model.SessionSnapshot, error) {
	user, err := s.userStore.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	orgIDs := make([]string, 0, len(user.Organizations))
	for _, m := range user.Organizations {
		if m.IsActive {
			orgIDs = append(orgIDs, m.OrgID)
		}
	}

	orgs := map[string]*model.Organization{}
	if len(orgIDs) > 0 {
		orgs, err = s.orgStore.GetOrganizations(ctx, orgIDs)
		if err != nil {
			return nil, err
		}
	}

	snapshot := &model.SessionSnapshot{
		UserID:        user.ID,
		Email:         user.Email,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		ImageURL:      user.ImageURL,
		Status:        user.Status,
		Organizations: []model.OrganizationContext{},
		Preferences:   user.Preferences,
		Security:      user.Security,
		Cache: model.SessionCacheInfo{
			SchemaVersion: model.SessionSchemaVersion,
			LastUpdated:   time.Now().UTC(),
		},
	}

	for _, m := range user.Organizations {
		if !m.IsActive {
			continue
		}
		org, ok := orgs[m.OrgID]
		if !ok {
			// Membership edge to an organization whose mirror is gone; the
			// snapshot simply omits it.
			logger.Warn("Membership references missing organization mirror",
				zap.String("userID", userID),
				zap.String("orgID", m.OrgID))
			continue
		}
		snapshot.Organizations = append(snapshot.Organizations, model.OrganizationContext{
			OrgID:       org.ID,
			Name:        org.Name,
			Role:        m.Role,
			Permissions: m.Permissions,
			Plan:        org.Plan,
			PlanStatus:  org.PlanStatus,
			Industry:    org.Industry,
			Size:        org.Size,
			IsPrimary:   m.IsPrimary,
		})
	}

	if primary, ok := user.PrimaryMembership(); ok {
		for i := range snapshot.Organizations {
			if snapshot.Organizations[i].OrgID == primary.OrgID {
				snapshot.PrimaryOrganization = &snapshot.Organizations[i]
				break
			}
		}
		snapshot.Capabilities = model.CapabilitiesForRole(primary.Role)
	}

	return snapshot, nil
}
