// api/controller/webhook_controller_test.go
package controller_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/atlasgrc/atlas/api/controller"
	atlas_errors "github.com/atlasgrc/atlas/api/errors"
	logger "github.com/atlasgrc/atlas/api/logging"
	"github.com/atlasgrc/atlas/api/model"
	"github.com/atlasgrc/atlas/api/service"
)

// fakeSyncService records which handler ran with which ids.
type fakeSyncService struct {
	calls []string
	err   error
}

var _ service.ISyncService = &fakeSyncService{}

func (f *fakeSyncService) SyncUser(ctx context.Context, userID string) (*model.User, error) {
	f.calls = append(f.calls, "SyncUser:"+userID)
	if f.err != nil {
		return nil, f.err
	}
	return &model.User{ID: userID}, nil
}

func (f *fakeSyncService) DeleteUser(ctx context.Context, userID string) error {
	f.calls = append(f.calls, "DeleteUser:"+userID)
	return f.err
}

func (f *fakeSyncService) SyncOrganization(ctx context.Context, orgID string) (*model.Organization, error) {
	f.calls = append(f.calls, "SyncOrganization:"+orgID)
	if f.err != nil {
		return nil, f.err
	}
	return &model.Organization{ID: orgID}, nil
}

func (f *fakeSyncService) DeleteOrganization(ctx context.Context, orgID string) error {
	f.calls = append(f.calls, "DeleteOrganization:"+orgID)
	return f.err
}

func (f *fakeSyncService) UpsertMembership(ctx context.Context, userID, orgID, role string, permissions []string) error {
	f.calls = append(f.calls, "UpsertMembership:"+userID+":"+orgID+":"+role)
	return f.err
}

func (f *fakeSyncService) RemoveMembership(ctx context.Context, userID, orgID string) error {
	f.calls = append(f.calls, "RemoveMembership:"+userID+":"+orgID)
	return f.err
}

func setupWebhookRouter(sync *fakeSyncService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	controller.NewWebhookController(sync).RegisterRoutes(api)
	return router
}

func postEvent(router *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/webhooks/identity", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestWebhookController(t *testing.T) {
	logger.InitLogger("../logging")
	defer logger.Sync()

	t.Run("UserCreated", func(t *testing.T) {
		sync := &fakeSyncService{}
		router := setupWebhookRouter(sync)

		w := postEvent(router, `{"type":"user.created","data":{"id":"user_1"}}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"SyncUser:user_1"}, sync.calls)
	})

	t.Run("UserDeleted", func(t *testing.T) {
		sync := &fakeSyncService{}
		router := setupWebhookRouter(sync)

		w := postEvent(router, `{"type":"user.deleted","data":{"id":"user_2"}}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"DeleteUser:user_2"}, sync.calls)
	})

	t.Run("OrganizationUpdated", func(t *testing.T) {
		sync := &fakeSyncService{}
		router := setupWebhookRouter(sync)

		w := postEvent(router, `{"type":"organization.updated","data":{"id":"org_1"}}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"SyncOrganization:org_1"}, sync.calls)
	})

	t.Run("MembershipCreated", func(t *testing.T) {
		sync := &fakeSyncService{}
		router := setupWebhookRouter(sync)

		body := `{"type":"organizationMembership.created","data":{"role":"org_admin","organization":{"id":"org_1"},"public_user_data":{"user_id":"user_1"}}}`
		w := postEvent(router, body)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"UpsertMembership:user_1:org_1:org_admin"}, sync.calls)
	})

	t.Run("MembershipDeleted", func(t *testing.T) {
		sync := &fakeSyncService{}
		router := setupWebhookRouter(sync)

		body := `{"type":"organizationMembership.deleted","data":{"organization":{"id":"org_1"},"public_user_data":{"user_id":"user_1"}}}`
		w := postEvent(router, body)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"RemoveMembership:user_1:org_1"}, sync.calls)
	})

	t.Run("HandlerErrorRespondsServerError", func(t *testing.T) {
		sync := &fakeSyncService{err: atlas_errors.ErrDatabaseOperation}
		router := setupWebhookRouter(sync)

		w := postEvent(router, `{"type":"user.created","data":{"id":"user_1"}}`)

		// 5xx so the provider redelivers.
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("UnknownTypeAcknowledged", func(t *testing.T) {
		sync := &fakeSyncService{}
		router := setupWebhookRouter(sync)

		w := postEvent(router, `{"type":"session.created","data":{"id":"sess_1"}}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, sync.calls)
		assert.Contains(t, w.Body.String(), "ignored")
	})

	t.Run("MalformedEnvelope", func(t *testing.T) {
		sync := &fakeSyncService{}
		router := setupWebhookRouter(sync)

		w := postEvent(router, `{"type":"user.created"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, sync.calls)
	})
}
