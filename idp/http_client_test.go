// api/idp/http_client_test.go
package idp_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/atlasgrc/atlas/api/idp"
	logger "github.com/atlasgrc/atlas/api/logging"
)

func TestMain(m *testing.M) {
	logger.InitLogger("../logging")
	defer logger.Sync()
	os.Exit(m.Run())
}

func TestGetUser(t *testing.T) {
	signIn := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/users/user_1", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":                 "user_1",
			"email_address":      "ada@example.com",
			"first_name":         "Ada",
			"last_name":          "Lovelace",
			"banned":             true,
			"two_factor_enabled": true,
			"last_sign_in_at":    signIn.UnixMilli(),
			"public_metadata":    map[string]string{"plan": "enterprise"},
		})
	}))
	defer server.Close()

	client := idp.NewHTTPClient(server.URL, "sk_test", time.Second)
	user, err := client.GetUser(context.Background(), "user_1")

	assert.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.True(t, user.Banned)
	assert.True(t, user.MFAEnabled)
	if assert.NotNil(t, user.LastSignInAt) {
		assert.Equal(t, signIn, *user.LastSignInAt)
	}
	assert.JSONEq(t, `{"plan":"enterprise"}`, string(user.PublicMetadata))
}

func TestGetUser_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := idp.NewHTTPClient(server.URL, "sk_test", time.Second)
	_, err := client.GetUser(context.Background(), "ghost")

	assert.ErrorIs(t, err, idp.ErrNotFound)
}

func TestGetOrganization(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/organizations/org_1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":   "org_1",
			"name": "Alpha",
			"slug": "alpha",
		})
	}))
	defer server.Close()

	client := idp.NewHTTPClient(server.URL, "sk_test", time.Second)
	org, err := client.GetOrganization(context.Background(), "org_1")

	assert.NoError(t, err)
	assert.Equal(t, "Alpha", org.Name)
	assert.Equal(t, "alpha", org.Slug)
}

func TestUpdateUserMetadata(t *testing.T) {
	var captured []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/v1/users/user_1/metadata", r.URL.Path)
		captured, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := idp.NewHTTPClient(server.URL, "sk_test", time.Second)
	err := client.UpdateUserMetadata(context.Background(), "user_1", map[string]int{"schema_version": 3})

	assert.NoError(t, err)
	assert.JSONEq(t, `{"public_metadata":{"schema_version":3}}`, string(captured))
}

func TestUpdateUserMetadata_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := idp.NewHTTPClient(server.URL, "sk_test", time.Second)
	err := client.UpdateUserMetadata(context.Background(), "user_1", nil)

	assert.Error(t, err)
}
