// api/idp/http_client.go
package idp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	logger "github.com/atlasgrc/atlas/api/logging"
)

// HTTPClient talks to the identity provider's backend REST API with a
// bearer secret key.
type HTTPClient struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(baseURL, secretKey string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL:    baseURL,
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// wire representations: timestamps arrive as millisecond epochs.
type wireUser struct {
	ID               string          `json:"id"`
	Email            string          `json:"email_address"`
	FirstName        string          `json:"first_name"`
	LastName         string          `json:"last_name"`
	ImageURL         string          `json:"image_url"`
	Banned           bool            `json:"banned"`
	TwoFactorEnabled bool            `json:"two_factor_enabled"`
	LastSignInAt     *int64          `json:"last_sign_in_at"`
	PublicMetadata   json.RawMessage `json:"public_metadata"`
}

func (c *HTTPClient) GetUser(ctx context.Context, userID string) (*User, error) {
	var wu wireUser
	if err := c.get(ctx, "/v1/users/"+userID, &wu); err != nil {
		return nil, err
	}

	user := &User{
		ID:             wu.ID,
		Email:          wu.Email,
		FirstName:      wu.FirstName,
		LastName:       wu.LastName,
		ImageURL:       wu.ImageURL,
		Banned:         wu.Banned,
		MFAEnabled:     wu.TwoFactorEnabled,
		PublicMetadata: wu.PublicMetadata,
	}
	if wu.LastSignInAt != nil {
		t := time.UnixMilli(*wu.LastSignInAt).UTC()
		user.LastSignInAt = &t
	}
	return user, nil
}

func (c *HTTPClient) GetOrganization(ctx context.Context, orgID string) (*Organization, error) {
	var org Organization
	if err := c.get(ctx, "/v1/organizations/"+orgID, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

func (c *HTTPClient) UpdateUserMetadata(ctx context.Context, userID string, metadata interface{}) error {
	body, err := json.Marshal(map[string]interface{}{"public_metadata": metadata})
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL+"/v1/users/"+userID+"/metadata", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		logger.Error("Identity provider metadata update failed",
			zap.String("userID", userID),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", detail))
		return fmt.Errorf("identity provider returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *HTTPClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		logger.Error("Identity provider request returned error status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", detail))
		return fmt.Errorf("identity provider returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode identity provider response: %w", err)
	}
	return nil
}
