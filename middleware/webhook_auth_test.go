// api/middleware/webhook_auth_test.go
package middleware_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	logger "github.com/atlasgrc/atlas/api/logging"
	"github.com/atlasgrc/atlas/api/middleware"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func signedHeaders(id string, ts int64, body string) http.Header {
	mac := hmac.New(sha256.New, testSecret)
	fmt.Fprintf(mac, "%s.%d.%s", id, ts, body)
	sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	h := http.Header{}
	h.Set("webhook-id", id)
	h.Set("webhook-timestamp", fmt.Sprintf("%d", ts))
	h.Set("webhook-signature", "v1,"+sig)
	return h
}

func setupWebhookRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.WebhookAuth(testSecret, 5*time.Minute))
	r.POST("/hook", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func TestWebhookAuth(t *testing.T) {
	logger.InitLogger("../logging")
	defer logger.Sync()

	router := setupWebhookRouter()
	body := `{"type":"user.created","data":{"id":"user_1"}}`

	t.Run("ValidSignature", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/hook", strings.NewReader(body))
		req.Header = signedHeaders("msg_1", time.Now().Unix(), body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("MissingHeaders", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/hook", strings.NewReader(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("TamperedBody", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/hook", strings.NewReader(`{"type":"user.deleted"}`))
		req.Header = signedHeaders("msg_2", time.Now().Unix(), body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("StaleTimestamp", func(t *testing.T) {
		stale := time.Now().Add(-10 * time.Minute).Unix()
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/hook", strings.NewReader(body))
		req.Header = signedHeaders("msg_3", stale, body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("MalformedTimestamp", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/hook", strings.NewReader(body))
		req.Header = signedHeaders("msg_7", time.Now().Unix(), body)
		req.Header.Set("webhook-timestamp", "yesterday")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "malformed webhook timestamp")
	})

	t.Run("FutureTimestamp", func(t *testing.T) {
		future := time.Now().Add(10 * time.Minute).Unix()
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/hook", strings.NewReader(body))
		req.Header = signedHeaders("msg_4", future, body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("OneValidEntryAmongMany", func(t *testing.T) {
		ts := time.Now().Unix()
		h := signedHeaders("msg_5", ts, body)
		valid := h.Get("webhook-signature")
		h.Set("webhook-signature", "v1,Zm9yZ2Vk "+valid)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/hook", strings.NewReader(body))
		req.Header = h
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("WrongVersionEntry", func(t *testing.T) {
		ts := time.Now().Unix()
		h := signedHeaders("msg_6", ts, body)
		h.Set("webhook-signature", "v2,"+strings.TrimPrefix(h.Get("webhook-signature"), "v1,"))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/hook", strings.NewReader(body))
		req.Header = h
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestParseWebhookSecret(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString([]byte("super-secret-key"))

	decoded, err := middleware.ParseWebhookSecret("whsec_" + raw)
	assert.NoError(t, err)
	assert.Equal(t, []byte("super-secret-key"), decoded)

	decoded, err = middleware.ParseWebhookSecret(raw)
	assert.NoError(t, err)
	assert.Equal(t, []byte("super-secret-key"), decoded)

	_, err = middleware.ParseWebhookSecret("whsec_%%%")
	assert.Error(t, err)
}
