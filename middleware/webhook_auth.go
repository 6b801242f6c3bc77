// api/middleware/webhook_auth.go

package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	atlas_errors "github.com/atlasgrc/atlas/api/errors"
	logger "github.com/atlasgrc/atlas/api/logging"
)

const (
	headerWebhookID        = "webhook-id"
	headerWebhookTimestamp = "webhook-timestamp"
	headerWebhookSignature = "webhook-signature"

	signatureVersion = "v1"
)

// ParseWebhookSecret strips the provider's "whsec_" prefix and decodes the
// base64 key material.
func ParseWebhookSecret(secret string) ([]byte, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(secret), "whsec_")
	return base64.StdEncoding.DecodeString(trimmed)
}

// WebhookAuth verifies the provider's delivery signature before any handler
// runs. Verification is fail-closed: missing headers, a timestamp outside
// the tolerance window, or a signature mismatch all reject with 400 and the
// body is never parsed. The signed content is "<id>.<timestamp>.<body>".
func WebhookAuth(secret []byte, tolerance time.Duration) gin.HandlerFunc {
	if tolerance <= 0 {
		tolerance = 5 * time.Minute
	}

	return func(c *gin.Context) {
		msgID := c.GetHeader(headerWebhookID)
		msgTimestamp := c.GetHeader(headerWebhookTimestamp)
		msgSignature := c.GetHeader(headerWebhookSignature)

		if msgID == "" || msgTimestamp == "" || msgSignature == "" {
			reject(c, atlas_errors.ErrMissingSignatureHeaders)
			return
		}

		ts, err := strconv.ParseInt(msgTimestamp, 10, 64)
		if err != nil {
			reject(c, atlas_errors.ErrMalformedTimestamp)
			return
		}
		now := time.Now()
		sent := time.Unix(ts, 0)
		if sent.Before(now.Add(-tolerance)) || sent.After(now.Add(tolerance)) {
			logger.Warn("Webhook timestamp outside tolerance",
				zap.String("webhookID", msgID),
				zap.Time("sent", sent))
			reject(c, atlas_errors.ErrStaleTimestamp)
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			reject(c, atlas_errors.ErrInvalidSignature)
			return
		}
		// Handlers downstream still need the body.
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		mac := hmac.New(sha256.New, secret)
		mac.Write([]byte(msgID))
		mac.Write([]byte("."))
		mac.Write([]byte(msgTimestamp))
		mac.Write([]byte("."))
		mac.Write(body)
		expected := mac.Sum(nil)

		// The signature header carries space-separated "<version>,<base64>"
		// entries; any matching v1 entry passes.
		for _, entry := range strings.Split(msgSignature, " ") {
			parts := strings.SplitN(entry, ",", 2)
			if len(parts) != 2 || parts[0] != signatureVersion {
				continue
			}
			candidate, err := base64.StdEncoding.DecodeString(parts[1])
			if err != nil {
				continue
			}
			if hmac.Equal(candidate, expected) {
				c.Next()
				return
			}
		}

		logger.Warn("Webhook signature mismatch", zap.String("webhookID", msgID))
		reject(c, atlas_errors.ErrInvalidSignature)
	}
}

func reject(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	c.Abort()
}
