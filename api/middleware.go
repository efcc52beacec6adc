package api

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/tripbooking/internal/cache"
	"github.com/gin-gonic/gin"
	"github.com/lithammer/shortuuid/v3"
	"github.com/sirupsen/logrus"
)

const (
	headerRequestID      = "X-Request-ID"
	headerIdempotencyKey = "Idempotency-Key"

	loggerKey  = "logger"
	guestIDKey = "guest_id"

	// A claim outlives a crashed request only this long.
	idempotencyClaimTTL = time.Minute
)

// TokenVerifier resolves a bearer token to the acting guest.
type TokenVerifier interface {
	GuestID(token string) (int64, error)
}

// ResponseStore keeps responses of completed writes for replay.
type ResponseStore interface {
	GetResponse(ctx context.Context, key string) (*cache.StoredResponse, error)
	ClaimResponse(ctx context.Context, key, bodyHash string, ttl time.Duration) (bool, error)
	SaveResponse(ctx context.Context, key string, resp cache.StoredResponse, ttl time.Duration) error
	ReleaseResponse(ctx context.Context, key string) error
}

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = "gen_" + shortuuid.New()
		}
		c.Header(headerRequestID, id)
		c.Set(headerRequestID, id)
		c.Next()
	}
}

func Logger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		entry := log.WithFields(logrus.Fields{
			"request_id": c.GetString(headerRequestID),
			"method":     c.Request.Method,
			"path":       c.FullPath(),
		})
		c.Set(loggerKey, entry)

		c.Next()

		entry = entry.WithFields(logrus.Fields{
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request completed")
			return
		}
		entry.Info("request completed")
	}
}

func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		requestLogger(c).WithField("panic", recovered).Error("handler panicked")
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: http.StatusText(http.StatusInternalServerError)})
	})
}

// Auth requires a valid bearer token and stores the guest id on the context.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "authentication credentials were not provided", Code: "UNAUTHORIZED"})
			return
		}

		guestID, err := verifier.GuestID(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "invalid token", Code: "UNAUTHORIZED"})
			return
		}
		c.Set(guestIDKey, guestID)
		c.Next()
	}
}

func guestID(c *gin.Context) int64 {
	return c.GetInt64(guestIDKey)
}

type recordingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response when a write is retried with the
// same Idempotency-Key and body. Keys are scoped to the guest and route.
// Reusing a key with another body is rejected with 422, and a retry that
// arrives while the first request still runs gets 409. Only successful
// responses are stored.
func Idempotency(store ResponseStore, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(headerIdempotencyKey)
		if key == "" || store == nil {
			c.Next()
			return
		}
		scoped := fmt.Sprintf("%d:%s:%s:%s", guestID(c), c.Request.Method, c.Request.URL.Path, key)
		log := requestLogger(c).WithField("idempotency_key", key)

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "failed to read request body", Code: codeInvalidRequest})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		hash := bodyHash(body)
		ctx := c.Request.Context()

		stored, err := store.GetResponse(ctx, scoped)
		if err != nil {
			log.WithError(err).Warn("idempotency lookup failed")
			c.Next()
			return
		}
		if stored != nil {
			replay(c, stored, hash)
			return
		}

		claimed, err := store.ClaimResponse(ctx, scoped, hash, idempotencyClaimTTL)
		if err != nil {
			log.WithError(err).Warn("idempotency claim failed")
			c.Next()
			return
		}
		if !claimed {
			abortInFlight(c)
			return
		}

		kept := false
		defer func() {
			if kept {
				return
			}
			if err := store.ReleaseResponse(context.WithoutCancel(ctx), scoped); err != nil {
				log.WithError(err).Warn("idempotency release failed")
			}
		}()

		w := &recordingWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		status := w.Status()
		if status < 200 || status >= 300 {
			return
		}
		// The write happened, so the claim stays even if saving fails.
		kept = true
		resp := cache.StoredResponse{
			BodyHash:    hash,
			Status:      status,
			ContentType: w.Header().Get("Content-Type"),
			Body:        w.body.Bytes(),
		}
		if err := store.SaveResponse(context.WithoutCancel(ctx), scoped, resp, ttl); err != nil {
			log.WithError(err).Warn("idempotency save failed")
		}
	}
}

func replay(c *gin.Context, stored *cache.StoredResponse, hash string) {
	switch {
	case stored.BodyHash != hash:
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorResponse{
			Error: "idempotency key was already used with a different request body",
			Code:  "IDEMPOTENCY_KEY_REUSED",
		})
	case stored.InFlight:
		abortInFlight(c)
	default:
		c.Header("Idempotent-Replayed", "true")
		c.Data(stored.Status, stored.ContentType, stored.Body)
		c.Abort()
	}
}

func abortInFlight(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusConflict, errorResponse{
		Error: "a request with this idempotency key is still being processed",
		Code:  "IDEMPOTENCY_KEY_IN_PROGRESS",
	})
}

func bodyHash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
