package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyHeader = "Idempotency-Key"

	// idempotencyTTL is how long a finished response is replayed.
	idempotencyTTL = 24 * time.Hour

	// idempotencyPendingTTL bounds a reservation whose request never finished.
	idempotencyPendingTTL = time.Minute
)

const (
	recordPending  = "pending"
	recordComplete = "complete"
)

// idempotencyRecord is stored under each key. A pending record reserves the
// key while the first request with it is running.
type idempotencyRecord struct {
	State       string `json:"state"`
	RequestHash string `json:"request_hash"`
	StatusCode  int    `json:"status_code,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// responseWriter wraps gin.ResponseWriter to capture the response.
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware makes mutating requests that carry an Idempotency-Key
// safe to retry. The first request reserves the key; a duplicate that arrives
// while it runs gets 409, a finished one is replayed, and reusing the key with
// a different body gets 422. When Redis is unavailable requests run as if no
// key was sent.
func IdempotencyMiddleware(store redis.Cmdable) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut && c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		key := c.GetHeader(idempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unreadable request body"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		ctx := c.Request.Context()
		recordKey := "idempotency:" + c.Request.Method + ":" + c.FullPath() + ":" + key
		hash := requestHash(body)

		reserved, err := reserve(ctx, store, recordKey, hash)
		if err != nil {
			c.Next()
			return
		}
		if !reserved {
			replay(c, store, recordKey, hash)
			return
		}

		w := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = w

		c.Next()

		// The record must be settled even if the client has gone away.
		finalCtx := context.WithoutCancel(ctx)
		status := w.Status()

		// Conflicts and server errors are transient and must not be replayed.
		if status >= http.StatusInternalServerError || status == http.StatusConflict {
			_ = store.Del(finalCtx, recordKey).Err()
			return
		}

		_ = saveRecord(finalCtx, store, recordKey, &idempotencyRecord{
			State:       recordComplete,
			RequestHash: hash,
			StatusCode:  status,
			ContentType: w.Header().Get("Content-Type"),
			Body:        w.body.Bytes(),
		}, idempotencyTTL)
	}
}

// reserve claims key for the current request. It reports false if another
// request already holds or finished it.
func reserve(ctx context.Context, store redis.Cmdable, key, hash string) (bool, error) {
	data, err := json.Marshal(&idempotencyRecord{State: recordPending, RequestHash: hash})
	if err != nil {
		return false, err
	}
	return store.SetNX(ctx, key, data, idempotencyPendingTTL).Result()
}

// replay answers a request whose key is already taken.
func replay(c *gin.Context, store redis.Cmdable, key, hash string) {
	record, err := loadRecord(c.Request.Context(), store, key)
	switch {
	case errors.Is(err, redis.Nil):
		// The reservation expired between SetNX and Get.
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "request with this Idempotency-Key is in progress"})
	case err != nil:
		c.Next()
	case record.RequestHash != hash:
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "Idempotency-Key was used with a different request"})
	case record.State == recordPending:
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "request with this Idempotency-Key is in progress"})
	default:
		c.Data(record.StatusCode, record.ContentType, record.Body)
		c.Abort()
	}
}

func loadRecord(ctx context.Context, store redis.Cmdable, key string) (*idempotencyRecord, error) {
	data, err := store.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	var record idempotencyRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func saveRecord(ctx context.Context, store redis.Cmdable, key string, record *idempotencyRecord, ttl time.Duration) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return store.Set(ctx, key, data, ttl).Err()
}

func requestHash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
