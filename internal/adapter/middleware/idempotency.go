package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	HeaderRequestID = "Ax-Request-Id"
	// HeaderReplayed is set on responses served from the replay store.
	HeaderReplayed = "Ax-Idempotent-Replay"

	// upper bound for one submission; a crashed attempt frees its key after this
	submitLockTTL = 60 * time.Second
	storeTimeout  = 2 * time.Second
)

// captureWriter tees the response so it can be stored for replay.
type captureWriter struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (w *captureWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the stored response when a client retries a
// submission with the same Ax-Request-Id. The key is scoped to route and
// authenticated user, so it must be chained after JWTAuth. Requests without
// the header are passed through and evaluated every time; report age is
// never checked here.
func IdempotencyMiddleware(rdb *redis.Client, ttl time.Duration) echo.MiddlewareFunc {
	store := &replayStore{rdb: rdb, ttl: ttl, lockTTL: submitLockTTL}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			reqID := strings.TrimSpace(req.Header.Get(HeaderRequestID))
			if reqID == "" || !mutating(req.Method) {
				return next(c)
			}
			if !validRequestID(reqID) {
				return c.JSON(http.StatusBadRequest, map[string]string{
					"error": "Ax-Request-Id must be 32-char lowercase hex or a lowercase UUID",
					"code":  "bad_request",
				})
			}
			ident, ok := IdentityFrom(c)
			if !ok {
				return unauthorized(c, "authentication required")
			}

			body, err := io.ReadAll(req.Body)
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "unreadable body", "code": "bad_request"})
			}
			req.Body = io.NopCloser(bytes.NewReader(body))
			digest := bodyDigest(body)
			key := replayKey(req.Method, c.Path(), ident.UserID, reqID)

			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			defer cancel()
			claimed, err := store.reserve(ctx, key, digest)
			if err != nil {
				log.Error().Err(err).Str("key", key).Msg("idempotency: reserve failed")
				return storeUnavailable(c)
			}
			if !claimed {
				return replay(ctx, c, store, key, digest)
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = cw
			if err := next(c); err != nil {
				c.Error(err)
			}
			c.Response().Writer = cw.ResponseWriter

			// the client may be gone; the outcome is still recorded
			done, cancelDone := context.WithTimeout(context.WithoutCancel(req.Context()), storeTimeout)
			defer cancelDone()

			// 5xx is retryable: free the key instead of pinning the failure
			if cw.status >= http.StatusInternalServerError {
				if err := store.release(done, key); err != nil {
					log.Warn().Err(err).Str("key", key).Msg("idempotency: release failed")
				}
				return nil
			}
			if err := store.complete(done, key, replayEntry{Status: cw.status, Body: cw.body.Bytes(), BodySHA256: digest}); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("idempotency: failed to store response")
			}
			return nil
		}
	}
}

func replay(ctx context.Context, c echo.Context, store *replayStore, key, digest string) error {
	cur, err := store.load(ctx, key)
	switch {
	case errors.Is(err, errReplayMissing):
		// expired between reserve and load
		return inProgress(c)
	case errors.Is(err, errReplayCorrupt):
		log.Warn().Err(err).Str("key", key).Msg("idempotency: dropping undecodable entry")
		if err := store.release(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("idempotency: release failed")
		}
		return storeUnavailable(c)
	case err != nil:
		log.Error().Err(err).Str("key", key).Msg("idempotency: load failed")
		return storeUnavailable(c)
	}

	if cur.BodySHA256 != digest {
		return c.JSON(http.StatusConflict, map[string]string{
			"error": "Ax-Request-Id reused with a different body",
			"code":  "idempotency_key_reused",
		})
	}
	if !cur.replayable() {
		return inProgress(c)
	}
	c.Response().Header().Set(HeaderReplayed, "true")
	return c.Blob(cur.Status, echo.MIMEApplicationJSON, cur.Body)
}

func mutating(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

func inProgress(c echo.Context) error {
	return c.JSON(http.StatusConflict, map[string]string{"error": "request is already in progress", "code": "request_in_progress"})
}

func storeUnavailable(c echo.Context) error {
	return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "idempotency store unavailable", "code": "storage_unavailable"})
}
