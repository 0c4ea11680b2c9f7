package middleware

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const (
	// The in-progress slot expires on its own if the handler dies mid-flight,
	// so a crashed request does not wedge the key forever.
	slotTTL = 60 * time.Second
	// Allowed client/server clock skew for Ax-Request-At (in UTC).
	maxClockSkew = 10 * time.Minute
)

// replayRecord is what we persist in redis under the idempotency key. While
// the first attempt is still running only InProgress and BodySHA256 are set;
// once the handler finishes, Status and Body hold the response to replay.
type replayRecord struct {
	InProgress  bool      `json:"in_progress"`
	Status      int       `json:"status"`
	Body        []byte    `json:"body"`
	BodySHA256  string    `json:"body_sha256"`
	RequestID   string    `json:"request_id"`
	RequestAtMS int64     `json:"request_at_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// responseTap copies the response into a buffer while still writing it out,
// so the final body can be stored for replay.
type responseTap struct {
	w      http.ResponseWriter
	buf    *bytes.Buffer
	status int
}

func (r *responseTap) Header() http.Header { return r.w.Header() }
func (r *responseTap) Write(b []byte) (int, error) {
	if r.buf != nil {
		r.buf.Write(b)
	}
	return r.w.Write(b)
}
func (r *responseTap) WriteHeader(statusCode int) {
	r.status = statusCode
	r.w.WriteHeader(statusCode)
}

// requestMeta is the validated triple carried by the Ax-* headers.
type requestMeta struct {
	requestID   string
	requesterID string
	requestAt   time.Time
}

func extractMeta(req *http.Request) (requestMeta, string) {
	var m requestMeta

	m.requestID = strings.TrimSpace(req.Header.Get("Ax-Request-Id"))
	if m.requestID == "" {
		return m, "missing Ax-Request-Id"
	}
	if !validReqID(m.requestID) {
		return m, "invalid Ax-Request-Id format"
	}

	at, err := parseAxRequestAt(req.Header.Get("Ax-Request-At"))
	if err != nil {
		return m, err.Error()
	}
	now := nowUTC()
	if at.Before(now.Add(-maxClockSkew)) || at.After(now.Add(maxClockSkew)) {
		return m, "Ax-Request-At too skewed"
	}
	m.requestAt = at

	m.requesterID = strings.TrimSpace(req.Header.Get("Ax-Requester-Id"))
	if m.requesterID == "" {
		return m, "missing Ax-Requester-Id"
	}
	if !reHex32.MatchString(m.requesterID) {
		return m, "invalid Ax-Requester-Id"
	}
	return m, ""
}

// IdempotencyMiddleware keys each mutating request on
// method + route + requester id + request id. Approval decisions, pickups and
// conversions get retried by flaky campus networks; replaying the recorded
// response keeps them single-shot.
// Ax-Request-At must be epoch (seconds or ms) or RFC3339/RFC3339Nano with an
// explicit timezone.
func IdempotencyMiddleware(rdb *redis.Client, ttl time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			// Reads are naturally idempotent.
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			meta, problem := extractMeta(req)
			if problem != "" {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": problem})
			}

			// Buffer the body so the handler can still read it, and hash it
			// to detect the same request id being reused with a new payload.
			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(req.Body)
			}
			req.Body = io.NopCloser(bytes.NewBuffer(body))
			bhash := bodyHash(body)

			key := buildKey(req.Method, c.Path(), meta.requesterID, meta.requestID)
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()

			claimed, err := acquireSlot(ctx, rdb, key, replayRecord{
				InProgress:  true,
				BodySHA256:  bhash,
				RequestID:   meta.requestID,
				RequestAtMS: meta.requestAt.UnixMilli(),
				CreatedAt:   nowUTC(),
			})
			if err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "idempotency store unavailable"})
			}
			if !claimed {
				prior, errLoad := readRecord(ctx, rdb, key)
				if errLoad != nil {
					log.Printf("idempotency: read %s failed: %s", key, errLoad.Error())
				}
				if prior.BodySHA256 != "" && prior.BodySHA256 != bhash {
					return c.JSON(http.StatusConflict, map[string]string{"error": "Ax-Request-Id reused with different body"})
				}
				if !prior.InProgress && prior.Status != 0 && len(prior.Body) > 0 {
					return c.Blob(prior.Status, echo.MIMEApplicationJSON, prior.Body)
				}
				return c.JSON(http.StatusConflict, map[string]string{"error": "request is already in progress"})
			}

			tap := &responseTap{w: c.Response().Writer, buf: &bytes.Buffer{}, status: http.StatusOK}
			c.Response().Writer = tap
			if err := next(c); err != nil {
				c.Error(err)
			}

			// Store under a fresh context: the request context may already be
			// done, but the record must land or retries will 409.
			_ = writeRecord(context.Background(), rdb, key, replayRecord{
				InProgress:  false,
				Status:      tap.status,
				Body:        tap.buf.Bytes(),
				BodySHA256:  bhash,
				RequestID:   meta.requestID,
				RequestAtMS: meta.requestAt.UnixMilli(),
				CreatedAt:   nowUTC(),
			}, ttl)
			return nil
		}
	}
}
