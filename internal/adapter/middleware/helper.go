package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

func bodyHash(b []byte) string { s := sha256.Sum256(b); return hex.EncodeToString(s[:]) }

func nowUTC() time.Time { return time.Now().UTC() }

func buildKey(method, path, requesterID, requestID string) string {
	return "idemp:ax:" + strings.ToLower(method) + ":" + path + ":" + requesterID + ":" + requestID
}

var (
	reUUID  = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[1-5][a-f0-9]{3}-[89ab][a-f0-9]{3}-[a-f0-9]{12}$`)
	reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)
)

// validReqID accepts the two id shapes clients send: RFC 4122 UUIDs and the
// 32-char hex ids this service issues.
func validReqID(id string) bool {
	id = strings.ToLower(strings.TrimSpace(id))
	return reUUID.MatchString(id) || reHex32.MatchString(id)
}

// parseAxRequestAt accepts epoch seconds, epoch milliseconds, or
// RFC3339/RFC3339Nano with an explicit zone offset. Naive local timestamps
// are rejected; without a zone the skew check is meaningless.
func parseAxRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing Ax-Request-At")
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errors.New("Ax-Request-At must be epoch (s/ms) or RFC3339 with timezone")
}

// acquireSlot claims the key for the first attempt. SetNX makes the claim
// atomic across concurrent retries of the same request.
func acquireSlot(ctx context.Context, rdb *redis.Client, key string, rec replayRecord) (bool, error) {
	payload, _ := json.Marshal(rec)
	return rdb.SetNX(ctx, key, payload, slotTTL).Result()
}

func readRecord(ctx context.Context, rdb *redis.Client, key string) (replayRecord, error) {
	var rec replayRecord
	v, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		return rec, err
	}
	_ = json.Unmarshal(v, &rec)
	return rec, nil
}

func writeRecord(ctx context.Context, rdb *redis.Client, key string, rec replayRecord, ttl time.Duration) error {
	payload, _ := json.Marshal(rec)
	return rdb.Set(ctx, key, payload, ttl).Err()
}
