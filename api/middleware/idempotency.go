package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/heetvora/chronomart-backend/api/responses"
	pkgerrors "github.com/heetvora/chronomart-backend/pkg/errors"
	"github.com/heetvora/chronomart-backend/pkg/logger"
	pkgredis "github.com/heetvora/chronomart-backend/pkg/redis"
)

const (
	defaultIdempotencyTTL  = 24 * time.Hour
	criticalIdempotencyTTL = 7 * 24 * time.Hour
)

type idempotencyRule struct {
	method string
	// Exactly one of path/prefix is set; prefix rules cover parameterized
	// route patterns like /api/orders/{orderId}/pay.
	path   string
	prefix string
	ttl    time.Duration
}

func (rule idempotencyRule) matches(method, pattern string) bool {
	if rule.method != method {
		return false
	}
	if rule.path != "" {
		return pattern == rule.path
	}
	return strings.HasPrefix(pattern, rule.prefix)
}

// Endpoints that move money keep their records for a week; the rest for a day.
var idempotencyRules = []idempotencyRule{
	{method: http.MethodPost, path: "/api/users/register", ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, path: "/api/coupons", ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, path: "/api/giftcards", ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, path: "/api/payments/gateway/initiate", ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, path: "/api/checkout", ttl: criticalIdempotencyTTL},
	{method: http.MethodPut, prefix: "/api/orders/", ttl: criticalIdempotencyTTL},
}

func routeTTL(method, pattern string) (time.Duration, bool) {
	if pattern == "" {
		return 0, false
	}
	for _, rule := range idempotencyRules {
		if rule.matches(method, pattern) {
			return rule.ttl, true
		}
	}
	return 0, false
}

// idempotencyRecord is the stored snapshot of the first response. The body
// is base64 so binary payloads survive the JSON round trip.
type idempotencyRecord struct {
	Status      int               `json:"status"`
	Body        string            `json:"body"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequestHash string            `json:"request_hash"`
}

// Idempotency replays the recorded response when a client retries a guarded
// endpoint with the same Idempotency-Key, and rejects the key when the body
// changed. Only routes listed in idempotencyRules are guarded.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ttl, guarded := routeTTL(r.Method, routePattern(r))
			if !guarded || store == nil {
				next.ServeHTTP(w, r)
				return
			}

			idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
			if idempotencyKey == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			requestHash := hashBody(body)
			key := store.IdempotencyKey(requestScope(r), idempotencyKey)

			replayed, err := tryReplay(r.Context(), store, w, key, requestHash)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if replayed {
				return
			}

			rec := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			persistRecord(r.Context(), store, logg, key, ttl, rec, requestHash)
		})
	}
}

// tryReplay writes the stored response when one exists for key. A stored
// record with a different request hash is a key reuse and comes back as a
// coded error.
func tryReplay(ctx context.Context, store pkgredis.IdempotencyStore, w http.ResponseWriter, key, requestHash string) (bool, error) {
	stored, err := store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency")
	}
	if stored == "" {
		return false, nil
	}

	var record idempotencyRecord
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record")
	}
	if record.RequestHash != requestHash {
		return false, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body")
	}

	if ct, ok := record.Headers["Content-Type"]; ok && ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(record.Status)
	if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
		_, _ = w.Write(decoded)
	}
	return true, nil
}

// persistRecord stores the captured response. Failures here are logged but
// never surfaced; the client already has its response.
func persistRecord(ctx context.Context, store pkgredis.IdempotencyStore, logg *logger.Logger, key string, ttl time.Duration, rec *responseCapture, requestHash string) {
	status := rec.status
	if status == 0 {
		status = http.StatusOK
	}
	record := idempotencyRecord{
		Status:      status,
		Body:        base64.StdEncoding.EncodeToString(rec.body.Bytes()),
		RequestHash: requestHash,
	}
	if ct := rec.Header().Get("Content-Type"); ct != "" {
		record.Headers = map[string]string{"Content-Type": ct}
	}

	payload, err := json.Marshal(record)
	if err != nil {
		logIdempotencyError(ctx, logg, "marshal idempotency record", err)
		return
	}
	if _, err := store.SetNX(ctx, key, string(payload), ttl); err != nil {
		logIdempotencyError(ctx, logg, "persist idempotency record", err)
	}
}

// requestScope keys records per user, method, and path so two users cannot
// collide on the same Idempotency-Key value.
func requestScope(r *http.Request) string {
	return strings.Join([]string{
		UserIDFromContext(r.Context()),
		r.Method,
		r.URL.Path,
	}, "|")
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func routePattern(r *http.Request) string {
	if r == nil {
		return ""
	}
	if ctx := chi.RouteContext(r.Context()); ctx != nil {
		if pattern := ctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func logIdempotencyError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil || err == nil {
		return
	}
	logg.Error(ctx, msg, err)
}
