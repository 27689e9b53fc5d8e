package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/heetvora/chronomart-backend/pkg/errors"
)

func queryError(message, field string, extra map[string]any) error {
	details := map[string]any{"field": field}
	for k, v := range extra {
		details[k] = v
	}
	return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(details)
}

// ParseQueryInt reads an integer query parameter, applying defaultVal when
// the parameter is absent and rejecting values outside [min, max].
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, queryError("query parameter must be numeric", key, nil)
	}
	if value < min || value > max {
		return 0, queryError("query parameter out of range", key, map[string]any{"min": min, "max": max})
	}
	return value, nil
}

// ParsePathUUID parses a URL path segment as a UUID.
func ParsePathUUID(value, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, queryError("path parameter must be a uuid", field, nil)
	}
	return id, nil
}
