package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/aeroway/aeroway-api/internal/errors"
)

// parseLimit reads ?limit. Absent means def; anything outside 1..max is
// rejected.
func parseLimit(r *http.Request, def, max int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > max {
		return 0, apperrors.InvalidInput("limit", fmt.Sprintf("must be an integer between 1 and %d", max))
	}
	return limit, nil
}

// queryString returns a trimmed query parameter, or nil when it is empty.
func queryString(r *http.Request, name string) *string {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil
	}
	return &v
}
