package utils

import (
	"net/http"
	"strconv"
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

// Pagination reads skip/limit query params, clamping them to skip>=0 and
// 1<=limit<=500 (default 100).
func Pagination(r *http.Request) (skip, limit int) {
	skip = 0
	limit = defaultLimit

	if v := r.URL.Query().Get("skip"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			skip = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			switch {
			case n < 1:
				limit = 1
			case n > maxLimit:
				limit = maxLimit
			default:
				limit = n
			}
		}
	}

	return skip, limit
}

// BoolParam reads a boolean query param, false when absent or malformed.
func BoolParam(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}
