package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPagination(t *testing.T) {
	cases := []struct {
		name      string
		query     string
		wantSkip  int
		wantLimit int
	}{
		{"defaults", "", 0, 100},
		{"explicit", "skip=20&limit=50", 20, 50},
		{"limit clamped high", "limit=9999", 0, 500},
		{"limit clamped low", "limit=0", 0, 1},
		{"negative skip ignored", "skip=-5", 0, 100},
		{"garbage ignored", "skip=abc&limit=xyz", 0, 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/admin/users?"+tc.query, nil)
			skip, limit := Pagination(req)
			assert.Equal(t, tc.wantSkip, skip)
			assert.Equal(t, tc.wantLimit, limit)
		})
	}
}

func TestBoolParam(t *testing.T) {
	req := httptest.NewRequest("GET", "/?load_enrollments=true&bad=maybe", nil)
	assert.True(t, BoolParam(req, "load_enrollments"))
	assert.False(t, BoolParam(req, "bad"))
	assert.False(t, BoolParam(req, "missing"))
}
