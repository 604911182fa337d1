package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func paramsFor(t *testing.T, query string) Params {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/"+query, nil)
	return Parse(c)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "", 1, DefaultLimit},
		{"explicit", "?page=3&limit=50", 3, 50},
		{"per_page alias", "?per_page=40", 1, 40},
		{"limit wins over alias", "?limit=10&per_page=40", 1, 10},
		{"clamped to max", "?limit=999", 1, MaxLimit},
		{"negative page", "?page=-2", 1, DefaultLimit},
		{"zero limit", "?limit=0", 1, DefaultLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := paramsFor(t, tt.query)
			if p.Page != tt.wantPage || p.Limit != tt.wantLimit {
				t.Errorf("Parse(%q) = page %d limit %d, want %d/%d",
					tt.query, p.Page, p.Limit, tt.wantPage, tt.wantLimit)
			}
			if p.Offset != (p.Page-1)*p.Limit {
				t.Errorf("offset %d inconsistent with page %d limit %d", p.Offset, p.Page, p.Limit)
			}
		})
	}
}
