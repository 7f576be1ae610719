// file: middleware/role_test.go
//go:build unit
// +build unit

package middleware

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go-hackhub/models"
)

func TestRoleRequired(t *testing.T) {
	router := setupAuthTestRouter()
	org := login(t, router, models.RoleOrganization)
	client := login(t, router, models.RoleClient)

	tests := []struct {
		name   string
		path   string
		cookie bool
		role   string
		want   int
	}{
		{"org route as organization", "/org", true, "org", http.StatusOK},
		{"org route as client", "/org", true, "client", http.StatusUnauthorized},
		{"client route as client", "/client", true, "client", http.StatusOK},
		{"client route as organization", "/client", true, "org", http.StatusUnauthorized},
		{"org route without session", "/org", false, "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cookie := client
			switch {
			case !tt.cookie:
				cookie = nil
			case tt.role == "org":
				cookie = org
			}

			w := get(router, tt.path, cookie)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Contains(t, w.Body.String(), `"error"`)
			}
		})
	}
}
