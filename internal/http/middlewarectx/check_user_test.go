package middlewarectx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/yamdb/internal/http/middlewarectx"
	"github.com/magabrotheeeer/yamdb/internal/models"
)

func TestAuthorize(t *testing.T) {
	admin := &models.User{ID: 1, Username: "root", Role: models.RoleAdmin}
	superuser := &models.User{ID: 2, Username: "su", Role: models.RoleUser, IsSuperuser: true}
	user := &models.User{ID: 3, Username: "bob", Role: models.RoleUser}

	tests := []struct {
		name     string
		rule     middlewarectx.Rule
		actor    *models.User
		wantCode int
	}{
		{name: "admin only, anonymous", rule: middlewarectx.AdminOnly, wantCode: http.StatusUnauthorized},
		{name: "admin only, user", rule: middlewarectx.AdminOnly, actor: user, wantCode: http.StatusForbidden},
		{name: "admin only, admin", rule: middlewarectx.AdminOnly, actor: admin, wantCode: http.StatusNoContent},
		{name: "admin only, superuser", rule: middlewarectx.AdminOnly, actor: superuser, wantCode: http.StatusNoContent},
		{name: "authenticated, anonymous", rule: middlewarectx.Authenticated, wantCode: http.StatusUnauthorized},
		{name: "authenticated, user", rule: middlewarectx.Authenticated, actor: user, wantCode: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			})
			h := middlewarectx.Authorize(newNoopLogger(), tt.rule)(next)

			req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
			if tt.actor != nil {
				req = req.WithContext(middlewarectx.WithUser(req.Context(), tt.actor))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
