package permissions

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"reviewdb/internal/http-api/models"
)

func TestReadOnly(t *testing.T) {
	for _, m := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		assert.True(t, ReadOnly(m), m)
	}
	for _, m := range []string{http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete} {
		assert.False(t, ReadOnly(m), m)
	}
}

func TestCanMutateCatalog(t *testing.T) {
	tests := []struct {
		name  string
		actor Actor
		want  bool
	}{
		{"anonymous", Actor{}, false},
		{"plain user", Actor{ID: "u1", Role: models.RoleUser}, false},
		{"moderator", Actor{ID: "u2", Role: models.RoleModerator}, false},
		{"admin", Actor{ID: "u3", Role: models.RoleAdmin, Privileged: true}, true},
		{"staff user", Actor{ID: "u4", Role: models.RoleUser, Privileged: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanMutateCatalog(tt.actor))
		})
	}
}

func TestCanMutateUserContent(t *testing.T) {
	const authorID = "author-1"

	tests := []struct {
		name  string
		actor Actor
		want  bool
	}{
		{"anonymous", Actor{}, false},
		{"author edits own", Actor{ID: authorID, Role: models.RoleUser}, true},
		{"stranger denied", Actor{ID: "u9", Role: models.RoleUser}, false},
		{"moderator overrides", Actor{ID: "m1", Role: models.RoleModerator}, true},
		{"admin overrides", Actor{ID: "a1", Role: models.RoleAdmin, Privileged: true}, true},
		{"staff overrides", Actor{ID: "s1", Role: models.RoleUser, Privileged: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanMutateUserContent(tt.actor, authorID))
		})
	}

	// a moderator may delete another moderator's review
	other := Actor{ID: "m2", Role: models.RoleModerator}
	assert.True(t, CanMutateUserContent(other, "m1"))
}

func TestCanManageUsers(t *testing.T) {
	assert.False(t, CanManageUsers(Actor{}))
	assert.False(t, CanManageUsers(Actor{ID: "u1", Role: models.RoleUser}))
	assert.False(t, CanManageUsers(Actor{ID: "m1", Role: models.RoleModerator}))
	assert.True(t, CanManageUsers(Actor{ID: "a1", Role: models.RoleAdmin, Privileged: true}))
	assert.True(t, CanManageUsers(Actor{ID: "s1", Role: models.RoleUser, Privileged: true}))
}

func TestRolePredicates(t *testing.T) {
	assert.True(t, models.RoleUser.IsUser())
	assert.True(t, models.RoleModerator.IsModerator())
	assert.True(t, models.RoleAdmin.IsAdmin())
	assert.False(t, models.RoleUser.IsAdmin())
	assert.False(t, models.Role("owner").Valid())

	u := models.User{Role: models.RoleUser}
	assert.False(t, u.IsPrivileged())
	u.IsStaff = true
	assert.True(t, u.IsPrivileged())
	u = models.User{Role: models.RoleAdmin}
	assert.True(t, u.IsPrivileged())
}
