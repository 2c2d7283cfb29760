// Package permissions is the single place where request authorization is
// decided. Every rule is a pure function of the HTTP method, the caller and
// (for object-level checks) the resource owner, so the whole policy is
// table-testable without a router or a database.
package permissions

import (
	"net/http"

	"reviewdb/internal/http-api/models"
)

// Actor is the authenticated caller as seen by the evaluator. A zero Actor
// (empty ID) means the request is anonymous.
type Actor struct {
	ID         string
	Username   string
	Role       models.Role
	Privileged bool // admin role or staff/superuser escalation
}

// Authenticated reports whether the actor carries an identity.
func (a Actor) Authenticated() bool {
	return a.ID != ""
}

// ReadOnly reports whether the method cannot mutate state.
func ReadOnly(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// CanMutateCatalog decides writes to categories, genres and titles:
// privileged callers only. Reads are always allowed and never reach this
// check.
func CanMutateCatalog(actor Actor) bool {
	return actor.Authenticated() && actor.Privileged
}

// CanMutateUserContent decides PATCH/DELETE on a review or comment: the
// author may always edit their own, moderators and admins override
// uniformly (including content authored by other moderators).
func CanMutateUserContent(actor Actor, authorID string) bool {
	if !actor.Authenticated() {
		return false
	}
	if actor.ID == authorID {
		return true
	}
	return actor.Role.IsModerator() || actor.Role.IsAdmin() || actor.Privileged
}

// CanManageUsers decides access to the user administration endpoints.
// Self-profile access goes through /users/me and is not gated here.
func CanManageUsers(actor Actor) bool {
	return actor.Authenticated() && actor.Privileged
}
