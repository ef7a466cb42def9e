package server

import (
	"net/http"
	"strings"

	"positionScope/internal/model"
)

// RoleResolver maps a request to the caller's entitlements via the
// configured API-key table. Unknown or absent keys resolve to VISITOR.
type RoleResolver struct {
	keys map[string]model.Role
}

// NewRoleResolver builds a resolver from an api-key -> role name map.
func NewRoleResolver(keys map[string]string) *RoleResolver {
	resolved := make(map[string]model.Role, len(keys))
	for key, role := range keys {
		switch model.Role(strings.ToUpper(role)) {
		case model.RolePro:
			resolved[key] = model.RolePro
		case model.RolePremium:
			resolved[key] = model.RolePremium
		default:
			resolved[key] = model.RoleVisitor
		}
	}
	return &RoleResolver{keys: resolved}
}

// Resolve reads the X-Api-Key header and returns the matching entitlements.
func (r *RoleResolver) Resolve(req *http.Request) model.Entitlements {
	if r == nil {
		return model.EntitlementsFor(model.RoleVisitor)
	}
	key := req.Header.Get("X-Api-Key")
	if key == "" {
		return model.EntitlementsFor(model.RoleVisitor)
	}
	role, ok := r.keys[key]
	if !ok {
		return model.EntitlementsFor(model.RoleVisitor)
	}
	return model.EntitlementsFor(role)
}
