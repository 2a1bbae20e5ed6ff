package server

import (
	"Tcp_postgres_redis_library_system/models"
	"Tcp_postgres_redis_library_system/protocol"
)

// Policy is the static role requirement of an action.
type Policy int

const (
	// Public actions (ping, login) skip authentication entirely.
	Public Policy = iota
	// Authenticated actions accept any valid session.
	Authenticated
	// SelfOrAdmin actions accept admins, or the owner when the request's
	// data.user_id matches the caller.
	SelfOrAdmin
	// AdminOnly actions require the admin role.
	AdminOnly
)

// authorize applies the policy to a verified identity. An empty return
// means allow; otherwise it is the denial message for the envelope.
func authorize(policy Policy, id Identity, req *protocol.Request) string {
	switch policy {
	case Public, Authenticated:
		return ""
	case AdminOnly:
		if id.Role != models.RoleAdmin {
			return "Admin privileges required"
		}
		return ""
	case SelfOrAdmin:
		if id.Role == models.RoleAdmin {
			return ""
		}
		var target struct {
			UserID uint `json:"user_id"`
		}
		if err := req.Bind(&target); err != nil || target.UserID != id.UserID {
			return "You can only access your own records"
		}
		return ""
	default:
		return "Admin privileges required"
	}
}
