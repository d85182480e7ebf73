package service

import "github.com/jrmmllrs/test-app-backend/internal/model"

// Principal is the authenticated caller as seen by services, extracted
// from JWT claims by the middleware.
type Principal struct {
	ID    int
	Email string
	Role  model.Role
}

// CanManage reports whether the principal may administer a resource owned
// by ownerID. Admins manage everything; everyone else only their own.
func (p Principal) CanManage(ownerID int) bool {
	return p.Role == model.RoleAdmin || p.ID == ownerID
}
