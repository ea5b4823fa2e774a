// Package policy decides which listing operations a requester may perform.
package policy

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vidyaa00/REMS/services/estate-service/internal/model"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Requester is the authenticated caller. A nil *Requester is anonymous.
type Requester struct {
	ID   bson.ObjectID
	Role model.Role
}

// Can reports whether r may perform action on p. Modifying a listing is
// reserved to its agent and to admins; p is ignored for create and read.
func Can(action Action, r *Requester, p *model.Property) bool {
	switch action {
	case ActionRead:
		return true
	case ActionCreate:
		return r != nil
	case ActionUpdate, ActionDelete:
		if r == nil || p == nil {
			return false
		}
		return r.Role == model.RoleAdmin || r.ID == p.Agent
	default:
		return false
	}
}
