package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Role is the authorization role of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// MaxVisitedProperties caps User.VisitedProperties; older entries are evicted first.
const MaxVisitedProperties = 20

// User represents an account. Field names match the documents written by the
// previous backend so existing collections can be reused.
type User struct {
	ID                bson.ObjectID   `bson:"_id,omitempty"`
	Name              string          `bson:"name"`
	Email             string          `bson:"email"`
	Password          string          `bson:"password,omitempty"`
	Phone             string          `bson:"phone,omitempty"`
	Role              Role            `bson:"role"`
	ProfilePicture    string          `bson:"profilePicture,omitempty"`
	SavedProperties   []bson.ObjectID `bson:"savedProperties"`
	VisitedProperties []bson.ObjectID `bson:"visitedProperties"`
	CreatedAt         time.Time       `bson:"createdAt"`
}

// Contact is the public projection of a user embedded in property responses.
type Contact struct {
	ID    bson.ObjectID `bson:"_id"             json:"_id"`
	Name  string        `bson:"name"            json:"name"`
	Email string        `bson:"email"           json:"email"`
	Phone string        `bson:"phone,omitempty" json:"phone,omitempty"`
}
