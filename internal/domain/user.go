package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type for user roles
type Role string

const (
	RoleCoach  Role = "coach"
	RoleClient Role = "client"
)

// User holds the slice of account data the submission engine needs: who a
// coach or client is and where to reach them. Account management itself lives
// outside this service.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Role      Role               `bson:"role" json:"role"`
	CoachID   primitive.ObjectID `bson:"coachId,omitempty" json:"coachId,omitempty"` // Set for clients
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
