package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Goal tracks a client target driven by check-in scores, e.g. "average 80
// over the program". Progress is recomputed whenever a new check-in lands.
type Goal struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID      primitive.ObjectID `bson:"clientId" json:"clientId"`
	CoachID       primitive.ObjectID `bson:"coachId" json:"coachId"`
	Name          string             `bson:"name" json:"name"`
	TargetScore   int                `bson:"targetScore" json:"targetScore"`
	LatestScore   int                `bson:"latestScore" json:"latestScore"`
	CheckInsCount int                `bson:"checkInsCount" json:"checkInsCount"`
	Progress      int                `bson:"progress" json:"progress"` // Percent toward target, 0-100
	IsActive      bool               `bson:"isActive" json:"isActive"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
