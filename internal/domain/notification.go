package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType type for coach-facing notifications
type NotificationType string

const (
	NotificationCheckInCompleted NotificationType = "checkin_completed"
)

// Notification is a coach-facing inbox entry created when a client completes
// a check-in.
type Notification struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"` // Recipient (the coach)
	ClientID     primitive.ObjectID `bson:"clientId" json:"clientId"`
	AssignmentID primitive.ObjectID `bson:"assignmentId" json:"assignmentId"`
	ResponseID   primitive.ObjectID `bson:"responseId" json:"responseId"`
	Type         NotificationType   `bson:"type" json:"type"`
	Message      string             `bson:"message" json:"message"`
	Score        int                `bson:"score" json:"score"`
	Read         bool               `bson:"read" json:"read"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
