package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignmentStatus type for assignment lifecycle
type AssignmentStatus string

const (
	StatusPending   AssignmentStatus = "pending"
	StatusCompleted AssignmentStatus = "completed" // Terminal; an assignment never reverts to pending
)

// CheckInWindow is a recurrence-relative submission window anchored to the
// calendar week of each instance's due date (e.g. "friday 10:00" through
// "monday 22:00"). It is advisory only and never blocks a submission.
type CheckInWindow struct {
	Enabled   bool   `bson:"enabled" json:"enabled"`
	StartDay  string `bson:"startDay,omitempty" json:"startDay,omitempty"`   // Lowercase weekday name, e.g. "friday"
	StartTime string `bson:"startTime,omitempty" json:"startTime,omitempty"` // "HH:MM", 24h
	EndDay    string `bson:"endDay,omitempty" json:"endDay,omitempty"`
	EndTime   string `bson:"endTime,omitempty" json:"endTime,omitempty"`
}

// Assignment is one scheduled instance of "client X owes form Y for week N".
// Week 1 is created eagerly by the scheduler; later weeks are materialized
// lazily the first time they are submitted.
type Assignment struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ExternalID    string              `bson:"externalId,omitempty" json:"externalId,omitempty"` // Secondary id used for cross-referencing
	ClientID      primitive.ObjectID  `bson:"clientId" json:"clientId"`
	CoachID       primitive.ObjectID  `bson:"coachId" json:"coachId"`
	FormID        primitive.ObjectID  `bson:"formId" json:"formId"`
	RecurringWeek int                 `bson:"recurringWeek" json:"recurringWeek"` // 1 = first instance
	TotalWeeks    int                 `bson:"totalWeeks,omitempty" json:"totalWeeks,omitempty"`
	DueDate       time.Time           `bson:"dueDate" json:"dueDate"`
	CheckInWindow CheckInWindow       `bson:"checkInWindow" json:"checkInWindow"`
	Status        AssignmentStatus    `bson:"status" json:"status"`
	ResponseID    *primitive.ObjectID `bson:"responseId,omitempty" json:"responseId,omitempty"` // Set only when completed
	Score         *int                `bson:"score,omitempty" json:"score,omitempty"`           // Copy of the response score, set only when completed
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// DueDateForWeek computes the due date of recurring week n from this
// assignment's own due date, normalized to end of day UTC so the
// (clientId, formId, week) slot has a stable due instant no matter when it
// gets materialized.
func (a *Assignment) DueDateForWeek(n int) time.Time {
	d := a.DueDate.UTC().AddDate(0, 0, 7*(n-a.RecurringWeek))
	return NormalizeDueDate(d)
}

// NormalizeDueDate pins an instant to 23:59:59 UTC of its calendar day.
func NormalizeDueDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
}
