package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuestionType enumerates the supported check-in question kinds.
type QuestionType string

const (
	QuestionScale       QuestionType = "scale"
	QuestionBoolean     QuestionType = "boolean"
	QuestionSelect      QuestionType = "select"
	QuestionMultiSelect QuestionType = "multiselect"
	QuestionNumber      QuestionType = "number"
	QuestionText        QuestionType = "text"
	QuestionTextarea    QuestionType = "textarea"
	QuestionDate        QuestionType = "date"
	QuestionTime        QuestionType = "time"
)

// Scoreable reports whether answers of this type contribute to the aggregate
// score. Free-form numeric and text answers never do, regardless of any
// weight the form carries for them.
func (t QuestionType) Scoreable() bool {
	switch t {
	case QuestionNumber, QuestionText, QuestionTextarea:
		return false
	}
	return true
}

// QuestionResponse is a single answered (or skipped) question inside a
// submission. Answer keeps whatever JSON value the client sent.
type QuestionResponse struct {
	QuestionID string       `bson:"questionId" json:"questionId"`
	Type       QuestionType `bson:"type" json:"type"`
	Answer     any          `bson:"answer" json:"answer"`
	Weight     float64      `bson:"weight" json:"weight"`
	RawScore   float64      `bson:"rawScore" json:"score"` // 0-10 per-question score
}

// Answered reports whether this question counts as answered: nil never does,
// a string only when its trimmed form is non-empty. Zero and false count.
func (q QuestionResponse) Answered() bool {
	if q.Answer == nil {
		return false
	}
	if s, ok := q.Answer.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// Response is the immutable record of one completed submission. It is created
// exactly once per assignment; only AssignmentID is back-filled afterwards
// when a virtual week materializes.
type Response struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ExternalID        string             `bson:"externalId,omitempty" json:"externalId,omitempty"`
	AssignmentID      primitive.ObjectID `bson:"assignmentId" json:"assignmentId"`
	ClientID          primitive.ObjectID `bson:"clientId" json:"clientId"`
	FormID            primitive.ObjectID `bson:"formId" json:"formId"`
	Responses         []QuestionResponse `bson:"responses" json:"responses"`
	Score             int                `bson:"score" json:"score"`
	TotalQuestions    int                `bson:"totalQuestions" json:"totalQuestions"`
	AnsweredQuestions int                `bson:"answeredQuestions" json:"answeredQuestions"`
	SubmittedAt       time.Time          `bson:"submittedAt" json:"submittedAt"`
	Status            string             `bson:"status" json:"status"` // Always "completed"
}
