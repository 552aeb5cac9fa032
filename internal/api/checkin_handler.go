package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"coachsync/wellness-app/internal/checkin"
	"coachsync/wellness-app/internal/domain"
	"coachsync/wellness-app/internal/service"

	"github.com/gin-gonic/gin"
)

type CheckInHandler struct {
	resolverService   service.ResolverService
	submissionService service.SubmissionService
}

func NewCheckInHandler(resolverService service.ResolverService, submissionService service.SubmissionService) *CheckInHandler {
	return &CheckInHandler{
		resolverService:   resolverService,
		submissionService: submissionService,
	}
}

// --- DTOs ---

type QuestionResponseRequest struct {
	QuestionID string  `json:"questionId" binding:"required"`
	Type       string  `json:"type" binding:"required"`
	Answer     any     `json:"answer"`
	Weight     float64 `json:"weight" binding:"min=0"`
	Score      float64 `json:"score"`
}

type SubmitCheckInRequest struct {
	Responses []QuestionResponseRequest `json:"responses" binding:"required,min=1,dive"`
	Score     *int                      `json:"score"` // Optional caller-computed aggregate
}

type SubmitCheckInResponse struct {
	Success          bool   `json:"success"`
	Message          string `json:"message,omitempty"`
	AssignmentID     string `json:"assignmentId,omitempty"`
	ResponseID       string `json:"responseId,omitempty"`
	Score            int    `json:"score"`
	WindowStatus     string `json:"windowStatus,omitempty"`
	AlreadyCompleted bool   `json:"alreadyCompleted,omitempty"`
}

type CheckInContextResponse struct {
	Reference     string               `json:"reference"`
	AssignmentID  string               `json:"assignmentId,omitempty"` // Empty for virtual weeks
	ClientID      string               `json:"clientId"`
	CoachID       string               `json:"coachId"`
	FormID        string               `json:"formId"`
	DueDate       time.Time            `json:"dueDate"`
	Status        string               `json:"status"`
	IsVirtual     bool                 `json:"isVirtual"`
	WindowStatus  string               `json:"windowStatus"`
	CheckInWindow domain.CheckInWindow `json:"checkInWindow"`
	ResponseID    string               `json:"responseId,omitempty"`
	Score         *int                 `json:"score,omitempty"`
}

// GetCheckIn resolves a reference (real or virtual week) and returns its
// context with the current advisory window status. Clients call this before
// rendering a check-in form.
func (h *CheckInHandler) GetCheckIn(c *gin.Context) {
	reference := c.Param("reference")

	actx, err := h.resolverService.Resolve(c.Request.Context(), reference)
	if err != nil {
		h.mapResolveError(c, reference, err)
		return
	}

	resp := CheckInContextResponse{
		Reference:     reference,
		ClientID:      actx.ClientID().Hex(),
		CoachID:       actx.CoachID().Hex(),
		FormID:        actx.FormID().Hex(),
		DueDate:       actx.DueDate,
		Status:        actx.Status(),
		IsVirtual:     actx.IsVirtual,
		WindowStatus:  string(checkin.Classify(actx.Window(), actx.DueDate, time.Now().UTC())),
		CheckInWindow: actx.Window(),
	}
	if !actx.IsVirtual {
		resp.AssignmentID = actx.Assignment.ID.Hex()
		if actx.Assignment.ResponseID != nil {
			resp.ResponseID = actx.Assignment.ResponseID.Hex()
		}
		resp.Score = actx.Assignment.Score
	}
	c.JSON(http.StatusOK, resp)
}

// SubmitCheckIn commits a submission against a reference, exactly once per
// assignment instance. Re-submitting a completed check-in returns the
// original result with alreadyCompleted set.
func (h *CheckInHandler) SubmitCheckIn(c *gin.Context) {
	reference := c.Param("reference")

	var req SubmitCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	payload := service.SubmissionPayload{
		Responses: make([]domain.QuestionResponse, 0, len(req.Responses)),
		Score:     req.Score,
	}
	for _, r := range req.Responses {
		payload.Responses = append(payload.Responses, domain.QuestionResponse{
			QuestionID: r.QuestionID,
			Type:       domain.QuestionType(r.Type),
			Answer:     r.Answer,
			Weight:     r.Weight,
			RawScore:   r.Score,
		})
	}

	result, err := h.submissionService.Submit(c.Request.Context(), reference, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssignmentNotFound), errors.Is(err, service.ErrInvalidReference):
			h.mapResolveError(c, reference, err)
		case errors.Is(err, service.ErrEmptySubmission):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrSubmissionConflict):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to submit check-in.")
		}
		return
	}

	resp := SubmitCheckInResponse{
		Success:          result.Success,
		AssignmentID:     result.AssignmentID.Hex(),
		ResponseID:       result.ResponseID.Hex(),
		Score:            result.Score,
		WindowStatus:     string(result.WindowStatus),
		AlreadyCompleted: result.AlreadyCompleted,
	}
	if result.AlreadyCompleted {
		resp.Message = "This check-in was already completed; returning the original submission."
	} else if result.WindowStatus == checkin.WindowAfter {
		resp.Message = "Submitted after the check-in window; it may be reviewed next period."
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CheckInHandler) mapResolveError(c *gin.Context, reference string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidReference):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAssignmentNotFound):
		// Echo the original reference for diagnostics.
		abortWithError(c, http.StatusNotFound, fmt.Sprintf("assignment not found: %s", reference))
	default:
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve check-in reference.")
	}
}
