package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"sprachtrainer/internal/models"
	"sprachtrainer/internal/service"
)

// SubmissionRequest is the POST /api/submission body. TimeSpentMs is an
// accepted alias for ResponseMs kept for older clients.
type SubmissionRequest struct {
	TaskID            string     `json:"taskId"`
	LexemeID          string     `json:"lexemeId"`
	TaskType          string     `json:"taskType"`
	DeviceID          string     `json:"deviceId"`
	Result            string     `json:"result"`
	ResponseMs        int        `json:"responseMs"`
	TimeSpentMs       int        `json:"timeSpentMs"`
	SubmittedResponse string     `json:"submittedResponse"`
	ExpectedResponse  string     `json:"expectedResponse"`
	AnsweredAt        *time.Time `json:"answeredAt"`
	SubmittedAt       *time.Time `json:"submittedAt"`
	QueuedAt          *time.Time `json:"queuedAt"`
	CefrLevel         string     `json:"cefrLevel"`
	PromptSummary     string     `json:"promptSummary"`
	HintsUsed         int        `json:"hintsUsed"`
	FrequencyRank     int        `json:"frequencyRank"`
}

// SubmissionResponse is the success payload.
type SubmissionResponse struct {
	Status   string `json:"status"`
	TaskID   string `json:"taskId"`
	DeviceID string `json:"deviceId"`
	QueueCap int    `json:"queueCap"`
}

// SubmissionHandler records practice attempts
type SubmissionHandler struct {
	submissionService *service.SubmissionService
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(submissionService *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

// PostSubmission handles POST /api/submission
func (h *SubmissionHandler) PostSubmission(w http.ResponseWriter, r *http.Request) {
	var req SubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, service.CodeInvalidSubmission,
			"invalid request body", err)
		return
	}

	sub, errMsg := h.validate(&req)
	if errMsg != "" {
		respondError(w, http.StatusBadRequest, service.CodeInvalidSubmission, errMsg, nil)
		return
	}
	sub.UserID = UserFromContext(r.Context())

	receipt, err := h.submissionService.Record(sub)
	if err != nil {
		var reqErr *service.RequestError
		if errors.As(err, &reqErr) {
			respondError(w, statusForCode(reqErr.Code), reqErr.Code, reqErr.Message, nil)
			return
		}
		respondError(w, http.StatusInternalServerError, service.CodeSubmissionFailed,
			"failed to record submission", err)
		return
	}

	respondJSON(w, http.StatusOK, SubmissionResponse{
		Status:   "recorded",
		TaskID:   receipt.TaskID,
		DeviceID: receipt.DeviceID,
		QueueCap: receipt.QueueCap,
	})
}

// validate checks the request and maps it onto the service payload. The
// returned message names the offending field.
func (h *SubmissionHandler) validate(req *SubmissionRequest) (*service.Submission, string) {
	taskID := strings.TrimSpace(req.TaskID)
	lexemeID := strings.TrimSpace(req.LexemeID)
	taskType := strings.TrimSpace(req.TaskType)
	if taskID == "" && (lexemeID == "" || taskType == "") {
		return nil, "taskId is required (or lexemeId together with taskType)"
	}

	deviceID := strings.TrimSpace(req.DeviceID)
	if deviceID == "" {
		return nil, "deviceId is required"
	}
	if len(deviceID) < minDeviceIDLen || len(deviceID) > maxDeviceIDLen {
		return nil, "deviceId must be between 6 and 64 characters"
	}

	result := models.PracticeResult(strings.ToLower(strings.TrimSpace(req.Result)))
	if result != models.ResultCorrect && result != models.ResultIncorrect {
		return nil, "result must be correct or incorrect"
	}

	responseMs := req.ResponseMs
	if responseMs == 0 {
		responseMs = req.TimeSpentMs
	}
	if responseMs < 0 {
		return nil, "responseMs must not be negative"
	}

	return &service.Submission{
		TaskID:            taskID,
		LexemeID:          lexemeID,
		TaskType:          models.TaskType(taskType),
		DeviceID:          deviceID,
		Result:            result,
		ResponseMs:        responseMs,
		SubmittedResponse: strings.TrimSpace(req.SubmittedResponse),
		ExpectedResponse:  strings.TrimSpace(req.ExpectedResponse),
		AnsweredAt:        req.AnsweredAt,
		SubmittedAt:       req.SubmittedAt,
		QueuedAt:          req.QueuedAt,
		CefrLevel:         strings.ToUpper(strings.TrimSpace(req.CefrLevel)),
		PromptSummary:     req.PromptSummary,
		HintsUsed:         req.HintsUsed,
		FrequencyRank:     req.FrequencyRank,
	}, ""
}

// statusForCode maps service error codes onto HTTP statuses.
func statusForCode(code string) int {
	switch code {
	case service.CodeTaskNotFound:
		return http.StatusNotFound
	case service.CodeInvalidSubmission:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
