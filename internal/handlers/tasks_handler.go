package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"sprachtrainer/internal/models"
	"sprachtrainer/internal/service"
	"sprachtrainer/internal/tasks"
)

const (
	defaultTaskLimit = 25
	maxTaskLimit     = 100
	minDeviceIDLen   = 6
	maxDeviceIDLen   = 64
)

// TaskPayload is the wire representation of one task spec.
type TaskPayload struct {
	ID        string              `json:"id"`
	LexemeID  string              `json:"lexemeId"`
	Pos       models.PartOfSpeech `json:"pos"`
	TaskType  models.TaskType     `json:"taskType"`
	Renderer  string              `json:"renderer"`
	Prompt    models.TaskPrompt   `json:"prompt"`
	Solution  models.TaskSolution `json:"solution"`
	Hints     []string            `json:"hints,omitempty"`
	CefrLevel string              `json:"cefrLevel,omitempty"`
	QueueCap  int                 `json:"queueCap"`
}

// TasksResponse is the GET /api/tasks payload.
type TasksResponse struct {
	Tasks       []TaskPayload                     `json:"tasks"`
	TasksByType map[models.TaskType][]TaskPayload `json:"tasksByType"`
}

// TasksHandler serves task selection requests
type TasksHandler struct {
	taskService *service.TaskService
	registry    *tasks.Registry
}

// NewTasksHandler creates a new tasks handler
func NewTasksHandler(taskService *service.TaskService, registry *tasks.Registry) *TasksHandler {
	return &TasksHandler{taskService: taskService, registry: registry}
}

// GetTasks handles GET /api/tasks
func (h *TasksHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := defaultTaskLimit
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxTaskLimit {
			respondError(w, http.StatusBadRequest, service.CodeInvalidTaskQuery,
				"limit must be an integer between 1 and 100", nil)
			return
		}
		limit = n
	}

	deviceID := strings.TrimSpace(query.Get("deviceId"))
	if deviceID != "" && (len(deviceID) < minDeviceIDLen || len(deviceID) > maxDeviceIDLen) {
		respondError(w, http.StatusBadRequest, service.CodeInvalidTaskQuery,
			"deviceId must be between 6 and 64 characters", nil)
		return
	}

	req := service.TaskRequest{
		Pos:       strings.TrimSpace(query.Get("pos")),
		TaskTypes: csvParam(query.Get("taskType"), query.Get("taskTypes")),
		Levels:    levelParam(query.Get("level")),
		Limit:     limit,
		DeviceID:  deviceID,
		UserID:    UserFromContext(r.Context()),
	}

	selection, err := h.taskService.SelectTasks(req)
	if err != nil {
		var reqErr *service.RequestError
		if errors.As(err, &reqErr) {
			respondError(w, http.StatusBadRequest, reqErr.Code, reqErr.Message, nil)
			return
		}
		respondError(w, http.StatusInternalServerError, service.CodeInvalidTaskQuery,
			"failed to select tasks", err)
		return
	}

	respondJSON(w, http.StatusOK, h.toResponse(selection))
}

func (h *TasksHandler) toResponse(selection *service.TaskSelection) TasksResponse {
	resp := TasksResponse{
		Tasks:       make([]TaskPayload, 0, len(selection.Tasks)),
		TasksByType: make(map[models.TaskType][]TaskPayload, len(selection.ByType)),
	}
	for _, task := range selection.Tasks {
		resp.Tasks = append(resp.Tasks, h.toPayload(task))
	}
	for taskType, group := range selection.ByType {
		payloads := make([]TaskPayload, 0, len(group))
		for _, task := range group {
			payloads = append(payloads, h.toPayload(task))
		}
		resp.TasksByType[taskType] = payloads
	}
	return resp
}

func (h *TasksHandler) toPayload(task models.TaskSpec) TaskPayload {
	payload := TaskPayload{
		ID:        task.ID,
		LexemeID:  task.LexemeID,
		Pos:       task.Pos,
		TaskType:  task.TaskType,
		Renderer:  task.Renderer,
		Prompt:    task.Prompt,
		Solution:  task.Solution,
		Hints:     task.Hints,
		CefrLevel: task.CefrLevel,
	}
	if spec, err := h.registry.Lookup(task.TaskType); err == nil {
		payload.QueueCap = spec.QueueCap
	}
	return payload
}

// csvParam merges the singular and plural task-type parameters.
func csvParam(single, csv string) []string {
	var out []string
	for _, raw := range append([]string{single}, strings.Split(csv, ",")...) {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// levelParam splits the level parameter, uppercasing CEFR codes.
func levelParam(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, strings.ToUpper(trimmed))
		}
	}
	return out
}
