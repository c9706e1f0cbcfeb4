package service

import (
	"fmt"
	"log"
	"time"

	"sprachtrainer/internal/models"
	"sprachtrainer/internal/repository"
	"sprachtrainer/internal/tasks"
)

// Error codes returned to API clients.
const (
	CodeInvalidTaskQuery  = "INVALID_TASK_QUERY"
	CodeInvalidPosFilter  = "INVALID_POS_FILTER"
	CodeInvalidTaskType   = "INVALID_TASK_TYPE"
	CodeInvalidSubmission = "INVALID_SUBMISSION"
	CodeTaskNotFound      = "TASK_NOT_FOUND"
	CodeTaskInvalidPos    = "TASK_INVALID_POS"
	CodeSubmissionFailed  = "SUBMISSION_FAILED"
)

// RequestError is a client-facing error with a stable code.
type RequestError struct {
	Code    string
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// TaskService answers task-selection requests.
type TaskService struct {
	taskSpecRepo  *repository.TaskSpecRepository
	registry      *tasks.Registry
	recencyWindow time.Duration
}

// NewTaskService creates a new task service.
func NewTaskService(taskSpecRepo *repository.TaskSpecRepository, registry *tasks.Registry, recencyWindow time.Duration) *TaskService {
	if recencyWindow <= 0 {
		recencyWindow = 6 * time.Hour
	}
	return &TaskService{
		taskSpecRepo:  taskSpecRepo,
		registry:      registry,
		recencyWindow: recencyWindow,
	}
}

// TaskRequest is a validated-enough selection request; field validation
// happens in SelectTasks.
type TaskRequest struct {
	Pos       string
	TaskTypes []string
	Levels    []string
	Limit     int
	DeviceID  string
	UserID    string
}

// TaskSelection is the selection result: a flat merged list plus a by-type
// grouping for UI convenience.
type TaskSelection struct {
	Tasks  []models.TaskSpec
	ByType map[models.TaskType][]models.TaskSpec
}

// SelectTasks picks up to limit candidate tasks per requested type, ordered
// to favor untried and long-unpracticed material for the given identity.
func (s *TaskService) SelectTasks(req TaskRequest) (*TaskSelection, error) {
	var pos models.PartOfSpeech
	if req.Pos != "" {
		parsed, ok := models.ParsePartOfSpeech(req.Pos)
		if !ok {
			return nil, &RequestError{Code: CodeInvalidPosFilter, Message: fmt.Sprintf("unknown part of speech: %s", req.Pos)}
		}
		pos = parsed
	}

	types := make([]models.TaskType, 0, len(req.TaskTypes))
	for _, raw := range req.TaskTypes {
		taskType := models.TaskType(raw)
		if !s.registry.Contains(taskType) {
			return nil, &RequestError{Code: CodeInvalidTaskType, Message: fmt.Sprintf("unknown task type: %s", raw)}
		}
		types = append(types, taskType)
	}

	windowStart := time.Now().Add(-s.recencyWindow)

	base := repository.CandidateQuery{
		Pos:         pos,
		DeviceID:    req.DeviceID,
		UserID:      req.UserID,
		WindowStart: windowStart,
		Limit:       req.Limit,
	}

	if len(types) == 0 {
		// No type filter: one untyped query, grouped afterwards. Rows whose
		// type has left the registry surface here and get pruned.
		if len(req.Levels) == 1 {
			base.Level = req.Levels[0]
		}
		rows, err := s.taskSpecRepo.FindCandidates(base)
		if err != nil {
			return nil, fmt.Errorf("select tasks: %w", err)
		}
		rows = s.pruneOrphans(rows)
		if len(req.Levels) > 1 {
			rows = filterByLevels(rows, req.Levels)
		}
		return &TaskSelection{Tasks: rows, ByType: groupByType(rows)}, nil
	}

	// One level with a single type pushes the filter into the base query;
	// otherwise levels pair positionally with types, falling back to the
	// first level.
	queues := make([][]models.TaskSpec, 0, len(types))
	for i, taskType := range types {
		q := base
		q.TaskType = taskType
		q.Level = pairedLevel(req.Levels, i)

		rows, err := s.taskSpecRepo.FindCandidates(q)
		if err != nil {
			return nil, fmt.Errorf("select %s tasks: %w", taskType, err)
		}
		queues = append(queues, s.pruneOrphans(rows))
	}

	merged := interleave(queues, req.Limit, req.Limit*len(types))
	return &TaskSelection{Tasks: merged, ByType: groupByType(merged)}, nil
}

// pairedLevel implements the positional type/level pairing.
func pairedLevel(levels []string, i int) string {
	if len(levels) == 0 {
		return ""
	}
	if i < len(levels) {
		return levels[i]
	}
	return levels[0]
}

// pruneOrphans drops rows whose task type is no longer registered and
// deletes them from storage. A deletion failure is logged, never surfaced:
// serving the remaining tasks matters more.
func (s *TaskService) pruneOrphans(rows []models.TaskSpec) []models.TaskSpec {
	kept := rows[:0]
	for _, row := range rows {
		if s.registry.Contains(row.TaskType) {
			kept = append(kept, row)
			continue
		}
		log.Printf("Warning: pruning task %s with unregistered type %q", row.ID, row.TaskType)
		if err := s.taskSpecRepo.Delete(row.ID); err != nil {
			log.Printf("Warning: failed to prune task %s: %v", row.ID, err)
		}
	}
	return kept
}

func filterByLevels(rows []models.TaskSpec, levels []string) []models.TaskSpec {
	allowed := make(map[string]bool, len(levels))
	for _, level := range levels {
		allowed[level] = true
	}
	kept := rows[:0]
	for _, row := range rows {
		if allowed[row.CefrLevel] {
			kept = append(kept, row)
		}
	}
	return kept
}

// interleave merges per-type queues round-robin, preserving each queue's
// internal order, skipping exhausted queues and duplicate ids, taking at
// most perQueue tasks from any single queue and max tasks total. This keeps
// the served mix balanced across task types.
func interleave(queues [][]models.TaskSpec, perQueue, max int) []models.TaskSpec {
	var merged []models.TaskSpec
	seen := make(map[string]bool)
	cursors := make([]int, len(queues))
	taken := make([]int, len(queues))

	for len(merged) < max {
		progressed := false
		for i, queue := range queues {
			if taken[i] >= perQueue {
				continue
			}
			for cursors[i] < len(queue) {
				task := queue[cursors[i]]
				cursors[i]++
				if seen[task.ID] {
					continue
				}
				seen[task.ID] = true
				merged = append(merged, task)
				taken[i]++
				progressed = true
				break
			}
			if len(merged) >= max {
				break
			}
		}
		if !progressed {
			break
		}
	}
	return merged
}

func groupByType(rows []models.TaskSpec) map[models.TaskType][]models.TaskSpec {
	grouped := make(map[models.TaskType][]models.TaskSpec)
	for _, row := range rows {
		grouped[row.TaskType] = append(grouped[row.TaskType], row)
	}
	return grouped
}
