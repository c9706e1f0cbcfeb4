package service

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"sprachtrainer/internal/models"
	"sprachtrainer/internal/repository"
	"sprachtrainer/internal/tasks"
)

// SubmissionService records practice attempts. A submission moves through
// received → resolved (task identity confirmed) → recorded.
type SubmissionService struct {
	taskSpecRepo *repository.TaskSpecRepository
	lexemeRepo   *repository.LexemeRepository
	practiceRepo *repository.PracticeRepository
	registry     *tasks.Registry
}

// NewSubmissionService creates a new submission service.
func NewSubmissionService(
	taskSpecRepo *repository.TaskSpecRepository,
	lexemeRepo *repository.LexemeRepository,
	practiceRepo *repository.PracticeRepository,
	registry *tasks.Registry,
) *SubmissionService {
	return &SubmissionService{
		taskSpecRepo: taskSpecRepo,
		lexemeRepo:   lexemeRepo,
		practiceRepo: practiceRepo,
		registry:     registry,
	}
}

// Submission is the validated attempt payload.
type Submission struct {
	TaskID            string
	LexemeID          string
	TaskType          models.TaskType
	DeviceID          string
	UserID            string
	Result            models.PracticeResult
	ResponseMs        int
	SubmittedResponse string
	ExpectedResponse  string
	AnsweredAt        *time.Time
	SubmittedAt       *time.Time
	QueuedAt          *time.Time
	CefrLevel         string
	PromptSummary     string
	HintsUsed         int
	FrequencyRank     int
}

// SubmissionReceipt is returned on success. TaskID may differ from the
// submitted id when the fallback lookup resolved a rotated identifier.
type SubmissionReceipt struct {
	TaskID   string
	DeviceID string
	QueueCap int
}

// Record resolves the task identity, validates its configuration, and
// writes the history and recency-log rows.
func (s *SubmissionService) Record(sub *Submission) (*SubmissionReceipt, error) {
	task, err := s.resolveTask(sub)
	if err != nil {
		return nil, err
	}

	spec, err := s.registry.Lookup(task.TaskType)
	if err != nil {
		return nil, &RequestError{Code: CodeTaskNotFound, Message: fmt.Sprintf("task type %s is not registered", task.TaskType)}
	}

	switch task.Pos {
	case models.PosVerb, models.PosNoun, models.PosAdjective:
	default:
		return nil, &RequestError{Code: CodeTaskInvalidPos, Message: fmt.Sprintf("task %s has unknown part of speech %q", task.ID, task.Pos)}
	}

	level := sub.CefrLevel
	if level == "" {
		level = task.CefrLevel
	}
	if level == "" {
		if lexemeLevel, err := s.lexemeRepo.GetLexemeLevel(task.LexemeID); err == nil {
			level = lexemeLevel
		}
	}

	submittedAt := time.Now()
	if sub.SubmittedAt != nil {
		submittedAt = *sub.SubmittedAt
	}

	expected := sub.ExpectedResponse
	if expected == "" {
		expected = task.Solution.Expected
	}

	history := &models.PracticeHistory{
		ID:                uuid.NewString(),
		TaskID:            task.ID,
		LexemeID:          task.LexemeID,
		Pos:               task.Pos,
		TaskType:          task.TaskType,
		DeviceID:          sub.DeviceID,
		UserID:            sub.UserID,
		Result:            sub.Result,
		ResponseMs:        sub.ResponseMs,
		SubmittedAt:       submittedAt,
		AnsweredAt:        sub.AnsweredAt,
		QueuedAt:          sub.QueuedAt,
		CefrLevel:         level,
		HintsUsed:         sub.HintsUsed,
		SubmittedResponse: sub.SubmittedResponse,
		ExpectedResponse:  expected,
		PromptSummary:     sub.PromptSummary,
		FrequencyRank:     sub.FrequencyRank,
	}

	logEntry := &models.PracticeLog{
		TaskID:      task.ID,
		LexemeID:    task.LexemeID,
		Pos:         task.Pos,
		TaskType:    task.TaskType,
		DeviceID:    sub.DeviceID,
		UserID:      sub.UserID,
		CefrLevel:   level,
		AttemptedAt: submittedAt,
	}

	if err := s.practiceRepo.RecordAttempt(history, logEntry); err != nil {
		log.Printf("Failed to record attempt for task %s: %v", task.ID, err)
		return nil, &RequestError{Code: CodeSubmissionFailed, Message: "failed to record attempt"}
	}

	return &SubmissionReceipt{
		TaskID:   task.ID,
		DeviceID: sub.DeviceID,
		QueueCap: spec.QueueCap,
	}, nil
}

// resolveTask looks the task up by id and falls back to lexeme+type once,
// recovering from client-held stale ids after a content re-sync.
func (s *SubmissionService) resolveTask(sub *Submission) (*models.TaskSpec, error) {
	task, err := s.taskSpecRepo.GetByID(sub.TaskID)
	if err != nil {
		return nil, fmt.Errorf("look up task %s: %w", sub.TaskID, err)
	}
	if task != nil {
		return task, nil
	}

	if sub.LexemeID != "" && sub.TaskType != "" {
		task, err = s.taskSpecRepo.GetByLexemeAndType(sub.LexemeID, sub.TaskType)
		if err != nil {
			return nil, fmt.Errorf("fallback lookup for lexeme %s: %w", sub.LexemeID, err)
		}
		if task != nil {
			log.Printf("Warning: task %s not found, resolved to %s via lexeme %s + type %s",
				sub.TaskID, task.ID, sub.LexemeID, sub.TaskType)
			return task, nil
		}
	}

	return nil, &RequestError{Code: CodeTaskNotFound, Message: fmt.Sprintf("task %s not found", sub.TaskID)}
}
