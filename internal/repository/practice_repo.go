package repository

import (
	"sprachtrainer/internal/database"
	"sprachtrainer/internal/models"
)

// PracticeRepository writes practice attempt records. Both tables are
// append-only.
type PracticeRepository struct {
	db *database.DB
}

// NewPracticeRepository creates a new practice repository
func NewPracticeRepository(db *database.DB) *PracticeRepository {
	return &PracticeRepository{db: db}
}

// RecordAttempt writes the full history row and the lightweight recency log
// entry in one transaction.
func (r *PracticeRepository) RecordAttempt(history *models.PracticeHistory, logEntry *models.PracticeLog) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	historyQuery := `
		INSERT INTO practice_history (
			id, task_id, lexeme_id, pos, task_type, device_id, user_id,
			result, response_ms, submitted_at, answered_at, queued_at,
			cefr_level, hints_used, submitted_response, expected_response,
			prompt_summary, frequency_rank
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.Exec(historyQuery,
		history.ID,
		history.TaskID,
		history.LexemeID,
		string(history.Pos),
		string(history.TaskType),
		history.DeviceID,
		nullIfEmpty(history.UserID),
		string(history.Result),
		history.ResponseMs,
		history.SubmittedAt,
		history.AnsweredAt,
		history.QueuedAt,
		nullIfEmpty(history.CefrLevel),
		history.HintsUsed,
		history.SubmittedResponse,
		history.ExpectedResponse,
		history.PromptSummary,
		history.FrequencyRank,
	)
	if err != nil {
		return err
	}

	logQuery := `
		INSERT INTO practice_log (
			task_id, lexeme_id, pos, task_type, device_id, user_id,
			cefr_level, attempted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.Exec(logQuery,
		logEntry.TaskID,
		logEntry.LexemeID,
		string(logEntry.Pos),
		string(logEntry.TaskType),
		logEntry.DeviceID,
		nullIfEmpty(logEntry.UserID),
		nullIfEmpty(logEntry.CefrLevel),
		logEntry.AttemptedAt,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
