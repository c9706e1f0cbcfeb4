package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"sprachtrainer/internal/database"
	"sprachtrainer/internal/models"
	"sprachtrainer/internal/syncplan"
)

// taskSpecColumns is the upsert column list for task_specs.
var taskSpecColumns = []string{
	"id", "lexeme_id", "pos", "task_type", "renderer",
	"prompt", "solution", "hints", "cefr_level", "revision", "updated_at",
}

// TaskSpecRepository handles generated task-spec storage.
type TaskSpecRepository struct {
	db *database.DB
}

// NewTaskSpecRepository creates a new task-spec repository
func NewTaskSpecRepository(db *database.DB) *TaskSpecRepository {
	return &TaskSpecRepository{db: db}
}

// ListExisting returns the id/lexeme/type slice of every stored task spec,
// the input the sync planner classifies rows from.
func (r *TaskSpecRepository) ListExisting() ([]syncplan.ExistingTask, error) {
	rows, err := r.db.Query("SELECT id, lexeme_id, task_type FROM task_specs")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var existing []syncplan.ExistingTask
	for rows.Next() {
		var row syncplan.ExistingTask
		if err := rows.Scan(&row.ID, &row.LexemeID, &row.TaskType); err != nil {
			return nil, err
		}
		existing = append(existing, row)
	}
	return existing, rows.Err()
}

// GetByID retrieves one task spec, or nil when absent.
func (r *TaskSpecRepository) GetByID(id string) (*models.TaskSpec, error) {
	query := selectTaskSpec + " WHERE t.id = ?"

	row := r.db.QueryRow(query, id)
	spec, err := scanTaskSpec(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return spec, nil
}

// GetByLexemeAndType retrieves the first task spec for a lexeme/type pair,
// used as the fallback lookup when a submitted task id no longer exists.
func (r *TaskSpecRepository) GetByLexemeAndType(lexemeID string, taskType models.TaskType) (*models.TaskSpec, error) {
	query := selectTaskSpec + " WHERE t.lexeme_id = ? AND t.task_type = ? ORDER BY t.id ASC LIMIT 1"

	row := r.db.QueryRow(query, lexemeID, taskType)
	spec, err := scanTaskSpec(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return spec, nil
}

// UpsertBatch writes all specs in one transaction, inserting or updating
// by id. Last writer wins; content is deterministically derived, so
// concurrent sync passes converge on the same rows.
func (r *TaskSpecRepository) UpsertBatch(specs []models.TaskSpec, now time.Time) error {
	if len(specs) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, spec := range specs {
		prompt, err := json.Marshal(spec.Prompt)
		if err != nil {
			return fmt.Errorf("marshal prompt for %s: %w", spec.ID, err)
		}
		solution, err := json.Marshal(spec.Solution)
		if err != nil {
			return fmt.Errorf("marshal solution for %s: %w", spec.ID, err)
		}
		hints, err := json.Marshal(spec.Hints)
		if err != nil {
			return fmt.Errorf("marshal hints for %s: %w", spec.ID, err)
		}

		err = tx.Upsert("task_specs", "id", taskSpecColumns,
			spec.ID, spec.LexemeID, string(spec.Pos), string(spec.TaskType), spec.Renderer,
			string(prompt), string(solution), string(hints), spec.CefrLevel, spec.Revision, now,
		)
		if err != nil {
			return fmt.Errorf("upsert task %s: %w", spec.ID, err)
		}
	}

	return tx.Commit()
}

// DeleteByIDs removes stale task specs.
func (r *TaskSpecRepository) DeleteByIDs(ids []string) error {
	for start := 0; start < len(ids); start += inClauseChunk {
		end := start + inClauseChunk
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		query := "DELETE FROM task_specs WHERE id IN (" + database.Placeholders(len(chunk)) + ")"
		args := make([]interface{}, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}
		if _, err := r.db.Exec(query, args...); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a single task spec (self-healing prune of orphaned rows).
func (r *TaskSpecRepository) Delete(id string) error {
	_, err := r.db.Exec("DELETE FROM task_specs WHERE id = ?", id)
	return err
}

// CandidateQuery describes one candidate selection, usually per task type.
type CandidateQuery struct {
	TaskType models.TaskType     // "" = any
	Pos      models.PartOfSpeech // "" = any
	Level    string              // "" = any
	DeviceID string
	UserID   string

	// WindowStart is the lower bound of the recency-suppression window.
	WindowStart time.Time

	Limit int
}

const selectTaskSpec = `
	SELECT t.id, t.lexeme_id, t.pos, t.task_type, t.renderer,
	       t.prompt, t.solution, t.hints, t.cefr_level, t.revision, t.updated_at
	FROM task_specs t`

// selectTaskSpecEffective is the candidate-query variant: it reports the
// effective level (lexeme column over the prompt-embedded level), so callers
// filtering rows afterwards see the same value the WHERE clause compares.
const selectTaskSpecEffective = `
	SELECT t.id, t.lexeme_id, t.pos, t.task_type, t.renderer,
	       t.prompt, t.solution, t.hints,
	       COALESCE(NULLIF(l.cefr_level, ''), t.cefr_level) AS cefr_level,
	       t.revision, t.updated_at
	FROM task_specs t`

// FindCandidates builds and runs the ordered, filtered candidate query for
// one task type. With an identity present, never-attempted tasks outrank
// attempted ones, least-recently-practiced outranks recently-practiced, and
// tasks with an attempt inside the recency window rank behind tasks
// without one. Ties break on most-recently-updated spec, then id.
func (r *TaskSpecRepository) FindCandidates(q CandidateQuery) ([]models.TaskSpec, error) {
	var sb strings.Builder
	var args []interface{}

	sb.WriteString(selectTaskSpecEffective)
	sb.WriteString("\n\tJOIN lexemes l ON l.id = t.lexeme_id")

	hasIdentity := q.DeviceID != "" || q.UserID != ""
	if hasIdentity {
		sb.WriteString(`
	LEFT JOIN (
		SELECT task_id, MAX(submitted_at) AS last_practiced_at
		FROM practice_history
		WHERE `)
		appendIdentityFilter(&sb, &args, q.DeviceID, q.UserID)
		sb.WriteString(`
		GROUP BY task_id
	) h ON h.task_id = t.id`)

		sb.WriteString(`
	LEFT JOIN (
		SELECT task_id, MAX(attempted_at) AS last_attempt_at
		FROM practice_log
		WHERE `)
		appendIdentityFilter(&sb, &args, q.DeviceID, q.UserID)
		sb.WriteString(" AND attempted_at >= ?")
		args = append(args, q.WindowStart)
		if q.TaskType != "" {
			sb.WriteString(" AND task_type = ?")
			args = append(args, string(q.TaskType))
		}
		if q.Pos != "" {
			sb.WriteString(" AND pos = ?")
			args = append(args, string(q.Pos))
		}
		if q.Level != "" {
			// Level-unspecified log entries match any requested level.
			sb.WriteString(" AND (cefr_level IS NULL OR cefr_level = '' OR cefr_level = ?)")
			args = append(args, q.Level)
		}
		sb.WriteString(`
		GROUP BY task_id
	) r ON r.task_id = t.id`)
	}

	sb.WriteString("\n\tWHERE 1 = 1")
	if q.TaskType != "" {
		sb.WriteString(" AND t.task_type = ?")
		args = append(args, string(q.TaskType))
	}
	if q.Pos != "" {
		sb.WriteString(" AND t.pos = ?")
		args = append(args, string(q.Pos))
	}
	if q.Level != "" {
		// Same coalesce as the select list: lexeme column over the
		// prompt-embedded level.
		sb.WriteString(" AND COALESCE(NULLIF(l.cefr_level, ''), t.cefr_level) = ?")
		args = append(args, q.Level)
	}

	if hasIdentity {
		// CASE flags keep NULL ordering dialect-independent: all NULLs fall
		// into flag 0 where the timestamp tie-breaks are moot.
		sb.WriteString(`
	ORDER BY
		CASE WHEN h.last_practiced_at IS NULL THEN 0 ELSE 1 END,
		h.last_practiced_at ASC,
		CASE WHEN r.last_attempt_at IS NULL THEN 0 ELSE 1 END,
		r.last_attempt_at ASC,
		t.updated_at DESC,
		t.id ASC`)
	} else {
		sb.WriteString("\n\tORDER BY t.updated_at DESC, t.id ASC")
	}

	sb.WriteString("\n\tLIMIT ?")
	args = append(args, q.Limit)

	rows, err := r.db.Query(sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var specs []models.TaskSpec
	for rows.Next() {
		spec, err := scanTaskSpec(rows)
		if err != nil {
			return nil, err
		}
		specs = append(specs, *spec)
	}
	return specs, rows.Err()
}

func appendIdentityFilter(sb *strings.Builder, args *[]interface{}, deviceID, userID string) {
	switch {
	case userID != "" && deviceID != "":
		sb.WriteString("(user_id = ? OR device_id = ?)")
		*args = append(*args, userID, deviceID)
	case userID != "":
		sb.WriteString("user_id = ?")
		*args = append(*args, userID)
	default:
		sb.WriteString("device_id = ?")
		*args = append(*args, deviceID)
	}
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanTaskSpec is the single deserialization boundary between storage rows
// and the typed domain struct.
func scanTaskSpec(row rowScanner) (*models.TaskSpec, error) {
	var spec models.TaskSpec
	var pos, taskType string
	var prompt, solution string
	var hints, cefrLevel sql.NullString

	err := row.Scan(
		&spec.ID,
		&spec.LexemeID,
		&pos,
		&taskType,
		&spec.Renderer,
		&prompt,
		&solution,
		&hints,
		&cefrLevel,
		&spec.Revision,
		&spec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	spec.Pos = models.PartOfSpeech(pos)
	spec.TaskType = models.TaskType(taskType)
	spec.CefrLevel = cefrLevel.String

	if err := json.Unmarshal([]byte(prompt), &spec.Prompt); err != nil {
		return nil, fmt.Errorf("task %s: invalid prompt: %w", spec.ID, err)
	}
	if err := json.Unmarshal([]byte(solution), &spec.Solution); err != nil {
		return nil, fmt.Errorf("task %s: invalid solution: %w", spec.ID, err)
	}
	if hints.Valid && hints.String != "" && hints.String != "null" {
		if err := json.Unmarshal([]byte(hints.String), &spec.Hints); err != nil {
			return nil, fmt.Errorf("task %s: invalid hints: %w", spec.ID, err)
		}
	}

	return &spec, nil
}
