// Package syncplan computes the reconciliation plan between the lexeme
// knowledge base and the generated task-spec table. The computation is pure:
// all rows are fetched by the caller, which makes plans independently
// testable and safely retriable.
package syncplan

import (
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"golang.org/x/crypto/blake2b"

	"sprachtrainer/internal/models"
	"sprachtrainer/internal/tasks"
)

// ExistingTask is the slice of a stored task-spec row the planner needs for
// stale/kept classification.
type ExistingTask struct {
	ID       string
	LexemeID string
	TaskType models.TaskType
}

// Input carries everything a plan is computed from.
type Input struct {
	Lexemes     []models.Lexeme
	Inflections []models.Inflection
	Existing    []ExistingTask
	Previous    *models.SyncCheckpoint

	// FetchedAllLexemes must be false when the lexeme fetch was truncated
	// by pagination. Orphaned-lexeme staleness is suppressed in that case:
	// a row whose lexeme simply was not in the fetched window must not be
	// deleted.
	FetchedAllLexemes bool
}

// Stats summarizes one plan.
type Stats struct {
	Considered int `json:"considered"`
	Processed  int `json:"processed"`
	Skipped    int `json:"skipped"`
	Inserted   int `json:"inserted"`
	Updated    int `json:"updated"`
	Deleted    int `json:"deleted"`
}

// Plan is the reconciliation output: rows to upsert, ids to delete, and the
// new checkpoint (if any).
type Plan struct {
	Upserts      []models.TaskSpec
	StaleTaskIDs []string
	Checkpoint   *models.SyncCheckpoint

	// CheckpointChanged is true when there is a new checkpoint and it
	// differs from the previous one; callers skip the checkpoint write
	// otherwise.
	CheckpointChanged bool

	Stats Stats
}

// lexemeExpectation records what the current source data says a lexeme's
// task set should be. Kept even for zero-task lexemes so staleness detection
// still works for previously-seen task types.
type lexemeExpectation struct {
	ids   map[string]bool
	types map[models.TaskType]bool
}

// Compute builds the plan. See the package comment for the contract.
func Compute(in Input, registry *tasks.Registry) Plan {
	inflectionsByLexeme := make(map[string][]models.Inflection)
	for _, infl := range in.Inflections {
		inflectionsByLexeme[infl.LexemeID] = append(inflectionsByLexeme[infl.LexemeID], infl)
	}

	var plan Plan
	expected := make(map[string]*lexemeExpectation)

	var maxUpdatedAt time.Time
	var maxFound bool
	observe := func(t time.Time) {
		if !maxFound || t.After(maxUpdatedAt) {
			maxUpdatedAt = t
			maxFound = true
		}
	}

	hashTuples := make([]string, 0, len(in.Lexemes)+len(in.Inflections))

	for _, lex := range in.Lexemes {
		plan.Stats.Considered++
		observe(lex.UpdatedAt)
		hashTuples = append(hashTuples, fmt.Sprintf("L|%s|%d", lex.ID, lex.UpdatedAt.UnixNano()))

		inflections := inflectionsByLexeme[lex.ID]
		for _, infl := range inflections {
			observe(infl.UpdatedAt)
			hashTuples = append(hashTuples, fmt.Sprintf("I|%s|%s|%d", infl.ID, infl.LexemeID, infl.UpdatedAt.UnixNano()))
		}

		src, ok := tasks.BuildTemplateSource(lex, inflections)
		if !ok {
			plan.Stats.Skipped++
			continue
		}

		exp := &lexemeExpectation{
			ids:   make(map[string]bool),
			types: make(map[models.TaskType]bool),
		}
		expected[lex.ID] = exp

		specs := tasks.GenerateTaskSpecs(src, registry)
		if len(specs) == 0 {
			plan.Stats.Skipped++
			continue
		}

		plan.Stats.Processed++
		for _, spec := range specs {
			exp.ids[spec.ID] = true
			exp.types[spec.TaskType] = true
			plan.Upserts = append(plan.Upserts, spec)
		}
	}

	existingIDs := make(map[string]bool, len(in.Existing))
	for _, row := range in.Existing {
		existingIDs[row.ID] = true

		exp, seen := expected[row.LexemeID]
		if !seen {
			// Source lexeme vanished. Only trustworthy when the fetch saw
			// the full universe.
			if in.FetchedAllLexemes {
				plan.StaleTaskIDs = append(plan.StaleTaskIDs, row.ID)
			}
			continue
		}
		if !exp.ids[row.ID] || !exp.types[row.TaskType] {
			plan.StaleTaskIDs = append(plan.StaleTaskIDs, row.ID)
		}
	}
	plan.Stats.Deleted = len(plan.StaleTaskIDs)

	// Insert vs update purely by id-set membership; content-identical
	// re-syncs still count as updated.
	for _, spec := range plan.Upserts {
		if existingIDs[spec.ID] {
			plan.Stats.Updated++
		} else {
			plan.Stats.Inserted++
		}
	}

	if plan.Stats.Considered > 0 && maxFound {
		// The checkpoint's lastSyncedAt never decreases.
		if in.Previous != nil && in.Previous.LastSyncedAt.After(maxUpdatedAt) {
			maxUpdatedAt = in.Previous.LastSyncedAt
		}
		plan.Checkpoint = &models.SyncCheckpoint{
			LastSyncedAt: maxUpdatedAt,
			VersionHash:  versionHash(hashTuples),
		}
		plan.CheckpointChanged = !plan.Checkpoint.Equal(in.Previous)
	}

	return plan
}

// versionHash digests the identity+timestamp tuples of every row considered.
// Tuples are sorted first so row ordering does not affect the hash.
func versionHash(tuples []string) string {
	sorted := make([]string, len(tuples))
	copy(sorted, tuples)
	sort.Strings(sorted)

	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	for _, tuple := range sorted {
		h.Write([]byte(tuple))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
