package service

import (
	"fmt"
	"log"
	"time"

	"sprachtrainer/internal/models"
	"sprachtrainer/internal/repository"
	"sprachtrainer/internal/syncplan"
	"sprachtrainer/internal/tasks"
)

// SyncService runs the task-spec synchronization pass: fetch the knowledge
// base, compute the plan, persist the result. The plan itself is pure; all
// I/O happens here.
type SyncService struct {
	lexemeRepo     *repository.LexemeRepository
	taskSpecRepo   *repository.TaskSpecRepository
	checkpointRepo *repository.CheckpointRepository
	registry       *tasks.Registry
	pageSize       int
	maxLexemes     int
}

// NewSyncService creates a new sync service. maxLexemes of 0 means fetch
// the entire lexeme table.
func NewSyncService(
	lexemeRepo *repository.LexemeRepository,
	taskSpecRepo *repository.TaskSpecRepository,
	checkpointRepo *repository.CheckpointRepository,
	registry *tasks.Registry,
	pageSize, maxLexemes int,
) *SyncService {
	if pageSize <= 0 {
		pageSize = 500
	}
	return &SyncService{
		lexemeRepo:     lexemeRepo,
		taskSpecRepo:   taskSpecRepo,
		checkpointRepo: checkpointRepo,
		registry:       registry,
		pageSize:       pageSize,
		maxLexemes:     maxLexemes,
	}
}

// SyncResult summarizes one completed sync pass.
type SyncResult struct {
	Stats             syncplan.Stats `json:"stats"`
	CheckpointChanged bool           `json:"checkpointChanged"`
	FetchedAll        bool           `json:"fetchedAll"`
	Duration          string         `json:"duration"`
}

// Run executes one full sync pass.
func (s *SyncService) Run() (*SyncResult, error) {
	start := time.Now()

	previous, err := s.checkpointRepo.Get()
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}

	lexemes, fetchedAll, err := s.fetchLexemes()
	if err != nil {
		return nil, fmt.Errorf("fetch lexemes: %w", err)
	}

	lexemeIDs := make([]string, len(lexemes))
	for i, lex := range lexemes {
		lexemeIDs[i] = lex.ID
	}

	inflections, err := s.lexemeRepo.GetInflections(lexemeIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch inflections: %w", err)
	}

	existing, err := s.taskSpecRepo.ListExisting()
	if err != nil {
		return nil, fmt.Errorf("fetch existing task specs: %w", err)
	}

	plan := syncplan.Compute(syncplan.Input{
		Lexemes:           lexemes,
		Inflections:       inflections,
		Existing:          existing,
		Previous:          previous,
		FetchedAllLexemes: fetchedAll,
	}, s.registry)

	if err := s.persist(plan); err != nil {
		return nil, err
	}

	result := &SyncResult{
		Stats:             plan.Stats,
		CheckpointChanged: plan.CheckpointChanged,
		FetchedAll:        fetchedAll,
		Duration:          time.Since(start).String(),
	}

	log.Printf("Sync pass complete: %d processed, %d skipped, %d inserted, %d updated, %d deleted (%s)",
		plan.Stats.Processed, plan.Stats.Skipped, plan.Stats.Inserted,
		plan.Stats.Updated, plan.Stats.Deleted, result.Duration)

	return result, nil
}

// fetchLexemes pages through the lexeme table. fetchedAll is false when the
// configured cap truncated the fetch, which suppresses orphaned-lexeme
// deletion downstream.
func (s *SyncService) fetchLexemes() ([]models.Lexeme, bool, error) {
	var all []models.Lexeme
	offset := 0

	for {
		limit := s.pageSize
		if s.maxLexemes > 0 && len(all)+limit > s.maxLexemes {
			limit = s.maxLexemes - len(all)
		}
		if limit <= 0 {
			return all, false, nil
		}

		page, err := s.lexemeRepo.ListLexemes(limit, offset)
		if err != nil {
			return nil, false, err
		}
		all = append(all, page...)

		if len(page) < limit {
			return all, true, nil
		}
		if s.maxLexemes > 0 && len(all) >= s.maxLexemes {
			// There may be more rows beyond the cap.
			probe, err := s.lexemeRepo.ListLexemes(1, len(all))
			if err != nil {
				return nil, false, err
			}
			return all, len(probe) == 0, nil
		}
		offset += len(page)
	}
}

func (s *SyncService) persist(plan syncplan.Plan) error {
	// An unchanged checkpoint with nothing new means the stored rows already
	// match; rewriting them would only churn updated_at. Inserted covers rows
	// that went missing outside a source change.
	if plan.CheckpointChanged || plan.Stats.Inserted > 0 {
		if err := s.taskSpecRepo.UpsertBatch(plan.Upserts, time.Now()); err != nil {
			return fmt.Errorf("upsert task specs: %w", err)
		}
	}

	if len(plan.StaleTaskIDs) > 0 {
		if err := s.taskSpecRepo.DeleteByIDs(plan.StaleTaskIDs); err != nil {
			return fmt.Errorf("delete stale task specs: %w", err)
		}
	}

	if plan.Checkpoint != nil && plan.CheckpointChanged {
		if err := s.checkpointRepo.Set(plan.Checkpoint); err != nil {
			return fmt.Errorf("store checkpoint: %w", err)
		}
	}

	return nil
}
