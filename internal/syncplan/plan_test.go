package syncplan

import (
	"testing"
	"time"

	"sprachtrainer/internal/models"
	"sprachtrainer/internal/tasks"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func gehenLexeme() (models.Lexeme, []models.Inflection) {
	lex := models.Lexeme{
		ID:        "lex-gehen",
		Lemma:     "gehen",
		Pos:       "verb",
		CefrLevel: "A1",
		UpdatedAt: baseTime,
	}
	inflections := []models.Inflection{
		{ID: "i1", LexemeID: lex.ID, Form: "gehe", UpdatedAt: baseTime, Features: models.FeatureSet{
			models.FeatureTense:  {"present"},
			models.FeatureMood:   {"indicative"},
			models.FeaturePerson: {"1"},
			models.FeatureNumber: {"singular"},
		}},
		{ID: "i2", LexemeID: lex.ID, Form: "geht", UpdatedAt: baseTime, Features: models.FeatureSet{
			models.FeatureTense:  {"present"},
			models.FeatureMood:   {"indicative"},
			models.FeaturePerson: {"3"},
			models.FeatureNumber: {"singular"},
		}},
		{ID: "i3", LexemeID: lex.ID, Form: "ging", UpdatedAt: baseTime, Features: models.FeatureSet{
			models.FeatureTense:  {"past"},
			models.FeatureMood:   {"indicative"},
			models.FeaturePerson: {"3"},
			models.FeatureNumber: {"singular"},
		}},
	}
	return lex, inflections
}

func existingFromPlan(plan Plan) []ExistingTask {
	existing := make([]ExistingTask, 0, len(plan.Upserts))
	for _, spec := range plan.Upserts {
		existing = append(existing, ExistingTask{ID: spec.ID, LexemeID: spec.LexemeID, TaskType: spec.TaskType})
	}
	return existing
}

func TestComputeFirstRunInsertsEverything(t *testing.T) {
	registry := tasks.DefaultRegistry()
	lex, inflections := gehenLexeme()

	plan := Compute(Input{
		Lexemes:           []models.Lexeme{lex},
		Inflections:       inflections,
		FetchedAllLexemes: true,
	}, registry)

	if len(plan.Upserts) == 0 {
		t.Fatal("expected upserts on first run")
	}
	if plan.Stats.Inserted != len(plan.Upserts) {
		t.Errorf("inserted = %d, want %d", plan.Stats.Inserted, len(plan.Upserts))
	}
	if plan.Stats.Updated != 0 || plan.Stats.Deleted != 0 {
		t.Errorf("updated = %d deleted = %d, want 0/0", plan.Stats.Updated, plan.Stats.Deleted)
	}
	if plan.Checkpoint == nil {
		t.Fatal("expected a checkpoint")
	}
	if !plan.CheckpointChanged {
		t.Error("first run must report a changed checkpoint")
	}
	if !plan.Checkpoint.LastSyncedAt.Equal(baseTime) {
		t.Errorf("lastSyncedAt = %v, want %v", plan.Checkpoint.LastSyncedAt, baseTime)
	}
}

func TestComputeSecondRunIsIdempotent(t *testing.T) {
	registry := tasks.DefaultRegistry()
	lex, inflections := gehenLexeme()

	first := Compute(Input{
		Lexemes:           []models.Lexeme{lex},
		Inflections:       inflections,
		FetchedAllLexemes: true,
	}, registry)

	second := Compute(Input{
		Lexemes:           []models.Lexeme{lex},
		Inflections:       inflections,
		Existing:          existingFromPlan(first),
		Previous:          first.Checkpoint,
		FetchedAllLexemes: true,
	}, registry)

	if second.Stats.Inserted != 0 {
		t.Errorf("inserted = %d, want 0", second.Stats.Inserted)
	}
	if second.Stats.Deleted != 0 {
		t.Errorf("deleted = %d, want 0", second.Stats.Deleted)
	}
	if second.Stats.Updated != len(second.Upserts) {
		t.Errorf("updated = %d, want %d", second.Stats.Updated, len(second.Upserts))
	}
	if second.CheckpointChanged {
		t.Error("unchanged source data must not change the checkpoint")
	}
}

func TestComputeContentChangeRotatesTaskID(t *testing.T) {
	registry := tasks.DefaultRegistry()
	lex, inflections := gehenLexeme()

	first := Compute(Input{
		Lexemes:           []models.Lexeme{lex},
		Inflections:       inflections,
		FetchedAllLexemes: true,
	}, registry)

	// A corrected form rewrites the solution, which rotates the task id:
	// the new id is inserted and the old one goes stale.
	inflections[2].Form = "gingst"
	inflections[2].UpdatedAt = baseTime.Add(time.Hour)

	second := Compute(Input{
		Lexemes:           []models.Lexeme{lex},
		Inflections:       inflections,
		Existing:          existingFromPlan(first),
		Previous:          first.Checkpoint,
		FetchedAllLexemes: true,
	}, registry)

	if second.Stats.Inserted != 1 {
		t.Errorf("inserted = %d, want 1", second.Stats.Inserted)
	}
	if second.Stats.Deleted != 1 {
		t.Errorf("deleted = %d, want 1", second.Stats.Deleted)
	}
	if !second.CheckpointChanged {
		t.Error("changed source data must change the checkpoint")
	}
	if !second.Checkpoint.LastSyncedAt.Equal(baseTime.Add(time.Hour)) {
		t.Errorf("lastSyncedAt = %v, want %v", second.Checkpoint.LastSyncedAt, baseTime.Add(time.Hour))
	}
}

func TestComputeVanishedLexeme(t *testing.T) {
	registry := tasks.DefaultRegistry()
	lex, inflections := gehenLexeme()

	first := Compute(Input{
		Lexemes:           []models.Lexeme{lex},
		Inflections:       inflections,
		FetchedAllLexemes: true,
	}, registry)
	existing := existingFromPlan(first)

	other := models.Lexeme{ID: "lex-haus", Lemma: "Haus", Pos: "noun", UpdatedAt: baseTime}
	hausInflections := []models.Inflection{
		{ID: "h1", LexemeID: other.ID, Form: "Häuser", UpdatedAt: baseTime, Features: models.FeatureSet{
			models.FeatureCase:   {"nominative"},
			models.FeatureNumber: {"plural"},
		}},
	}

	t.Run("exhaustive fetch deletes orphans", func(t *testing.T) {
		plan := Compute(Input{
			Lexemes:           []models.Lexeme{other},
			Inflections:       hausInflections,
			Existing:          existing,
			Previous:          first.Checkpoint,
			FetchedAllLexemes: true,
		}, registry)

		if len(plan.StaleTaskIDs) != len(existing) {
			t.Errorf("stale = %d, want %d", len(plan.StaleTaskIDs), len(existing))
		}
	})

	t.Run("partial fetch keeps orphans", func(t *testing.T) {
		plan := Compute(Input{
			Lexemes:           []models.Lexeme{other},
			Inflections:       hausInflections,
			Existing:          existing,
			Previous:          first.Checkpoint,
			FetchedAllLexemes: false,
		}, registry)

		if len(plan.StaleTaskIDs) != 0 {
			t.Errorf("stale = %d, want 0 under partial fetch", len(plan.StaleTaskIDs))
		}
	})
}

func TestComputeDroppedTypeGoesStaleEvenUnderPartialFetch(t *testing.T) {
	registry := tasks.DefaultRegistry()
	lex, inflections := gehenLexeme()

	// A previously generated row of a type the lexeme no longer yields.
	existing := []ExistingTask{
		{ID: "stale-row", LexemeID: lex.ID, TaskType: models.TaskNounCaseDeclension},
	}

	plan := Compute(Input{
		Lexemes:           []models.Lexeme{lex},
		Inflections:       inflections,
		Existing:          existing,
		FetchedAllLexemes: false,
	}, registry)

	if len(plan.StaleTaskIDs) != 1 || plan.StaleTaskIDs[0] != "stale-row" {
		t.Errorf("stale = %v, want [stale-row]; per-lexeme staleness must not depend on an exhaustive fetch", plan.StaleTaskIDs)
	}
}

func TestComputeSkipsUnsupportedLexemes(t *testing.T) {
	registry := tasks.DefaultRegistry()

	plan := Compute(Input{
		Lexemes: []models.Lexeme{
			{ID: "lex-und", Lemma: "und", Pos: "conjunction", UpdatedAt: baseTime},
		},
		FetchedAllLexemes: true,
	}, registry)

	if plan.Stats.Considered != 1 || plan.Stats.Skipped != 1 || plan.Stats.Processed != 0 {
		t.Errorf("stats = %+v, want considered=1 skipped=1 processed=0", plan.Stats)
	}
	if len(plan.Upserts) != 0 {
		t.Errorf("upserts = %d, want 0", len(plan.Upserts))
	}
}

func TestComputeEmptyInputHasNoCheckpoint(t *testing.T) {
	plan := Compute(Input{FetchedAllLexemes: true}, tasks.DefaultRegistry())
	if plan.Checkpoint != nil {
		t.Error("empty input must not produce a checkpoint")
	}
	if plan.CheckpointChanged {
		t.Error("empty input must not report a checkpoint change")
	}
}

func TestComputeLastSyncedAtNeverDecreases(t *testing.T) {
	registry := tasks.DefaultRegistry()
	lex, inflections := gehenLexeme()

	future := baseTime.Add(48 * time.Hour)
	previous := &models.SyncCheckpoint{LastSyncedAt: future, VersionHash: "old"}

	plan := Compute(Input{
		Lexemes:           []models.Lexeme{lex},
		Inflections:       inflections,
		Previous:          previous,
		FetchedAllLexemes: true,
	}, registry)

	if plan.Checkpoint == nil {
		t.Fatal("expected a checkpoint")
	}
	if !plan.Checkpoint.LastSyncedAt.Equal(future) {
		t.Errorf("lastSyncedAt = %v, want retained %v", plan.Checkpoint.LastSyncedAt, future)
	}
}

func TestVersionHashOrderIndependent(t *testing.T) {
	a := versionHash([]string{"L|a|1", "L|b|2", "I|c|a|3"})
	b := versionHash([]string{"I|c|a|3", "L|b|2", "L|a|1"})
	if a != b {
		t.Errorf("hash depends on tuple order: %s vs %s", a, b)
	}

	c := versionHash([]string{"L|a|1", "L|b|2"})
	if a == c {
		t.Error("different tuple sets must hash differently")
	}
}
