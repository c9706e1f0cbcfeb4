package service

import (
	"errors"
	"testing"
	"time"

	"sprachtrainer/internal/models"
	"sprachtrainer/internal/tasks"
)

func spec(id string, taskType models.TaskType) models.TaskSpec {
	return models.TaskSpec{ID: id, TaskType: taskType}
}

func TestInterleave(t *testing.T) {
	conjugate := []models.TaskSpec{
		spec("c1", models.TaskConjugateForm),
		spec("c2", models.TaskConjugateForm),
		spec("c3", models.TaskConjugateForm),
	}
	noun := []models.TaskSpec{
		spec("n1", models.TaskNounCaseDeclension),
	}
	adj := []models.TaskSpec{
		spec("a1", models.TaskAdjEnding),
		spec("a2", models.TaskAdjEnding),
	}

	tests := []struct {
		name     string
		queues   [][]models.TaskSpec
		perQueue int
		max      int
		expected []string
	}{
		{
			name:     "round robin preserves queue order",
			queues:   [][]models.TaskSpec{conjugate, noun, adj},
			perQueue: 10,
			max:      10,
			expected: []string{"c1", "n1", "a1", "c2", "a2", "c3"},
		},
		{
			name:     "total cap applies across queues",
			queues:   [][]models.TaskSpec{conjugate, noun, adj},
			perQueue: 10,
			max:      4,
			expected: []string{"c1", "n1", "a1", "c2"},
		},
		{
			name:     "per-queue cap bounds each type",
			queues:   [][]models.TaskSpec{conjugate, noun, adj},
			perQueue: 2,
			max:      10,
			expected: []string{"c1", "n1", "a1", "c2", "a2"},
		},
		{
			name:     "empty queues skipped",
			queues:   [][]models.TaskSpec{nil, noun, nil},
			perQueue: 10,
			max:      5,
			expected: []string{"n1"},
		},
		{
			name: "duplicate ids surfaced once",
			queues: [][]models.TaskSpec{
				{spec("x1", models.TaskConjugateForm), spec("x2", models.TaskConjugateForm)},
				{spec("x1", models.TaskConjugateForm), spec("x3", models.TaskConjugateForm)},
			},
			perQueue: 10,
			max:      10,
			expected: []string{"x1", "x2", "x3"},
		},
		{
			name:     "no queues",
			queues:   nil,
			perQueue: 10,
			max:      10,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := interleave(tt.queues, tt.perQueue, tt.max)
			if len(merged) != len(tt.expected) {
				t.Fatalf("interleave() returned %d tasks, want %d", len(merged), len(tt.expected))
			}
			for i, id := range tt.expected {
				if merged[i].ID != id {
					t.Errorf("merged[%d] = %s, want %s", i, merged[i].ID, id)
				}
			}
		})
	}
}

func TestPairedLevel(t *testing.T) {
	tests := []struct {
		name     string
		levels   []string
		index    int
		expected string
	}{
		{name: "no levels", levels: nil, index: 0, expected: ""},
		{name: "positional match", levels: []string{"A1", "B1"}, index: 1, expected: "B1"},
		{name: "overflow falls back to first", levels: []string{"A1", "B1"}, index: 2, expected: "A1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pairedLevel(tt.levels, tt.index); got != tt.expected {
				t.Errorf("pairedLevel(%v, %d) = %q, want %q", tt.levels, tt.index, got, tt.expected)
			}
		})
	}
}

func TestFilterByLevels(t *testing.T) {
	rows := []models.TaskSpec{
		{ID: "t1", CefrLevel: "A1"},
		{ID: "t2", CefrLevel: "B2"},
		{ID: "t3", CefrLevel: "A2"},
	}

	kept := filterByLevels(rows, []string{"A1", "A2"})
	if len(kept) != 2 {
		t.Fatalf("filterByLevels() kept %d rows, want 2", len(kept))
	}
	if kept[0].ID != "t1" || kept[1].ID != "t3" {
		t.Errorf("kept = [%s %s], want [t1 t3]", kept[0].ID, kept[1].ID)
	}
}

func TestSelectTasksValidation(t *testing.T) {
	svc := NewTaskService(nil, tasks.DefaultRegistry(), 6*time.Hour)

	tests := []struct {
		name string
		req  TaskRequest
		code string
	}{
		{
			name: "unknown pos",
			req:  TaskRequest{Pos: "adverb", Limit: 10},
			code: CodeInvalidPosFilter,
		},
		{
			name: "unknown task type",
			req:  TaskRequest{TaskTypes: []string{"fill_in_gap"}, Limit: 10},
			code: CodeInvalidTaskType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SelectTasks(tt.req)
			var reqErr *RequestError
			if !errors.As(err, &reqErr) {
				t.Fatalf("SelectTasks() error = %v, want RequestError", err)
			}
			if reqErr.Code != tt.code {
				t.Errorf("code = %s, want %s", reqErr.Code, tt.code)
			}
		})
	}
}

func TestGroupByType(t *testing.T) {
	rows := []models.TaskSpec{
		spec("c1", models.TaskConjugateForm),
		spec("n1", models.TaskNounCaseDeclension),
		spec("c2", models.TaskConjugateForm),
	}

	grouped := groupByType(rows)
	if len(grouped[models.TaskConjugateForm]) != 2 {
		t.Errorf("conjugate group size = %d, want 2", len(grouped[models.TaskConjugateForm]))
	}
	if len(grouped[models.TaskNounCaseDeclension]) != 1 {
		t.Errorf("noun group size = %d, want 1", len(grouped[models.TaskNounCaseDeclension]))
	}
}
