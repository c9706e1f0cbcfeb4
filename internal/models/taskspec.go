package models

import "time"

// TaskType identifies a practice task family.
type TaskType string

const (
	TaskConjugateForm      TaskType = "conjugate_form"
	TaskNounCaseDeclension TaskType = "noun_case_declension"
	TaskAdjEnding          TaskType = "adj_ending"
)

// TaskPrompt is the structured prompt payload embedded in a task spec.
// Fields are populated per task type; unused ones stay empty.
type TaskPrompt struct {
	Lemma        string `json:"lemma"`
	Instructions string `json:"instructions"`
	CefrLevel    string `json:"cefrLevel,omitempty"`
	Example      string `json:"example,omitempty"`
	Translation  string `json:"translation,omitempty"`

	// conjugate_form
	RequestedTense  string `json:"requestedTense,omitempty"`
	RequestedPerson string `json:"requestedPerson,omitempty"`
	RequestedNumber string `json:"requestedNumber,omitempty"`
	RequestedForm   string `json:"requestedForm,omitempty"`

	// noun_case_declension
	RequestedCase string `json:"requestedCase,omitempty"`
	Gender        string `json:"gender,omitempty"`

	// adj_ending
	RequestedDegree string `json:"requestedDegree,omitempty"`
}

// TaskSolution holds the expected answer plus accepted alternates.
type TaskSolution struct {
	Expected   string   `json:"expected"`
	Alternates []string `json:"alternates,omitempty"`
}

// TaskSpec is one generated, versioned practice task. The ID is derived
// deterministically from the lexeme, task type, variant and resolved
// solution form so regeneration is idempotent.
type TaskSpec struct {
	ID        string
	LexemeID  string
	Pos       PartOfSpeech
	TaskType  TaskType
	Renderer  string
	Prompt    TaskPrompt
	Solution  TaskSolution
	Hints     []string
	CefrLevel string
	Revision  int
	UpdatedAt time.Time
}

// SyncCheckpoint is the process-wide sync cursor. A sync run is skippable
// when the recomputed hash and timestamp equal the stored checkpoint.
type SyncCheckpoint struct {
	LastSyncedAt time.Time
	VersionHash  string
	UpdatedAt    time.Time
}

// Equal reports whether two checkpoints describe the same sync state.
func (c *SyncCheckpoint) Equal(other *SyncCheckpoint) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.LastSyncedAt.Equal(other.LastSyncedAt) && c.VersionHash == other.VersionHash
}
