package models

import "time"

// PracticeResult is the outcome of one attempt.
type PracticeResult string

const (
	ResultCorrect   PracticeResult = "correct"
	ResultIncorrect PracticeResult = "incorrect"
)

// PracticeHistory is one full attempt record, append-only.
type PracticeHistory struct {
	ID                string
	TaskID            string
	LexemeID          string
	Pos               PartOfSpeech
	TaskType          TaskType
	DeviceID          string
	UserID            string
	Result            PracticeResult
	ResponseMs        int
	SubmittedAt       time.Time
	AnsweredAt        *time.Time
	QueuedAt          *time.Time
	CefrLevel         string
	HintsUsed         int
	SubmittedResponse string
	ExpectedResponse  string
	PromptSummary     string
	FrequencyRank     int
}

// PracticeLog is the lightweight recency record written alongside every
// history row. It exists only to drive short-window recency suppression
// in task selection.
type PracticeLog struct {
	TaskID      string
	LexemeID    string
	Pos         PartOfSpeech
	TaskType    TaskType
	DeviceID    string
	UserID      string
	CefrLevel   string
	AttemptedAt time.Time
}
