package models

import (
	"strings"
	"time"
)

// PartOfSpeech is the closed set of parts of speech task generation supports.
type PartOfSpeech string

const (
	PosVerb      PartOfSpeech = "verb"
	PosNoun      PartOfSpeech = "noun"
	PosAdjective PartOfSpeech = "adjective"
)

// ParsePartOfSpeech maps loose input strings onto the canonical set.
func ParsePartOfSpeech(s string) (PartOfSpeech, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "verb", "verbs", "v":
		return PosVerb, true
	case "noun", "nouns", "n":
		return PosNoun, true
	case "adjective", "adjectives", "adj", "a":
		return PosAdjective, true
	default:
		return "", false
	}
}

// LexemeMetadata is the typed view of the lexeme metadata JSON column.
type LexemeMetadata struct {
	Level          string `json:"level,omitempty"`
	English        string `json:"english,omitempty"`
	Example        string `json:"example,omitempty"`
	ExampleEnglish string `json:"exampleEnglish,omitempty"`
	Gender         string `json:"gender,omitempty"`
	Auxiliary      string `json:"auxiliary,omitempty"`
	Perfect        string `json:"perfect,omitempty"`
	Separable      *bool  `json:"separable,omitempty"`
	FrequencyRank  int    `json:"frequencyRank,omitempty"`
}

// Lexeme is one dictionary entry owned by the content pipeline. Pos is kept
// as the raw string from storage; unsupported values are skipped during sync.
type Lexeme struct {
	ID        string
	Lemma     string
	Pos       string
	Language  string
	CefrLevel string
	ExampleDe string
	ExampleEn string
	Metadata  LexemeMetadata
	UpdatedAt time.Time
}

// Inflection is a realized word form tied to a lexeme.
type Inflection struct {
	ID        string
	LexemeID  string
	Form      string
	Features  FeatureSet
	UpdatedAt time.Time
}
