package tasks

import (
	"testing"

	"sprachtrainer/internal/models"
)

func TestNormalizeGender(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "article passthrough", input: "der", expected: "der"},
		{name: "uppercase article", input: "Die", expected: "die"},
		{name: "single letter masculine", input: "m", expected: "der"},
		{name: "single letter feminine", input: "f", expected: "die"},
		{name: "single letter neuter", input: "n", expected: "das"},
		{name: "english spelling", input: "feminine", expected: "die"},
		{name: "german spelling", input: "Neutrum", expected: "das"},
		{name: "compound slash", input: "der/das", expected: "der/das"},
		{name: "compound reordered", input: "das/der", expected: "der/das"},
		{name: "compound comma", input: "f, n", expected: "die/das"},
		{name: "duplicate tokens collapse", input: "der/m", expected: "der"},
		{name: "three articles unknown", input: "der/die/das", expected: ""},
		{name: "unrecognized token", input: "plural", expected: ""},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeGender(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeGender(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestBuildTemplateSourceSkipsUnsupported(t *testing.T) {
	tests := []struct {
		name   string
		lexeme models.Lexeme
	}{
		{name: "unknown part of speech", lexeme: models.Lexeme{ID: "l1", Lemma: "und", Pos: "conjunction"}},
		{name: "empty lemma", lexeme: models.Lexeme{ID: "l2", Lemma: "   ", Pos: "verb"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := BuildTemplateSource(tt.lexeme, nil); ok {
				t.Errorf("BuildTemplateSource() ok = true, want false")
			}
		})
	}
}

func TestBuildTemplateSourceVerb(t *testing.T) {
	separable := false
	lex := models.Lexeme{
		ID:        "lex-gehen",
		Lemma:     "gehen",
		Pos:       "verb",
		CefrLevel: "A1",
		ExampleDe: "Wir gehen nach Hause.",
		ExampleEn: "We are going home.",
		Metadata: models.LexemeMetadata{
			English:   "to go",
			Auxiliary: "sein",
			Separable: &separable,
		},
	}
	inflections := []models.Inflection{
		{ID: "i1", LexemeID: lex.ID, Form: "gehe", Features: models.FeatureSet{
			models.FeatureTense:  {"present"},
			models.FeatureMood:   {"indicative"},
			models.FeaturePerson: {"1"},
			models.FeatureNumber: {"singular"},
		}},
		{ID: "i2", LexemeID: lex.ID, Form: "geht", Features: models.FeatureSet{
			models.FeatureTense:  {"present"},
			models.FeatureMood:   {"indicative"},
			models.FeaturePerson: {"3"},
			models.FeatureNumber: {"singular"},
		}},
		{ID: "i3", LexemeID: lex.ID, Form: "ging", Features: models.FeatureSet{
			models.FeatureTense:  {"past"},
			models.FeatureMood:   {"indicative"},
			models.FeaturePerson: {"3"},
			models.FeatureNumber: {"singular"},
		}},
		{ID: "i4", LexemeID: lex.ID, Form: "gegangen", Features: models.FeatureSet{
			models.FeatureTense:  {"perfect"},
			models.FeatureAspect: {"participle"},
		}},
	}

	src, ok := BuildTemplateSource(lex, inflections)
	if !ok {
		t.Fatal("BuildTemplateSource() ok = false, want true")
	}

	if src.PresentFirstSingular != "gehe" {
		t.Errorf("PresentFirstSingular = %q, want %q", src.PresentFirstSingular, "gehe")
	}
	if src.PresentThirdSingular != "geht" {
		t.Errorf("PresentThirdSingular = %q, want %q", src.PresentThirdSingular, "geht")
	}
	if src.PastThirdSingular != "ging" {
		t.Errorf("PastThirdSingular = %q, want %q", src.PastThirdSingular, "ging")
	}
	if src.PerfectParticiple != "gegangen" {
		t.Errorf("PerfectParticiple = %q, want %q", src.PerfectParticiple, "gegangen")
	}
	if src.Level != "A1" {
		t.Errorf("Level = %q, want %q", src.Level, "A1")
	}
	if src.Auxiliary != "sein" {
		t.Errorf("Auxiliary = %q, want %q", src.Auxiliary, "sein")
	}
	if src.Separable {
		t.Error("Separable = true, want false")
	}
}

func TestBuildTemplateSourcePerfectPrefersMetadata(t *testing.T) {
	lex := models.Lexeme{
		ID:    "lex-machen",
		Lemma: "machen",
		Pos:   "verb",
		Metadata: models.LexemeMetadata{
			Perfect: "hat gemacht",
		},
	}
	inflections := []models.Inflection{
		{ID: "i1", LexemeID: lex.ID, Form: "gemacht", Features: models.FeatureSet{
			models.FeatureTense: {"perfect"},
		}},
	}

	src, ok := BuildTemplateSource(lex, inflections)
	if !ok {
		t.Fatal("BuildTemplateSource() ok = false, want true")
	}
	if src.Perfect != "hat gemacht" {
		t.Errorf("Perfect = %q, want metadata value %q", src.Perfect, "hat gemacht")
	}
}

func TestBuildTemplateSourceMetadataLevelWins(t *testing.T) {
	lex := models.Lexeme{
		ID:        "lex-haus",
		Lemma:     "Haus",
		Pos:       "noun",
		CefrLevel: "B1",
		Metadata:  models.LexemeMetadata{Level: "A2", Gender: "n"},
	}

	src, ok := BuildTemplateSource(lex, nil)
	if !ok {
		t.Fatal("BuildTemplateSource() ok = false, want true")
	}
	if src.Level != "A2" {
		t.Errorf("Level = %q, want metadata level %q", src.Level, "A2")
	}
	if src.Gender != "das" {
		t.Errorf("Gender = %q, want %q", src.Gender, "das")
	}
}

func TestResolveExample(t *testing.T) {
	tests := []struct {
		name        string
		lexeme      models.Lexeme
		example     string
		translation string
	}{
		{
			name: "metadata example wins over column",
			lexeme: models.Lexeme{
				ExampleDe: "Fallback Satz.",
				ExampleEn: "Fallback sentence.",
				Metadata: models.LexemeMetadata{
					Example:        "Besserer Satz.",
					ExampleEnglish: "Better sentence.",
				},
			},
			example:     "Besserer Satz.",
			translation: "Better sentence.",
		},
		{
			name: "column fallback",
			lexeme: models.Lexeme{
				ExampleDe: "Nur die Spalte.",
				ExampleEn: "Only the column.",
			},
			example:     "Nur die Spalte.",
			translation: "Only the column.",
		},
		{
			name: "duplicate translation dropped",
			lexeme: models.Lexeme{
				ExampleDe: "Gleicher Satz.",
				ExampleEn: "Gleicher Satz.",
			},
			example:     "Gleicher Satz.",
			translation: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			example, translation := resolveExample(tt.lexeme)
			if example != tt.example {
				t.Errorf("example = %q, want %q", example, tt.example)
			}
			if translation != tt.translation {
				t.Errorf("translation = %q, want %q", translation, tt.translation)
			}
		})
	}
}
