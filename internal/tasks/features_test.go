package tasks

import (
	"testing"

	"sprachtrainer/internal/models"
)

func verbRow(id, form string, features models.FeatureSet) models.Inflection {
	return models.Inflection{ID: id, LexemeID: "lex-1", Form: form, Features: features}
}

func TestFeatureIndexLookup(t *testing.T) {
	rows := []models.Inflection{
		verbRow("i1", "gehe", models.FeatureSet{
			models.FeatureTense:  {"present"},
			models.FeatureMood:   {"indicative"},
			models.FeaturePerson: {"1"},
			models.FeatureNumber: {"singular"},
		}),
		verbRow("i2", "geht", models.FeatureSet{
			models.FeatureTense:  {"present"},
			models.FeatureMood:   {"indicative"},
			models.FeaturePerson: {"3"},
			models.FeatureNumber: {"singular"},
		}),
		verbRow("i3", "ging", models.FeatureSet{
			models.FeatureTense:  {"past"},
			models.FeatureMood:   {"indicative"},
			models.FeaturePerson: {"1", "3"},
			models.FeatureNumber: {"singular"},
		}),
		verbRow("i4", "gegangen", models.FeatureSet{
			models.FeatureTense:  {"perfect"},
			models.FeatureAspect: {"participle"},
		}),
	}
	idx := NewFeatureIndex(rows)

	tests := []struct {
		name     string
		query    FeatureQuery
		expected string
		found    bool
	}{
		{
			name: "full conjugation combination",
			query: FeatureQuery{
				models.FeatureTense:  "present",
				models.FeatureMood:   "indicative",
				models.FeaturePerson: "3",
				models.FeatureNumber: "singular",
			},
			expected: "geht",
			found:    true,
		},
		{
			name: "list-valued person matches both entries",
			query: FeatureQuery{
				models.FeatureTense:  "past",
				models.FeatureMood:   "indicative",
				models.FeaturePerson: "1",
				models.FeatureNumber: "singular",
			},
			expected: "ging",
			found:    true,
		},
		{
			name: "tense plus aspect",
			query: FeatureQuery{
				models.FeatureTense:  "perfect",
				models.FeatureAspect: "participle",
			},
			expected: "gegangen",
			found:    true,
		},
		{
			name: "case-insensitive value match",
			query: FeatureQuery{
				models.FeatureTense:  "Present",
				models.FeatureMood:   "INDICATIVE",
				models.FeaturePerson: "1",
				models.FeatureNumber: "Singular",
			},
			expected: "gehe",
			found:    true,
		},
		{
			name: "numeric canonicalization",
			query: FeatureQuery{
				models.FeatureTense:  "present",
				models.FeatureMood:   "indicative",
				models.FeaturePerson: "3.0",
				models.FeatureNumber: "singular",
			},
			expected: "geht",
			found:    true,
		},
		{
			name: "fallback scan for unindexed combination",
			query: FeatureQuery{
				models.FeatureTense:  "present",
				models.FeaturePerson: "1",
			},
			expected: "gehe",
			found:    true,
		},
		{
			name: "no match",
			query: FeatureQuery{
				models.FeatureTense:  "future",
				models.FeatureMood:   "indicative",
				models.FeaturePerson: "1",
				models.FeatureNumber: "singular",
			},
			expected: "",
			found:    false,
		},
		{
			name:     "empty query finds nothing",
			query:    FeatureQuery{},
			expected: "",
			found:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form, ok := idx.Lookup(tt.query)
			if form != tt.expected || ok != tt.found {
				t.Errorf("Lookup() = (%q, %v), want (%q, %v)", form, ok, tt.expected, tt.found)
			}
		})
	}
}

func TestFeatureIndexFirstRegisteredWins(t *testing.T) {
	rows := []models.Inflection{
		verbRow("i1", "gehst", models.FeatureSet{
			models.FeatureTense:  {"present"},
			models.FeatureMood:   {"indicative"},
			models.FeaturePerson: {"2"},
			models.FeatureNumber: {"singular"},
		}),
		verbRow("i2", "gehest", models.FeatureSet{
			models.FeatureTense:  {"present"},
			models.FeatureMood:   {"indicative"},
			models.FeaturePerson: {"2"},
			models.FeatureNumber: {"singular"},
		}),
	}
	idx := NewFeatureIndex(rows)

	form, ok := idx.Lookup(FeatureQuery{
		models.FeatureTense:  "present",
		models.FeatureMood:   "indicative",
		models.FeaturePerson: "2",
		models.FeatureNumber: "singular",
	})
	if !ok || form != "gehst" {
		t.Errorf("Lookup() = (%q, %v), want first-registered form (\"gehst\", true)", form, ok)
	}
}

func TestFeatureIndexUnknownFeatureFallsBackToScan(t *testing.T) {
	rows := []models.Inflection{
		verbRow("i1", "laufe", models.FeatureSet{
			models.FeatureTense: {"present"},
		}),
	}
	idx := NewFeatureIndex(rows)

	// A query with an unrecognized feature key can never be in a bucket; the
	// scan requires the rows to carry a value for it, so nothing matches.
	form, ok := idx.Lookup(FeatureQuery{
		models.FeatureTense:       "present",
		models.Feature("invalid"): "x",
	})
	if ok || form != "" {
		t.Errorf("Lookup() = (%q, %v), want (\"\", false)", form, ok)
	}
}

func TestFeatureIndexSkipsEmptyForms(t *testing.T) {
	rows := []models.Inflection{
		verbRow("i1", "", models.FeatureSet{
			models.FeatureDegree: {"comparative"},
		}),
		verbRow("i2", "schneller", models.FeatureSet{
			models.FeatureDegree: {"comparative"},
		}),
	}
	idx := NewFeatureIndex(rows)

	form, ok := idx.Lookup(FeatureQuery{models.FeatureDegree: "comparative"})
	if !ok || form != "schneller" {
		t.Errorf("Lookup() = (%q, %v), want (\"schneller\", true)", form, ok)
	}
}

func TestCartesian(t *testing.T) {
	tests := []struct {
		name     string
		lists    [][]string
		expected int
	}{
		{name: "no lists", lists: nil, expected: 0},
		{name: "single list", lists: [][]string{{"a", "b"}}, expected: 2},
		{name: "two lists", lists: [][]string{{"a", "b"}, {"x", "y", "z"}}, expected: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := cartesian(tt.lists)
			if len(result) != tt.expected {
				t.Errorf("cartesian() produced %d tuples, want %d", len(result), tt.expected)
			}
		})
	}
}

func TestNormalizeFeatureValue(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Present", "present"},
		{"  singular ", "singular"},
		{"3", "3"},
		{"3.0", "3"},
		{"03", "3"},
	}

	for _, tt := range tests {
		if got := normalizeFeatureValue(tt.input); got != tt.expected {
			t.Errorf("normalizeFeatureValue(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
