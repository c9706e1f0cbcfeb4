package tasks

import (
	"sort"
	"strings"

	"sprachtrainer/internal/models"
)

// TemplateSource is the normalized per-lexeme input to task generation.
type TemplateSource struct {
	LexemeID    string
	Lemma       string
	Pos         models.PartOfSpeech
	Level       string
	English     string
	Example     string
	Translation string

	// verbs
	PresentFirstSingular string
	PresentThirdSingular string
	PastThirdSingular    string
	PerfectParticiple    string
	Perfect              string
	Auxiliary            string
	Separable            bool

	// nouns
	Gender           string
	NominativePlural string

	// adjectives
	Comparative string
	Superlative string
}

// BuildTemplateSource assembles the template source for one lexeme from its
// inflection rows. It returns ok=false when the lexeme cannot yield tasks
// (unsupported part of speech, missing lemma); callers count those as
// skipped rather than treating them as errors.
func BuildTemplateSource(lex models.Lexeme, inflections []models.Inflection) (*TemplateSource, bool) {
	pos, ok := models.ParsePartOfSpeech(lex.Pos)
	if !ok {
		return nil, false
	}
	if strings.TrimSpace(lex.Lemma) == "" {
		return nil, false
	}

	example, translation := resolveExample(lex)

	src := &TemplateSource{
		LexemeID:    lex.ID,
		Lemma:       lex.Lemma,
		Pos:         pos,
		Level:       firstNonEmpty(lex.Metadata.Level, lex.CefrLevel),
		English:     lex.Metadata.English,
		Example:     example,
		Translation: translation,
	}

	idx := NewFeatureIndex(inflections)

	switch pos {
	case models.PosVerb:
		src.PresentFirstSingular, _ = idx.Lookup(FeatureQuery{
			models.FeatureTense:  "present",
			models.FeatureMood:   "indicative",
			models.FeaturePerson: "1",
			models.FeatureNumber: "singular",
		})
		src.PresentThirdSingular, _ = idx.Lookup(FeatureQuery{
			models.FeatureTense:  "present",
			models.FeatureMood:   "indicative",
			models.FeaturePerson: "3",
			models.FeatureNumber: "singular",
		})
		src.PastThirdSingular, _ = idx.Lookup(FeatureQuery{
			models.FeatureTense:  "past",
			models.FeatureMood:   "indicative",
			models.FeaturePerson: "3",
			models.FeatureNumber: "singular",
		})
		src.PerfectParticiple, _ = idx.Lookup(FeatureQuery{
			models.FeatureTense:  "perfect",
			models.FeatureAspect: "participle",
		})
		// Metadata-provided perfect text is preferred over the composite
		// resolved from inflections.
		perfect, _ := idx.Lookup(FeatureQuery{models.FeatureTense: "perfect"})
		src.Perfect = firstNonEmpty(lex.Metadata.Perfect, perfect)
		src.Auxiliary = lex.Metadata.Auxiliary
		if lex.Metadata.Separable != nil {
			src.Separable = *lex.Metadata.Separable
		}
	case models.PosNoun:
		src.Gender = NormalizeGender(lex.Metadata.Gender)
		src.NominativePlural, _ = idx.Lookup(FeatureQuery{
			models.FeatureCase:   "nominative",
			models.FeatureNumber: "plural",
		})
	case models.PosAdjective:
		src.Comparative, _ = idx.Lookup(FeatureQuery{models.FeatureDegree: "comparative"})
		src.Superlative, _ = idx.Lookup(FeatureQuery{models.FeatureDegree: "superlative"})
	}

	return src, true
}

// exampleSources documents the resolution priority: the per-lexeme metadata
// example wins over the fallback example column.
func resolveExample(lex models.Lexeme) (example, translation string) {
	example = firstNonEmpty(lex.Metadata.Example, lex.ExampleDe)
	translation = firstNonEmpty(lex.Metadata.ExampleEnglish, lex.ExampleEn)

	// An English fallback that merely duplicates the German sentence is no
	// translation at all.
	if translation != "" && translation == example {
		translation = ""
	}
	return example, translation
}

// firstNonEmpty returns the first value that is non-empty after trimming.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// genderRank fixes the canonical der/die/das ordering for compound genders.
var genderRank = map[string]int{"der": 0, "die": 1, "das": 2}

// genderTokens maps recognized gender spellings onto articles.
var genderTokens = map[string]string{
	"der": "der", "die": "die", "das": "das",
	"m": "der", "f": "die", "n": "das",
	"masculine": "der", "feminine": "die", "neuter": "das",
	"maskulin": "der", "feminin": "die", "neutrum": "das",
}

// NormalizeGender reduces a raw gender string to a simple article
// (der|die|das) or a two-article compound in canonical order (e.g.
// "der/die"). Anything else resolves to "" meaning unknown; downstream
// generation skips gender-dependent output rather than erroring.
func NormalizeGender(raw string) string {
	fields := strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool {
		return r == '/' || r == ',' || r == ' ' || r == ';'
	})

	seen := make(map[string]bool)
	var articles []string
	for _, field := range fields {
		article, ok := genderTokens[strings.TrimSpace(field)]
		if !ok {
			return ""
		}
		if !seen[article] {
			seen[article] = true
			articles = append(articles, article)
		}
	}

	switch len(articles) {
	case 1:
		return articles[0]
	case 2:
		sort.Slice(articles, func(i, j int) bool {
			return genderRank[articles[i]] < genderRank[articles[j]]
		})
		return articles[0] + "/" + articles[1]
	default:
		return ""
	}
}
