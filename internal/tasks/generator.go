package tasks

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"sprachtrainer/internal/models"
)

// generatorRevision is bumped when prompt or solution shapes change in a
// way that should re-version every generated task.
const generatorRevision = 1

// taskNamespace seeds deterministic task ids.
var taskNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("sprachtrainer/tasks"))

// TaskID derives the deterministic id for one task. The resolved solution
// form participates in the hash, so content changes produce a new id while
// content-identical regeneration keeps ids stable.
func TaskID(lexemeID string, taskType models.TaskType, variant, solution string) string {
	seed := strings.Join([]string{lexemeID, string(taskType), variant, strings.ToLower(solution)}, "|")
	return uuid.NewSHA1(taskNamespace, []byte(seed)).String()
}

// GenerateTaskSpecs turns one template source into its concrete task specs.
// Variants whose solution form could not be resolved are omitted; a source
// can legitimately yield zero tasks.
func GenerateTaskSpecs(src *TemplateSource, registry *Registry) []models.TaskSpec {
	if src == nil {
		return nil
	}

	switch src.Pos {
	case models.PosVerb:
		return generateVerbTasks(src, registry)
	case models.PosNoun:
		return generateNounTasks(src, registry)
	case models.PosAdjective:
		return generateAdjectiveTasks(src, registry)
	default:
		return nil
	}
}

func generateVerbTasks(src *TemplateSource, registry *Registry) []models.TaskSpec {
	spec, err := registry.Lookup(models.TaskConjugateForm)
	if err != nil {
		return nil
	}

	variants := []struct {
		name     string
		tense    string
		person   string
		number   string
		solution string
		prompt   string
	}{
		{"praesens_1s", "present", "1", "singular", src.PresentFirstSingular,
			fmt.Sprintf("Konjugiere %q im Präsens (ich ...)", src.Lemma)},
		{"praesens_3s", "present", "3", "singular", src.PresentThirdSingular,
			fmt.Sprintf("Konjugiere %q im Präsens (er/sie/es ...)", src.Lemma)},
		{"praeteritum_3s", "past", "3", "singular", src.PastThirdSingular,
			fmt.Sprintf("Konjugiere %q im Präteritum (er/sie/es ...)", src.Lemma)},
		{"partizip_ii", "perfect", "", "", src.PerfectParticiple,
			fmt.Sprintf("Bilde das Partizip II von %q", src.Lemma)},
	}

	var out []models.TaskSpec
	for _, v := range variants {
		if v.solution == "" {
			continue
		}

		task := models.TaskSpec{
			ID:       TaskID(src.LexemeID, models.TaskConjugateForm, v.name, v.solution),
			LexemeID: src.LexemeID,
			Pos:      models.PosVerb,
			TaskType: models.TaskConjugateForm,
			Renderer: spec.Renderer,
			Prompt: models.TaskPrompt{
				Lemma:           src.Lemma,
				Instructions:    v.prompt,
				CefrLevel:       src.Level,
				Example:         src.Example,
				Translation:     src.Translation,
				RequestedTense:  v.tense,
				RequestedPerson: v.person,
				RequestedNumber: v.number,
			},
			Solution:  models.TaskSolution{Expected: v.solution},
			Hints:     verbHints(src, v.name),
			CefrLevel: src.Level,
			Revision:  generatorRevision,
		}
		out = append(out, task)
	}

	// Perfect tense as a composite (hat gemacht / ist gegangen), when known.
	if src.Perfect != "" {
		task := models.TaskSpec{
			ID:       TaskID(src.LexemeID, models.TaskConjugateForm, "perfekt", src.Perfect),
			LexemeID: src.LexemeID,
			Pos:      models.PosVerb,
			TaskType: models.TaskConjugateForm,
			Renderer: spec.Renderer,
			Prompt: models.TaskPrompt{
				Lemma:          src.Lemma,
				Instructions:   fmt.Sprintf("Bilde das Perfekt von %q (er/sie/es ...)", src.Lemma),
				CefrLevel:      src.Level,
				Example:        src.Example,
				Translation:    src.Translation,
				RequestedTense: "perfect",
				RequestedForm:  "composite",
			},
			Solution:  models.TaskSolution{Expected: src.Perfect},
			Hints:     verbHints(src, "perfekt"),
			CefrLevel: src.Level,
			Revision:  generatorRevision,
		}
		out = append(out, task)
	}

	return out
}

func verbHints(src *TemplateSource, variant string) []string {
	var hints []string
	if src.English != "" {
		hints = append(hints, "Englisch: "+src.English)
	}
	if variant == "perfekt" && src.Auxiliary != "" {
		hints = append(hints, "Hilfsverb: "+src.Auxiliary)
	}
	if src.Separable {
		hints = append(hints, "trennbares Verb")
	}
	return hints
}

func generateNounTasks(src *TemplateSource, registry *Registry) []models.TaskSpec {
	spec, err := registry.Lookup(models.TaskNounCaseDeclension)
	if err != nil {
		return nil
	}
	if src.NominativePlural == "" {
		return nil
	}

	var hints []string
	if src.English != "" {
		hints = append(hints, "Englisch: "+src.English)
	}

	task := models.TaskSpec{
		ID:       TaskID(src.LexemeID, models.TaskNounCaseDeclension, "plural_nominativ", src.NominativePlural),
		LexemeID: src.LexemeID,
		Pos:      models.PosNoun,
		TaskType: models.TaskNounCaseDeclension,
		Renderer: spec.Renderer,
		Prompt: models.TaskPrompt{
			Lemma:           src.Lemma,
			Instructions:    fmt.Sprintf("Bilde den Plural von %q (Nominativ)", src.Lemma),
			CefrLevel:       src.Level,
			Example:         src.Example,
			Translation:     src.Translation,
			RequestedCase:   "nominative",
			RequestedNumber: "plural",
			Gender:          src.Gender,
		},
		Solution:  models.TaskSolution{Expected: src.NominativePlural},
		Hints:     hints,
		CefrLevel: src.Level,
		Revision:  generatorRevision,
	}
	return []models.TaskSpec{task}
}

func generateAdjectiveTasks(src *TemplateSource, registry *Registry) []models.TaskSpec {
	spec, err := registry.Lookup(models.TaskAdjEnding)
	if err != nil {
		return nil
	}

	variants := []struct {
		name     string
		degree   string
		solution string
		prompt   string
	}{
		{"komparativ", "comparative", src.Comparative,
			fmt.Sprintf("Bilde den Komparativ von %q", src.Lemma)},
		{"superlativ", "superlative", src.Superlative,
			fmt.Sprintf("Bilde den Superlativ von %q", src.Lemma)},
	}

	var out []models.TaskSpec
	for _, v := range variants {
		if v.solution == "" {
			continue
		}

		solution := models.TaskSolution{Expected: v.solution}
		// "am schnellsten" and "schnellsten" are both accepted answers.
		if v.degree == "superlative" {
			if trimmed := strings.TrimPrefix(v.solution, "am "); trimmed != v.solution {
				solution.Alternates = []string{trimmed}
			}
		}

		var hints []string
		if src.English != "" {
			hints = append(hints, "Englisch: "+src.English)
		}

		task := models.TaskSpec{
			ID:       TaskID(src.LexemeID, models.TaskAdjEnding, v.name, v.solution),
			LexemeID: src.LexemeID,
			Pos:      models.PosAdjective,
			TaskType: models.TaskAdjEnding,
			Renderer: spec.Renderer,
			Prompt: models.TaskPrompt{
				Lemma:           src.Lemma,
				Instructions:    v.prompt,
				CefrLevel:       src.Level,
				Example:         src.Example,
				Translation:     src.Translation,
				RequestedDegree: v.degree,
			},
			Solution:  solution,
			Hints:     hints,
			CefrLevel: src.Level,
			Revision:  generatorRevision,
		}
		out = append(out, task)
	}
	return out
}
