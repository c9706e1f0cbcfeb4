package tasks

import (
	"sort"
	"strconv"
	"strings"

	"sprachtrainer/internal/models"
)

// combinationShapes are the feature-combination shapes the index supports.
// An inflection registers under every shape it has complete data for.
var combinationShapes = [][]models.Feature{
	{models.FeatureTense, models.FeatureMood, models.FeaturePerson, models.FeatureNumber},
	{models.FeatureTense, models.FeatureAspect},
	{models.FeatureTense},
	{models.FeatureCase, models.FeatureNumber},
	{models.FeatureDegree},
}

// FeatureQuery asks for the form matching a set of feature values.
type FeatureQuery map[models.Feature]string

// FeatureIndex answers feature-combination lookups over one lexeme's
// inflection rows in O(1) amortized, with a linear-scan fallback for
// queries the index cannot resolve.
type FeatureIndex struct {
	rows    []models.Inflection
	buckets map[string]map[string]string
}

// NewFeatureIndex builds the index. When multiple inflections satisfy the
// same combination key the earliest-inserted form wins.
func NewFeatureIndex(rows []models.Inflection) *FeatureIndex {
	idx := &FeatureIndex{
		rows:    rows,
		buckets: make(map[string]map[string]string),
	}
	for _, row := range rows {
		idx.register(row)
	}
	return idx
}

func (idx *FeatureIndex) register(row models.Inflection) {
	if row.Form == "" {
		return
	}

	for _, shape := range combinationShapes {
		valueLists := make([][]string, 0, len(shape))
		complete := true
		for _, key := range shape {
			values := row.Features.Values(key)
			if len(values) == 0 {
				complete = false
				break
			}
			valueLists = append(valueLists, values)
		}
		if !complete {
			continue
		}

		comboKey := combinationKey(shape)
		bucket := idx.buckets[comboKey]
		if bucket == nil {
			bucket = make(map[string]string)
			idx.buckets[comboKey] = bucket
		}

		// List-valued features expand into the cartesian product of entries.
		for _, tuple := range cartesian(valueLists) {
			key := valueKey(tuple)
			if _, exists := bucket[key]; !exists {
				bucket[key] = row.Form
			}
		}
	}
}

// Lookup returns the form matching the query, trying the index first and
// falling back to a linear scan over all rows.
func (idx *FeatureIndex) Lookup(query FeatureQuery) (string, bool) {
	keys := make([]models.Feature, 0, len(query))
	for key := range query {
		if !models.KnownFeature(key) {
			return idx.scan(query)
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return "", false
	}
	sort.Slice(keys, func(i, j int) bool {
		return models.FeatureRank(keys[i]) < models.FeatureRank(keys[j])
	})

	bucket := idx.buckets[combinationKey(keys)]
	if bucket != nil {
		tuple := make([]string, len(keys))
		for i, key := range keys {
			tuple[i] = query[key]
		}
		if form, ok := bucket[valueKey(tuple)]; ok {
			return form, true
		}
	}

	return idx.scan(query)
}

// scan is the exhaustive fallback: a row matches when every requested
// feature has at least one matching value.
func (idx *FeatureIndex) scan(query FeatureQuery) (string, bool) {
	for _, row := range idx.rows {
		if row.Form == "" {
			continue
		}
		matched := true
		for key, want := range query {
			values := row.Features.Values(key)
			if len(values) == 0 {
				matched = false
				break
			}
			anyMatch := false
			for _, have := range values {
				if valuesEqual(want, have) {
					anyMatch = true
					break
				}
			}
			if !anyMatch {
				matched = false
				break
			}
		}
		if matched {
			return row.Form, true
		}
	}
	return "", false
}

func combinationKey(keys []models.Feature) string {
	sorted := make([]models.Feature, len(keys))
	copy(sorted, keys)
	sort.Slice(sorted, func(i, j int) bool {
		return models.FeatureRank(sorted[i]) < models.FeatureRank(sorted[j])
	})

	parts := make([]string, len(sorted))
	for i, key := range sorted {
		parts[i] = string(key)
	}
	return strings.Join(parts, "+")
}

func valueKey(values []string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = normalizeFeatureValue(v)
	}
	return strings.Join(parts, "|")
}

// normalizeFeatureValue canonicalizes a value for key building: numbers by
// numeric value, strings case-insensitively after trimming.
func normalizeFeatureValue(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return s
}

// valuesEqual compares two feature values: numeric equality when both parse
// as numbers, otherwise case-insensitive string comparison after trimming.
func valuesEqual(a, b string) bool {
	return normalizeFeatureValue(a) == normalizeFeatureValue(b)
}

// cartesian expands per-feature value lists into every value tuple.
func cartesian(lists [][]string) [][]string {
	if len(lists) == 0 {
		return nil
	}

	tuples := [][]string{{}}
	for _, list := range lists {
		next := make([][]string, 0, len(tuples)*len(list))
		for _, tuple := range tuples {
			for _, value := range list {
				extended := make([]string, len(tuple), len(tuple)+1)
				copy(extended, tuple)
				next = append(next, append(extended, value))
			}
		}
		tuples = next
	}
	return tuples
}
