package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Feature is one of the grammatical feature keys the content pipeline emits.
type Feature string

const (
	FeatureTense  Feature = "tense"
	FeatureMood   Feature = "mood"
	FeaturePerson Feature = "person"
	FeatureNumber Feature = "number"
	FeatureAspect Feature = "aspect"
	FeatureCase   Feature = "case"
	FeatureDegree Feature = "degree"
)

// featureOrder is the canonical key order used when building index keys.
var featureOrder = []Feature{
	FeatureTense,
	FeatureMood,
	FeaturePerson,
	FeatureNumber,
	FeatureAspect,
	FeatureCase,
	FeatureDegree,
}

// KnownFeature reports whether key is part of the supported vocabulary.
func KnownFeature(key Feature) bool {
	for _, f := range featureOrder {
		if f == key {
			return true
		}
	}
	return false
}

// FeatureRank returns the position of key in the canonical feature order,
// or len(featureOrder) for unknown keys so they sort last.
func FeatureRank(key Feature) int {
	for i, f := range featureOrder {
		if f == key {
			return i
		}
	}
	return len(featureOrder)
}

// FeatureSet maps feature keys to one or more values. A multi-valued entry
// means the form applies to every listed value (e.g. a form usable for both
// singular and plural).
type FeatureSet map[Feature][]string

// Values returns the values for key, or nil if absent.
func (fs FeatureSet) Values(key Feature) []string {
	return fs[key]
}

// Has reports whether key is present with at least one value.
func (fs FeatureSet) Has(key Feature) bool {
	return len(fs[key]) > 0
}

// ParseFeatureSet converts a raw JSON feature map from storage into a typed
// FeatureSet. Keys outside the supported vocabulary are dropped; values must
// be scalars or lists of scalars.
func ParseFeatureSet(raw []byte) (FeatureSet, error) {
	if len(raw) == 0 {
		return FeatureSet{}, nil
	}

	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("invalid feature map: %w", err)
	}

	fs := make(FeatureSet, len(m))
	for k, v := range m {
		key := Feature(strings.ToLower(strings.TrimSpace(k)))
		if !KnownFeature(key) {
			continue
		}

		values, err := featureValues(v)
		if err != nil {
			return nil, fmt.Errorf("feature %q: %w", key, err)
		}
		if len(values) > 0 {
			fs[key] = values
		}
	}

	return fs, nil
}

// featureValues normalizes a scalar or list JSON value into a string slice.
func featureValues(v interface{}) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil, nil
		}
		return []string{s}, nil
	case float64:
		return []string{formatFeatureNumber(val)}, nil
	case []interface{}:
		values := make([]string, 0, len(val))
		for _, item := range val {
			sub, err := featureValues(item)
			if err != nil {
				return nil, err
			}
			values = append(values, sub...)
		}
		return values, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

func formatFeatureNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
