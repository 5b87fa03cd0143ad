package models

import (
	"time"

	"github.com/turtacn/airops/pkg/constants"
)

// FeatureVector holds the normalized inputs to a scoring function. Vectors are
// ephemeral: recomputed on demand, keyed by (tenant, entity, as-of time), never
// persisted. Every feature is either a bounded numeric value or an enumerated
// category; missing inputs map to a defined neutral default rather than nil.
type FeatureVector struct {
	TenantID string
	EntityID string
	Kind     constants.ScoreKind
	AsOf     time.Time

	Numeric     map[string]float64
	Categorical map[string]string
}

// NewFeatureVector creates an empty vector for the given subject.
func NewFeatureVector(tenantID, entityID string, kind constants.ScoreKind, asOf time.Time) *FeatureVector {
	return &FeatureVector{
		TenantID:    tenantID,
		EntityID:    entityID,
		Kind:        kind,
		AsOf:        asOf,
		Numeric:     make(map[string]float64),
		Categorical: make(map[string]string),
	}
}

// Num returns the numeric feature value, or 0 when absent. Zero is the neutral
// default for every numeric feature: an absent input never changes a score's
// direction, it simply contributes nothing.
func (fv *FeatureVector) Num(key string) float64 {
	return fv.Numeric[key]
}

// Cat returns the categorical feature value, or the given fallback when absent.
func (fv *FeatureVector) Cat(key, fallback string) string {
	if v, ok := fv.Categorical[key]; ok && v != "" {
		return v
	}
	return fallback
}

// SetNum records a numeric feature.
func (fv *FeatureVector) SetNum(key string, value float64) {
	fv.Numeric[key] = value
}

// SetCat records a categorical feature.
func (fv *FeatureVector) SetCat(key, value string) {
	fv.Categorical[key] = value
}
