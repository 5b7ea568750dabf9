/*
Package model defines Insight, the pipeline's output record (spec §3):
a time-indexed numeric feature value for one (pipeline, instrument,
feature_id, event_time) tuple.
*/
package model

import (
	"github.com/google/uuid"

	"insights-pipeline/internal/insights/instrument"
)

// Type distinguishes continuous statistical outputs from discrete/categorical
// ones.
type Type uint8

const (
	TypeContinuous Type = iota
	TypeDiscrete
)

// Insight is one computed feature value.
type Insight struct {
	PipelineID   uuid.UUID
	InstrumentID instrument.ID
	FeatureID    string
	EventTimeMillis int64
	Value        float64
	InsightType  Type
}

// New builds an Insight with InsightType defaulted to Continuous.
func New(pipelineID uuid.UUID, instrumentID instrument.ID, featureID string, eventTimeMillis int64, value float64) Insight {
	return Insight{
		PipelineID:      pipelineID,
		InstrumentID:    instrumentID,
		FeatureID:       featureID,
		EventTimeMillis: eventTimeMillis,
		Value:           value,
		InsightType:     TypeContinuous,
	}
}
