/*
Package persist adapts pkg/conn's PostgreSQL client into a sink for computed
Insight records (spec §6's persisted-state layout), draining the pipeline's
bounded output queue into an append-only table via GORM.
*/
package persist

import (
	"time"

	"insights-pipeline/internal/insights/model"
)

// InsightRecord is the GORM row shape for a computed Insight, grounded on
// the pack's time-series persistence convention (indexed timestamp column,
// indexed entity/dimension columns, decimal(...) for money-adjacent
// numerics, an explicit TableName).
type InsightRecord struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PipelineID      string    `gorm:"type:text;index:idx_insight_pipeline;not null" json:"pipeline_id"`
	InstrumentID    string    `gorm:"type:text;index:idx_insight_instrument;not null" json:"instrument_id"`
	FeatureID       string    `gorm:"type:text;index:idx_insight_feature;not null" json:"feature_id"`
	EventTime       time.Time `gorm:"index:idx_insight_time;not null" json:"event_time"`
	Value           float64   `gorm:"type:decimal(24,6);not null" json:"value"`
	InsightType     uint8     `gorm:"not null" json:"insight_type"`
}

// TableName specifies the table name for InsightRecord.
func (InsightRecord) TableName() string { return "insights" }

// fromInsight converts a computed Insight into its persisted row shape.
func fromInsight(in model.Insight) InsightRecord {
	return InsightRecord{
		PipelineID:   in.PipelineID.String(),
		InstrumentID: in.InstrumentID.String(),
		FeatureID:    in.FeatureID,
		EventTime:    time.UnixMilli(in.EventTimeMillis).UTC(),
		Value:        in.Value,
		InsightType:  uint8(in.InsightType),
	}
}
