package persist

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"insights-pipeline/internal/insights/model"
)

func TestFromInsight_ConvertsFields(t *testing.T) {
	pipelineID := uuid.New()
	instID := uuid.New()
	eventTime := time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC)

	in := model.New(pipelineID, instID, "sma_price", eventTime.UnixMilli(), 123.456789)
	row := fromInsight(in)

	assert.Equal(t, pipelineID.String(), row.PipelineID)
	assert.Equal(t, instID.String(), row.InstrumentID)
	assert.Equal(t, "sma_price", row.FeatureID)
	assert.True(t, eventTime.Equal(row.EventTime))
	assert.Equal(t, 123.456789, row.Value)
	assert.Equal(t, uint8(model.TypeContinuous), row.InsightType)
}

func TestInsightRecord_TableName(t *testing.T) {
	assert.Equal(t, "insights", InsightRecord{}.TableName())
}
