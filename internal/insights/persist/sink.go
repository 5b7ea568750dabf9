package persist

import (
	"context"

	"github.com/yanun0323/logs"

	"insights-pipeline/internal/insights/model"
	"insights-pipeline/pkg/conn"
)

// PostgresSink drains a channel of Insight records into the insights table,
// batching writes the way a bulk time-series writer should rather than one
// row per statement.
type PostgresSink struct {
	client    *conn.Client
	batchSize int
}

// NewPostgresSink wraps an already-connected pkg/conn.Client.
func NewPostgresSink(client *conn.Client, batchSize int) *PostgresSink {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &PostgresSink{client: client, batchSize: batchSize}
}

// Migrate creates/updates the insights table schema.
func (s *PostgresSink) Migrate() error {
	return s.client.DB().AutoMigrate(&InsightRecord{})
}

// Run drains ch until it closes or ctx is cancelled, flushing whenever a
// batch fills and once more on close or cancellation; a partly filled batch
// is not flushed while the channel is merely idle. Write failures are logged and the
// batch is dropped rather than retried indefinitely, since Insight records
// are ephemeral derived state, not orders.
func (s *PostgresSink) Run(ctx context.Context, ch <-chan model.Insight) {
	batch := make([]InsightRecord, 0, s.batchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := s.client.DB().Create(&batch).Error; err != nil {
			logs.Errorf("persist insights batch failed: %v", err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case in, ok := <-ch:
			if !ok {
				flush()
				return
			}
			batch = append(batch, fromInsight(in))
			if len(batch) >= s.batchSize {
				flush()
			}
		}
	}
}
