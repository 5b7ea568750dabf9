package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"insights-pipeline/internal/insights/instrument"
)

func TestSeries_WindowAndInterval(t *testing.T) {
	var s Series
	for i := int64(0); i < 5; i++ {
		require.True(t, s.Append(i*1000, float64(i)))
	}

	window := s.Window(4000, 2500)
	require.Equal(t, []float64{2, 3, 4}, values(window))

	interval := s.Interval(4000, 3)
	require.Equal(t, []float64{2, 3, 4}, values(interval))
}

func TestSeries_AppendRejectsOutOfOrder(t *testing.T) {
	var s Series
	require.True(t, s.Append(2000, 1))
	require.False(t, s.Append(1000, 2))
	require.Equal(t, 1, s.Len())
}

func TestSeries_Lag(t *testing.T) {
	var s Series
	for i := int64(0); i < 4; i++ {
		require.True(t, s.Append(i*1000, float64(i)))
	}

	lagged, ok := s.Lag(3000, 2)
	require.True(t, ok)
	require.Equal(t, float64(1), lagged.Value)

	_, ok = s.Lag(3000, 10)
	require.False(t, ok)
}

func TestSeries_Evict(t *testing.T) {
	var s Series
	s.Append(0, 0)
	s.Append(1000, 1)
	s.Append(5000, 2)

	s.Evict(5000, 2000)
	require.Equal(t, []float64{2}, values(s.samples))
}

func TestStore_ObserveDropsOutOfOrder(t *testing.T) {
	st := New(60)
	id := instrument.ID(uuid.New())

	require.True(t, st.Observe(id, 5000))
	require.True(t, st.Observe(id, 6000))
	require.False(t, st.Observe(id, 4000))
	require.Equal(t, int64(1), st.OutOfOrderDrops())
}

func TestStore_WriteWindowInterval(t *testing.T) {
	st := New(60)
	id := instrument.ID(uuid.New())

	for i := int64(0); i < 10; i++ {
		st.Observe(id, i*1000)
		require.True(t, st.Write(id, "trade_price", i*1000, float64(i)))
	}

	window := st.Window(id, "trade_price", 9000, 3)
	require.Equal(t, []float64{7, 8, 9}, values(window))

	interval := st.Interval(id, "trade_price", 9000, 4)
	require.Equal(t, []float64{6, 7, 8, 9}, values(interval))
}

func TestStore_TTLEviction(t *testing.T) {
	st := New(2)
	id := instrument.ID(uuid.New())

	st.Observe(id, 0)
	st.Write(id, "trade_price", 0, 0)
	st.Observe(id, 5000)
	st.Write(id, "trade_price", 5000, 5)

	window := st.Window(id, "trade_price", 5000, 10)
	require.Equal(t, []float64{5}, values(window))
}

func values(samples []Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Value
	}
	return out
}
