package dag

import (
	"testing"

	"github.com/stretchr/testify/require"

	"insights-pipeline/internal/insights/config"
)

func rangeFeature(id, input, output string) config.FeatureConfig {
	return config.FeatureConfig{
		ID:   id,
		Kind: "range",
		Range: &config.RangeConfig{
			Input:  input,
			Output: output,
			Algo:   config.RangeMean,
			Data:   config.RangeData{WindowSeconds: 60},
		},
	}
}

func TestBuild_LinearChainLevels(t *testing.T) {
	features := []config.FeatureConfig{
		rangeFeature("a", "trade_price", "a_out"),
		rangeFeature("b", "a_out", "b_out"),
		rangeFeature("c", "b_out", "c_out"),
	}

	g, err := Build(features)
	require.NoError(t, err)
	require.Len(t, g.Levels, 3)
	require.Equal(t, []int{0}, g.Levels[0])
	require.Equal(t, []int{1}, g.Levels[1])
	require.Equal(t, []int{2}, g.Levels[2])
}

func TestBuild_ParallelSiblingsShareLevel(t *testing.T) {
	features := []config.FeatureConfig{
		rangeFeature("a", "trade_price", "a_out"),
		rangeFeature("b", "trade_price", "b_out"),
		rangeFeature("c", "a_out", "c_out"),
	}

	g, err := Build(features)
	require.NoError(t, err)
	require.Len(t, g.Levels, 2)
	require.ElementsMatch(t, []int{0, 1}, g.Levels[0])
	require.Equal(t, []int{2}, g.Levels[1])
}

func TestBuild_DetectsCycle(t *testing.T) {
	features := []config.FeatureConfig{
		rangeFeature("a", "b_out", "a_out"),
		rangeFeature("b", "a_out", "b_out"),
	}

	_, err := Build(features)
	require.Error(t, err)
}

func TestGraph_DotString(t *testing.T) {
	features := []config.FeatureConfig{
		rangeFeature("a", "trade_price", "a_out"),
		rangeFeature("b", "a_out", "b_out"),
	}
	g, err := Build(features)
	require.NoError(t, err)
	require.Contains(t, g.DotString(), "digraph {")
}
