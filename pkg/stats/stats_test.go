package stats

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRankIndex(t *testing.T) {
	// median ranks; even counts resolve to the lower middle
	require.Equal(t, 0, RankIndex(1, 1, 2))
	require.Equal(t, 0, RankIndex(2, 1, 2))
	require.Equal(t, 1, RankIndex(3, 1, 2))
	require.Equal(t, 1, RankIndex(4, 1, 2))
	require.Equal(t, 4, RankIndex(9, 1, 2))

	// quartiles
	require.Equal(t, 0, RankIndex(4, 1, 4))
	require.Equal(t, 2, RankIndex(4, 3, 4))
	require.Equal(t, 2, RankIndex(9, 1, 4))
	require.Equal(t, 6, RankIndex(9, 3, 4))
}

func TestPercentiles(t *testing.T) {
	p25, p50, p75 := Percentiles([]uint64{40, 10, 30, 20})
	require.Equal(t, uint64(10), p25)
	require.Equal(t, uint64(20), p50)
	require.Equal(t, uint64(30), p75)

	p25, p50, p75 = Percentiles([]uint64{42})
	require.Equal(t, uint64(42), p25)
	require.Equal(t, uint64(42), p50)
	require.Equal(t, uint64(42), p75)
}

func TestMedian(t *testing.T) {
	require.Equal(t, uint64(100), Median([]uint64{95, 100, 100, 100}))
	require.Equal(t, uint64(1000), Median([]uint64{998, 1000, 1000}))
}

func TestConfidenceWidth(t *testing.T) {
	require.Equal(t, uint64(30), ConfidenceWidth(10, 20, 50))
	require.Equal(t, uint64(10), ConfidenceWidth(10, 20, 25))
	require.Equal(t, uint64(0), ConfidenceWidth(7, 7, 7))
}
