// Package stats mirrors the circuit's rank statistics natively, so witness
// generators and tests compute the same aggregate the constraints enforce.
package stats

import "sort"

// RankIndex returns the 0-based index of the 1-based rank ceil(num*m/den)
// in a sorted slice of m elements. Even counts resolve to the lower middle:
// the median of [10,20,30,40] sits at index 1.
func RankIndex(m, num, den int) int {
	if m == 0 {
		return 0
	}
	return (num*m+den-1)/den - 1
}

// Percentiles returns the 25th/50th/75th percentile elements of values.
// values need not be sorted; a sorted copy is taken. Panics on empty input.
func Percentiles(values []uint64) (p25, p50, p75 uint64) {
	sorted := make([]uint64, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	m := len(sorted)
	return sorted[RankIndex(m, 1, 4)], sorted[RankIndex(m, 1, 2)], sorted[RankIndex(m, 3, 4)]
}

// Median returns the element at the median rank of values.
func Median(values []uint64) uint64 {
	_, p50, _ := Percentiles(values)
	return p50
}

// ConfidenceWidth returns the larger of the two half-intervals around the
// median: max(p50-p25, p75-p50).
func ConfidenceWidth(p25, p50, p75 uint64) uint64 {
	left := p50 - p25
	right := p75 - p50
	if right > left {
		return right
	}
	return left
}
