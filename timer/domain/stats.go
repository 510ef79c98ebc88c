package domain

import "sort"

// AverageOf returns the mean of the middle values of the n most recent records
// (newest first), dropping the single best and worst. n <= 2 has no defined average.
// Absent if fewer than n records exist or any of them is a DNF.
func AverageOf(newestFirst []SolveRecord, n int) *float64 {
	if n <= 2 {
		return nil
	}
	times, ok := window(newestFirst, n)
	if !ok {
		return nil
	}
	sort.Float64s(times)
	return mean(times[1 : n-1])
}

// AverageOfWCA is AverageOf for the solve history: a DNF ranks as the worst time, so
// a single DNF is trimmed and two or more make the whole average a DNF. It is absent
// (nil, false) when fewer than n records exist or n <= 2.
func AverageOfWCA(newestFirst []SolveRecord, n int) (avg *float64, dnf bool) {
	if n <= 2 || len(newestFirst) < n {
		return nil, false
	}
	times := make([]float64, 0, n)
	dnfs := 0
	for _, r := range newestFirst[:n] {
		t, ok := r.Effective()
		if !ok {
			dnfs++
			continue
		}
		times = append(times, t)
	}
	if dnfs > 1 {
		return nil, true
	}
	sort.Float64s(times)
	if dnfs == 1 {
		// the DNF is the trimmed worst
		return mean(times[1:]), false
	}
	return mean(times[1 : n-1]), false
}

// MeanOf returns the plain mean of the n most recent records, absent under the same
// conditions as AverageOf.
func MeanOf(newestFirst []SolveRecord, n int) *float64 {
	if n <= 0 {
		return nil
	}
	times, ok := window(newestFirst, n)
	if !ok {
		return nil
	}
	return mean(times)
}

// Best returns the lowest effective time among non-DNF records.
func Best(records []SolveRecord) *float64 {
	var best *float64
	for _, r := range records {
		t, ok := r.Effective()
		if !ok {
			continue
		}
		if best == nil || t < *best {
			v := t
			best = &v
		}
	}
	return best
}

// Worst returns the highest effective time among non-DNF records.
func Worst(records []SolveRecord) *float64 {
	var worst *float64
	for _, r := range records {
		t, ok := r.Effective()
		if !ok {
			continue
		}
		if worst == nil || t > *worst {
			v := t
			worst = &v
		}
	}
	return worst
}

// SessionMean averages every non-DNF record.
func SessionMean(records []SolveRecord) *float64 {
	times := make([]float64, 0, len(records))
	for _, r := range records {
		if t, ok := r.Effective(); ok {
			times = append(times, t)
		}
	}
	return mean(times)
}

func window(newestFirst []SolveRecord, n int) ([]float64, bool) {
	if len(newestFirst) < n {
		return nil, false
	}
	times := make([]float64, 0, n)
	for _, r := range newestFirst[:n] {
		t, ok := r.Effective()
		if !ok {
			return nil, false
		}
		times = append(times, t)
	}
	return times, true
}

func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	m := sum / float64(len(values))
	return &m
}
