package application

import (
	"sort"

	"github.com/AzielCF/az-cube/timer/domain"
)

const DefaultLogLimit = 100

// LogStats are the aggregates of the recent log. Absent values are nil.
type LogStats struct {
	Count          int      `json:"count"`
	DNFCount       int      `json:"dnf_count"`
	Best           *float64 `json:"best"`
	MeanOf3        *float64 `json:"mean_of_3"`
	AverageOfN     *float64 `json:"average_of_n"`
	N              int      `json:"n"`
	SessionAverage *float64 `json:"session_average"`
}

// SolveLog keeps the most recent records, newest first. It is not safe for
// concurrent use; it belongs to the timer's thread.
type SolveLog struct {
	limit    int
	records  []domain.SolveRecord
	onChange func([]domain.SolveRecord)
}

func NewSolveLog(limit int) *SolveLog {
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	return &SolveLog{limit: limit}
}

// OnChange registers a hook called with a copy of the records after every mutation.
func (l *SolveLog) OnChange(fn func([]domain.SolveRecord)) {
	l.onChange = fn
}

// Restore replaces the contents without firing the change hook.
func (l *SolveLog) Restore(records []domain.SolveRecord) {
	if len(records) > l.limit {
		records = records[:l.limit]
	}
	l.records = append([]domain.SolveRecord(nil), records...)
}

// Append puts r at the front, dropping the oldest records beyond the limit.
func (l *SolveLog) Append(r domain.SolveRecord) {
	l.records = append([]domain.SolveRecord{r}, l.records...)
	if len(l.records) > l.limit {
		l.records = l.records[:l.limit]
	}
	l.changed()
}

func (l *SolveLog) RemoveAt(index int) bool {
	if index < 0 || index >= len(l.records) {
		return false
	}
	l.records = append(l.records[:index], l.records[index+1:]...)
	l.changed()
	return true
}

// RemoveMany drops every valid index and reports how many were removed.
func (l *SolveLog) RemoveMany(indices []int) int {
	uniq := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(l.records) {
			uniq[i] = struct{}{}
		}
	}
	if len(uniq) == 0 {
		return 0
	}
	sorted := make([]int, 0, len(uniq))
	for i := range uniq {
		sorted = append(sorted, i)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	for _, i := range sorted {
		l.records = append(l.records[:i], l.records[i+1:]...)
	}
	l.changed()
	return len(sorted)
}

func (l *SolveLog) Clear() {
	l.records = nil
	l.changed()
}

func (l *SolveLog) Front() (domain.SolveRecord, bool) {
	if len(l.records) == 0 {
		return domain.SolveRecord{}, false
	}
	return l.records[0], true
}

// UpdateFront replaces the most recent record with fn's result.
func (l *SolveLog) UpdateFront(fn func(domain.SolveRecord) domain.SolveRecord) (domain.SolveRecord, bool) {
	if len(l.records) == 0 {
		return domain.SolveRecord{}, false
	}
	l.records[0] = fn(l.records[0])
	l.changed()
	return l.records[0], true
}

// Records returns a copy, newest first.
func (l *SolveLog) Records() []domain.SolveRecord {
	return append([]domain.SolveRecord{}, l.records...)
}

func (l *SolveLog) Len() int { return len(l.records) }

func (l *SolveLog) Stats(n int) LogStats {
	st := LogStats{
		Count:          len(l.records),
		N:              n,
		Best:           domain.Best(l.records),
		MeanOf3:        domain.MeanOf(l.records, 3),
		AverageOfN:     domain.AverageOf(l.records, n),
		SessionAverage: domain.SessionMean(l.records),
	}
	for _, r := range l.records {
		if r.DNF {
			st.DNFCount++
		}
	}
	return st
}

func (l *SolveLog) changed() {
	if l.onChange != nil {
		l.onChange(l.Records())
	}
}
