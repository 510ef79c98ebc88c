package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recs(times ...float64) []SolveRecord {
	out := make([]SolveRecord, len(times))
	for i, t := range times {
		if t < 0 {
			out[i] = SolveRecord{DNF: true}
			continue
		}
		out[i] = SolveRecord{Time: t}
	}
	return out
}

func TestSolveRecord_Toggles(t *testing.T) {
	r := SolveRecord{Time: 10}
	eff, ok := r.Effective()
	require.True(t, ok)
	assert.Equal(t, 10.0, eff)

	r = r.TogglePlus2()
	eff, _ = r.Effective()
	assert.Equal(t, 12.0, eff)
	assert.Equal(t, PenaltyPlus2, r.Penalty())

	r = r.TogglePlus2()
	eff, _ = r.Effective()
	assert.Equal(t, 10.0, eff)
	assert.False(t, r.Plus2)

	r = r.TogglePlus2().ToggleDNF()
	assert.True(t, r.DNF)
	assert.False(t, r.Plus2)
	_, ok = r.Effective()
	assert.False(t, ok)

	r = r.TogglePlus2()
	assert.False(t, r.DNF)
	assert.True(t, r.Plus2)
}

func TestAverageOf(t *testing.T) {
	ao5 := AverageOf(recs(10, 12, 11, 20, 9), 5)
	require.NotNil(t, ao5)
	assert.InDelta(t, 11.0, *ao5, 1e-9)

	assert.Nil(t, AverageOf(recs(10, 12, 11, 20), 5))
	assert.Nil(t, AverageOf(recs(10, -1, 11, 20, 9), 5))
	assert.Nil(t, AverageOf(recs(10, 12), 2))

	// only the most recent n count
	ao5 = AverageOf(recs(10, 10, 10, 10, 10, -1), 5)
	require.NotNil(t, ao5)
	assert.InDelta(t, 10.0, *ao5, 1e-9)
}

func TestAverageOfWCA(t *testing.T) {
	ao5, dnf := AverageOfWCA(recs(10, 12, 11, 20, 9), 5)
	require.NotNil(t, ao5)
	assert.False(t, dnf)
	assert.InDelta(t, 11.0, *ao5, 1e-9)

	// one DNF is the trimmed worst: 10 is the best, 11 12 13 remain
	ao5, dnf = AverageOfWCA(recs(-1, 13, 12, 11, 10, 9), 5)
	require.NotNil(t, ao5)
	assert.False(t, dnf)
	assert.InDelta(t, 12.0, *ao5, 1e-9)

	ao5, dnf = AverageOfWCA(recs(-1, 13, -1, 11, 10), 5)
	assert.Nil(t, ao5)
	assert.True(t, dnf)

	ao5, dnf = AverageOfWCA(recs(-1, 13, 12, 11), 5)
	assert.Nil(t, ao5)
	assert.False(t, dnf)

	ao5, dnf = AverageOfWCA(recs(10, 12), 2)
	assert.Nil(t, ao5)
	assert.False(t, dnf)
}

func TestMeanBestWorst(t *testing.T) {
	r := recs(9, -1, 12, 15)
	assert.Nil(t, MeanOf(r, 3))
	mo3 := MeanOf(recs(9, 12, 15, -1), 3)
	require.NotNil(t, mo3)
	assert.InDelta(t, 12.0, *mo3, 1e-9)

	assert.Equal(t, 9.0, *Best(r))
	assert.Equal(t, 15.0, *Worst(r))
	assert.InDelta(t, 12.0, *SessionMean(r), 1e-9)

	assert.Nil(t, Best(recs(-1, -1)))
	assert.Nil(t, SessionMean(nil))
}
