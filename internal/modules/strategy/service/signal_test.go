package service

import (
	"testing"

	"paper_bot/internal/models"

	"github.com/stretchr/testify/require"
)

func seq(from, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = from + step*float64(i)
	}
	return out
}

func TestVoteTrendingSeries(t *testing.T) {
	e := NewEngine(nil)

	up := seq(1, 1, 25)
	require.Equal(t, models.SignalBuy, e.Vote(up, KindSMA))
	require.Equal(t, models.SignalBuy, e.Vote(up, KindEMA))
	require.Equal(t, models.SignalBuy, e.Combined(up))

	down := seq(100, -1, 25)
	require.Equal(t, models.SignalSell, e.Vote(down, KindSMA))
	require.Equal(t, models.SignalSell, e.Vote(down, KindEMA))
	require.Equal(t, models.SignalSell, e.Combined(down))
}

func TestVoteFlatSeriesNeutral(t *testing.T) {
	e := NewEngine(nil)
	flat := seq(100, 0, 25)

	// средняя равна последнему close: все периоды воздерживаются
	require.Equal(t, models.SignalNeutral, e.Vote(flat, KindSMA))
	require.Equal(t, models.SignalNeutral, e.Vote(flat, KindEMA))
	require.Equal(t, models.SignalNeutral, e.Combined(flat))
}

func TestVoteEmptySeriesUnknown(t *testing.T) {
	e := NewEngine(nil)

	require.Equal(t, models.SignalUnknown, e.Vote(nil, KindSMA))
	require.Equal(t, models.SignalUnknown, e.Vote([]float64{}, KindEMA))
	require.Equal(t, models.SignalUnknown, e.Combined(nil))
}

func TestVoteShortHistoryBreaksConsensus(t *testing.T) {
	e := NewEngine(nil)

	// 10 закрытий: периоду 20 данных не хватает, он воздерживается
	short := seq(1, 1, 10)
	require.Equal(t, models.SignalNeutral, e.Vote(short, KindSMA))
	require.Equal(t, models.SignalNeutral, e.Combined(short))
}

func TestVoteMixedPeriodsNeutral(t *testing.T) {
	e := &Engine{
		periods: []int{2, 3},
		sma: func(in []float64, p int) []float64 {
			last := in[len(in)-1]
			if p == 2 {
				return []float64{last - 1} // голос BUY
			}
			return []float64{last + 1} // голос SELL
		},
	}

	require.Equal(t, models.SignalNeutral, e.Vote(seq(1, 1, 5), KindSMA))
}

func TestCombinedRequiresBothKinds(t *testing.T) {
	closes := seq(1, 1, 5)

	disagree := &Engine{
		periods: []int{3},
		sma: func(in []float64, p int) []float64 {
			return []float64{in[len(in)-1] - 1}
		},
		ema: func(in []float64, p int) []float64 {
			return []float64{in[len(in)-1] + 1}
		},
	}
	require.Equal(t, models.SignalBuy, disagree.Vote(closes, KindSMA))
	require.Equal(t, models.SignalSell, disagree.Vote(closes, KindEMA))
	require.Equal(t, models.SignalNeutral, disagree.Combined(closes))

	agree := &Engine{
		periods: []int{3},
		sma: func(in []float64, p int) []float64 {
			return []float64{in[len(in)-1] + 1}
		},
		ema: func(in []float64, p int) []float64 {
			return []float64{in[len(in)-1] + 1}
		},
	}
	require.Equal(t, models.SignalSell, agree.Combined(closes))
}
