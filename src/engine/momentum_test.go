//go:build unit

package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMomentumScoresHeadIsNaN(t *testing.T) {
	px := newPriceTable(50, map[string]func(i int) float64{
		"AAA": growthSeries(0.01),
		"BBB": growthSeries(-0.005),
	})

	scores := MomentumScores(px, 20)

	assert.Len(t, scores, 50)
	for i := 0; i < 20; i++ {
		for a := range px.Symbols {
			assert.True(t, math.IsNaN(scores[i][a]), "position %d should have no score yet", i)
		}
	}
	for i := 20; i < 50; i++ {
		for a := range px.Symbols {
			assert.False(t, math.IsNaN(scores[i][a]))
		}
	}
}

func TestMomentumScoresTrailingReturn(t *testing.T) {
	px := newPriceTable(40, map[string]func(i int) float64{
		"AAA": growthSeries(0.01),
	})

	scores := MomentumScores(px, 10)

	// constant daily growth makes every trailing return (1+r)^lookback - 1
	want := math.Pow(1.01, 10) - 1.0
	for i := 10; i < 40; i++ {
		assert.InDelta(t, want, scores[i][0], 1e-12)
	}
}

func TestMomentumScoresRankDecidesByStrength(t *testing.T) {
	px := newPriceTable(30, map[string]func(i int) float64{
		"AAA": growthSeries(0.002),
		"BBB": growthSeries(0.010),
		"CCC": growthSeries(-0.004),
	})

	scores := MomentumScores(px, 15)
	row := scores[25]

	bbb := px.SymbolIndex("BBB")
	aaa := px.SymbolIndex("AAA")
	ccc := px.SymbolIndex("CCC")
	assert.Greater(t, row[bbb], row[aaa])
	assert.Greater(t, row[aaa], row[ccc])
}
