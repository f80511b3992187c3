package domain

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clean(region int, value NullFloat, year, month, day int) CleanObservation {
	return CleanObservation(obsAt(IntOf(region), value, year, month, day))
}

func TestAggregate_MeanOfMeans(t *testing.T) {
	obs := []CleanObservation{
		clean(5, FloatOf(3.2), 2012, 6, 1),
		clean(5, FloatOf(3.8), 2012, 6, 15),
		clean(5, FloatOf(4.0), 2012, 7, 3),
	}

	monthly, annual := Aggregate(obs)

	wantMonthly := []MonthlyMean{
		{RegionID: 5, Year: 2012, Month: 6, Mean: FloatOf(3.5)},
		{RegionID: 5, Year: 2012, Month: 7, Mean: FloatOf(4.0)},
	}
	if diff := cmp.Diff(wantMonthly, monthly); diff != "" {
		t.Fatalf("monthly means mismatch (-want +got):\n%s", diff)
	}
	wantAnnual := []RegionYearMean{{RegionID: 5, Year: 2012, Mean: FloatOf(3.8)}}
	if diff := cmp.Diff(wantAnnual, annual); diff != "" {
		t.Fatalf("annual means mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregate_NotPooled(t *testing.T) {
	// Pooled mean of {1, 1, 1, 5} is 2.0; mean of monthly means {1, 5} is 3.0.
	obs := []CleanObservation{
		clean(1, FloatOf(1), 2011, 6, 1),
		clean(1, FloatOf(1), 2011, 6, 2),
		clean(1, FloatOf(1), 2011, 6, 3),
		clean(1, FloatOf(5), 2011, 7, 1),
	}

	_, annual := Aggregate(obs)

	require.Len(t, annual, 1)
	assert.Equal(t, FloatOf(3.0), annual[0].Mean)
}

func TestAggregate_SingleMonth(t *testing.T) {
	_, annual := Aggregate([]CleanObservation{clean(2, FloatOf(6.4), 2013, 8, 1)})

	require.Len(t, annual, 1)
	assert.Equal(t, FloatOf(6.4), annual[0].Mean)
}

func TestAggregate_NullValues(t *testing.T) {
	t.Run("nulls excluded from numerator and denominator", func(t *testing.T) {
		monthly := MonthlyMeans([]CleanObservation{
			clean(1, FloatOf(2.0), 2012, 6, 1),
			clean(1, NullFloat{}, 2012, 6, 2),
			clean(1, FloatOf(4.0), 2012, 6, 3),
		})
		require.Len(t, monthly, 1)
		assert.Equal(t, FloatOf(3.0), monthly[0].Mean)
	})

	t.Run("all-null month propagates as null", func(t *testing.T) {
		monthly, annual := Aggregate([]CleanObservation{
			clean(1, NullFloat{}, 2012, 6, 1),
			clean(1, NullFloat{}, 2012, 6, 2),
		})
		require.Len(t, monthly, 1)
		assert.False(t, monthly[0].Mean.Valid)
		require.Len(t, annual, 1)
		assert.False(t, annual[0].Mean.Valid)
	})

	t.Run("null month skipped in pass 2", func(t *testing.T) {
		_, annual := Aggregate([]CleanObservation{
			clean(1, NullFloat{}, 2012, 6, 1),
			clean(1, FloatOf(5.0), 2012, 7, 1),
		})
		require.Len(t, annual, 1)
		assert.Equal(t, FloatOf(5.0), annual[0].Mean)
	})
}

func TestAggregate_Empty(t *testing.T) {
	monthly, annual := Aggregate(nil)
	assert.Empty(t, monthly)
	assert.Empty(t, annual)
}

func TestAggregate_OneRowPerGroup(t *testing.T) {
	obs := randomObservations(rand.New(rand.NewPCG(1, 2)), 2000)

	monthly, annual := Aggregate(obs)

	monthGroups := map[monthKey]struct{}{}
	yearGroups := map[yearKey]struct{}{}
	for _, o := range obs {
		monthGroups[monthKey{o.Region(), o.Year, o.Month}] = struct{}{}
		yearGroups[yearKey{o.Region(), o.Year}] = struct{}{}
	}
	assert.Len(t, monthly, len(monthGroups))
	assert.Len(t, annual, len(yearGroups))

	for _, m := range monthly {
		var vals []float64
		for _, o := range obs {
			if o.Region() == m.RegionID && o.Year == m.Year && o.Month == m.Month && o.Value.Valid {
				vals = append(vals, o.Value.Value)
			}
		}
		require.NotEmpty(t, vals)
		assert.Equal(t, FloatOf(tenthsMean(vals)), m.Mean)
	}
}

func TestAggregate_OrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	obs := randomObservations(rng, 1500)
	wantMonthly, wantAnnual := Aggregate(obs)

	for range 10 {
		shuffled := slices.Clone(obs)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		monthly, annual := Aggregate(shuffled)
		assert.Equal(t, wantMonthly, monthly)
		assert.Equal(t, wantAnnual, annual)
	}
}

func TestAggregate_DecimalTies(t *testing.T) {
	tests := []struct {
		a, b float64
		want float64
	}{
		{8.1, 8.2, 8.2},
		{1.4, 1.5, 1.5},
		{0.1, 0.2, 0.2},
		{4.0, 4.1, 4.1},
		{10.2, 10.3, 10.3},
		{3.0, 4.5, 3.8},
		{-8.1, -8.2, -8.2},
	}

	for _, tt := range tests {
		monthly := MonthlyMeans([]CleanObservation{
			clean(1, FloatOf(tt.a), 2012, 6, 1),
			clean(1, FloatOf(tt.b), 2012, 6, 2),
		})
		require.Len(t, monthly, 1)
		assert.Equal(t, FloatOf(tt.want), monthly[0].Mean, "mean(%v, %v)", tt.a, tt.b)
	}
}

func TestAggregate_AllAdjacentTenthsRoundUp(t *testing.T) {
	for a := 0; a <= 120; a++ {
		lo, hi := float64(a)/10, float64(a+1)/10
		monthly := MonthlyMeans([]CleanObservation{
			clean(1, FloatOf(lo), 2012, 6, 1),
			clean(1, FloatOf(hi), 2012, 6, 2),
		})
		require.Len(t, monthly, 1)
		assert.Equal(t, FloatOf(float64(a+1)/10), monthly[0].Mean, "mean(%v, %v)", lo, hi)
	}
}

func TestRoundOneDecimal(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{3.75, 3.8},
		{0.25, 0.3},
		{-0.25, -0.3},
		{2.5, 2.5},
		{1.04, 1.0},
		{1.06, 1.1},
		{0, 0},
		{-3.75, -3.8},
		{8.15, 8.2},
		{1.45, 1.5},
		{2.675, 2.7},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, RoundOneDecimal(tt.in), 1e-12, "round(%v)", tt.in)
	}
}

// tenthsMean is the rounded mean computed on integer tenths, for values that
// carry at most one decimal.
func tenthsMean(vals []float64) float64 {
	var sum int64
	for _, v := range vals {
		sum += int64(math.Round(v * 10))
	}
	n := int64(len(vals))
	return float64((2*sum+n)/(2*n)) / 10
}

func randomObservations(rng *rand.Rand, n int) []CleanObservation {
	obs := make([]CleanObservation, 0, n)
	for range n {
		obs = append(obs, clean(
			1+rng.IntN(6),
			FloatOf(float64(rng.IntN(120))/10),
			2010+rng.IntN(6),
			6+rng.IntN(4),
			1+rng.IntN(28),
		))
	}
	return obs
}
